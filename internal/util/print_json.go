package util

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

func WriteJsonTo(obj any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(obj); err != nil {
		return errors.Wrap(err, "cannot encode object to json")
	}

	return nil
}
