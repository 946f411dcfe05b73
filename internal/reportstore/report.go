package reportstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

// Report is a stored description of one internal error.
type Report struct {
	ID        string    `json:"id"`
	Target    string    `json:"target"`
	Module    string    `json:"module"`
	Detail    string    `json:"detail,omitempty"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Cause     string    `json:"cause,omitempty"`
	Trace     string    `json:"trace,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReport describes err raised while invoking target. IDs are time-ordered UUIDs
// (version 7), unique across concurrent invocations of the same target.
func NewReport(target string, err *hazyerr.InternalError, now time.Time) *Report {
	r := &Report{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Target:    target,
		Module:    err.Module(),
		Detail:    err.Detail(),
		Message:   err.Error(),
		Category:  hazyerr.CategoryOf(err).String(),
		Trace:     fmt.Sprintf("%+v", err),
		CreatedAt: now.UTC(),
	}

	if cause := err.Cause(); cause != nil {
		r.Cause = cause.Error()
	}

	return r
}

func (r *Report) GetID() string {
	return r.ID
}

func (r *Report) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal report")
	}

	return data, nil
}

func (r *Report) Decode(data []byte) error {
	if err := json.Unmarshal(data, r); err != nil {
		return errors.Wrap(err, "cannot unmarshal report")
	}

	return nil
}
