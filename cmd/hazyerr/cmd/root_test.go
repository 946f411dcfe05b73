package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/HazyCorp/hazyerr/example/targets"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

func run(t *testing.T, args ...string) (map[string]any, []byte, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())

	var decoded map[string]any
	_ = json.Unmarshal(out.Bytes(), &decoded)

	return decoded, out.Bytes(), err
}

func TestList(t *testing.T) {
	_, raw, err := run(t, "list")
	require.NoError(t, err)

	var targets []invoke.Target
	require.NoError(t, json.Unmarshal(raw, &targets))
	require.Len(t, targets, len(invoke.DefaultRegistry.Names()))
	require.Equal(t, "db.query", targets[0].Name)
	require.Equal(t, "db", targets[0].Module)
}

func TestInvoke_Declared(t *testing.T) {
	out, _, err := run(t, "invoke", "fs.size", "/")
	require.Error(t, err)
	require.Equal(t, "fs", err.Error())

	require.Equal(t, "fs.size", out["target"])
	require.Equal(t, "internal", out["outcome"])
	require.Equal(t, "runtime", out["category"])
	require.NotEmpty(t, out["trace_id"])
}

func TestInvoke_Dump(t *testing.T) {
	out, _, err := run(t, "invoke", "math.div", "7", "2", "--dump")
	require.NoError(t, err)
	require.Equal(t, "ok", out["outcome"])
	require.Equal(t, []any{float64(3)}, out["outputs"])
	require.Contains(t, out["dump"], "(int) 3")
}

func TestInvoke_BadArguments(t *testing.T) {
	_, _, err := run(t, "invoke", "math.div", "seven", "2")
	require.Error(t, err)

	_, _, err = run(t, "invoke", "fs.unknown")
	require.Error(t, err)
}
