package invokeserver

import (
	"context"
	"net"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HazyCorp/hazyerr/internal/grpcutil"
	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

func newTestConn(t *testing.T) *grpc.ClientConn {
	t.Helper()

	reg := invoke.NewRegistry()
	reg.MustRegister("fs.write", func(ctx context.Context, path string) error {
		return errors.Wrapf(context.DeadlineExceeded, "cannot write %s", path)
	})
	reg.MustRegister("fs.stat", func(path string) (int64, error) {
		return int64(len(path)), nil
	})
	reg.MustRegister("math.div", func(a, b int) int {
		return a / b
	})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpcutil.UnaryInterceptors(hzlog.NopLogger()))
	RegisterInvokeServiceServer(srv, New(invoke.New(reg, invoke.DefaultConfig())))

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, method string, req map[string]any) (*structpb.Struct, error) {
	t.Helper()

	in, err := structpb.NewStruct(req)
	require.NoError(t, err)

	out := &structpb.Struct{}
	err = conn.Invoke(context.Background(), method, in, out)

	return out, err
}

func TestInvoke_Success(t *testing.T) {
	conn := newTestConn(t)

	out, err := call(t, conn, InvokeMethod, map[string]any{"target": "fs.stat", "args": []any{"/etc"}})
	require.NoError(t, err)

	got := out.AsMap()
	require.Equal(t, "fs.stat", got["target"])
	require.Equal(t, "fs", got["module"])
	require.Equal(t, "ok", got["outcome"])
	require.Equal(t, []any{float64(4)}, got["outputs"])
}

func TestInvoke_NumberArguments(t *testing.T) {
	conn := newTestConn(t)

	out, err := call(t, conn, InvokeMethod, map[string]any{"target": "math.div", "args": []any{9, "3"}})
	require.NoError(t, err)
	require.Equal(t, []any{float64(3)}, out.AsMap()["outputs"])
}

func TestInvoke_DeclaredErrorIsInternalStatus(t *testing.T) {
	conn := newTestConn(t)
	counter := metrics.GetOrCreateCounter(`hazyerr_invocations_total{target="fs.write",module="fs",outcome="internal"}`)
	before := counter.Get()

	_, err := call(t, conn, InvokeMethod, map[string]any{"target": "fs.write", "args": []any{"/var/lib/data"}})
	require.Error(t, err)
	require.Equal(t, codes.Internal, status.Code(err))

	ie, ok := grpcutil.FromStatus(err)
	require.True(t, ok)
	require.Equal(t, "fs", ie.Module())
	require.Equal(t, "fs", ie.Error())

	require.Equal(t, before+1, counter.Get())
}

func TestInvoke_PanicIsUnknownStatus(t *testing.T) {
	conn := newTestConn(t)

	_, err := call(t, conn, InvokeMethod, map[string]any{"target": "math.div", "args": []any{1, 0}})
	require.Equal(t, codes.Unknown, status.Code(err))

	_, ok := grpcutil.FromStatus(err)
	require.False(t, ok)
}

func TestInvoke_BadRequests(t *testing.T) {
	conn := newTestConn(t)

	cases := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{name: "no target", req: map[string]any{}, code: codes.InvalidArgument},
		{name: "unknown target", req: map[string]any{"target": "fs.remove"}, code: codes.NotFound},
		{name: "bad argument", req: map[string]any{"target": "math.div", "args": []any{"one", 1}}, code: codes.InvalidArgument},
		{name: "wrong arity", req: map[string]any{"target": "fs.stat"}, code: codes.InvalidArgument},
		{name: "nested argument", req: map[string]any{"target": "fs.stat", "args": []any{[]any{"a"}}}, code: codes.InvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := call(t, conn, InvokeMethod, tc.req)
			require.Equal(t, tc.code, status.Code(err))
		})
	}
}

func TestList(t *testing.T) {
	conn := newTestConn(t)

	out, err := call(t, conn, ListMethod, map[string]any{})
	require.NoError(t, err)

	targets := out.AsMap()["targets"].([]any)
	require.Len(t, targets, 3)
	require.Equal(t, map[string]any{
		"name":      "fs.stat",
		"module":    "fs",
		"signature": "func(string) (int64, error)",
	}, targets[0])
}

func TestOutputValue(t *testing.T) {
	require.Equal(t, 3, outputValue(3))
	require.Equal(t, "{1 2}", outputValue(struct{ A, B int }{1, 2}))
	require.Nil(t, outputValue(nil))
}
