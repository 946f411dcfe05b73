package invokeserver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

var _ InvokeServiceServer = (*Server)(nil)

// Server exposes an invoke.Invoker over gRPC.
//
// Invoke takes {"target": string, "args": [string|number|bool...]} and answers with
// {"target", "module", "outcome", "duration", "outputs"}. Failures are returned as
// errors and converted to statuses by the server interceptors, internal errors
// become codes.Internal carrying the module.
//
// List answers with {"targets": [{"name", "module", "signature"}...]}.
type Server struct {
	inv *invoke.Invoker
}

func New(inv *invoke.Invoker) *Server {
	return &Server{inv: inv}
}

func NewFX(inv *invoke.Invoker, srv *grpc.Server) *Server {
	s := New(inv)
	RegisterInvokeServiceServer(srv, s)

	return s
}

func (s *Server) Invoke(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()

	name := fields["target"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "target must be provided")
	}

	raw, err := rawArgs(fields["args"].GetListValue().GetValues())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	target, err := s.inv.Registry().Lookup(name)
	if err != nil {
		return nil, err
	}

	args, err := invoke.ConvertArgs(target.Fn, raw)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.inv.Invoke(ctx, name, args...)
	if err != nil {
		return nil, err
	}

	out, err := structpb.NewStruct(map[string]any{
		"target":   res.Target,
		"module":   target.Module,
		"outcome":  string(res.Outcome),
		"duration": res.Duration.String(),
		"outputs":  lo.Map(res.Outputs, func(v any, _ int) any { return outputValue(v) }),
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot build response")
	}

	return out, nil
}

func (s *Server) List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	targets := lo.Map(s.inv.Registry().Targets(), func(t invoke.Target, _ int) any {
		return map[string]any{
			"name":      t.Name,
			"module":    t.Module,
			"signature": t.Signature,
		}
	})

	out, err := structpb.NewStruct(map[string]any{"targets": targets})
	if err != nil {
		return nil, errors.Wrap(err, "cannot build response")
	}

	return out, nil
}

// rawArgs renders scalar arguments the way ConvertArgs expects them on the command line.
func rawArgs(values []*structpb.Value) ([]string, error) {
	raw := make([]string, 0, len(values))
	for i, v := range values {
		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			raw = append(raw, k.StringValue)
		case *structpb.Value_NumberValue:
			raw = append(raw, strconv.FormatFloat(k.NumberValue, 'f', -1, 64))
		case *structpb.Value_BoolValue:
			raw = append(raw, strconv.FormatBool(k.BoolValue))
		default:
			return nil, errors.Errorf("argument %d must be a string, a number or a bool", i)
		}
	}

	return raw, nil
}

// outputValue keeps values structpb can represent and prints the rest.
func outputValue(v any) any {
	if _, err := structpb.NewValue(v); err != nil {
		return fmt.Sprintf("%v", v)
	}

	return v
}
