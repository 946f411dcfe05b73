package grpcutil

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

const (
	ErrorInfoReason = "INTERNAL_ERROR"
	ErrorInfoDomain = "hazyerr"

	moduleKey = "module"
	detailKey = "detail"
)

// ToStatus converts err to a gRPC status. Internal errors become codes.Internal with
// an errdetails.ErrorInfo describing the module, even when their cause is a status or
// a context error. Other status errors are kept.
func ToStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}

	if ie, ok := hazyerr.As(err); ok {
		st := status.New(codes.Internal, ie.Error())

		withDetails, detailsErr := st.WithDetails(&errdetails.ErrorInfo{
			Reason: ErrorInfoReason,
			Domain: ErrorInfoDomain,
			Metadata: map[string]string{
				moduleKey: ie.Module(),
				detailKey: ie.Detail(),
			},
		})
		if detailsErr != nil {
			return st
		}

		return withDetails
	}

	if st, ok := status.FromError(err); ok {
		return st
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err)
	}

	switch {
	case errors.Is(err, hazyerr.ErrNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, hazyerr.ErrAlreadyExists):
		return status.New(codes.AlreadyExists, err.Error())
	default:
		return status.New(codes.Unknown, err.Error())
	}
}

// FromStatus rebuilds an InternalError from a status error produced by ToStatus.
// The status error is kept as the cause.
func FromStatus(err error) (*hazyerr.InternalError, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Internal {
		return nil, false
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetReason() != ErrorInfoReason || info.GetDomain() != ErrorInfoDomain {
			continue
		}

		md := info.GetMetadata()
		return hazyerr.WrapDetail(md[moduleKey], md[detailKey], err), true
	}

	return nil, false
}

// ErrorUnaryInterceptor converts handler errors with ToStatus.
func ErrorUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return resp, ToStatus(err).Err()
		}

		return resp, nil
	}
}

// RecoveryUnaryInterceptor turns handler panics into errors classified with the
// method name as module. Fatal panics are not converted and keep unwinding.
func RecoveryUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			classified := hazyerr.Classify(info.FullMethod, hazyerr.NewInvocationError(hazyerr.FromPanic(r)))
			if hazyerr.CategoryOf(classified) == hazyerr.CategoryFatal {
				panic(r)
			}

			resp, err = nil, classified
		}()

		return handler(ctx, req)
	}
}

// UnaryInterceptors is the server interceptor chain: handler errors are logged as
// they are, then converted with ToStatus, and handler panics are recovered first.
func UnaryInterceptors(l *slog.Logger) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(
		ErrorUnaryInterceptor(),
		LoggingUnaryInterceptor(l),
		RecoveryUnaryInterceptor(),
	)
}
