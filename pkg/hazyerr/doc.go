// Package hazyerr provides the internal error type and the classification used when
// a failure crosses a dynamic invocation boundary.
//
// Errors are split into three categories:
//   - CategoryFatal: the process cannot meaningfully recover, never wrapped
//   - CategoryRuntime: programming mistakes nobody declared, propagated unchanged
//   - CategoryDeclared: errors returned through a callee's error result
//
// An InternalError marks "something low-level broke that the business logic didn't
// anticipate". It carries a module label, an optional detail and an optional cause:
//
//	if err := db.Ping(ctx); err != nil {
//	    return hazyerr.Wrap("db", err)
//	}
//
// Callers that invoke functions dynamically (see package invoke) catch the
// InvocationError and route it through Classify before letting it propagate:
//
//	_, err := invoke.Call(ctx, fn, args...)
//	var ie *hazyerr.InvocationError
//	if errors.As(err, &ie) {
//	    return hazyerr.Classify("fs", ie)
//	}
package hazyerr
