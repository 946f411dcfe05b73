package invoke

import (
	"context"
	"reflect"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	durationType = reflect.TypeOf(time.Duration(0))
)

// Call calls fn with args through reflection. If the first parameter of fn is a
// context.Context, ctx is passed there and args fill the rest.
//
// A non-nil trailing error result and a panic inside fn are both returned as
// *hazyerr.InvocationError holding the failure. A panic never belongs to the
// declared contract of fn, so a panic value without a category is tagged as runtime.
// Calling something that is not a function, or with arguments fn doesn't accept,
// returns a runtime error which is not an InvocationError.
//
// Results are returned without the trailing error.
func Call(ctx context.Context, fn any, args ...any) ([]any, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, hazyerr.Runtimef("cannot call %T: not a function", fn)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	in, err := prepareArgs(ctx, fv.Type(), args)
	if err != nil {
		return nil, err
	}

	out, err := callRecovering(fv, in)
	if err != nil {
		return nil, err
	}

	return splitResults(fv.Type(), out)
}

func takesContext(t reflect.Type) bool {
	return t.NumIn() > 0 && t.In(0) == contextType
}

// paramType returns the type of the i-th argument, counting the context parameter.
func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}

	return t.In(i)
}

func checkArity(t reflect.Type, offset, got int) error {
	fixed := t.NumIn() - offset
	if t.IsVariadic() {
		if got < fixed-1 {
			return hazyerr.Runtimef("cannot call %s: want at least %d arguments, got %d", t, fixed-1, got)
		}

		return nil
	}

	if got != fixed {
		return hazyerr.Runtimef("cannot call %s: want %d arguments, got %d", t, fixed, got)
	}

	return nil
}

func prepareArgs(ctx context.Context, t reflect.Type, args []any) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, len(args)+1)

	offset := 0
	if takesContext(t) {
		in = append(in, reflect.ValueOf(ctx))
		offset = 1
	}

	if err := checkArity(t, offset, len(args)); err != nil {
		return nil, err
	}

	for i, arg := range args {
		pt := paramType(t, i+offset)

		if arg == nil {
			if !nillable(pt) {
				return nil, hazyerr.Runtimef("cannot call %s: argument %d: nil is not assignable to %s", t, i, pt)
			}

			in = append(in, reflect.Zero(pt))
			continue
		}

		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(pt) {
			return nil, hazyerr.Runtimef("cannot call %s: argument %d: %s is not assignable to %s", t, i, v.Type(), pt)
		}

		in = append(in, v)
	}

	return in, nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}

func callRecovering(fv reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = hazyerr.NewInvocationError(hazyerr.FromPanic(r))
		}
	}()

	return fv.Call(in), nil
}

func splitResults(t reflect.Type, out []reflect.Value) ([]any, error) {
	n := len(out)
	if n > 0 && t.Out(n-1) == errorType {
		if errV := out[n-1]; !errV.IsNil() {
			return nil, hazyerr.NewInvocationError(errV.Interface().(error))
		}

		out = out[:n-1]
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}

	return results, nil
}

// ConvertArgs parses raw strings into the parameter types of fn, skipping a leading
// context.Context. Supported kinds are strings, booleans, integers, unsigned
// integers, floats and time.Duration.
func ConvertArgs(fn any, raw []string) ([]any, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, hazyerr.Runtimef("cannot convert arguments for %T: not a function", fn)
	}

	t := fv.Type()
	offset := 0
	if takesContext(t) {
		offset = 1
	}

	if err := checkArity(t, offset, len(raw)); err != nil {
		return nil, err
	}

	args := make([]any, len(raw))
	for i, s := range raw {
		pt := paramType(t, i+offset)

		v, err := parseValue(pt, s)
		if err != nil {
			return nil, hazyerr.Runtime(errors.Wrapf(err, "cannot convert argument %d %q to %s", i, s, pt))
		}

		args[i] = v.Interface()
	}

	return args, nil
}

func parseValue(t reflect.Type, s string) (reflect.Value, error) {
	v := reflect.New(t).Elem()

	if t == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, err
		}

		v.SetInt(int64(d))
		return v, nil
	}

	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, errors.Errorf("unsupported parameter kind %s", t.Kind())
	}

	return v, nil
}
