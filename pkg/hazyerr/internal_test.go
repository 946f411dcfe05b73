package hazyerr

import (
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestInternalError_Message(t *testing.T) {
	cause := errors.New("connection reset by peer")

	cases := []struct {
		name string
		err  *InternalError
		want string
	}{
		{name: "module and detail", err: New("db", "connection refused"), want: "db:connection refused"},
		{name: "module only", err: NewModule("db"), want: "db"},
		{name: "module and cause", err: Wrap("db", cause), want: "db"},
		{name: "module detail and cause", err: WrapDetail("db", "ping failed", cause), want: "db:ping failed"},
		{name: "cause only", err: FromCause(cause), want: "connection reset by peer"},
		{name: "zero value", err: &InternalError{}, want: ""},
		{name: "empty module with detail", err: New("", "ping failed"), want: "ping failed"},
		{name: "empty module and detail", err: New("", ""), want: ""},
		{name: "formatted detail", err: Newf("queue", "%d messages dropped", 3), want: "queue:3 messages dropped"},
		{name: "formatted wrap", err: Wrapf("queue", cause, "partition %d", 7), want: "queue:partition 7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestInternalError_CauseIsKept(t *testing.T) {
	cause := errors.New("disk full")

	for _, err := range []*InternalError{
		Wrap("fs", cause),
		WrapDetail("fs", "cannot flush", cause),
		FromCause(cause),
		Wrapf("fs", cause, "cannot flush %s", "journal"),
	} {
		require.Same(t, cause, err.Cause())
		require.Same(t, cause, err.Unwrap())
		require.ErrorIs(t, err, cause)
	}

	require.Nil(t, New("fs", "cannot flush").Cause())
	require.Nil(t, NewModule("fs").Cause())
	require.Nil(t, (&InternalError{}).Cause())
}

func TestInternalError_Fields(t *testing.T) {
	err := WrapDetail("db", "ping failed", io.EOF)

	type fields struct {
		Module, Detail string
		Category       string
	}
	got := fields{Module: err.Module(), Detail: err.Detail(), Category: err.Category().String()}
	want := fields{Module: "db", Detail: "ping failed", Category: "runtime"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestInternalError_ErrorsIsThroughWrapping(t *testing.T) {
	err := errors.Wrap(Wrap("fs", os.ErrNotExist), "cannot load settings")

	require.ErrorIs(t, err, os.ErrNotExist)

	ie, ok := As(err)
	require.True(t, ok)
	require.Equal(t, "fs", ie.Module())
	require.True(t, IsInternal(err))
	require.False(t, IsInternal(os.ErrNotExist))
}

func TestInternalError_Format(t *testing.T) {
	cause := errors.New("disk full")

	require.Equal(t, "fs", fmt.Sprintf("%v", Wrap("fs", cause)))
	require.Equal(t, "fs:flush", fmt.Sprintf("%s", WrapDetail("fs", "flush", cause)))
	require.Equal(t, `"fs"`, fmt.Sprintf("%q", Wrap("fs", cause)))

	verbose := fmt.Sprintf("%+v", Wrap("fs", cause))
	require.Contains(t, verbose, "fs\ncaused by: disk full")
	require.Contains(t, verbose, "TestInternalError_Format")

	require.Equal(t, "db", fmt.Sprintf("%+v", NewModule("db")))
	require.Contains(t, fmt.Sprintf("%+v", FromCause(cause)), "disk full")
}
