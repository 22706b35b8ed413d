package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUnarchiver struct {
	got []string
	err error
}

func (f *fakeUnarchiver) UnarchiveThreads(_ context.Context, tids []string) error {
	f.got = append(f.got, tids...)
	return f.err
}

func TestRunRestore(t *testing.T) {
	u := &fakeUnarchiver{}
	var out bytes.Buffer

	err := runRestore(context.Background(), u, []string{"t1", "t2"}, &out, newLogger(io.Discard, false))
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, u.got)
	assert.Equal(t, "Restored 2 thread(s).\n", out.String())
}

func TestRunRestore_Error(t *testing.T) {
	u := &fakeUnarchiver{err: errors.New("boom")}
	var out bytes.Buffer

	err := runRestore(context.Background(), u, []string{"t1"}, &out, newLogger(io.Discard, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, out.String())
}
