package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failWriter struct{ after int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.after == 0 {
		return 0, errors.New("boom")
	}
	f.after--
	return len(p), nil
}

func TestDeferredWriter_Flush(t *testing.T) {
	var d DeferredWriter

	buf := []byte("first\n")
	_, err := d.Write(buf)
	require.NoError(t, err)
	buf[0] = 'X' // the writer keeps its own copy
	_, _ = d.Write([]byte("second\n"))

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "first\nsecond\n", out.String())
	assert.Zero(t, d.Len())
}

func TestDeferredWriter_FlushErrorKeepsRest(t *testing.T) {
	var d DeferredWriter
	_, _ = d.Write([]byte("a"))
	_, _ = d.Write([]byte("b"))
	_, _ = d.Write([]byte("c"))

	err := d.Flush(&failWriter{after: 1})
	require.Error(t, err)
	assert.Equal(t, 2, d.Len())

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "bc", out.String())
}
