package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashBytes(t *testing.T) {
	require.Equal(t, HashString("svm"), HashBytes([]byte("s"), []byte("vm")))
	require.NotEqual(t, HashString("svm"), HashString("svn"))
}

func TestHashFloats(t *testing.T) {
	require.Equal(t, HashFloats(1, 2, 3), HashFloats(1, 2, 3))
	require.NotEqual(t, HashFloats(1, 2, 3), HashFloats(3, 2, 1))
	require.NotEqual(t, HashFloats(0), HashFloats())
}

func TestRecoverWithError(t *testing.T) {
	run := func() (err error) {
		defer RecoverWithError(&err)
		var xs []int
		_ = xs[1]
		return nil
	}
	err := run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "got panic")

	ok := func() (err error) {
		defer RecoverWithError(&err)
		return errors.New("plain")
	}
	require.EqualError(t, ok(), "plain")
}
