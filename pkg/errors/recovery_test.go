package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeExecute(t *testing.T) {
	t.Run("no panic", func(t *testing.T) {
		err := SafeExecute("noop", func() error { return nil })
		assert.NoError(t, err)
	})

	t.Run("function error is returned unchanged", func(t *testing.T) {
		want := fmt.Errorf("boom")
		err := SafeExecute("fails", func() error { return want })
		assert.Equal(t, want, err)
	})

	t.Run("panic becomes PanicError", func(t *testing.T) {
		err := SafeExecute("clone", func() error {
			panic("makeslice: len out of range")
		})
		require.Error(t, err)

		var panicErr *PanicError
		require.True(t, As(err, &panicErr))
		assert.Equal(t, "clone", panicErr.Operation)
		assert.Equal(t, "makeslice: len out of range", panicErr.PanicValue)
		assert.NotEmpty(t, panicErr.StackTrace)
		assert.Equal(t, "panic in clone: makeslice: len out of range", panicErr.Error())
	})
}

func TestRecover_KeepsExistingError(t *testing.T) {
	original := ErrEmptyData

	fn := func() (err error) {
		defer Recover(&err, "Transform")
		err = original
		panic("after error")
	}

	err := fn()
	require.Error(t, err)
	assert.True(t, Is(err, ErrEmptyData))
	assert.Contains(t, err.Error(), "panic in Transform: after error")
}
