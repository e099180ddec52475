package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomBytes(t *testing.T) {
	t.Run("returns requested size", func(t *testing.T) {
		data, err := RandomBytes(32)
		require.NoError(t, err)
		assert.Len(t, data, 32)
	})

	t.Run("successive calls differ", func(t *testing.T) {
		first, err := RandomBytes(16)
		require.NoError(t, err)
		second, err := RandomBytes(16)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects invalid sizes", func(t *testing.T) {
		for _, size := range []int{0, -1} {
			_, err := RandomBytes(size)
			assert.Error(t, err)
		}
	})
}

func TestRandomSecret(t *testing.T) {
	t.Run("enforces minimum size", func(t *testing.T) {
		_, err := RandomSecret(15)
		assert.Error(t, err)
	})

	t.Run("generates at minimum size", func(t *testing.T) {
		secret, err := RandomSecret(16)
		require.NoError(t, err)
		assert.Len(t, secret, 16)
	})
}

func TestZeroBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	ZeroBytes(data)
	assert.Equal(t, make([]byte, 5), data)

	ZeroBytes(nil)
	ZeroBytes([]byte{})
}
