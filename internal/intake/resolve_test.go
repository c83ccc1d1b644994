package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	t.Run("extracts address from display-name header", func(t *testing.T) {
		assert.Equal(t, "jane@example.com", ParseAddress("Jane Doe <jane@example.com>"))
		assert.Equal(t, "jane@example.com", ParseAddress("<jane@example.com>"))
	})

	t.Run("bare address passes through", func(t *testing.T) {
		assert.Equal(t, "jane@example.com", ParseAddress("jane@example.com"))
		assert.Equal(t, "jane@example.com", ParseAddress("  jane@example.com  "))
	})

	t.Run("empty header stays empty", func(t *testing.T) {
		assert.Equal(t, "", ParseAddress(""))
	})
}
