package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", FromContext(ctx))

	ctx = WithContext(ctx, "abc123")
	assert.Equal(t, "abc123", FromContext(ctx))
}

func TestFromRequestOrNew(t *testing.T) {
	assert.Equal(t, "incoming", FromRequestOrNew("incoming"))

	minted := FromRequestOrNew("")
	assert.Len(t, minted, 32)
	assert.NotEqual(t, minted, FromRequestOrNew(""))
}
