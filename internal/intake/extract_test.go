package intake

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"neighborly/internal/mailbox"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractText(t *testing.T) {
	t.Run("uses first plain-text part, trimmed", func(t *testing.T) {
		msg := &mailbox.Message{
			Snippet: "snippet text",
			Parts: []mailbox.BodyPart{
				{MimeType: "text/html", Data: encodeBody("<p>html</p>")},
				{MimeType: "text/plain", Data: encodeBody("  Need a plumber ASAP \n")},
				{MimeType: "text/plain", Data: encodeBody("second part, ignored")},
			},
		}
		assert.Equal(t, "Need a plumber ASAP", ExtractText(msg))
	})

	t.Run("falls back to snippet when no plain-text part", func(t *testing.T) {
		msg := &mailbox.Message{
			Snippet: "  short summary  ",
			Parts: []mailbox.BodyPart{
				{MimeType: "text/html", Data: encodeBody("<p>html</p>")},
			},
		}
		assert.Equal(t, "short summary", ExtractText(msg))
	})

	t.Run("decode failure falls through to snippet, not an error", func(t *testing.T) {
		msg := &mailbox.Message{
			Snippet: "fallback snippet",
			Parts: []mailbox.BodyPart{
				{MimeType: "text/plain", Data: "!!!not base64!!!"},
			},
		}
		assert.Equal(t, "fallback snippet", ExtractText(msg))
	})

	t.Run("accepts unpadded base64url", func(t *testing.T) {
		msg := &mailbox.Message{
			Parts: []mailbox.BodyPart{
				{MimeType: "text/plain", Data: base64.RawURLEncoding.EncodeToString([]byte("hello there"))},
			},
		}
		assert.Equal(t, "hello there", ExtractText(msg))
	})

	t.Run("placeholder when nothing usable", func(t *testing.T) {
		assert.Equal(t, NoContentPlaceholder, ExtractText(&mailbox.Message{}))
		assert.Equal(t, NoContentPlaceholder, ExtractText(&mailbox.Message{
			Snippet: "   ",
			Parts: []mailbox.BodyPart{
				{MimeType: "text/plain", Data: encodeBody("   ")},
			},
		}))
	})
}
