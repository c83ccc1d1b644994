package intake

import (
	"encoding/base64"
	"strings"

	"neighborly/internal/mailbox"
)

// NoContentPlaceholder is the body given to a message that yields no
// usable text at all.
const NoContentPlaceholder = "(No content)"

// ExtractText returns the best available plain-text body for a message.
// Only the first text/plain part is considered; if it is missing, empty,
// or fails to decode, the snippet is used instead, and failing that the
// placeholder. Extraction never errors.
func ExtractText(msg *mailbox.Message) string {
	for _, part := range msg.Parts {
		if part.MimeType != "text/plain" {
			continue
		}
		data, err := base64.URLEncoding.DecodeString(part.Data)
		if err != nil {
			// Gmail 有时返回无填充的 base64url
			data, err = base64.RawURLEncoding.DecodeString(part.Data)
		}
		if err == nil {
			if text := strings.TrimSpace(string(data)); text != "" {
				return text
			}
		}
		break
	}

	if snippet := strings.TrimSpace(msg.Snippet); snippet != "" {
		return snippet
	}
	return NoContentPlaceholder
}
