package intake

import (
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`<([^<>]+)>`)

// ParseAddress extracts the bare address from a "Display Name <addr>"
// formatted header. A header with no angle brackets is treated as a bare
// address; senders without a display name are common.
func ParseAddress(header string) string {
	if m := addressPattern.FindStringSubmatch(header); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(header)
}
