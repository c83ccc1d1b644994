// Package mailbox wraps the inbound Gmail mailbox behind a small Source
// interface so the intake pipeline can be driven by a fake in tests.
package mailbox

import "context"

// BodyPart is one MIME part of an inbound message. Data stays base64url
// encoded exactly as the mail API returns it; decoding (and tolerating
// decode failures) is the extractor's job.
type BodyPart struct {
	MimeType string
	Data     string
}

// Message is a transient view of one inbound email. It is read once per
// poll cycle and never persisted verbatim.
type Message struct {
	ID      string
	From    string // raw header, e.g. `Jane Doe <jane@example.com>`
	To      string
	Snippet string
	Parts   []BodyPart
}

// Source lists and fetches inbound messages.
type Source interface {
	// ListRecent returns the ids of the most recent messages, newest
	// first, at most max of them.
	ListRecent(ctx context.Context, max int64) ([]string, error)
	// Fetch retrieves the full message for an id.
	Fetch(ctx context.Context, id string) (*Message, error)
}
