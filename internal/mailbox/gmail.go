package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"neighborly/pkg/config"
)

const gmailUser = "me"

// GmailSource reads the service inbox through the Gmail API.
type GmailSource struct {
	srv *gmail.Service
}

// NewGmailSource builds a Source from OAuth credentials and a previously
// saved token. Token acquisition is an offline setup step; the poller only
// ever runs with a token already on disk.
func NewGmailSource(ctx context.Context, cfg config.MailboxConfig) (*GmailSource, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read oauth token (run the setup flow first): %w", err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &GmailSource{srv: srv}, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// ListRecent returns ids of the most recent inbox messages, newest first.
func (s *GmailSource) ListRecent(ctx context.Context, max int64) ([]string, error) {
	list, err := s.srv.Users.Messages.List(gmailUser).
		MaxResults(max).
		Q("in:inbox -in:draft").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	ids := make([]string, 0, len(list.Messages))
	for _, m := range list.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Fetch retrieves a full message and flattens it into the transient
// mailbox.Message shape.
func (s *GmailSource) Fetch(ctx context.Context, id string) (*Message, error) {
	full, err := s.srv.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch message %s: %w", id, err)
	}

	msg := &Message{
		ID:      full.Id,
		Snippet: full.Snippet,
	}

	if full.Payload == nil {
		return msg, nil
	}

	for _, header := range full.Payload.Headers {
		switch header.Name {
		case "From":
			msg.From = header.Value
		case "To":
			msg.To = header.Value
		}
	}

	msg.Parts = collectParts(full.Payload)
	return msg, nil
}

// collectParts walks the MIME tree depth-first, flattening leaf parts in
// encounter order. The extractor relies on this order: the first text/plain
// leaf is the body it uses.
func collectParts(payload *gmail.MessagePart) []BodyPart {
	var parts []BodyPart

	if payload.Body != nil && payload.Body.Data != "" {
		parts = append(parts, BodyPart{
			MimeType: payload.MimeType,
			Data:     payload.Body.Data,
		})
	}

	for _, part := range payload.Parts {
		parts = append(parts, collectParts(part)...)
	}

	return parts
}
