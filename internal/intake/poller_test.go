package intake

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neighborly/internal/mailbox"
	"neighborly/internal/model"
)

type fakeSource struct {
	messages []*mailbox.Message
	listErr  error
	fetchErr error
}

func (f *fakeSource) ListRecent(ctx context.Context, max int64) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := []string{}
	for i, m := range f.messages {
		if int64(i) >= max {
			break
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (f *fakeSource) Fetch(ctx context.Context, id string) (*mailbox.Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no such message %s", id)
}

type fakeCatalog struct {
	labels []string
	err    error
}

func (f *fakeCatalog) ListAll(ctx context.Context) ([]string, error) {
	return f.labels, f.err
}

type fakeDirectory struct {
	byEmail map[string]*model.User
	err     error
}

func (f *fakeDirectory) ResolveByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func plainMessage(id, from, to, body string) *mailbox.Message {
	return &mailbox.Message{
		ID:   id,
		From: from,
		To:   to,
		Parts: []mailbox.BodyPart{
			{MimeType: "text/plain", Data: encodeBody(body)},
		},
	}
}

func newTestPoller(source mailbox.Source, catalog Catalog, users Directory, writer Writer, ledger MessageLedger) *Poller {
	return NewPoller(source, catalog, users, writer, ledger, "requests@neighborly.app", 5, zap.NewNop())
}

func TestPollerRun(t *testing.T) {
	ctx := context.Background()

	jane := &model.User{ID: 7, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}

	t.Run("end to end: one relevant message from a known sender", func(t *testing.T) {
		source := &fakeSource{messages: []*mailbox.Message{
			plainMessage("m1", "spam@elsewhere.com", "someoneelse@example.com", "buy now"),
			plainMessage("m2", "Jane Doe <jane@example.com>", "requests@neighborly.app", "Need a plumber ASAP"),
			plainMessage("m3", "stranger@example.com", "requests@neighborly.app", "anyone know a tutor"),
			plainMessage("m4", "a@b.c", "other@example.com", "hi"),
			plainMessage("m5", "d@e.f", "other@example.com", "hello"),
		}}
		requests := &fakeRequests{}
		writer := NewFanoutWriter(&fakeGroups{ids: []int{3}}, requests)
		ledger := NewLedger(newFakeDeduper(), newFakeProcessedStore())
		poller := newTestPoller(source,
			&fakeCatalog{labels: []string{"plumber", "electrician"}},
			&fakeDirectory{byEmail: map[string]*model.User{"jane@example.com": jane}},
			writer, ledger)

		result, err := poller.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		// 三封不相关 + 一封陌生发件人
		assert.Equal(t, 4, result.Skipped)

		require.Len(t, requests.created, 1)
		assert.Equal(t, "plumber", requests.created[0].ServiceType)
		assert.Equal(t, 3, requests.created[0].GroupID)
		assert.Equal(t, "Need a plumber ASAP", requests.created[0].Body)
	})

	t.Run("second run over the same batch creates nothing", func(t *testing.T) {
		source := &fakeSource{messages: []*mailbox.Message{
			plainMessage("m1", "jane@example.com", "requests@neighborly.app", "plumber please"),
		}}
		requests := &fakeRequests{}
		writer := NewFanoutWriter(&fakeGroups{ids: []int{3}}, requests)
		ledger := NewLedger(newFakeDeduper(), newFakeProcessedStore())
		poller := newTestPoller(source,
			&fakeCatalog{labels: []string{"plumber"}},
			&fakeDirectory{byEmail: map[string]*model.User{"jane@example.com": jane}},
			writer, ledger)

		first, err := poller.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Created)

		second, err := poller.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Created)
		assert.Equal(t, 1, second.Duplicates)
		assert.Len(t, requests.created, 1)
	})

	t.Run("unmatched text falls back to the sentinel category", func(t *testing.T) {
		source := &fakeSource{messages: []*mailbox.Message{
			plainMessage("m1", "jane@example.com", "requests@neighborly.app", "does anyone know a good notary"),
		}}
		requests := &fakeRequests{}
		writer := NewFanoutWriter(&fakeGroups{ids: []int{3}}, requests)
		poller := newTestPoller(source,
			&fakeCatalog{labels: []string{"plumber"}},
			&fakeDirectory{byEmail: map[string]*model.User{"jane@example.com": jane}},
			writer, NewLedger(newFakeDeduper(), newFakeProcessedStore()))

		result, err := poller.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, result.Created)
		assert.Equal(t, SentinelCategory, requests.created[0].ServiceType)
	})

	t.Run("catalog failure aborts the cycle as a store error", func(t *testing.T) {
		poller := newTestPoller(&fakeSource{},
			&fakeCatalog{err: errors.New("db down")},
			&fakeDirectory{}, NewFanoutWriter(&fakeGroups{}, &fakeRequests{}),
			NewLedger(newFakeDeduper(), newFakeProcessedStore()))

		result, err := poller.Run(ctx)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, 0, result.Created)
	})

	t.Run("list failure surfaces as a source error", func(t *testing.T) {
		poller := newTestPoller(&fakeSource{listErr: errors.New("timeout")},
			&fakeCatalog{labels: []string{"plumber"}},
			&fakeDirectory{}, NewFanoutWriter(&fakeGroups{}, &fakeRequests{}),
			NewLedger(newFakeDeduper(), newFakeProcessedStore()))

		_, err := poller.Run(ctx)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("partial fan-out surfaces the confirmed count and frees the message", func(t *testing.T) {
		source := &fakeSource{messages: []*mailbox.Message{
			plainMessage("m1", "jane@example.com", "requests@neighborly.app", "plumber please"),
		}}
		requests := &fakeRequests{failAfter: 2}
		writer := NewFanoutWriter(&fakeGroups{ids: []int{1, 2, 3}}, requests)
		deduper := newFakeDeduper()
		poller := newTestPoller(source,
			&fakeCatalog{labels: []string{"plumber"}},
			&fakeDirectory{byEmail: map[string]*model.User{"jane@example.com": jane}},
			writer, NewLedger(deduper, newFakeProcessedStore()))

		result, err := poller.Run(ctx)
		var partial *PartialFanoutError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, 1, partial.Created)
		assert.Equal(t, 1, result.Created)
		// 失败的消息释放锁，留给下一轮重试
		assert.Contains(t, deduper.released, "m1")
	})

	t.Run("unknown sender leaves no durable mark", func(t *testing.T) {
		source := &fakeSource{messages: []*mailbox.Message{
			plainMessage("m1", "stranger@example.com", "requests@neighborly.app", "plumber please"),
		}}
		store := newFakeProcessedStore()
		poller := newTestPoller(source,
			&fakeCatalog{labels: []string{"plumber"}},
			&fakeDirectory{byEmail: map[string]*model.User{}},
			NewFanoutWriter(&fakeGroups{}, &fakeRequests{}),
			NewLedger(newFakeDeduper(), store))

		result, err := poller.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Skipped)
		assert.Empty(t, store.seen)
	})
}
