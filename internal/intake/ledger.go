package intake

import "context"

const dedupHandler = "intake_poller"

// FastDeduper is the redis half of the ledger (see pkg/util.Deduper).
type FastDeduper interface {
	AcquireOnce(ctx context.Context, handler, key string) bool
	Release(ctx context.Context, handler, key string)
}

// ProcessedStore is the durable half of the ledger, a persisted set of
// message ids that have completed fan-out.
type ProcessedStore interface {
	Exists(ctx context.Context, messageID string) (bool, error)
	Mark(ctx context.Context, messageID string) error
}

// Ledger decides whether an inbound message has already been turned into
// requests. Redis answers the fast path and keeps concurrent pollers off
// the same message; Postgres is the record that survives restarts and the
// redis TTL.
type Ledger struct {
	deduper FastDeduper
	store   ProcessedStore
}

func NewLedger(deduper FastDeduper, store ProcessedStore) *Ledger {
	return &Ledger{
		deduper: deduper,
		store:   store,
	}
}

// Acquire reports whether the message should be processed now. false with
// a nil error means it was already handled, either recently (redis) or
// ever (postgres).
func (l *Ledger) Acquire(ctx context.Context, messageID string) (bool, error) {
	if !l.deduper.AcquireOnce(ctx, dedupHandler, messageID) {
		return false, nil
	}
	seen, err := l.store.Exists(ctx, messageID)
	if err != nil {
		l.deduper.Release(ctx, dedupHandler, messageID)
		return false, err
	}
	if seen {
		return false, nil
	}
	return true, nil
}

// Commit records the message as processed for good.
func (l *Ledger) Commit(ctx context.Context, messageID string) error {
	return l.store.Mark(ctx, messageID)
}

// Rollback releases the fast-path lock so a failed or skipped message can
// be retried before the redis TTL expires.
func (l *Ledger) Rollback(ctx context.Context, messageID string) {
	l.deduper.Release(ctx, dedupHandler, messageID)
}
