package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeduper struct {
	held     map[string]bool
	released []string
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{held: map[string]bool{}}
}

func (f *fakeDeduper) AcquireOnce(ctx context.Context, handler, key string) bool {
	if f.held[key] {
		return false
	}
	f.held[key] = true
	return true
}

func (f *fakeDeduper) Release(ctx context.Context, handler, key string) {
	delete(f.held, key)
	f.released = append(f.released, key)
}

type fakeProcessedStore struct {
	seen      map[string]bool
	existsErr error
	markErr   error
}

func newFakeProcessedStore() *fakeProcessedStore {
	return &fakeProcessedStore{seen: map[string]bool{}}
}

func (f *fakeProcessedStore) Exists(ctx context.Context, messageID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.seen[messageID], nil
}

func (f *fakeProcessedStore) Mark(ctx context.Context, messageID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.seen[messageID] = true
	return nil
}

func TestLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("first acquire wins, repeat is a duplicate", func(t *testing.T) {
		ledger := NewLedger(newFakeDeduper(), newFakeProcessedStore())

		ok, err := ledger.Acquire(ctx, "m1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = ledger.Acquire(ctx, "m1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("durable record blocks acquire after redis forgets", func(t *testing.T) {
		deduper := newFakeDeduper()
		store := newFakeProcessedStore()
		ledger := NewLedger(deduper, store)

		ok, err := ledger.Acquire(ctx, "m1")
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, ledger.Commit(ctx, "m1"))

		// 模拟 redis TTL 过期
		delete(deduper.held, "m1")

		ok, err = ledger.Acquire(ctx, "m1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rollback allows a retry", func(t *testing.T) {
		ledger := NewLedger(newFakeDeduper(), newFakeProcessedStore())

		ok, _ := ledger.Acquire(ctx, "m1")
		require.True(t, ok)
		ledger.Rollback(ctx, "m1")

		ok, err := ledger.Acquire(ctx, "m1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("store failure releases the fast-path lock", func(t *testing.T) {
		deduper := newFakeDeduper()
		store := newFakeProcessedStore()
		store.existsErr = errors.New("db down")
		ledger := NewLedger(deduper, store)

		ok, err := ledger.Acquire(ctx, "m1")
		assert.False(t, ok)
		assert.Error(t, err)
		assert.Contains(t, deduper.released, "m1")
	})
}
