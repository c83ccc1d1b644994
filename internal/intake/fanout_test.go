package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neighborly/internal/model"
)

type fakeGroups struct {
	ids []int
	err error
}

func (f *fakeGroups) ListGroupIDsByUser(ctx context.Context, userID int) ([]int, error) {
	return f.ids, f.err
}

type fakeRequests struct {
	created   []model.Request
	failAfter int // fail on the Nth write (1-based); 0 means never fail
}

func (f *fakeRequests) CreateWithEvent(ctx context.Context, req *model.Request, source string) error {
	if f.failAfter > 0 && len(f.created)+1 >= f.failAfter {
		return errors.New("insert failed")
	}
	req.ID = len(f.created) + 1
	f.created = append(f.created, *req)
	return nil
}

func TestFanoutWriter(t *testing.T) {
	user := &model.User{
		ID:        7,
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	}

	t.Run("one request per group membership", func(t *testing.T) {
		requests := &fakeRequests{}
		writer := NewFanoutWriter(&fakeGroups{ids: []int{11, 22}}, requests)

		created, err := writer.Fanout(context.Background(), user, "Need a plumber", "plumber")
		require.NoError(t, err)
		assert.Equal(t, 2, created)
		require.Len(t, requests.created, 2)

		assert.Equal(t, 11, requests.created[0].GroupID)
		assert.Equal(t, 22, requests.created[1].GroupID)
		for _, req := range requests.created {
			assert.Equal(t, 7, req.UserID)
			assert.Equal(t, "Jane Doe", req.SubmitterName)
			assert.Equal(t, "jane@example.com", req.SubmitterEmail)
			assert.Equal(t, "Need a plumber", req.Body)
			assert.Equal(t, "plumber", req.ServiceType)
		}
	})

	t.Run("no groups means no writes", func(t *testing.T) {
		requests := &fakeRequests{}
		writer := NewFanoutWriter(&fakeGroups{ids: []int{}}, requests)

		created, err := writer.Fanout(context.Background(), user, "text", "general")
		require.NoError(t, err)
		assert.Equal(t, 0, created)
		assert.Empty(t, requests.created)
	})

	t.Run("partial failure keeps confirmed count", func(t *testing.T) {
		requests := &fakeRequests{failAfter: 3}
		writer := NewFanoutWriter(&fakeGroups{ids: []int{1, 2, 3}}, requests)

		created, err := writer.Fanout(context.Background(), user, "text", "general")
		assert.Equal(t, 2, created)

		var partial *PartialFanoutError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, 2, partial.Created)
		// 已写入的请求保留，不回滚
		assert.Len(t, requests.created, 2)
	})

	t.Run("group lookup failure maps to store error", func(t *testing.T) {
		writer := NewFanoutWriter(&fakeGroups{err: errors.New("down")}, &fakeRequests{})

		created, err := writer.Fanout(context.Background(), user, "text", "general")
		assert.Equal(t, 0, created)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}
