package intake

import (
	"context"
	"fmt"

	"neighborly/internal/model"
	"neighborly/pkg/metrics"
)

// GroupLister provides the set of groups a user belongs to.
type GroupLister interface {
	ListGroupIDsByUser(ctx context.Context, userID int) ([]int, error)
}

// RequestWriter persists one request together with its outbox event.
type RequestWriter interface {
	CreateWithEvent(ctx context.Context, req *model.Request, source string) error
}

// FanoutWriter turns one classified message into one request per group
// the sender belongs to.
type FanoutWriter struct {
	groups   GroupLister
	requests RequestWriter
}

func NewFanoutWriter(groups GroupLister, requests RequestWriter) *FanoutWriter {
	return &FanoutWriter{
		groups:   groups,
		requests: requests,
	}
}

// Fanout writes one request per group membership. Writes are independent,
// not a single transaction: a failure partway through returns the count of
// confirmed writes wrapped in a PartialFanoutError, and requests created
// before the failure stay in place.
func (w *FanoutWriter) Fanout(ctx context.Context, user *model.User, body, serviceType string) (int, error) {
	groupIDs, err := w.groups.ListGroupIDsByUser(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: list groups for user %d: %v", ErrStoreUnavailable, user.ID, err)
	}

	created := 0
	for _, groupID := range groupIDs {
		req := &model.Request{
			GroupID:        groupID,
			UserID:         user.ID,
			SubmitterName:  user.FullName(),
			SubmitterEmail: user.Email,
			Body:           body,
			ServiceType:    serviceType,
		}
		if err := w.requests.CreateWithEvent(ctx, req, "email"); err != nil {
			return created, &PartialFanoutError{Created: created, Err: err}
		}
		created++
		metrics.IncrementRequestsCreated("email")
	}
	return created, nil
}
