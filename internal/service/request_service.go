package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"neighborly/internal/intake"
	"neighborly/internal/model"
	"neighborly/internal/repository"
	"neighborly/pkg/metrics"
)

var ErrNotGroupMember = errors.New("user is not a member of the group")

type RequestService struct {
	requests *repository.RequestRepository
	groups   *repository.GroupRepository
	users    *repository.UserRepository
	types    *repository.ServiceTypeRepository
	logger   *zap.Logger
}

func NewRequestService(
	requests *repository.RequestRepository,
	groups *repository.GroupRepository,
	users *repository.UserRepository,
	types *repository.ServiceTypeRepository,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		groups:   groups,
		users:    users,
		types:    types,
		logger:   logger,
	}
}

// Create posts a request into a group on behalf of a user. A supplied
// category goes through the ensure-exists upsert so free-text categories
// land in the catalog exactly once; an empty category is classified from
// the body text, same as inbound email.
func (s *RequestService) Create(ctx context.Context, userID, groupID int, body, serviceType string) (*model.Request, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotGroupMember
	}

	if strings.TrimSpace(serviceType) == "" {
		labels, err := s.types.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		serviceType = intake.Classify(body, labels)
	} else {
		serviceType, err = s.types.EnsureExists(ctx, serviceType)
		if err != nil {
			return nil, err
		}
	}

	req := &model.Request{
		GroupID:        groupID,
		UserID:         user.ID,
		SubmitterName:  user.FullName(),
		SubmitterEmail: user.Email,
		Body:           body,
		ServiceType:    serviceType,
	}
	if err := s.requests.CreateWithEvent(ctx, req, "api"); err != nil {
		return nil, err
	}

	metrics.IncrementRequestsCreated("api")
	s.logger.Info("Request created",
		zap.Int("request_id", req.ID),
		zap.Int("group_id", groupID),
		zap.String("service_type", serviceType),
	)
	return req, nil
}

// Get returns a single request, visible to its group's members only.
func (s *RequestService) Get(ctx context.Context, viewerID, requestID int) (*model.Request, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	member, err := s.groups.IsMember(ctx, req.GroupID, viewerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotGroupMember
	}
	return req, nil
}

// ListByGroup returns a group's requests for a member.
func (s *RequestService) ListByGroup(ctx context.Context, viewerID, groupID int) ([]model.Request, error) {
	member, err := s.groups.IsMember(ctx, groupID, viewerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotGroupMember
	}
	return s.requests.ListByGroup(ctx, groupID)
}
