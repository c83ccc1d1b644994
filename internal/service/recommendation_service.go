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
)

var ErrRequestNotFound = errors.New("request not found")

type RecommendationService struct {
	recs     *repository.RecommendationRepository
	requests *repository.RequestRepository
	groups   *repository.GroupRepository
	types    *repository.ServiceTypeRepository
	logger   *zap.Logger
}

func NewRecommendationService(
	recs *repository.RecommendationRepository,
	requests *repository.RequestRepository,
	groups *repository.GroupRepository,
	types *repository.ServiceTypeRepository,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		recs:     recs,
		requests: requests,
		groups:   groups,
		types:    types,
		logger:   logger,
	}
}

// Create posts a recommendation, either as a reply to a request or
// standalone in a group. Replies inherit the request's group and, when no
// category is given, its category.
func (s *RecommendationService) Create(ctx context.Context, userID int, requestID *int, groupID int, providerName, testimonial, serviceType string) (*model.Recommendation, error) {
	if requestID != nil {
		req, err := s.requests.FindByID(ctx, *requestID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrRequestNotFound
			}
			return nil, err
		}
		groupID = req.GroupID
		if strings.TrimSpace(serviceType) == "" {
			serviceType = req.ServiceType
		}
	}

	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotGroupMember
	}

	if strings.TrimSpace(serviceType) == "" {
		serviceType = intake.SentinelCategory
	}
	serviceType, err = s.types.EnsureExists(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	rec := &model.Recommendation{
		RequestID:    requestID,
		GroupID:      groupID,
		UserID:       userID,
		ProviderName: providerName,
		Testimonial:  testimonial,
		ServiceType:  serviceType,
	}
	if err := s.recs.CreateWithEvent(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Recommendation created",
		zap.Int("recommendation_id", rec.ID),
		zap.Int("group_id", groupID),
		zap.String("service_type", serviceType),
	)
	return rec, nil
}

// ListByRequest returns the recommendations replying to a request.
func (s *RecommendationService) ListByRequest(ctx context.Context, requestID int) ([]model.RecommendationWithCounts, error) {
	return s.recs.ListByRequest(ctx, requestID)
}

// Feed returns recent recommendations from users the viewer follows.
func (s *RecommendationService) Feed(ctx context.Context, viewerID, limit int) ([]model.RecommendationWithCounts, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.recs.ListFeed(ctx, viewerID, limit)
}

// Thank records a thank-you; repeats are no-ops.
func (s *RecommendationService) Thank(ctx context.Context, recommendationID, userID int) error {
	return s.recs.Thank(ctx, recommendationID, userID)
}

// Save bookmarks a recommendation; repeats are no-ops.
func (s *RecommendationService) Save(ctx context.Context, recommendationID, userID int) error {
	return s.recs.Save(ctx, recommendationID, userID)
}
