package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type ratingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) (bool, error)
	ListByResource(ctx context.Context, resourceID string) ([]models.Rating, error)
}

type ratingResourceRepository interface {
	FindPublic(ctx context.Context, id string) (*models.Resource, error)
	RecomputeRating(ctx context.Context, id string) (*models.RatingAggregate, error)
}

// RatingService handles rating upserts and keeps the resource aggregate in
// sync. First-time ratings earn points; re-ratings only change the stars.
type RatingService struct {
	ratings       ratingRepository
	resources     ratingResourceRepository
	users         verificationUserRepository
	contributions contributionWriter
	recompute     recomputeEnqueuer
	validator     *validator.Validate
	logger        *zap.Logger
	ratePoints    int
}

// NewRatingService constructs a RatingService instance.
func NewRatingService(
	ratings ratingRepository,
	resources ratingResourceRepository,
	users verificationUserRepository,
	contributions contributionWriter,
	recompute recomputeEnqueuer,
	validate *validator.Validate,
	logger *zap.Logger,
	ratePoints int,
) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RatingService{
		ratings:       ratings,
		resources:     resources,
		users:         users,
		contributions: contributions,
		recompute:     recompute,
		validator:     validate,
		logger:        logger,
		ratePoints:    ratePoints,
	}
}

// Rate records or replaces a user's rating of a publicly readable resource
// and returns the recomputed aggregate. Uploaders cannot rate their own
// resources. The insert-vs-update distinction comes from the database upsert
// so concurrent first ratings award points exactly once.
func (s *RatingService) Rate(ctx context.Context, resourceID, userID string, req models.RateResourceRequest) (*models.RatingAggregate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}

	resource, err := s.resources.FindPublic(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if resource.UploadedBy == userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you cannot rate your own resource")
	}

	inserted, err := s.ratings.Upsert(ctx, &models.Rating{
		ResourceID: resourceID,
		UserID:     userID,
		Rating:     req.Rating,
		Review:     req.Review,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save rating")
	}

	if inserted {
		if err := s.users.AddReputationPoints(ctx, userID, s.ratePoints); err != nil {
			s.logger.Warn("failed to award rating points", zap.String("user_id", userID), zap.Error(err))
		}
		if err := s.contributions.Append(ctx, &models.ContributionLog{
			UserID:       userID,
			ResourceID:   &resourceID,
			Action:       models.ContributionRate,
			PointsEarned: s.ratePoints,
		}); err != nil {
			s.logger.Warn("failed to append rating contribution", zap.Error(err))
		}
		if s.recompute != nil {
			s.recompute.EnqueueRecompute(userID)
		}
	}

	agg, err := s.resources.RecomputeRating(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute rating")
	}
	return agg, nil
}

// ListByResource returns the ratings of one public resource.
func (s *RatingService) ListByResource(ctx context.Context, resourceID string) ([]models.Rating, error) {
	if _, err := s.resources.FindPublic(ctx, resourceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	ratings, err := s.ratings.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ratings")
	}
	return ratings, nil
}
