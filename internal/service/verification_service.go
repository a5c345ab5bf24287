package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type verificationResourceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	ListPending(ctx context.Context, resourceType models.ResourceType) ([]models.Resource, error)
	MarkVerified(ctx context.Context, id, verifierID string, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id, reason, verifierID string, at time.Time) (bool, error)
}

type verificationUserRepository interface {
	AddReputationPoints(ctx context.Context, userID string, points int) error
}

// VerificationService drives the pending → verified | rejected state
// machine. Decisions are applied through status-guarded updates so that two
// concurrent verifiers cannot both win.
type VerificationService struct {
	resources     verificationResourceRepository
	users         verificationUserRepository
	contributions contributionWriter
	recompute     recomputeEnqueuer
	validator     *validator.Validate
	logger        *zap.Logger
	verifyPoints  int
}

// NewVerificationService constructs a VerificationService instance.
func NewVerificationService(
	resources verificationResourceRepository,
	users verificationUserRepository,
	contributions contributionWriter,
	recompute recomputeEnqueuer,
	validate *validator.Validate,
	logger *zap.Logger,
	verifyPoints int,
) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &VerificationService{
		resources:     resources,
		users:         users,
		contributions: contributions,
		recompute:     recompute,
		validator:     validate,
		logger:        logger,
		verifyPoints:  verifyPoints,
	}
}

// ListPending returns the moderation queue for teachers and admins.
func (s *VerificationService) ListPending(ctx context.Context, role models.UserRole, resourceType models.ResourceType) ([]models.Resource, error) {
	if !role.CanVerify() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers and admins can view the verification queue")
	}
	resources, err := s.resources.ListPending(ctx, resourceType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending resources")
	}
	return resources, nil
}

// Verify applies an approve or reject decision to a pending resource. An
// approval pays the verification award to the uploader; this is in addition
// to the award already paid at upload time. A rejection requires a reason
// and awards nothing.
func (s *VerificationService) Verify(ctx context.Context, resourceID, verifierID string, role models.UserRole, req models.VerifyResourceRequest) (*models.ResourceSummary, error) {
	if !role.CanVerify() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers and admins can verify resources")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	reason := strings.TrimSpace(req.Reason)
	if req.Action == models.ActionReject && reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a rejection reason is required")
	}

	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if !resource.Status.CanTransition() {
		return nil, appErrors.Clone(appErrors.ErrAlreadyProcessed, "resource has already been "+string(resource.Status))
	}

	now := time.Now().UTC()
	var applied bool
	var newStatus models.ResourceStatus

	switch req.Action {
	case models.ActionApprove:
		newStatus = models.StatusVerified
		applied, err = s.resources.MarkVerified(ctx, resourceID, verifierID, now)
	case models.ActionReject:
		newStatus = models.StatusRejected
		applied, err = s.resources.MarkRejected(ctx, resourceID, reason, verifierID, now)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown verification action")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply decision")
	}
	if !applied {
		// Lost the race to another verifier between the read and the update.
		return nil, appErrors.Clone(appErrors.ErrAlreadyProcessed, "resource was decided by another verifier")
	}

	if req.Action == models.ActionApprove {
		if err := s.users.AddReputationPoints(ctx, resource.UploadedBy, s.verifyPoints); err != nil {
			s.logger.Warn("failed to award verification points",
				zap.String("user_id", resource.UploadedBy), zap.Error(err))
		}
		if err := s.contributions.Append(ctx, &models.ContributionLog{
			UserID:       resource.UploadedBy,
			ResourceID:   &resource.ID,
			Action:       models.ContributionVerify,
			PointsEarned: s.verifyPoints,
		}); err != nil {
			s.logger.Warn("failed to append verification contribution", zap.Error(err))
		}
		if s.recompute != nil {
			s.recompute.EnqueueRecompute(resource.UploadedBy)
		}
	}

	s.logger.Info("resource decided",
		zap.String("resource_id", resource.ID),
		zap.String("verifier_id", verifierID),
		zap.String("decision", string(newStatus)))

	return &models.ResourceSummary{ID: resource.ID, Title: resource.Title, Status: newStatus}, nil
}
