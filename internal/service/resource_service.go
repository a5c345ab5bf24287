package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/storage"
)

type resourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	FindPublic(ctx context.Context, id string) (*models.Resource, error)
	ListPublic(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error)
	ListByUploader(ctx context.Context, userID string) ([]models.Resource, error)
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
	IncrementDownloadCount(ctx context.Context, id string) error
}

type resourceUserRepository interface {
	RecordUpload(ctx context.Context, userID string, points int) error
	AddReputationPoints(ctx context.Context, userID string, points int) error
}

type contributionWriter interface {
	Append(ctx context.Context, log *models.ContributionLog) error
}

type downloadWriter interface {
	Create(ctx context.Context, download *models.Download) error
}

type fileStore interface {
	SaveStream(originalName string, r io.Reader) (string, error)
	Delete(relPath string) error
}

type recomputeEnqueuer interface {
	EnqueueRecompute(userID string)
}

// ResourceConfig carries upload limits and point awards for the lifecycle.
type ResourceConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	UploadPoints     int
	DownloadPoints   int
	PublicBaseURL    string
}

// ResourceService implements the resource lifecycle: upload, listing,
// download and deletion. Verification lives in VerificationService.
type ResourceService struct {
	resources     resourceRepository
	users         resourceUserRepository
	contributions contributionWriter
	downloads     downloadWriter
	store         fileStore
	signer        *storage.SignedURLSigner
	recompute     recomputeEnqueuer
	validator     *validator.Validate
	logger        *zap.Logger
	config        ResourceConfig
}

// NewResourceService constructs a ResourceService instance.
func NewResourceService(
	resources resourceRepository,
	users resourceUserRepository,
	contributions contributionWriter,
	downloads downloadWriter,
	store fileStore,
	signer *storage.SignedURLSigner,
	recompute recomputeEnqueuer,
	validate *validator.Validate,
	logger *zap.Logger,
	config ResourceConfig,
) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ResourceService{
		resources:     resources,
		users:         users,
		contributions: contributions,
		downloads:     downloads,
		store:         store,
		signer:        signer,
		recompute:     recompute,
		validator:     validate,
		logger:        logger,
		config:        config,
	}
}

// Upload validates and stores a new resource. The record always starts
// pending and visible; only verification can move it out of pending. The
// uploader earns the upload award immediately, independent of the later
// verification award.
func (s *ResourceService) Upload(ctx context.Context, userID string, req models.UploadResourceRequest, file *multipart.FileHeader) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown resource type")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if file.Size > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the %d MB limit", s.config.MaxFileSizeBytes/(1024*1024)))
	}
	if !s.mimeAllowed(file) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file type is not allowed")
	}

	src, err := file.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file")
	}
	defer src.Close() //nolint:errcheck

	relPath, err := s.store.SaveStream(file.Filename, src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded file")
	}

	resource := &models.Resource{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		FileURL:      relPath,
		FileName:     file.Filename,
		FileSizeKB:   (file.Size + 1023) / 1024,
		DepartmentID: req.DepartmentID,
		SubjectID:    req.SubjectID,
		ModuleID:     req.ModuleID,
		Semester:     req.Semester,
		Status:       models.StatusPending,
		Visibility:   models.VisibilityVisible,
		Version:      1,
		IsLatest:     true,
		UploadedBy:   userID,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		if cleanupErr := s.store.Delete(relPath); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned upload file", zap.String("path", relPath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}

	if err := s.users.RecordUpload(ctx, userID, s.config.UploadPoints); err != nil {
		s.logger.Warn("failed to record upload counters", zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.contributions.Append(ctx, &models.ContributionLog{
		UserID:       userID,
		ResourceID:   &resource.ID,
		Action:       models.ContributionUpload,
		PointsEarned: s.config.UploadPoints,
	}); err != nil {
		s.logger.Warn("failed to append upload contribution", zap.String("user_id", userID), zap.Error(err))
	}
	if s.recompute != nil {
		s.recompute.EnqueueRecompute(userID)
	}

	return resource, nil
}

// ListPublic returns verified and visible resources for browsing.
func (s *ResourceService) ListPublic(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error) {
	resources, total, err := s.resources.ListPublic(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 15
	}
	return resources, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetPublic returns one publicly readable resource and bumps its view
// counter. Resources outside the public policy read as not found.
func (s *ResourceService) GetPublic(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.resources.FindPublic(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if err := s.resources.IncrementViewCount(ctx, id); err != nil {
		s.logger.Warn("failed to increment view count", zap.String("resource_id", id), zap.Error(err))
	}
	return resource, nil
}

// ListMine returns the caller's own uploads in every state, including
// rejection reasons.
func (s *ResourceService) ListMine(ctx context.Context, userID string) ([]models.Resource, error) {
	resources, err := s.resources.ListByUploader(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list uploads")
	}
	return resources, nil
}

// Delete removes a resource. Owners may delete their own uploads; admins may
// delete anything. Earned points are not clawed back.
func (s *ResourceService) Delete(ctx context.Context, id, userID string, role models.UserRole) error {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	if resource.UploadedBy != userID && role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the uploader or an admin can delete a resource")
	}

	if err := s.resources.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	if err := s.store.Delete(resource.FileURL); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("path", resource.FileURL), zap.Error(err))
	}
	return nil
}

// Download authorizes a download under the public policy, records it, and
// returns a signed short-lived link. The uploader earns the download award
// unless they are downloading their own file.
func (s *ResourceService) Download(ctx context.Context, id string, userID *string, ip, userAgent string) (*models.DownloadLink, error) {
	resource, err := s.resources.FindPublic(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	if err := s.downloads.Create(ctx, &models.Download{
		ResourceID: resource.ID,
		UserID:     userID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record download", zap.String("resource_id", id), zap.Error(err))
	}
	if err := s.resources.IncrementDownloadCount(ctx, id); err != nil {
		s.logger.Warn("failed to increment download count", zap.String("resource_id", id), zap.Error(err))
	}

	selfDownload := userID != nil && *userID == resource.UploadedBy
	if !selfDownload {
		if err := s.users.AddReputationPoints(ctx, resource.UploadedBy, s.config.DownloadPoints); err != nil {
			s.logger.Warn("failed to award download points", zap.String("user_id", resource.UploadedBy), zap.Error(err))
		}
		if err := s.contributions.Append(ctx, &models.ContributionLog{
			UserID:       resource.UploadedBy,
			ResourceID:   &resource.ID,
			Action:       models.ContributionDownload,
			PointsEarned: s.config.DownloadPoints,
		}); err != nil {
			s.logger.Warn("failed to append download contribution", zap.Error(err))
		}
		if s.recompute != nil {
			s.recompute.EnqueueRecompute(resource.UploadedBy)
		}
	}

	token, expiresAt, err := s.signer.Generate(resource.ID, resource.FileURL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	return &models.DownloadLink{
		URL:       strings.TrimRight(s.config.PublicBaseURL, "/") + "/" + token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// Report flags a resource for moderator attention. Reports earn no points
// but are kept in the contribution trail.
func (s *ResourceService) Report(ctx context.Context, id, userID string, req models.ReportResourceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	resource, err := s.resources.FindPublic(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	if err := s.contributions.Append(ctx, &models.ContributionLog{
		UserID:       userID,
		ResourceID:   &resource.ID,
		Action:       models.ContributionReport,
		PointsEarned: 0,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record report")
	}
	s.logger.Info("resource reported",
		zap.String("resource_id", resource.ID),
		zap.String("reported_by", userID),
		zap.String("reason", req.Reason))
	return nil
}

// ResolveSignedToken validates a download token and returns the file path.
func (s *ResourceService) ResolveSignedToken(token string) (resourceID, relPath string, err error) {
	resourceID, relPath, _, err = s.signer.Parse(token)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}
	return resourceID, relPath, nil
}

func (s *ResourceService) mimeAllowed(file *multipart.FileHeader) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return true
	}
	contentType := file.Header.Get("Content-Type")
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	// Browsers sometimes omit the part content type; fall back to extension
	// for the common document formats.
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".docx", ".pptx", ".zip":
		return contentType == ""
	}
	return false
}
