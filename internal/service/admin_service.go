package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/export"
)

type adminResourceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	ListAdmin(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error)
	SetVisibility(ctx context.Context, id string, visibility models.ResourceVisibility, reason *string) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.ResourceStatus) (int, error)
	CountByVisibility(ctx context.Context, visibility models.ResourceVisibility) (int, error)
}

type adminUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	SetVerified(ctx context.Context, userID string, verified bool) error
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type adminDownloadRepository interface {
	CountSince(ctx context.Context, since time.Time) (int, error)
}

type adminAuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	Recent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type adminAchievementRepository interface {
	FindByID(ctx context.Context, id string) (*models.Achievement, error)
	Create(ctx context.Context, achievement *models.Achievement) error
	Update(ctx context.Context, achievement *models.Achievement) error
}

// DashboardStats is the admin overview aggregate.
type DashboardStats struct {
	TotalUsers        int               `json:"total_users"`
	Students          int               `json:"students"`
	Teachers          int               `json:"teachers"`
	TotalResources    int               `json:"total_resources"`
	PendingResources  int               `json:"pending_resources"`
	VerifiedResources int               `json:"verified_resources"`
	RejectedResources int               `json:"rejected_resources"`
	HiddenResources   int               `json:"hidden_resources"`
	DownloadsLastWeek int               `json:"downloads_last_week"`
	RecentActivity    []models.AuditLog `json:"recent_activity"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// AdminService covers the moderation and reporting surface.
type AdminService struct {
	resources    adminResourceRepository
	users        adminUserRepository
	downloads    adminDownloadRepository
	audits       adminAuditRepository
	achievements adminAchievementRepository
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(
	resources adminResourceRepository,
	users adminUserRepository,
	downloads adminDownloadRepository,
	audits adminAuditRepository,
	achievements adminAchievementRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{
		resources:    resources,
		users:        users,
		downloads:    downloads,
		audits:       audits,
		achievements: achievements,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		validator:    validate,
		logger:       logger,
	}
}

// Dashboard assembles the admin overview.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: time.Now().UTC()}

	var err error
	if stats.Students, err = s.users.CountByRole(ctx, models.RoleStudent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if stats.Teachers, err = s.users.CountByRole(ctx, models.RoleTeacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count admins")
	}
	stats.TotalUsers = stats.Students + stats.Teachers + admins

	if stats.TotalResources, err = s.resources.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count resources")
	}
	if stats.PendingResources, err = s.resources.CountByStatus(ctx, models.StatusPending); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending resources")
	}
	if stats.VerifiedResources, err = s.resources.CountByStatus(ctx, models.StatusVerified); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count verified resources")
	}
	if stats.RejectedResources, err = s.resources.CountByStatus(ctx, models.StatusRejected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rejected resources")
	}
	if stats.HiddenResources, err = s.resources.CountByVisibility(ctx, models.VisibilityHidden); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count hidden resources")
	}
	if stats.DownloadsLastWeek, err = s.downloads.CountSince(ctx, time.Now().UTC().AddDate(0, 0, -7)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count downloads")
	}

	if stats.RecentActivity, err = s.audits.Recent(ctx, 20); err != nil {
		s.logger.Warn("failed to load recent audit activity", zap.Error(err))
		stats.RecentActivity = nil
	}
	return stats, nil
}

// ListResources returns resources across every state for moderation.
func (s *AdminService) ListResources(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error) {
	resources, total, err := s.resources.ListAdmin(ctx, filter)
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

// SetVisibility changes the moderation axis of a resource without touching
// its verification status.
func (s *AdminService) SetVisibility(ctx context.Context, resourceID, adminID string, req models.SetVisibilityRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid visibility payload")
	}
	if !req.Visibility.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown visibility value")
	}

	var reason *string
	if req.Visibility == models.VisibilityHidden {
		reason = req.Reason
	}
	if err := s.resources.SetVisibility(ctx, resourceID, req.Visibility, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update visibility")
	}

	if err := s.audits.Create(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     models.AuditActionVisibility,
		Resource:   "resource",
		ResourceID: &resourceID,
		NewValues:  []byte(fmt.Sprintf(`{"visibility":%q}`, req.Visibility)),
	}); err != nil {
		s.logger.Warn("failed to record visibility audit log", zap.Error(err))
	}

	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload resource")
	}
	return resource, nil
}

// ListTeachers returns teacher accounts, optionally filtered to unapproved.
func (s *AdminService) ListTeachers(ctx context.Context, pendingOnly bool, page, size int) ([]models.User, *models.Pagination, error) {
	role := models.RoleTeacher
	filter := models.UserFilter{Role: &role, Page: page, PageSize: size}
	if pendingOnly {
		verified := false
		filter.Verified = &verified
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 15
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ApproveTeacher marks a pending teacher account as verified.
func (s *AdminService) ApproveTeacher(ctx context.Context, teacherID, adminID string) error {
	user, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if user.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrValidation, "user is not a teacher")
	}
	if user.Verified {
		return appErrors.Clone(appErrors.ErrConflict, "teacher is already approved")
	}

	if err := s.users.SetVerified(ctx, teacherID, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve teacher")
	}

	if err := s.audits.Create(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     models.AuditActionTeacherApprove,
		Resource:   "user",
		ResourceID: &teacherID,
		NewValues:  []byte(`{"verified":true}`),
	}); err != nil {
		s.logger.Warn("failed to record teacher approval audit log", zap.Error(err))
	}
	return nil
}

// CreateAchievement defines a new achievement.
func (s *AdminService) CreateAchievement(ctx context.Context, adminID string, req models.AchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload")
	}

	achievement := &models.Achievement{
		Name:                  req.Name,
		Description:           req.Description,
		Icon:                  req.Icon,
		PointsRequired:        req.PointsRequired,
		UploadsRequired:       req.UploadsRequired,
		VerificationsRequired: req.VerificationsRequired,
	}
	if err := s.achievements.Create(ctx, achievement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create achievement")
	}

	if err := s.audits.Create(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     models.AuditActionAchievement,
		Resource:   "achievement",
		ResourceID: &achievement.ID,
		NewValues:  []byte(fmt.Sprintf(`{"name":%q}`, achievement.Name)),
	}); err != nil {
		s.logger.Warn("failed to record achievement audit log", zap.Error(err))
	}
	return achievement, nil
}

// UpdateAchievement rewrites an achievement definition. Earned rows are
// untouched; users keep awards even when requirements change.
func (s *AdminService) UpdateAchievement(ctx context.Context, achievementID, adminID string, req models.AchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload")
	}

	achievement, err := s.achievements.FindByID(ctx, achievementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}

	achievement.Name = req.Name
	achievement.Description = req.Description
	achievement.Icon = req.Icon
	achievement.PointsRequired = req.PointsRequired
	achievement.UploadsRequired = req.UploadsRequired
	achievement.VerificationsRequired = req.VerificationsRequired
	if err := s.achievements.Update(ctx, achievement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update achievement")
	}

	if err := s.audits.Create(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     models.AuditActionAchievement,
		Resource:   "achievement",
		ResourceID: &achievementID,
		NewValues:  []byte(fmt.Sprintf(`{"name":%q}`, achievement.Name)),
	}); err != nil {
		s.logger.Warn("failed to record achievement audit log", zap.Error(err))
	}
	return achievement, nil
}

// ExportResourcesCSV renders the filtered resource listing as CSV.
func (s *AdminService) ExportResourcesCSV(ctx context.Context, filter models.ResourceFilter) ([]byte, error) {
	dataset, err := s.resourceDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// ExportResourcesPDF renders the filtered resource listing as a PDF report.
func (s *AdminService) ExportResourcesPDF(ctx context.Context, filter models.ResourceFilter) ([]byte, error) {
	dataset, err := s.resourceDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(*dataset, "Resource Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return data, nil
}

func (s *AdminService) resourceDataset(ctx context.Context, filter models.ResourceFilter) (*export.Dataset, error) {
	filter.Page = 1
	filter.PageSize = 100
	resources, _, err := s.resources.ListAdmin(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources for export")
	}

	dataset := &export.Dataset{
		Headers: []string{"Title", "Type", "Status", "Visibility", "Uploader", "Downloads", "Rating", "Created"},
	}
	for _, r := range resources {
		uploader := ""
		if r.UploaderName != nil {
			uploader = *r.UploaderName
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Title":      r.Title,
			"Type":       string(r.Type),
			"Status":     string(r.Status),
			"Visibility": string(r.Visibility),
			"Uploader":   uploader,
			"Downloads":  strconv.Itoa(r.DownloadCount),
			"Rating":     fmt.Sprintf("%.1f (%d)", r.RatingAvg, r.RatingCount),
			"Created":    r.CreatedAt.Format("2006-01-02"),
		})
	}
	return dataset, nil
}
