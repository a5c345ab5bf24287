package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

const resourceColumns = `r.id, r.title, r.description, r.type, r.file_url, r.file_name, r.file_size_kb,
	r.department_id, r.subject_id, r.module_id, r.semester, r.status, r.visibility, r.hide_reason,
	r.rejection_reason, r.version, r.is_latest, r.uploaded_by, r.verified_by, r.verified_at,
	r.download_count, r.view_count, r.rating_avg, r.rating_count, r.created_at, r.updated_at`

const resourceJoins = ` LEFT JOIN subjects s ON s.id = r.subject_id
	LEFT JOIN departments d ON d.id = r.department_id
	LEFT JOIN modules m ON m.id = r.module_id
	LEFT JOIN users u ON u.id = r.uploaded_by`

const resourceJoinedColumns = resourceColumns + `,
	s.name AS subject_name, d.name AS department_name, m.name AS module_name,
	u.full_name AS uploader_name, u.email AS uploader_email`

// ResourceRepository handles persistence for uploaded resources.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new repository instance.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create persists a new resource record.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = now
	}
	resource.UpdatedAt = now

	const query = `INSERT INTO resources (id, title, description, type, file_url, file_name, file_size_kb,
		department_id, subject_id, module_id, semester, status, visibility, version, is_latest,
		uploaded_by, created_at, updated_at)
		VALUES (:id, :title, :description, :type, :file_url, :file_name, :file_size_kb,
		:department_id, :subject_id, :module_id, :semester, :status, :visibility, :version, :is_latest,
		:uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// FindByID returns a resource regardless of status or visibility.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources r WHERE r.id = $1 LIMIT 1", resourceColumns)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		return nil, err
	}
	return &resource, nil
}

// FindPublic returns a resource only if it passes the public visibility
// policy: verified status and visible visibility. A pending, rejected or
// hidden resource is indistinguishable from one that does not exist.
func (r *ResourceRepository) FindPublic(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources r%s
		WHERE r.id = $1 AND r.status = $2 AND r.visibility = $3 LIMIT 1`, resourceJoinedColumns, resourceJoins)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id, models.StatusVerified, models.VisibilityVisible); err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListPublic returns verified+visible resources matching the filter. The
// policy conditions are baked into the query and cannot be overridden by
// filter values.
func (r *ResourceRepository) ListPublic(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	base := fmt.Sprintf("FROM resources r%s WHERE r.status = $1 AND r.visibility = $2", resourceJoins)
	args := []interface{}{models.StatusVerified, models.VisibilityVisible}

	var conditions []string
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("r.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("r.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("r.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.title) LIKE $%d OR LOWER(r.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := publicSortClause(filter.Sort)
	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", resourceJoinedColumns, base, order, size, offset)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list public resources: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count public resources: %w", err)
	}

	return resources, total, nil
}

// ListByUploader returns all of one user's resources regardless of state.
func (r *ResourceRepository) ListByUploader(ctx context.Context, userID string) ([]models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources r%s
		WHERE r.uploaded_by = $1 ORDER BY r.created_at DESC`, resourceJoinedColumns, resourceJoins)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, userID); err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return resources, nil
}

// ListPending returns the moderation queue, oldest context preserved via
// created_at ordering, regardless of visibility.
func (r *ResourceRepository) ListPending(ctx context.Context, resourceType models.ResourceType) ([]models.Resource, error) {
	base := fmt.Sprintf("SELECT %s FROM resources r%s WHERE r.status = $1", resourceJoinedColumns, resourceJoins)
	args := []interface{}{models.StatusPending}
	if resourceType != "" {
		base += " AND r.type = $2"
		args = append(args, resourceType)
	}
	base += " ORDER BY r.created_at DESC"

	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, base, args...); err != nil {
		return nil, fmt.Errorf("list pending resources: %w", err)
	}
	return resources, nil
}

// ListAdmin returns resources matching any combination of filters.
func (r *ResourceRepository) ListAdmin(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	base := fmt.Sprintf("FROM resources r%s WHERE 1=1", resourceJoins)
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Visibility != "" {
		conditions = append(conditions, fmt.Sprintf("r.visibility = $%d", len(args)+1))
		args = append(args, filter.Visibility)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("r.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.title) LIKE $%d OR LOWER(r.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d", resourceJoinedColumns, base, size, offset)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list admin resources: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count admin resources: %w", err)
	}

	return resources, total, nil
}

// MarkVerified applies the approve transition. The WHERE clause guards on
// pending status so that two concurrent decisions cannot both succeed; a
// zero row count means the resource was absent or already decided.
func (r *ResourceRepository) MarkVerified(ctx context.Context, id, verifierID string, at time.Time) (bool, error) {
	const query = `UPDATE resources SET status = $2, verified_by = $3, verified_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, id, models.StatusVerified, verifierID, at, models.StatusPending)
	if err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark verified rows: %w", err)
	}
	return affected == 1, nil
}

// MarkRejected applies the reject transition with the same pending guard.
func (r *ResourceRepository) MarkRejected(ctx context.Context, id, reason, verifierID string, at time.Time) (bool, error) {
	const query = `UPDATE resources SET status = $2, rejection_reason = $3, verified_by = $4, verified_at = $5, updated_at = $5
		WHERE id = $1 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, id, models.StatusRejected, reason, verifierID, at, models.StatusPending)
	if err != nil {
		return false, fmt.Errorf("mark rejected: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark rejected rows: %w", err)
	}
	return affected == 1, nil
}

// SetVisibility updates the moderation axis. The hide reason is stored for
// hidden and cleared otherwise.
func (r *ResourceRepository) SetVisibility(ctx context.Context, id string, visibility models.ResourceVisibility, reason *string) error {
	const query = `UPDATE resources SET visibility = $2, hide_reason = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, visibility, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set visibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set visibility rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a resource. Ratings, downloads and contribution log rows
// referencing it cascade at the schema level.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

// IncrementViewCount bumps the view counter in the database so concurrent
// viewers never lose updates.
func (r *ResourceRepository) IncrementViewCount(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE resources SET view_count = view_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// IncrementDownloadCount bumps the download counter atomically.
func (r *ResourceRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE resources SET download_count = download_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	return nil
}

// RecomputeRating recalculates rating_avg and rating_count from the rating
// rows in one statement. This is the only writer of those two columns.
func (r *ResourceRepository) RecomputeRating(ctx context.Context, id string) (*models.RatingAggregate, error) {
	const query = `UPDATE resources SET
		rating_avg = COALESCE((SELECT AVG(rating) FROM ratings WHERE resource_id = $1), 0),
		rating_count = (SELECT COUNT(*) FROM ratings WHERE resource_id = $1),
		updated_at = $2
		WHERE id = $1
		RETURNING rating_avg, rating_count`
	var agg models.RatingAggregate
	if err := r.db.GetContext(ctx, &agg, query, id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("recompute rating: %w", err)
	}
	return &agg, nil
}

// CountVerifiedBy returns how many resources a user has approved.
func (r *ResourceRepository) CountVerifiedBy(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM resources WHERE verified_by = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, models.StatusVerified); err != nil {
		return 0, fmt.Errorf("count verified by: %w", err)
	}
	return count, nil
}

// AvgRatingByUploader returns the mean rating_avg across a user's uploads.
func (r *ResourceRepository) AvgRatingByUploader(ctx context.Context, userID string) (float64, error) {
	const query = `SELECT COALESCE(AVG(rating_avg), 0) FROM resources WHERE uploaded_by = $1`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, userID); err != nil {
		return 0, fmt.Errorf("avg rating by uploader: %w", err)
	}
	return avg, nil
}

// CountByStatus returns the number of resources in the given status.
func (r *ResourceRepository) CountByStatus(ctx context.Context, status models.ResourceStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM resources WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("count resources by status: %w", err)
	}
	return count, nil
}

// CountByVisibility returns the number of resources with the visibility.
func (r *ResourceRepository) CountByVisibility(ctx context.Context, visibility models.ResourceVisibility) (int, error) {
	const query = `SELECT COUNT(*) FROM resources WHERE visibility = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, visibility); err != nil {
		return 0, fmt.Errorf("count resources by visibility: %w", err)
	}
	return count, nil
}

// Count returns the total number of resources.
func (r *ResourceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM resources`); err != nil {
		return 0, fmt.Errorf("count resources: %w", err)
	}
	return count, nil
}

func publicSortClause(sort string) string {
	switch sort {
	case "popular":
		return "r.download_count DESC"
	case "rating":
		return "r.rating_avg DESC"
	case "oldest":
		return "r.created_at ASC"
	default:
		return "r.created_at DESC"
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 15
	}
	return page, size
}
