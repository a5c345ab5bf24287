package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// ContributionRepository appends to the point-earning audit trail. The log
// is append-only; nothing in the application updates or deletes rows.
type ContributionRepository struct {
	db *sqlx.DB
}

// NewContributionRepository creates a new repository instance.
func NewContributionRepository(db *sqlx.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// Append records one point-earning action.
func (r *ContributionRepository) Append(ctx context.Context, log *models.ContributionLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO contribution_logs (id, user_id, resource_id, action, points_earned, created_at)
		VALUES (:id, :user_id, :resource_id, :action, :points_earned, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("append contribution log: %w", err)
	}
	return nil
}

// RecentByUser returns a user's latest contributions with resource titles.
func (r *ContributionRepository) RecentByUser(ctx context.Context, userID string, limit int) ([]models.ContributionLog, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT cl.id, cl.user_id, cl.resource_id, cl.action, cl.points_earned, cl.created_at,
		r.title AS resource_title
		FROM contribution_logs cl
		LEFT JOIN resources r ON r.id = cl.resource_id
		WHERE cl.user_id = $1
		ORDER BY cl.created_at DESC LIMIT %d`, limit)
	var logs []models.ContributionLog
	if err := r.db.SelectContext(ctx, &logs, query, userID); err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	return logs, nil
}

// SumPointsByUser totals the points a user has earned across the log.
func (r *ContributionRepository) SumPointsByUser(ctx context.Context, userID string) (int, error) {
	var total int
	const query = `SELECT COALESCE(SUM(points_earned), 0) FROM contribution_logs WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("sum contribution points: %w", err)
	}
	return total, nil
}
