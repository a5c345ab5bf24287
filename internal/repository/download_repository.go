package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// DownloadRepository records resource downloads for analytics and stats.
type DownloadRepository struct {
	db *sqlx.DB
}

// NewDownloadRepository creates a new repository instance.
func NewDownloadRepository(db *sqlx.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create persists one download event.
func (r *DownloadRepository) Create(ctx context.Context, download *models.Download) error {
	if download.ID == "" {
		download.ID = uuid.NewString()
	}
	if download.CreatedAt.IsZero() {
		download.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO downloads (id, resource_id, user_id, ip_address, user_agent, created_at)
		VALUES (:id, :resource_id, :user_id, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, download); err != nil {
		return fmt.Errorf("create download: %w", err)
	}
	return nil
}

// CountByUser returns how many downloads a user has performed.
func (r *DownloadRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM downloads WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("count downloads by user: %w", err)
	}
	return count, nil
}

// CountSince returns the number of downloads recorded after the cutoff.
func (r *DownloadRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM downloads WHERE created_at >= $1`, since); err != nil {
		return 0, fmt.Errorf("count downloads since: %w", err)
	}
	return count, nil
}
