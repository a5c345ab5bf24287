package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// LeaderboardRepository stores the materialized per-user aggregates.
type LeaderboardRepository struct {
	db *sqlx.DB
}

// NewLeaderboardRepository creates a new repository instance.
func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// Upsert replaces the whole row for a user. Recompute overwrites every
// aggregate column so a stale entry can never survive a rebuild.
func (r *LeaderboardRepository) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO leaderboard_entries
		(id, user_id, total_points, upload_count, verification_count, rating_count, avg_rating, download_count, badge, updated_at)
		VALUES (:id, :user_id, :total_points, :upload_count, :verification_count, :rating_count, :avg_rating, :download_count, :badge, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			upload_count = EXCLUDED.upload_count,
			verification_count = EXCLUDED.verification_count,
			rating_count = EXCLUDED.rating_count,
			avg_rating = EXCLUDED.avg_rating,
			download_count = EXCLUDED.download_count,
			badge = EXCLUDED.badge,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

// FindByUser returns the entry for a user, if one exists.
func (r *LeaderboardRepository) FindByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	const query = `SELECT id, user_id, total_points, upload_count, verification_count, rating_count,
		avg_rating, download_count, badge, updated_at
		FROM leaderboard_entries WHERE user_id = $1 LIMIT 1`
	var entry models.LeaderboardEntry
	if err := r.db.GetContext(ctx, &entry, query, userID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Rank returns the 1-based position for a points total: the number of
// entries strictly above it plus one, so ties share a rank.
func (r *LeaderboardRepository) Rank(ctx context.Context, totalPoints int) (int, error) {
	var above int
	const query = `SELECT COUNT(*) FROM leaderboard_entries WHERE total_points > $1`
	if err := r.db.GetContext(ctx, &above, query, totalPoints); err != nil {
		return 0, fmt.Errorf("leaderboard rank: %w", err)
	}
	return above + 1, nil
}

// List returns a leaderboard page with user and department names joined.
func (r *LeaderboardRepository) List(ctx context.Context, sort models.LeaderboardSort, page, size int) ([]models.LeaderboardEntry, int, error) {
	order := leaderboardSortClause(sort)
	page, size = normalizePage(page, size)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT le.id, le.user_id, le.total_points, le.upload_count, le.verification_count,
		le.rating_count, le.avg_rating, le.download_count, le.badge, le.updated_at,
		u.full_name AS user_name, d.name AS department_name
		FROM leaderboard_entries le
		JOIN users u ON u.id = le.user_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.active = true
		ORDER BY %s LIMIT %d OFFSET %d`, order, size, offset)
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, 0, fmt.Errorf("list leaderboard: %w", err)
	}

	var total int
	const countQuery = `SELECT COUNT(*) FROM leaderboard_entries le JOIN users u ON u.id = le.user_id WHERE u.active = true`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count leaderboard: %w", err)
	}

	return entries, total, nil
}

func leaderboardSortClause(sort models.LeaderboardSort) string {
	switch sort {
	case models.LeaderboardByUploads:
		return "le.upload_count DESC, le.total_points DESC"
	case models.LeaderboardByVerifications:
		return "le.verification_count DESC, le.total_points DESC"
	default:
		return "le.total_points DESC, le.updated_at ASC"
	}
}
