package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// AchievementRepository persists achievement definitions and the per-user
// earned rows.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository creates a new repository instance.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// ListAll returns every achievement definition.
func (r *AchievementRepository) ListAll(ctx context.Context) ([]models.Achievement, error) {
	const query = `SELECT id, name, description, icon, points_required, uploads_required,
			verifications_required, created_at, updated_at
		FROM achievements ORDER BY created_at ASC`
	var achievements []models.Achievement
	if err := r.db.SelectContext(ctx, &achievements, query); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

// FindByID returns one achievement definition.
func (r *AchievementRepository) FindByID(ctx context.Context, id string) (*models.Achievement, error) {
	const query = `SELECT id, name, description, icon, points_required, uploads_required,
			verifications_required, created_at, updated_at
		FROM achievements WHERE id = $1 LIMIT 1`
	var achievement models.Achievement
	if err := r.db.GetContext(ctx, &achievement, query, id); err != nil {
		return nil, err
	}
	return &achievement, nil
}

// Create inserts a new achievement definition.
func (r *AchievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	achievement.CreatedAt = now
	achievement.UpdatedAt = now

	const query = `INSERT INTO achievements
		(id, name, description, icon, points_required, uploads_required, verifications_required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		achievement.ID, achievement.Name, achievement.Description, achievement.Icon,
		achievement.PointsRequired, achievement.UploadsRequired, achievement.VerificationsRequired, now); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// Update rewrites an achievement definition in place.
func (r *AchievementRepository) Update(ctx context.Context, achievement *models.Achievement) error {
	const query = `UPDATE achievements SET name = $2, description = $3, icon = $4,
			points_required = $5, uploads_required = $6, verifications_required = $7, updated_at = $8
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		achievement.ID, achievement.Name, achievement.Description, achievement.Icon,
		achievement.PointsRequired, achievement.UploadsRequired, achievement.VerificationsRequired, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update achievement: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update achievement rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListEarnedByUser returns the achievements a user has unlocked, most recent
// first.
func (r *AchievementRepository) ListEarnedByUser(ctx context.Context, userID string) ([]models.EarnedAchievement, error) {
	const query = `SELECT a.id, a.name, a.description, a.icon, a.points_required,
			a.uploads_required, a.verifications_required, a.created_at, a.updated_at, ua.earned_at
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.earned_at DESC`
	var earned []models.EarnedAchievement
	if err := r.db.SelectContext(ctx, &earned, query, userID); err != nil {
		return nil, fmt.Errorf("list earned achievements: %w", err)
	}
	return earned, nil
}

// Award records an achievement as earned. The unique (user, achievement)
// constraint makes a repeat award a no-op, so concurrent recomputes cannot
// double-insert.
func (r *AchievementRepository) Award(ctx context.Context, userID, achievementID string) error {
	const query = `INSERT INTO user_achievements (id, user_id, achievement_id, earned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, achievementID, time.Now().UTC()); err != nil {
		return fmt.Errorf("award achievement: %w", err)
	}
	return nil
}
