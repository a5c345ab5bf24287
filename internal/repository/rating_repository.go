package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// RatingRepository handles persistence for resource ratings.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository creates a new repository instance.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert writes a rating and reports whether a new row was inserted. The
// unique (resource_id, user_id) constraint makes a re-rating an update in
// place; the xmax check distinguishes insert from update so that points are
// awarded only for first-time ratings even under concurrent requests.
func (r *RatingRepository) Upsert(ctx context.Context, rating *models.Rating) (bool, error) {
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	const query = `INSERT INTO ratings (id, resource_id, user_id, rating, review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (resource_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, review = EXCLUDED.review, updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted`
	var inserted bool
	if err := r.db.GetContext(ctx, &inserted, query,
		rating.ID, rating.ResourceID, rating.UserID, rating.Rating, rating.Review, now); err != nil {
		return false, fmt.Errorf("upsert rating: %w", err)
	}
	return inserted, nil
}

// FindByResourceAndUser returns the user's rating for a resource, if any.
func (r *RatingRepository) FindByResourceAndUser(ctx context.Context, resourceID, userID string) (*models.Rating, error) {
	const query = `SELECT id, resource_id, user_id, rating, review, created_at, updated_at
		FROM ratings WHERE resource_id = $1 AND user_id = $2 LIMIT 1`
	var rating models.Rating
	if err := r.db.GetContext(ctx, &rating, query, resourceID, userID); err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListByResource returns all ratings for a resource, newest first.
func (r *RatingRepository) ListByResource(ctx context.Context, resourceID string) ([]models.Rating, error) {
	const query = `SELECT id, resource_id, user_id, rating, review, created_at, updated_at
		FROM ratings WHERE resource_id = $1 ORDER BY created_at DESC`
	var ratings []models.Rating
	if err := r.db.SelectContext(ctx, &ratings, query, resourceID); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// CountByUser returns how many resources a user has rated.
func (r *RatingRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ratings WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("count ratings by user: %w", err)
	}
	return count, nil
}
