package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// AssistantRepository logs assistant exchanges. Writes are best effort; the
// caller logs and swallows failures.
type AssistantRepository struct {
	db *sqlx.DB
}

// NewAssistantRepository creates a new repository instance.
func NewAssistantRepository(db *sqlx.DB) *AssistantRepository {
	return &AssistantRepository{db: db}
}

// Create stores one conversation exchange.
func (r *AssistantRepository) Create(ctx context.Context, conv *models.AssistantConversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assistant_conversations (id, user_id, prompt, reply, created_at)
		VALUES (:id, :user_id, :prompt, :reply, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, conv); err != nil {
		return fmt.Errorf("create assistant conversation: %w", err)
	}
	return nil
}

// RecentByUser returns a user's latest exchanges.
func (r *AssistantRepository) RecentByUser(ctx context.Context, userID string, limit int) ([]models.AssistantConversation, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT id, user_id, prompt, reply, created_at
		FROM assistant_conversations WHERE user_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var convs []models.AssistantConversation
	if err := r.db.SelectContext(ctx, &convs, query, userID); err != nil {
		return nil, fmt.Errorf("list assistant conversations: %w", err)
	}
	return convs, nil
}
