package models

import "time"

// AssistantConversation is a best-effort log of one assistant exchange.
// Persisting it must never fail the surrounding request.
type AssistantConversation struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Prompt    string    `db:"prompt" json:"prompt"`
	Reply     string    `db:"reply" json:"reply"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
