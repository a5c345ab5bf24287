package models

import "time"

// Achievement is an admin-defined award unlocked by reaching the configured
// requirements. A requirement left null does not gate the achievement; an
// achievement with no requirements at all is never awarded automatically.
type Achievement struct {
	ID                    string    `db:"id" json:"id"`
	Name                  string    `db:"name" json:"name"`
	Description           string    `db:"description" json:"description"`
	Icon                  string    `db:"icon" json:"icon"`
	PointsRequired        *int      `db:"points_required" json:"points_required,omitempty"`
	UploadsRequired       *int      `db:"uploads_required" json:"uploads_required,omitempty"`
	VerificationsRequired *int      `db:"verifications_required" json:"verifications_required,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// EarnedAchievement is an achievement together with when the user earned it.
// Earned rows are never removed, even if the definition is later tightened.
type EarnedAchievement struct {
	Achievement
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}

// AchievementRequest creates or updates an achievement definition.
type AchievementRequest struct {
	Name                  string `json:"name" validate:"required,max=100"`
	Description           string `json:"description" validate:"required,max=255"`
	Icon                  string `json:"icon" validate:"required,max=100"`
	PointsRequired        *int   `json:"points_required" validate:"omitempty,min=0"`
	UploadsRequired       *int   `json:"uploads_required" validate:"omitempty,min=0"`
	VerificationsRequired *int   `json:"verifications_required" validate:"omitempty,min=0"`
}
