package models

import "time"

// ContributionAction enumerates point-earning actions recorded in the log.
type ContributionAction string

const (
	ContributionUpload   ContributionAction = "upload"
	ContributionVerify   ContributionAction = "verify"
	ContributionRate     ContributionAction = "rate"
	ContributionDownload ContributionAction = "download"
	ContributionReport   ContributionAction = "report"
)

// ContributionLog is an append-only audit trail entry. Rows are never
// mutated or deleted by lifecycle operations.
type ContributionLog struct {
	ID           string             `db:"id" json:"id"`
	UserID       string             `db:"user_id" json:"user_id"`
	ResourceID   *string            `db:"resource_id" json:"resource_id,omitempty"`
	Action       ContributionAction `db:"action" json:"action"`
	PointsEarned int                `db:"points_earned" json:"points_earned"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`

	ResourceTitle *string `db:"resource_title" json:"resource,omitempty"`
}
