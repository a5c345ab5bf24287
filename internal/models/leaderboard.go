package models

import "time"

// LeaderboardEntry is a materialized per-user aggregate. It is a cache of
// the user counters and relation counts, rebuilt wholesale on recompute;
// the badge is a pure function of TotalPoints.
type LeaderboardEntry struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	TotalPoints       int       `db:"total_points" json:"total_points"`
	UploadCount       int       `db:"upload_count" json:"upload_count"`
	VerificationCount int       `db:"verification_count" json:"verification_count"`
	RatingCount       int       `db:"rating_count" json:"rating_count"`
	AvgRating         float64   `db:"avg_rating" json:"avg_rating"`
	DownloadCount     int       `db:"download_count" json:"download_count"`
	Badge             *string   `db:"badge" json:"badge,omitempty"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`

	UserName       *string `db:"user_name" json:"name,omitempty"`
	DepartmentName *string `db:"department_name" json:"department,omitempty"`
}

// LeaderboardSort selects the ordering for public leaderboard pages.
type LeaderboardSort string

const (
	LeaderboardByPoints        LeaderboardSort = "points"
	LeaderboardByUploads       LeaderboardSort = "uploads"
	LeaderboardByVerifications LeaderboardSort = "verifications"
)

// RankedEntry is a leaderboard entry with its page-relative rank applied.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}

// BadgeProgress describes the next badge tier and the points missing to
// reach it.
type BadgeProgress struct {
	Name         string `json:"name"`
	PointsNeeded int    `json:"points_needed"`
}
