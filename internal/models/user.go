package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// CanVerify reports whether the role may decide pending resources.
func (r UserRole) CanVerify() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// CanUpload reports whether the role may contribute resources.
func (r UserRole) CanUpload() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

// User represents an application user stored in the users table.
// ReputationPoints and TotalUploads are the source-of-truth counters the
// leaderboard entry mirrors.
type User struct {
	ID               string     `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	FullName         string     `db:"full_name" json:"full_name"`
	Role             UserRole   `db:"role" json:"role"`
	DepartmentID     *string    `db:"department_id" json:"department_id,omitempty"`
	EnrollmentNo     *string    `db:"enrollment_no" json:"enrollment_no,omitempty"`
	Semester         *int       `db:"semester" json:"semester,omitempty"`
	Verified         bool       `db:"verified" json:"verified"`
	Active           bool       `db:"active" json:"active"`
	ReputationPoints int        `db:"reputation_points" json:"reputation_points"`
	TotalUploads     int        `db:"total_uploads" json:"total_uploads"`
	LastLogin        *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Verified  *bool
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
