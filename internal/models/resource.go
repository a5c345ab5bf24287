package models

import "time"

// ResourceType enumerates the kinds of academic files users can share.
type ResourceType string

const (
	TypeNote      ResourceType = "note"
	TypePYQ       ResourceType = "pyq"
	TypeSyllabus  ResourceType = "syllabus"
	TypeTimetable ResourceType = "timetable"
	TypeOther     ResourceType = "other"
)

// Valid reports whether the type is one of the enumerated values.
func (t ResourceType) Valid() bool {
	switch t {
	case TypeNote, TypePYQ, TypeSyllabus, TypeTimetable, TypeOther:
		return true
	}
	return false
}

// ResourceStatus is the verification state of a resource. The machine is
// pending → verified | rejected; both decided states are terminal.
type ResourceStatus string

const (
	StatusPending  ResourceStatus = "pending"
	StatusVerified ResourceStatus = "verified"
	StatusRejected ResourceStatus = "rejected"
)

// CanTransition reports whether a decision may be applied from this state.
// Only pending resources accept a transition; everything else is terminal.
func (s ResourceStatus) CanTransition() bool {
	return s == StatusPending
}

// ResourceVisibility is the moderation axis independent of verification.
type ResourceVisibility string

const (
	VisibilityVisible  ResourceVisibility = "visible"
	VisibilityHidden   ResourceVisibility = "hidden"
	VisibilityFeatured ResourceVisibility = "featured"
)

// Valid reports whether the visibility is one of the enumerated values.
func (v ResourceVisibility) Valid() bool {
	switch v {
	case VisibilityVisible, VisibilityHidden, VisibilityFeatured:
		return true
	}
	return false
}

// VerifyAction is the decision applied to a pending resource.
type VerifyAction string

const (
	ActionApprove VerifyAction = "approve"
	ActionReject  VerifyAction = "reject"
)

// Resource represents an uploaded academic file record. RatingAvg and
// RatingCount are derived aggregates owned by the rating recompute path;
// the counters are bumped only through atomic SQL increments.
type Resource struct {
	ID              string             `db:"id" json:"id"`
	Title           string             `db:"title" json:"title"`
	Description     *string            `db:"description" json:"description,omitempty"`
	Type            ResourceType       `db:"type" json:"type"`
	FileURL         string             `db:"file_url" json:"file_url"`
	FileName        string             `db:"file_name" json:"file_name"`
	FileSizeKB      int64              `db:"file_size_kb" json:"file_size_kb"`
	DepartmentID    string             `db:"department_id" json:"department_id"`
	SubjectID       string             `db:"subject_id" json:"subject_id"`
	ModuleID        *string            `db:"module_id" json:"module_id,omitempty"`
	Semester        int                `db:"semester" json:"semester"`
	Status          ResourceStatus     `db:"status" json:"status"`
	Visibility      ResourceVisibility `db:"visibility" json:"visibility"`
	HideReason      *string            `db:"hide_reason" json:"hide_reason,omitempty"`
	RejectionReason *string            `db:"rejection_reason" json:"rejection_reason,omitempty"`
	Version         int                `db:"version" json:"version"`
	IsLatest        bool               `db:"is_latest" json:"is_latest"`
	UploadedBy      string             `db:"uploaded_by" json:"uploaded_by"`
	VerifiedBy      *string            `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt      *time.Time         `db:"verified_at" json:"verified_at,omitempty"`
	DownloadCount   int                `db:"download_count" json:"download_count"`
	ViewCount       int                `db:"view_count" json:"view_count"`
	RatingAvg       float64            `db:"rating_avg" json:"rating_avg"`
	RatingCount     int                `db:"rating_count" json:"rating_count"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`

	SubjectName    *string `db:"subject_name" json:"subject,omitempty"`
	DepartmentName *string `db:"department_name" json:"department,omitempty"`
	ModuleName     *string `db:"module_name" json:"module,omitempty"`
	UploaderName   *string `db:"uploader_name" json:"uploaded_by_name,omitempty"`
	UploaderEmail  *string `db:"uploader_email" json:"uploader_email,omitempty"`
}

// ResourceSummary is the minimal projection returned by lifecycle mutations.
type ResourceSummary struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Status ResourceStatus `json:"status"`
}

// ResourceFilter captures filtering criteria for resource listings. Public
// listings ignore Status/Visibility and apply the verified+visible policy at
// the repository level; the admin listing may set any combination.
type ResourceFilter struct {
	Type         ResourceType
	DepartmentID string
	SubjectID    string
	Semester     int
	Search       string
	Status       ResourceStatus
	Visibility   ResourceVisibility
	UploadedBy   string
	Sort         string
	Page         int
	PageSize     int
}

// RatingAggregate is the recomputed average and count for a resource.
type RatingAggregate struct {
	RatingAvg   float64 `db:"rating_avg" json:"rating_avg"`
	RatingCount int     `db:"rating_count" json:"rating_count"`
}
