package models

import "time"

// TimetableEntry is one cell of a department/semester class schedule. A
// schedule is replaced wholesale when a teacher saves it again, so entries
// never outlive the upload that created them.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Semester     int       `db:"semester" json:"semester"`
	DayOfWeek    string    `db:"day_of_week" json:"day_of_week"`
	TimeSlot     string    `db:"time_slot" json:"time_slot"`
	SubjectID    *string   `db:"subject_id" json:"subject_id,omitempty"`
	TeacherName  *string   `db:"teacher_name" json:"teacher_name,omitempty"`
	Room         *string   `db:"room" json:"room,omitempty"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
	SubjectCode *string `db:"subject_code" json:"subject_code,omitempty"`
}

// TimetableDays orders the schedule grid; weekends are not scheduled.
var TimetableDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// SaveTimetableRequest replaces the whole schedule of one department and
// semester with the supplied entries.
type SaveTimetableRequest struct {
	DepartmentID string                `json:"department_id" validate:"required"`
	Semester     int                   `json:"semester" validate:"required,min=1,max=8"`
	Entries      []TimetableEntryInput `json:"entries" validate:"required,min=1,dive"`
}

// TimetableEntryInput is one schedule cell in a save request.
type TimetableEntryInput struct {
	Day         string  `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday"`
	TimeSlot    string  `json:"time_slot" validate:"required,max=20"`
	SubjectID   *string `json:"subject_id"`
	TeacherName *string `json:"teacher_name" validate:"omitempty,max=100"`
	Room        *string `json:"room" validate:"omitempty,max=50"`
}
