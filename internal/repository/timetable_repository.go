package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emeahub/resource-hub-api/internal/models"
)

// TimetableRepository persists department/semester class schedules.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new repository instance.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// dayOrder sorts schedule rows monday first; the column stores lowercase day
// names, which would otherwise sort alphabetically.
const dayOrder = `CASE day_of_week
	WHEN 'monday' THEN 1 WHEN 'tuesday' THEN 2 WHEN 'wednesday' THEN 3
	WHEN 'thursday' THEN 4 WHEN 'friday' THEN 5 ELSE 6 END`

// Replace swaps the whole schedule of a department/semester for the given
// entries in one transaction, so readers never see a half-written grid.
func (r *TimetableRepository) Replace(ctx context.Context, departmentID string, semester int, entries []models.TimetableEntry) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin timetable replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM timetable_entries WHERE department_id = $1 AND semester = $2`,
		departmentID, semester); err != nil {
		return 0, fmt.Errorf("clear timetable: %w", err)
	}

	const insert = `INSERT INTO timetable_entries
		(id, department_id, semester, day_of_week, time_slot, subject_id, teacher_name, room, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	now := time.Now().UTC()
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.CreatedAt = now
		entry.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, insert,
			entry.ID, departmentID, semester, entry.DayOfWeek, entry.TimeSlot,
			entry.SubjectID, entry.TeacherName, entry.Room, entry.CreatedBy, now); err != nil {
			return 0, fmt.Errorf("insert timetable entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit timetable replace: %w", err)
	}
	return len(entries), nil
}

// ListForDepartmentSemester returns the schedule grid with subject names
// joined in, ordered by day then time slot.
func (r *TimetableRepository) ListForDepartmentSemester(ctx context.Context, departmentID string, semester int) ([]models.TimetableEntry, error) {
	query := `SELECT t.id, t.department_id, t.semester, t.day_of_week, t.time_slot,
			t.subject_id, t.teacher_name, t.room, t.created_by, t.created_at, t.updated_at,
			s.name AS subject_name, s.code AS subject_code
		FROM timetable_entries t
		LEFT JOIN subjects s ON s.id = t.subject_id
		WHERE t.department_id = $1 AND t.semester = $2
		ORDER BY ` + dayOrder + `, t.time_slot ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, departmentID, semester); err != nil {
		return nil, fmt.Errorf("list timetable: %w", err)
	}
	return entries, nil
}

// ListByCreator returns every schedule entry a teacher has saved.
func (r *TimetableRepository) ListByCreator(ctx context.Context, userID string) ([]models.TimetableEntry, error) {
	query := `SELECT t.id, t.department_id, t.semester, t.day_of_week, t.time_slot,
			t.subject_id, t.teacher_name, t.room, t.created_by, t.created_at, t.updated_at,
			s.name AS subject_name, s.code AS subject_code
		FROM timetable_entries t
		LEFT JOIN subjects s ON s.id = t.subject_id
		WHERE t.created_by = $1
		ORDER BY t.semester ASC, ` + dayOrder + `, t.time_slot ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list timetable by creator: %w", err)
	}
	return entries, nil
}

// FindByID returns one schedule entry.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	const query = `SELECT id, department_id, semester, day_of_week, time_slot,
			subject_id, teacher_name, room, created_by, created_at, updated_at
		FROM timetable_entries WHERE id = $1 LIMIT 1`
	var entry models.TimetableEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes one schedule entry.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable entry: %w", err)
	}
	return nil
}
