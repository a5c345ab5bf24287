package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type timetableRepository interface {
	Replace(ctx context.Context, departmentID string, semester int, entries []models.TimetableEntry) (int, error)
	ListForDepartmentSemester(ctx context.Context, departmentID string, semester int) ([]models.TimetableEntry, error)
	ListByCreator(ctx context.Context, userID string) ([]models.TimetableEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntry, error)
	Delete(ctx context.Context, id string) error
}

// TimetableService manages the class schedule grids. Saving replaces the
// whole department/semester schedule, which keeps re-uploads idempotent and
// spares teachers per-cell edits.
type TimetableService struct {
	repo      timetableRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService instance.
func NewTimetableService(repo timetableRepository, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger}
}

// Save replaces the schedule of one department/semester and returns how many
// entries were written. Teachers and admins only.
func (s *TimetableService) Save(ctx context.Context, userID string, role models.UserRole, req models.SaveTimetableRequest) (int, error) {
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "only teachers can manage timetables")
	}
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	entries := make([]models.TimetableEntry, len(req.Entries))
	for i, input := range req.Entries {
		entries[i] = models.TimetableEntry{
			DepartmentID: req.DepartmentID,
			Semester:     req.Semester,
			DayOfWeek:    input.Day,
			TimeSlot:     input.TimeSlot,
			SubjectID:    input.SubjectID,
			TeacherName:  input.TeacherName,
			Room:         input.Room,
			CreatedBy:    userID,
		}
	}

	count, err := s.repo.Replace(ctx, req.DepartmentID, req.Semester, entries)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable")
	}
	s.logger.Info("timetable replaced",
		zap.String("department_id", req.DepartmentID),
		zap.Int("semester", req.Semester),
		zap.Int("entries", count))
	return count, nil
}

// Grid returns the public schedule of a department/semester grouped by day.
// Days with no classes are omitted.
func (s *TimetableService) Grid(ctx context.Context, departmentID string, semester int) (map[string][]models.TimetableEntry, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department_id is required")
	}
	if semester < 1 || semester > 8 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be between 1 and 8")
	}

	entries, err := s.repo.ListForDepartmentSemester(ctx, departmentID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	grid := make(map[string][]models.TimetableEntry)
	for _, entry := range entries {
		grid[entry.DayOfWeek] = append(grid[entry.DayOfWeek], entry)
	}
	return grid, nil
}

// MyClasses returns every schedule entry the caller has saved.
func (s *TimetableService) MyClasses(ctx context.Context, userID string) ([]models.TimetableEntry, error) {
	entries, err := s.repo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	return entries, nil
}

// Delete removes one schedule entry. The creator or an admin may delete.
func (s *TimetableService) Delete(ctx context.Context, id, userID string, role models.UserRole) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}
	if entry.CreatedBy != userID && role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the creator or an admin can delete this entry")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable entry")
	}
	return nil
}
