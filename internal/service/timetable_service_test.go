package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type timetableRepoStub struct {
	entries map[string]*models.TimetableEntry
	nextID  int
}

func newTimetableRepoStub() *timetableRepoStub {
	return &timetableRepoStub{entries: make(map[string]*models.TimetableEntry)}
}

func (r *timetableRepoStub) Replace(ctx context.Context, departmentID string, semester int, entries []models.TimetableEntry) (int, error) {
	for id, entry := range r.entries {
		if entry.DepartmentID == departmentID && entry.Semester == semester {
			delete(r.entries, id)
		}
	}
	now := time.Now().UTC()
	for i := range entries {
		r.nextID++
		entries[i].ID = fmt.Sprintf("tt-%d", r.nextID)
		entries[i].CreatedAt = now
		copy := entries[i]
		r.entries[copy.ID] = &copy
	}
	return len(entries), nil
}

func (r *timetableRepoStub) ListForDepartmentSemester(ctx context.Context, departmentID string, semester int) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, entry := range r.entries {
		if entry.DepartmentID == departmentID && entry.Semester == semester {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *timetableRepoStub) ListByCreator(ctx context.Context, userID string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, entry := range r.entries {
		if entry.CreatedBy == userID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *timetableRepoStub) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	if entry, ok := r.entries[id]; ok {
		copy := *entry
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *timetableRepoStub) Delete(ctx context.Context, id string) error {
	delete(r.entries, id)
	return nil
}

func saveTimetableFixture() models.SaveTimetableRequest {
	return models.SaveTimetableRequest{
		DepartmentID: "dept-1",
		Semester:     3,
		Entries: []models.TimetableEntryInput{
			{Day: "monday", TimeSlot: "09:00-10:00"},
			{Day: "monday", TimeSlot: "10:00-11:00"},
			{Day: "tuesday", TimeSlot: "09:00-10:00"},
		},
	}
}

func TestTimetableServiceSaveReplacesSchedule(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := NewTimetableService(repo, nil, nil)

	count, err := svc.Save(context.Background(), "teacher-1", models.RoleTeacher, saveTimetableFixture())
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Saving again swaps the whole grid instead of appending to it.
	req := saveTimetableFixture()
	req.Entries = req.Entries[:1]
	count, err = svc.Save(context.Background(), "teacher-1", models.RoleTeacher, req)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Len(t, repo.entries, 1)
}

func TestTimetableServiceSaveForbiddenForStudents(t *testing.T) {
	svc := NewTimetableService(newTimetableRepoStub(), nil, nil)

	_, err := svc.Save(context.Background(), "student-1", models.RoleStudent, saveTimetableFixture())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSaveRejectsWeekendDay(t *testing.T) {
	svc := NewTimetableService(newTimetableRepoStub(), nil, nil)

	req := saveTimetableFixture()
	req.Entries[0].Day = "saturday"
	_, err := svc.Save(context.Background(), "teacher-1", models.RoleTeacher, req)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGridGroupsByDay(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := NewTimetableService(repo, nil, nil)
	_, err := svc.Save(context.Background(), "teacher-1", models.RoleTeacher, saveTimetableFixture())
	require.NoError(t, err)

	grid, err := svc.Grid(context.Background(), "dept-1", 3)
	require.NoError(t, err)
	require.Len(t, grid["monday"], 2)
	require.Len(t, grid["tuesday"], 1)

	_, err = svc.Grid(context.Background(), "", 3)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceDeleteRequiresCreatorOrAdmin(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := NewTimetableService(repo, nil, nil)
	_, err := svc.Save(context.Background(), "teacher-1", models.RoleTeacher, saveTimetableFixture())
	require.NoError(t, err)

	var entryID string
	for id := range repo.entries {
		entryID = id
		break
	}

	err = svc.Delete(context.Background(), entryID, "teacher-2", models.RoleTeacher)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), entryID, "teacher-1", models.RoleTeacher))
	require.NotContains(t, repo.entries, entryID)

	err = svc.Delete(context.Background(), "missing", "admin-1", models.RoleAdmin)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
