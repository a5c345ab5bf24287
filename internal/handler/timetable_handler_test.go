package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/middleware"
	"github.com/emeahub/resource-hub-api/internal/models"
)

type timetableServiceMock struct {
	saveCount    int
	saveErr      error
	gridResp     map[string][]models.TimetableEntry
	classesResp  []models.TimetableEntry
	deleteErr    error
	lastSaveReq  models.SaveTimetableRequest
	lastDeptID   string
	lastSemester int
}

func (m *timetableServiceMock) Save(ctx context.Context, userID string, role models.UserRole, req models.SaveTimetableRequest) (int, error) {
	m.lastSaveReq = req
	return m.saveCount, m.saveErr
}

func (m *timetableServiceMock) Grid(ctx context.Context, departmentID string, semester int) (map[string][]models.TimetableEntry, error) {
	m.lastDeptID = departmentID
	m.lastSemester = semester
	return m.gridResp, nil
}

func (m *timetableServiceMock) MyClasses(ctx context.Context, userID string) ([]models.TimetableEntry, error) {
	return m.classesResp, nil
}

func (m *timetableServiceMock) Delete(ctx context.Context, id, userID string, role models.UserRole) error {
	return m.deleteErr
}

func TestTimetableHandlerShowParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{
		gridResp: map[string][]models.TimetableEntry{
			"monday": {{ID: "tt-1", DayOfWeek: "monday", TimeSlot: "09:00-10:00"}},
		},
	}
	handler := NewTimetableHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timetable?department_id=dept-1&semester=3", nil)
	c.Request = req

	handler.Show(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dept-1", mockSvc.lastDeptID)
	assert.Equal(t, 3, mockSvc.lastSemester)
	assert.Contains(t, w.Body.String(), "09:00-10:00")
}

func TestTimetableHandlerSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{saveCount: 2}
	handler := NewTimetableHandler(mockSvc)

	payload, _ := json.Marshal(models.SaveTimetableRequest{
		DepartmentID: "dept-1",
		Semester:     3,
		Entries: []models.TimetableEntryInput{
			{Day: "monday", TimeSlot: "09:00-10:00"},
			{Day: "tuesday", TimeSlot: "10:00-11:00"},
		},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Save(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"entries_count":2`)
	assert.Equal(t, "dept-1", mockSvc.lastSaveReq.DepartmentID)
}

func TestTimetableHandlerSaveUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Save(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableHandlerSaveInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable", bytes.NewBufferString(`{"entries":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Save(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/timetable/tt-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}
