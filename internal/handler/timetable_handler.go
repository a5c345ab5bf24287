package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type timetableService interface {
	Save(ctx context.Context, userID string, role models.UserRole, req models.SaveTimetableRequest) (int, error)
	Grid(ctx context.Context, departmentID string, semester int) (map[string][]models.TimetableEntry, error)
	MyClasses(ctx context.Context, userID string) ([]models.TimetableEntry, error)
	Delete(ctx context.Context, id, userID string, role models.UserRole) error
}

// TimetableHandler exposes the class schedule endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Show godoc
// @Summary Get a department/semester class schedule grouped by day
// @Tags Timetable
// @Produce json
// @Param department_id query string true "Department"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Show(c *gin.Context) {
	semester, _ := strconv.Atoi(c.Query("semester"))
	grid, err := h.service.Grid(c.Request.Context(), c.Query("department_id"), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Save godoc
// @Summary Replace a department/semester schedule (teacher only)
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body models.SaveTimetableRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid timetable payload"))
		return
	}
	count, err := h.service.Save(c.Request.Context(), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"entries_count": count})
}

// MyClasses godoc
// @Summary List the schedule entries the current teacher has saved
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/my-classes [get]
func (h *TimetableHandler) MyClasses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries, err := h.service.MyClasses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Delete godoc
// @Summary Delete one schedule entry
// @Tags Timetable
// @Param id path string true "Entry ID"
// @Success 204
// @Security BearerAuth
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
