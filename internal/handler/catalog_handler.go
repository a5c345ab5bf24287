package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/models"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type catalogService interface {
	Departments(ctx context.Context) ([]models.Department, error)
	Subjects(ctx context.Context, departmentID string, semester int) ([]models.Subject, error)
	Modules(ctx context.Context, subjectID string) ([]models.Module, error)
}

// CatalogHandler serves the academic catalog lookups.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Departments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/departments [get]
func (h *CatalogHandler) Departments(c *gin.Context) {
	departments, err := h.service.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// Subjects godoc
// @Summary List subjects, optionally scoped to a department and semester
// @Tags Catalog
// @Produce json
// @Param department_id query string false "Department"
// @Param semester query int false "Semester"
// @Success 200 {object} response.Envelope
// @Router /catalog/subjects [get]
func (h *CatalogHandler) Subjects(c *gin.Context) {
	semester, _ := strconv.Atoi(c.Query("semester"))
	subjects, err := h.service.Subjects(c.Request.Context(), c.Query("department_id"), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Modules godoc
// @Summary List modules of a subject
// @Tags Catalog
// @Produce json
// @Param subject_id query string true "Subject"
// @Success 200 {object} response.Envelope
// @Router /catalog/modules [get]
func (h *CatalogHandler) Modules(c *gin.Context) {
	modules, err := h.service.Modules(c.Request.Context(), c.Query("subject_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}
