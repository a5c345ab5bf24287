package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/models"
	"github.com/emeahub/resource-hub-api/internal/service"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type adminService interface {
	Dashboard(ctx context.Context) (*service.DashboardStats, error)
	ListResources(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error)
	SetVisibility(ctx context.Context, resourceID, adminID string, req models.SetVisibilityRequest) (*models.Resource, error)
	ListTeachers(ctx context.Context, pendingOnly bool, page, size int) ([]models.User, *models.Pagination, error)
	ApproveTeacher(ctx context.Context, teacherID, adminID string) error
	CreateAchievement(ctx context.Context, adminID string, req models.AchievementRequest) (*models.Achievement, error)
	UpdateAchievement(ctx context.Context, achievementID, adminID string, req models.AchievementRequest) (*models.Achievement, error)
	ExportResourcesCSV(ctx context.Context, filter models.ResourceFilter) ([]byte, error)
	ExportResourcesPDF(ctx context.Context, filter models.ResourceFilter) ([]byte, error)
}

// AdminHandler exposes the administration endpoints.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Dashboard godoc
// @Summary Platform-wide counters for the admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ListResources godoc
// @Summary List resources across every status and visibility
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter"
// @Param visibility query string false "Visibility filter"
// @Param type query string false "Resource type filter"
// @Param search query string false "Search term"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/resources [get]
func (h *AdminHandler) ListResources(c *gin.Context) {
	filter := adminResourceFilter(c)
	resources, pagination, err := h.service.ListResources(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, pagination)
}

// SetVisibility godoc
// @Summary Hide, show or feature a resource
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body models.SetVisibilityRequest true "Visibility payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/resources/{id}/visibility [patch]
func (h *AdminHandler) SetVisibility(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid visibility payload"))
		return
	}
	resource, err := h.service.SetVisibility(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// ListTeachers godoc
// @Summary List teacher accounts
// @Tags Admin
// @Produce json
// @Param pending query bool false "Only accounts awaiting approval"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/teachers [get]
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	pendingOnly := c.Query("pending") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	teachers, pagination, err := h.service.ListTeachers(c.Request.Context(), pendingOnly, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// ApproveTeacher godoc
// @Summary Approve a pending teacher account
// @Tags Admin
// @Param id path string true "Teacher user ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/teachers/{id}/approve [post]
func (h *AdminHandler) ApproveTeacher(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.ApproveTeacher(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateAchievement godoc
// @Summary Define a new achievement
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.AchievementRequest true "Achievement payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/achievements [post]
func (h *AdminHandler) CreateAchievement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid achievement payload"))
		return
	}
	achievement, err := h.service.CreateAchievement(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, achievement)
}

// UpdateAchievement godoc
// @Summary Update an achievement definition
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Achievement ID"
// @Param payload body models.AchievementRequest true "Achievement payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/achievements/{id} [put]
func (h *AdminHandler) UpdateAchievement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid achievement payload"))
		return
	}
	achievement, err := h.service.UpdateAchievement(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, achievement, nil)
}

// ExportResources godoc
// @Summary Export the resource inventory as CSV or PDF
// @Tags Admin
// @Produce application/octet-stream
// @Param format query string false "csv | pdf"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /admin/resources/export [get]
func (h *AdminHandler) ExportResources(c *gin.Context) {
	filter := adminResourceFilter(c)
	filter.PageSize = 0

	stamp := time.Now().Format("20060102")
	switch strings.ToLower(c.DefaultQuery("format", "csv")) {
	case "pdf":
		data, err := h.service.ExportResourcesPDF(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="resources-`+stamp+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	case "csv":
		data, err := h.service.ExportResourcesCSV(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="resources-`+stamp+`.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

func adminResourceFilter(c *gin.Context) models.ResourceFilter {
	filter := models.ResourceFilter{
		Status:     models.ResourceStatus(c.Query("status")),
		Visibility: models.ResourceVisibility(c.Query("visibility")),
		Type:       models.ResourceType(c.Query("type")),
		Search:     strings.TrimSpace(c.Query("search")),
		Sort:       c.Query("sort"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "15"))
	return filter
}
