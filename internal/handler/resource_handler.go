package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type resourceService interface {
	Upload(ctx context.Context, userID string, req models.UploadResourceRequest, file *multipart.FileHeader) (*models.Resource, error)
	ListPublic(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error)
	GetPublic(ctx context.Context, id string) (*models.Resource, error)
	ListMine(ctx context.Context, userID string) ([]models.Resource, error)
	Delete(ctx context.Context, id, userID string, role models.UserRole) error
	Download(ctx context.Context, id string, userID *string, ip, userAgent string) (*models.DownloadLink, error)
	Report(ctx context.Context, id, userID string, req models.ReportResourceRequest) error
}

type ratingService interface {
	Rate(ctx context.Context, resourceID, userID string, req models.RateResourceRequest) (*models.RatingAggregate, error)
	ListByResource(ctx context.Context, resourceID string) ([]models.Rating, error)
}

// ResourceHandler exposes the resource lifecycle endpoints.
type ResourceHandler struct {
	resources resourceService
	ratings   ratingService
	metrics   metricsRecorder
}

type metricsRecorder interface {
	RecordUpload()
	RecordDownload()
	RecordRating()
}

// NewResourceHandler constructs the handler.
func NewResourceHandler(resources resourceService, ratings ratingService, metrics metricsRecorder) *ResourceHandler {
	return &ResourceHandler{resources: resources, ratings: ratings, metrics: metrics}
}

// Upload godoc
// @Summary Upload a new resource
// @Tags Resources
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Resource title"
// @Param type formData string true "Resource type"
// @Param department_id formData string true "Department"
// @Param subject_id formData string true "Subject"
// @Param semester formData int true "Semester"
// @Param file formData file true "Resource file"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /resources [post]
func (h *ResourceHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UploadResourceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid upload payload"))
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	resource, err := h.resources.Upload(c.Request.Context(), claims.UserID, req, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordUpload()
	}
	response.Created(c, resource)
}

// List godoc
// @Summary Browse verified resources
// @Tags Resources
// @Produce json
// @Param type query string false "Resource type"
// @Param department_id query string false "Department"
// @Param subject_id query string false "Subject"
// @Param semester query int false "Semester"
// @Param search query string false "Search term"
// @Param sort query string false "latest | oldest | popular | rating"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	filter := models.ResourceFilter{
		Type:         models.ResourceType(c.Query("type")),
		DepartmentID: c.Query("department_id"),
		SubjectID:    c.Query("subject_id"),
		Search:       strings.TrimSpace(c.Query("search")),
		Sort:         c.Query("sort"),
	}
	filter.Semester, _ = strconv.Atoi(c.Query("semester"))
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "15"))

	resources, pagination, err := h.resources.ListPublic(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, pagination)
}

// Get godoc
// @Summary Get one verified resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.resources.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// ListMine godoc
// @Summary List the caller's own uploads in every state
// @Tags Resources
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/mine [get]
func (h *ResourceHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resources, err := h.resources.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

// Delete godoc
// @Summary Delete a resource (owner or admin)
// @Tags Resources
// @Param id path string true "Resource ID"
// @Success 204
// @Security BearerAuth
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.resources.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Request a signed download link
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/download [post]
func (h *ResourceHandler) Download(c *gin.Context) {
	var userID *string
	if claims := claimsFromContext(c); claims != nil {
		userID = &claims.UserID
	}
	link, err := h.resources.Download(c.Request.Context(), c.Param("id"), userID, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordDownload()
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Rate godoc
// @Summary Rate a verified resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body models.RateResourceRequest true "Rating payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id}/rate [post]
func (h *ResourceHandler) Rate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.RateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rating payload"))
		return
	}
	agg, err := h.ratings.Rate(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordRating()
	}
	response.JSON(c, http.StatusOK, agg, nil)
}

// ListRatings godoc
// @Summary List ratings of a verified resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/ratings [get]
func (h *ResourceHandler) ListRatings(c *gin.Context) {
	ratings, err := h.ratings.ListByResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ratings, nil)
}

// Report godoc
// @Summary Report a resource for moderator attention
// @Tags Resources
// @Accept json
// @Param id path string true "Resource ID"
// @Param payload body models.ReportResourceRequest true "Report payload"
// @Success 204
// @Security BearerAuth
// @Router /resources/{id}/report [post]
func (h *ResourceHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.ReportResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid report payload"))
		return
	}
	if err := h.resources.Report(c.Request.Context(), c.Param("id"), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
