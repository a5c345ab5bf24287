package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type verificationService interface {
	ListPending(ctx context.Context, role models.UserRole, resourceType models.ResourceType) ([]models.Resource, error)
	Verify(ctx context.Context, resourceID, verifierID string, role models.UserRole, req models.VerifyResourceRequest) (*models.ResourceSummary, error)
}

type decisionRecorder interface {
	RecordDecision(outcome string)
}

// VerificationHandler exposes the moderation queue endpoints.
type VerificationHandler struct {
	service verificationService
	metrics decisionRecorder
}

// NewVerificationHandler constructs the handler.
func NewVerificationHandler(service verificationService, metrics decisionRecorder) *VerificationHandler {
	return &VerificationHandler{service: service, metrics: metrics}
}

// ListPending godoc
// @Summary List resources waiting for a decision
// @Tags Verification
// @Produce json
// @Param type query string false "Resource type filter"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /verification/pending [get]
func (h *VerificationHandler) ListPending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resources, err := h.service.ListPending(c.Request.Context(), claims.Role, models.ResourceType(c.Query("type")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

// Verify godoc
// @Summary Approve or reject a pending resource
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body models.VerifyResourceRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /verification/{id} [post]
func (h *VerificationHandler) Verify(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.VerifyResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid verification payload"))
		return
	}
	summary, err := h.service.Verify(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordDecision(string(summary.Status))
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
