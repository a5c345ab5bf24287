package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/models"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type assistantService interface {
	Chat(ctx context.Context, userID *string, req models.AssistantChatRequest) (*models.AssistantChatResponse, error)
	SmartSearch(ctx context.Context, req models.SmartSearchRequest) ([]models.Resource, error)
}

// AssistantHandler proxies the study assistant endpoints.
type AssistantHandler struct {
	service assistantService
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service assistantService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// Chat godoc
// @Summary Ask the study assistant a question
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body models.AssistantChatRequest true "Chat payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req models.AssistantChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid chat payload"))
		return
	}
	var userID *string
	if claims := claimsFromContext(c); claims != nil {
		userID = &claims.UserID
	}
	reply, err := h.service.Chat(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reply, nil)
}

// SmartSearch godoc
// @Summary Keyword-assisted resource search
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body models.SmartSearchRequest true "Search payload"
// @Success 200 {object} response.Envelope
// @Router /assistant/search [post]
func (h *AssistantHandler) SmartSearch(c *gin.Context) {
	var req models.SmartSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid search payload"))
		return
	}
	resources, err := h.service.SmartSearch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}
