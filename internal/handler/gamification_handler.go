package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emeahub/resource-hub-api/internal/models"
	"github.com/emeahub/resource-hub-api/internal/service"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
	"github.com/emeahub/resource-hub-api/pkg/response"
)

type gamificationService interface {
	Leaderboard(ctx context.Context, sortBy models.LeaderboardSort, page, size int) ([]models.RankedEntry, *models.Pagination, error)
	Stats(ctx context.Context, userID string) (*service.MyStats, error)
	Achievements(ctx context.Context) ([]models.Achievement, error)
	MyAchievements(ctx context.Context, userID string) ([]models.EarnedAchievement, error)
	RecomputeAll(ctx context.Context) (int, error)
}

// GamificationHandler exposes the leaderboard and personal stats.
type GamificationHandler struct {
	service gamificationService
}

// NewGamificationHandler constructs the handler.
func NewGamificationHandler(service gamificationService) *GamificationHandler {
	return &GamificationHandler{service: service}
}

// Leaderboard godoc
// @Summary Browse the contribution leaderboard
// @Tags Gamification
// @Produce json
// @Param sort query string false "points | uploads | verifications"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *GamificationHandler) Leaderboard(c *gin.Context) {
	sortBy := models.LeaderboardSort(c.DefaultQuery("sort", string(models.LeaderboardByPoints)))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, pagination, err := h.service.Leaderboard(c.Request.Context(), sortBy, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// MyStats godoc
// @Summary Personal contribution stats, badge and rank
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leaderboard/me [get]
func (h *GamificationHandler) MyStats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Achievements godoc
// @Summary List all achievement definitions
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /achievements [get]
func (h *GamificationHandler) Achievements(c *gin.Context) {
	achievements, err := h.service.Achievements(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, achievements, nil)
}

// MyAchievements godoc
// @Summary List the achievements the current user has unlocked
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /achievements/me [get]
func (h *GamificationHandler) MyAchievements(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	earned, err := h.service.MyAchievements(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, earned, nil)
}

// RecomputeAll godoc
// @Summary Rebuild every leaderboard entry (admin backfill)
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/leaderboard/recompute [post]
func (h *GamificationHandler) RecomputeAll(c *gin.Context) {
	count, err := h.service.RecomputeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"recomputed": count}, nil)
}
