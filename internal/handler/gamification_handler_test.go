package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emeahub/resource-hub-api/internal/middleware"
	"github.com/emeahub/resource-hub-api/internal/models"
	"github.com/emeahub/resource-hub-api/internal/service"
)

type gamificationServiceMock struct {
	entries    []models.RankedEntry
	pagination *models.Pagination
	boardErr   error
	statsResp  *service.MyStats
	statsErr   error
	defsResp   []models.Achievement
	earnedResp []models.EarnedAchievement
	recomputed int
	lastSort   models.LeaderboardSort
	lastPage   int
}

func (m *gamificationServiceMock) Leaderboard(ctx context.Context, sortBy models.LeaderboardSort, page, size int) ([]models.RankedEntry, *models.Pagination, error) {
	m.lastSort = sortBy
	m.lastPage = page
	return m.entries, m.pagination, m.boardErr
}

func (m *gamificationServiceMock) Stats(ctx context.Context, userID string) (*service.MyStats, error) {
	return m.statsResp, m.statsErr
}

func (m *gamificationServiceMock) Achievements(ctx context.Context) ([]models.Achievement, error) {
	return m.defsResp, nil
}

func (m *gamificationServiceMock) MyAchievements(ctx context.Context, userID string) ([]models.EarnedAchievement, error) {
	return m.earnedResp, nil
}

func (m *gamificationServiceMock) RecomputeAll(ctx context.Context) (int, error) {
	return m.recomputed, nil
}

func TestGamificationHandlerLeaderboardDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gamificationServiceMock{
		pagination: &models.Pagination{Page: 1, PageSize: 20},
	}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/leaderboard", nil)
	c.Request = req

	handler.Leaderboard(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LeaderboardByPoints, mockSvc.lastSort)
	assert.Equal(t, 1, mockSvc.lastPage)
}

func TestGamificationHandlerLeaderboardSortParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gamificationServiceMock{}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/leaderboard?sort=uploads&page=3", nil)
	c.Request = req

	handler.Leaderboard(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LeaderboardByUploads, mockSvc.lastSort)
	assert.Equal(t, 3, mockSvc.lastPage)
}

func TestGamificationHandlerMyStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	badge := "Bronze"
	mockSvc := &gamificationServiceMock{
		statsResp: &service.MyStats{TotalPoints: 55, Rank: 1, Badge: &badge},
	}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/leaderboard/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.MyStats(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGamificationHandlerMyStatsUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGamificationHandler(&gamificationServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/leaderboard/me", nil)
	c.Request = req

	handler.MyStats(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGamificationHandlerAchievements(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gamificationServiceMock{
		defsResp: []models.Achievement{{ID: "ach-1", Name: "First Upload"}},
	}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/achievements", nil)
	c.Request = req

	handler.Achievements(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "First Upload")
}

func TestGamificationHandlerMyAchievementsUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGamificationHandler(&gamificationServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/achievements/me", nil)
	c.Request = req

	handler.MyAchievements(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGamificationHandlerRecomputeAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gamificationServiceMock{recomputed: 7}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/leaderboard/recompute", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.RecomputeAll(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recomputed":7`)
}
