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
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type verificationServiceMock struct {
	listResp   []models.Resource
	listErr    error
	verifyResp *models.ResourceSummary
	verifyErr  error
	lastType   models.ResourceType
	lastReq    models.VerifyResourceRequest
}

func (m *verificationServiceMock) ListPending(ctx context.Context, role models.UserRole, resourceType models.ResourceType) ([]models.Resource, error) {
	m.lastType = resourceType
	return m.listResp, m.listErr
}

func (m *verificationServiceMock) Verify(ctx context.Context, resourceID, verifierID string, role models.UserRole, req models.VerifyResourceRequest) (*models.ResourceSummary, error) {
	m.lastReq = req
	return m.verifyResp, m.verifyErr
}

func TestVerificationHandlerListPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &verificationServiceMock{
		listResp: []models.Resource{{ID: "res-1", Status: models.StatusPending}},
	}
	handler := NewVerificationHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/verification/pending?type=pyq", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.ListPending(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TypePYQ, mockSvc.lastType)
}

func TestVerificationHandlerVerifyApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &verificationServiceMock{
		verifyResp: &models.ResourceSummary{ID: "res-1", Status: models.StatusVerified},
	}
	metrics := &metricsMock{}
	handler := NewVerificationHandler(mockSvc, metrics)

	payload, _ := json.Marshal(models.VerifyResourceRequest{Action: models.ActionApprove})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/verification/res-1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Verify(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ActionApprove, mockSvc.lastReq.Action)
	assert.Equal(t, []string{"verified"}, metrics.decisions)
}

func TestVerificationHandlerVerifyInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewVerificationHandler(&verificationServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/verification/res-1", bytes.NewBufferString(`{"action":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Verify(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerificationHandlerVerifyAlreadyProcessed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &verificationServiceMock{verifyErr: appErrors.ErrAlreadyProcessed}
	metrics := &metricsMock{}
	handler := NewVerificationHandler(mockSvc, metrics)

	payload, _ := json.Marshal(models.VerifyResourceRequest{Action: models.ActionReject, Reason: "duplicate"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/verification/res-1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})

	handler.Verify(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, metrics.decisions)
}
