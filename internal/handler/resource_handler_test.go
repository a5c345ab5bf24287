package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
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

type resourceServiceMock struct {
	uploadResp   *models.Resource
	uploadErr    error
	listResp     []models.Resource
	listErr      error
	getResp      *models.Resource
	getErr       error
	downloadResp *models.DownloadLink
	downloadErr  error
	deleteErr    error
	reportErr    error
	lastFilter   models.ResourceFilter
	lastUserID   *string
	uploadCalled bool
}

func (m *resourceServiceMock) Upload(ctx context.Context, userID string, req models.UploadResourceRequest, file *multipart.FileHeader) (*models.Resource, error) {
	m.uploadCalled = true
	return m.uploadResp, m.uploadErr
}

func (m *resourceServiceMock) ListPublic(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, m.listErr
}

func (m *resourceServiceMock) GetPublic(ctx context.Context, id string) (*models.Resource, error) {
	return m.getResp, m.getErr
}

func (m *resourceServiceMock) ListMine(ctx context.Context, userID string) ([]models.Resource, error) {
	return m.listResp, m.listErr
}

func (m *resourceServiceMock) Delete(ctx context.Context, id, userID string, role models.UserRole) error {
	return m.deleteErr
}

func (m *resourceServiceMock) Download(ctx context.Context, id string, userID *string, ip, userAgent string) (*models.DownloadLink, error) {
	m.lastUserID = userID
	return m.downloadResp, m.downloadErr
}

func (m *resourceServiceMock) Report(ctx context.Context, id, userID string, req models.ReportResourceRequest) error {
	return m.reportErr
}

type ratingServiceMock struct {
	rateResp   *models.RatingAggregate
	rateErr    error
	listResp   []models.Rating
	listErr    error
	rateCalled bool
}

func (m *ratingServiceMock) Rate(ctx context.Context, resourceID, userID string, req models.RateResourceRequest) (*models.RatingAggregate, error) {
	m.rateCalled = true
	return m.rateResp, m.rateErr
}

func (m *ratingServiceMock) ListByResource(ctx context.Context, resourceID string) ([]models.Rating, error) {
	return m.listResp, m.listErr
}

type metricsMock struct {
	uploads   int
	downloads int
	ratings   int
	decisions []string
}

func (m *metricsMock) RecordUpload()                 { m.uploads++ }
func (m *metricsMock) RecordDownload()               { m.downloads++ }
func (m *metricsMock) RecordRating()                 { m.ratings++ }
func (m *metricsMock) RecordDecision(outcome string) { m.decisions = append(m.decisions, outcome) }

func multipartUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Calculus Notes"))
	require.NoError(t, writer.WriteField("type", "note"))
	require.NoError(t, writer.WriteField("department_id", "dept-1"))
	require.NoError(t, writer.WriteField("subject_id", "subj-1"))
	require.NoError(t, writer.WriteField("semester", "3"))
	part, err := writer.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestResourceHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{
		uploadResp: &models.Resource{ID: "res-1", Status: models.StatusPending},
	}
	metrics := &metricsMock{}
	handler := NewResourceHandler(mockSvc, &ratingServiceMock{}, metrics)

	body, contentType := multipartUpload(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Upload(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.uploadCalled)
	assert.Equal(t, 1, metrics.uploads)
}

func TestResourceHandlerUploadMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewResourceHandler(&resourceServiceMock{}, &ratingServiceMock{}, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Calculus Notes"))
	require.NoError(t, writer.WriteField("type", "notes"))
	require.NoError(t, writer.WriteField("department_id", "dept-1"))
	require.NoError(t, writer.WriteField("subject_id", "subj-1"))
	require.NoError(t, writer.WriteField("semester", "3"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Upload(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandlerUploadUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewResourceHandler(&resourceServiceMock{}, &ratingServiceMock{}, nil)

	body, contentType := multipartUpload(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Upload(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResourceHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{}
	handler := NewResourceHandler(mockSvc, &ratingServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources?type=note&semester=3&sort=popular&page=2", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TypeNote, mockSvc.lastFilter.Type)
	assert.Equal(t, 3, mockSvc.lastFilter.Semester)
	assert.Equal(t, "popular", mockSvc.lastFilter.Sort)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
}

func TestResourceHandlerDownloadAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{
		downloadResp: &models.DownloadLink{URL: "http://localhost/files/tok", ExpiresAt: 123},
	}
	metrics := &metricsMock{}
	handler := NewResourceHandler(mockSvc, &ratingServiceMock{}, metrics)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/res-1/download", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mockSvc.lastUserID)
	assert.Equal(t, 1, metrics.downloads)
}

func TestResourceHandlerDownloadNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{downloadErr: appErrors.ErrNotFound}
	handler := NewResourceHandler(mockSvc, &ratingServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/missing/download", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Download(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceHandlerRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRatings := &ratingServiceMock{
		rateResp: &models.RatingAggregate{RatingAvg: 4.5, RatingCount: 2},
	}
	metrics := &metricsMock{}
	handler := NewResourceHandler(&resourceServiceMock{}, mockRatings, metrics)

	payload, _ := json.Marshal(models.RateResourceRequest{Rating: 5})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/res-1/rate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleStudent})

	handler.Rate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockRatings.rateCalled)
	assert.Equal(t, 1, metrics.ratings)
}

func TestResourceHandlerRateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewResourceHandler(&resourceServiceMock{}, &ratingServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/res-1/rate", bytes.NewBufferString(`{"rating":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleStudent})

	handler.Rate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandlerDeleteForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{deleteErr: appErrors.ErrForbidden}
	handler := NewResourceHandler(mockSvc, &ratingServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/resources/res-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stranger", Role: models.RoleStudent})

	handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
