package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rafael-ceotto/StormGuard/internal/config"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/rafael-ceotto/StormGuard/internal/service"
	"github.com/rafael-ceotto/StormGuard/internal/service/mocks"
	trigger_mocks "github.com/rafael-ceotto/StormGuard/internal/trigger/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestHandler builds the handler with mocked services and a test router.
func newTestHandler(t *testing.T) (*Handler, *mocks.MockDispatchService, *mocks.MockAlertService, *trigger_mocks.MockPublisher, *gin.Engine) {
	ctrl := gomock.NewController(t)
	dispatchMock := mocks.NewMockDispatchService(ctrl)
	alertMock := mocks.NewMockAlertService(ctrl)
	publisherMock := trigger_mocks.NewMockPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // silence logs in tests

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(dispatchMock, alertMock, publisherMock, logger, cfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, dispatchMock, alertMock, publisherMock, router
}

// makeRequest performs one request against the test router.
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validPredictionRequest() DispatchPredictionRequest {
	return DispatchPredictionRequest{
		PredictionID: "pred-2025-06-01-hurricane-17",
		DisasterType: "hurricane",
		Probability:  0.85,
		Latitude:     25.76,
		Longitude:    -80.19,
		RadiusKM:     100,
	}
}

func apiKeyHeader() map[string]string {
	return map[string]string{"X-API-Key": "test-api-key"}
}

func userHeader(userID string) map[string]string {
	return map[string]string{"X-User-ID": userID}
}

func TestEnqueuePrediction_Success(t *testing.T) {
	_, _, _, publisherMock, router := newTestHandler(t)
	reqBody := validPredictionRequest()

	publisherMock.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, pred *models.Prediction) error {
			assert.Equal(t, reqBody.PredictionID, pred.ID)
			assert.Equal(t, models.DisasterHurricane, pred.DisasterType)
			return nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/predictions", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"queued":true`)
}

func TestEnqueuePrediction_MissingAPIKey(t *testing.T) {
	_, _, _, publisherMock, router := newTestHandler(t)

	publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(validPredictionRequest())
	w := makeRequest(router, "POST", "/api/v1/predictions", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestEnqueuePrediction_BearerTokenAccepted(t *testing.T) {
	_, _, _, publisherMock, router := newTestHandler(t)

	publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	bodyBytes, _ := json.Marshal(validPredictionRequest())
	w := makeRequest(router, "POST", "/api/v1/predictions", bytes.NewBuffer(bodyBytes),
		map[string]string{"Authorization": "Bearer test-api-key"})

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestEnqueuePrediction_ValidationError(t *testing.T) {
	_, _, _, publisherMock, router := newTestHandler(t)
	reqBody := validPredictionRequest()
	reqBody.PredictionID = "" // required field missing

	publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/predictions", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'PredictionID' failed on the 'required' tag")
}

func TestDispatchPrediction_Success(t *testing.T) {
	_, dispatchMock, _, _, router := newTestHandler(t)
	reqBody := validPredictionRequest()
	cycleResult := &models.CycleResult{
		Total:   3,
		Sent:    2,
		Failed:  1,
		Skipped: 0,
		Errors:  []models.DispatchError{{UserID: "user-2", Error: "device token rejected"}},
	}

	dispatchMock.EXPECT().
		RunCycle(gomock.Any(), gomock.Any()).
		Return(cycleResult, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/predictions/dispatch", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp CycleResultResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Sent)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "user-2", resp.Errors[0].UserID)
}

func TestDispatchPrediction_InvalidJSON(t *testing.T) {
	_, dispatchMock, _, _, router := newTestHandler(t)

	dispatchMock.EXPECT().RunCycle(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/predictions/dispatch", bytes.NewBufferString(`{"prediction_id": "x"`), apiKeyHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestDispatchPrediction_UnknownDisasterType(t *testing.T) {
	_, dispatchMock, _, _, router := newTestHandler(t)
	reqBody := validPredictionRequest()
	reqBody.DisasterType = "earthquake"

	dispatchMock.EXPECT().
		RunCycle(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: unknown disaster type", service.ErrInvalidPrediction)).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/predictions/dispatch", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid prediction")
}

func TestDispatchPrediction_ServiceError(t *testing.T) {
	_, dispatchMock, _, _, router := newTestHandler(t)

	dispatchMock.EXPECT().
		RunCycle(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("database unavailable")).
		Times(1)

	bodyBytes, _ := json.Marshal(validPredictionRequest())
	w := makeRequest(router, "POST", "/api/v1/predictions/dispatch", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "dispatch cycle failed")
}

func TestGetAlert_Success(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	alertID := uuid.New()
	sentAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	expected := &models.Alert{
		ID:           alertID,
		UserID:       "user-1",
		PredictionID: "pred-1",
		DisasterType: models.DisasterFlood,
		Title:        "Flood Alert",
		RiskLevel:    models.RiskHigh,
		Sent:         true,
		SentAt:       &sentAt,
	}

	alertMock.EXPECT().
		GetAlert(gomock.Any(), alertID, "user-1").
		Return(expected, nil).
		Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/alerts/%s", alertID), nil, userHeader("user-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, alertID, resp.ID)
	assert.Equal(t, "Flood Alert", resp.Title)
	assert.Equal(t, "HIGH", resp.RiskLevel)
}

func TestGetAlert_MissingUserHeader(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)

	alertMock.EXPECT().GetAlert(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/alerts/%s", uuid.New()), nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "X-User-ID header required")
}

func TestGetAlert_InvalidID(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)

	alertMock.EXPECT().GetAlert(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/alerts/not-a-uuid", nil, userHeader("user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid alert ID")
}

func TestGetAlert_NotFound(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	alertID := uuid.New()

	alertMock.EXPECT().
		GetAlert(gomock.Any(), alertID, "user-1").
		Return(nil, fmt.Errorf("service: %w", service.ErrAlertNotFound)).
		Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/alerts/%s", alertID), nil, userHeader("user-1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "alert not found")
}

// Another user's alert returns 403, never 404.
func TestGetAlert_Forbidden(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	alertID := uuid.New()

	alertMock.EXPECT().
		GetAlert(gomock.Any(), alertID, "user-2").
		Return(nil, fmt.Errorf("service: %w", service.ErrForbidden)).
		Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/alerts/%s", alertID), nil, userHeader("user-2"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestListUserAlerts_Success(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	expected := []*models.Alert{
		{ID: uuid.New(), UserID: "user-1", Title: "Flood Alert"},
		{ID: uuid.New(), UserID: "user-1", Title: "Hurricane Alert"},
	}

	alertMock.EXPECT().
		ListUserAlerts(gomock.Any(), "user-1", "user-1", 10, 0, true).
		Return(expected, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts/user/user-1?limit=10&unread_only=true", nil, userHeader("user-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, "Flood Alert", resp[0].Title)
}

func TestMarkAlertRead_Success(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	alertID := uuid.New()
	readAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := &models.Alert{
		ID:     alertID,
		UserID: "user-1",
		Sent:   true,
		Read:   true,
		ReadAt: &readAt,
	}

	alertMock.EXPECT().
		MarkRead(gomock.Any(), alertID, "user-1").
		Return(updated, nil).
		Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/read", alertID), nil, userHeader("user-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Read)
	assert.NotNil(t, resp.ReadAt)
}

func TestMarkAlertClicked_Success(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	alertID := uuid.New()
	readAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := &models.Alert{
		ID:      alertID,
		UserID:  "user-1",
		Sent:    true,
		Read:    true,
		Clicked: true,
		ReadAt:  &readAt,
	}

	alertMock.EXPECT().
		MarkClicked(gomock.Any(), alertID, "user-1").
		Return(updated, nil).
		Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/click", alertID), nil, userHeader("user-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Clicked)
	assert.True(t, resp.Read)
}

func TestDeleteAlert_Success(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	alertID := uuid.New()

	alertMock.EXPECT().
		DeleteAlert(gomock.Any(), alertID, "user-1").
		Return(nil).
		Times(1)

	w := makeRequest(router, "DELETE", fmt.Sprintf("/api/v1/alerts/%s", alertID), nil, userHeader("user-1"))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetAlertStats_Success(t *testing.T) {
	_, _, alertMock, _, router := newTestHandler(t)
	expected := &models.AlertStats{
		TotalAlerts: 7,
		Sent:        7,
		Read:        4,
		Clicked:     2,
		ByType: map[models.DisasterType]int{
			models.DisasterFlood:     5,
			models.DisasterHurricane: 2,
		},
	}

	alertMock.EXPECT().
		GetStats(gomock.Any(), "user-1", "user-1").
		Return(expected, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts/stats/user-1", nil, userHeader("user-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AlertStatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.TotalAlerts)
	assert.Equal(t, 2, resp.Clicked)
	assert.Equal(t, 5, resp.ByType["flood"])
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
