package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/melihub/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not linked domain error maps to 412",
			err:        shared.NewDomainError("NOT_LINKED", "User has no linked marketplace account"),
			wantStatus: http.StatusPreconditionFailed,
			wantCode:   dto.ErrCodeNotLinked,
		},
		{
			name:       "identity conflict maps to 409",
			err:        shared.NewDomainError("IDENTITY_ALREADY_LINKED", "already linked"),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeConflict,
		},
		{
			name:       "not found maps to 404",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "upstream error maps to 502",
			err:        marketplace.NewUpstreamError("order_search", http.StatusInternalServerError, "boom"),
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstream,
		},
		{
			name:       "promotion rejection maps to 422",
			err:        &marketplace.PromotionRejectedError{StatusCode: 400, Detail: "invalid deal"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodePromotionRejected,
		},
		{
			name:       "delivery error maps to 502",
			err:        &marketplace.DeliveryError{PackID: 1, StatusCode: 500},
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeDelivery,
		},
		{
			name:       "token refresh sentinel maps to 502",
			err:        marketplace.ErrTokenRefresh,
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeTokenRefresh,
		},
		{
			name:       "wrapped not-linked sentinel maps to 412",
			err:        errors.Join(errors.New("token lookup"), marketplace.ErrNotLinked),
			wantStatus: http.StatusPreconditionFailed,
			wantCode:   dto.ErrCodeNotLinked,
		},
		{
			name:       "eligibility sentinel maps to 422",
			err:        marketplace.ErrSellerNotEligible,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodePromotionRejected,
		},
		{
			name:       "invalid request sentinel maps to 400",
			err:        marketplace.ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("something else"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleError_NilIsNoop(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	(&BaseHandler{}).HandleError(c, nil)

	assert.Empty(t, rec.Body.String())
}

func TestBaseHandler_ErrorCarriesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("request_id", "req-42")

	(&BaseHandler{}).NotFound(c, "Customer not found")

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestSystemHandler_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(rec)
	_ = c

	h := NewSystemHandler(nil)
	h.RegisterRoutes(engine.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.WithinDuration(t, time.Now().UTC(), resp.Timestamp, time.Minute)
}
