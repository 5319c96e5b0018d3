package class

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fitify/internal/db"
)

type MockService struct{ mock.Mock }

func (m *MockService) CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockService) UpdateClass(ctx context.Context, classID int, req UpdateClassRequest) (*Class, error) {
	args := m.Called(ctx, classID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockService) CancelClass(ctx context.Context, classID int) (*CancelClassResult, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CancelClassResult), args.Error(1)
}

func (m *MockService) GetClass(ctx context.Context, classID int) (*Class, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Class), args.Error(1)
}

func (m *MockService) ListUpcoming(ctx context.Context, locationID int) ([]ClassWithAvailability, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClassWithAvailability), args.Error(1)
}

func (m *MockService) ListByCoach(ctx context.Context, coachID int, from, to time.Time) ([]Class, error) {
	args := m.Called(ctx, coachID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Class), args.Error(1)
}

func (m *MockService) Utilization(ctx context.Context, from, to time.Time) ([]UtilizationStat, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]UtilizationStat), args.Error(1)
}

func (m *MockService) CancellationCount(ctx context.Context, from, to time.Time, locationID *int) (int, error) {
	args := m.Called(ctx, from, to, locationID)
	return args.Int(0), args.Error(1)
}

func setupRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(service)

	router := gin.New()
	router.POST("/admin/classes", handler.CreateClass)
	router.PATCH("/admin/classes/:classID", handler.UpdateClass)
	router.POST("/admin/classes/:classID/cancel", handler.CancelClass)
	router.GET("/classes/:classID", handler.GetClass)
	router.GET("/admin/analytics/utilization", handler.GetUtilization)
	return router
}

func TestHandler_CreateClass(t *testing.T) {
	start := time.Now().Add(72 * time.Hour).Truncate(time.Second)

	req := CreateClassRequest{
		LocationID: 1,
		CoachID:    2,
		Name:       "Evening Spin",
		ClassType:  "spin",
		Room:       "B",
		StartTime:  start.Format(time.RFC3339),
		EndTime:    start.Add(time.Hour).Format(time.RFC3339),
		Capacity:   15,
	}

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "invalid schedule", serviceErr: ErrInvalidSchedule, wantStatus: http.StatusBadRequest},
		{name: "coach conflict", serviceErr: ErrCoachTimeConflict, wantStatus: http.StatusConflict},
		{name: "inactive coach", serviceErr: ErrCoachNotActive, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			if tt.serviceErr != nil {
				service.On("CreateClass", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			} else {
				service.On("CreateClass", mock.Anything, mock.Anything).Return(&Class{ID: 1, Status: StatusActive}, nil)
			}

			router := setupRouter(service)

			data, _ := json.Marshal(req)
			httpReq := httptest.NewRequest(http.MethodPost, "/admin/classes", bytes.NewReader(data))
			httpReq.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httpReq)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_UpdateClass_VersionConflictIsRetryable(t *testing.T) {
	service := new(MockService)
	service.On("UpdateClass", mock.Anything, 1, mock.Anything).Return(nil, db.ErrVersionConflict)

	router := setupRouter(service)

	data, _ := json.Marshal(UpdateClassRequest{})
	req := httptest.NewRequest(http.MethodPatch, "/admin/classes/1", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["retryable"])
	// The handler retried before giving up.
	service.AssertNumberOfCalls(t, "UpdateClass", 3)
}

func TestHandler_UpdateClass_CapacityBelowConfirmed(t *testing.T) {
	service := new(MockService)
	service.On("UpdateClass", mock.Anything, 1, mock.Anything).Return(nil, ErrCapacityBelowConfirmed)

	router := setupRouter(service)

	capacity := 2
	data, _ := json.Marshal(UpdateClassRequest{Capacity: &capacity})
	req := httptest.NewRequest(http.MethodPatch, "/admin/classes/1", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	// A business rejection is terminal, not retried.
	service.AssertNumberOfCalls(t, "UpdateClass", 1)
}

func TestHandler_CancelClass(t *testing.T) {
	service := new(MockService)
	service.On("CancelClass", mock.Anything, 1).Return(&CancelClassResult{
		Class:           &Class{ID: 1, Status: StatusCancelled},
		AffectedUserIDs: []int{10, 11},
		WaitlistUserIDs: []int{20},
	}, nil)

	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/admin/classes/1/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result CancelClassResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []int{10, 11}, result.AffectedUserIDs)
}

func TestHandler_GetUtilization_RequiresRange(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/admin/analytics/utilization", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "Utilization", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_GetClass_NotFound(t *testing.T) {
	service := new(MockService)
	service.On("GetClass", mock.Anything, 999).Return(nil, ErrClassNotFound)

	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/classes/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
