package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
)

// MockInstanceService はInstanceServiceInterfaceのモック
type MockInstanceService struct {
	mock.Mock
}

func (m *MockInstanceService) GetInstance(ctx context.Context, id string) (*instance.EventInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*instance.EventInstance), args.Error(1)
}

func (m *MockInstanceService) CompleteInstance(ctx context.Context, id string) (*instance.EventInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*instance.EventInstance), args.Error(1)
}

func (m *MockInstanceService) CancelInstance(ctx context.Context, id string) (*instance.EventInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*instance.EventInstance), args.Error(1)
}

func sampleInstance() *instance.EventInstance {
	now := time.Now()
	return &instance.EventInstance{
		ID:               "instance-1",
		ScheduledEventID: "event-123",
		StartDate:        now.Add(24 * time.Hour),
		EndDate:          now.Add(25 * time.Hour),
		Status:           instance.StatusScheduled,
		EventName:        "朝のヨガ",
		EventLocation:    "スタジオA",
	}
}

func TestInstanceHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("親イベント情報付きで取得できる", func(t *testing.T) {
		mockService := new(MockInstanceService)
		mockService.On("GetInstance", mock.Anything, "instance-1").Return(sampleInstance(), nil)

		handler := NewInstanceHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/instances/instance-1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("instanceId")
		c.SetParamValues("instance-1")

		require.NoError(t, handler.GetByID(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp EventInstanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "instance-1", resp.ID)
		assert.Equal(t, "朝のヨガ", resp.EventName)
	})
}

func TestInstanceHandler_UpdateStatus(t *testing.T) {
	e := NewTestEcho()

	t.Run("completed への遷移", func(t *testing.T) {
		mockService := new(MockInstanceService)
		completed := sampleInstance()
		completed.Status = instance.StatusCompleted
		mockService.On("CompleteInstance", mock.Anything, "instance-1").Return(completed, nil)

		handler := NewInstanceHandler(mockService)

		reqBody := `{"status": "completed"}`
		req := httptest.NewRequest(http.MethodPatch, "/instances/instance-1/status", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("instanceId")
		c.SetParamValues("instance-1")

		require.NoError(t, handler.UpdateStatus(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp EventInstanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.Status)
		mockService.AssertNotCalled(t, "CancelInstance")
	})

	t.Run("cancelled への遷移", func(t *testing.T) {
		mockService := new(MockInstanceService)
		cancelled := sampleInstance()
		cancelled.Status = instance.StatusCancelled
		mockService.On("CancelInstance", mock.Anything, "instance-1").Return(cancelled, nil)

		handler := NewInstanceHandler(mockService)

		reqBody := `{"status": "cancelled"}`
		req := httptest.NewRequest(http.MethodPatch, "/instances/instance-1/status", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("instanceId")
		c.SetParamValues("instance-1")

		require.NoError(t, handler.UpdateStatus(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("不正な状態はバリデーションエラー", func(t *testing.T) {
		mockService := new(MockInstanceService)
		handler := NewInstanceHandler(mockService)

		reqBody := `{"status": "scheduled"}`
		req := httptest.NewRequest(http.MethodPatch, "/instances/instance-1/status", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("instanceId")
		c.SetParamValues("instance-1")

		err := handler.UpdateStatus(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("終端状態からの遷移はドメインエラーが伝播する", func(t *testing.T) {
		mockService := new(MockInstanceService)
		mockService.On("CompleteInstance", mock.Anything, "instance-1").
			Return(nil, instance.ErrInstanceNotSchedulable)

		handler := NewInstanceHandler(mockService)

		reqBody := `{"status": "completed"}`
		req := httptest.NewRequest(http.MethodPatch, "/instances/instance-1/status", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("instanceId")
		c.SetParamValues("instance-1")

		err := handler.UpdateStatus(c)
		assert.ErrorIs(t, err, instance.ErrInstanceNotSchedulable)
	})
}
