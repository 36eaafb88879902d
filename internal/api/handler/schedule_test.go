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

	"github.com/sanosuguru/go-event-checkin/internal/application"
	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
)

// MockScheduleService はScheduleServiceInterfaceのモック
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) CreateSchedule(ctx context.Context, input application.CreateScheduleInput) (*schedule.ScheduledEvent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ScheduledEvent), args.Error(1)
}

func (m *MockScheduleService) GetSchedule(ctx context.Context, id string) (*schedule.ScheduledEvent, []*instance.EventInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*schedule.ScheduledEvent), args.Get(1).([]*instance.EventInstance), args.Error(2)
}

func (m *MockScheduleService) ListSchedules(ctx context.Context, filter schedule.ListFilter) ([]*schedule.ScheduledEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.ScheduledEvent), args.Error(1)
}

func (m *MockScheduleService) UpdateSchedule(ctx context.Context, input application.UpdateScheduleInput) (*schedule.ScheduledEvent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ScheduledEvent), args.Error(1)
}

func (m *MockScheduleService) DeleteSchedule(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func sampleScheduledEvent() *schedule.ScheduledEvent {
	now := time.Now()
	return &schedule.ScheduledEvent{
		ID:                 "event-123",
		Name:               "朝のヨガ",
		Location:           "スタジオA",
		StartDate:          now.Add(24 * time.Hour),
		EndDate:            now.Add(25 * time.Hour),
		Status:             schedule.StatusActive,
		IsRecurring:        true,
		RecurrenceType:     schedule.RecurrenceWeekly,
		RecurrenceInterval: 1,
		CreatedBy:          "host-1",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestScheduleHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にスケジュールイベントを作成できる", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("CreateSchedule", mock.Anything, mock.AnythingOfType("application.CreateScheduleInput")).
			Return(sampleScheduledEvent(), nil)

		handler := NewScheduleHandler(mockService)

		reqBody := `{
			"name": "朝のヨガ",
			"location": "スタジオA",
			"start_date": "2030-01-07T09:00:00Z",
			"end_date": "2030-01-07T10:00:00Z",
			"is_recurring": true,
			"recurrence_type": "weekly",
			"recurrence_interval": 1
		}`
		req := httptest.NewRequest(http.MethodPost, "/scheduled-events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp ScheduledEventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "event-123", resp.ID)
		assert.Equal(t, "朝のヨガ", resp.Name)

		mockService.AssertExpectations(t)
	})

	t.Run("ユーザーIDなしで401", func(t *testing.T) {
		mockService := new(MockScheduleService)
		handler := NewScheduleHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/scheduled-events", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("名前なしでバリデーションエラー", func(t *testing.T) {
		mockService := new(MockScheduleService)
		handler := NewScheduleHandler(mockService)

		reqBody := `{"start_date": "2030-01-07T09:00:00Z", "end_date": "2030-01-07T10:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/scheduled-events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "CreateSchedule")
	})

	t.Run("不正な繰り返し種別はドメインエラーが伝播する", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("CreateSchedule", mock.Anything, mock.Anything).
			Return(nil, schedule.ErrInvalidRecurrenceType)

		handler := NewScheduleHandler(mockService)

		reqBody := `{
			"name": "不正な繰り返し",
			"start_date": "2030-01-07T09:00:00Z",
			"end_date": "2030-01-07T10:00:00Z",
			"is_recurring": true,
			"recurrence_type": "biweekly",
			"recurrence_interval": 1
		}`
		req := httptest.NewRequest(http.MethodPost, "/scheduled-events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)
		assert.ErrorIs(t, err, schedule.ErrInvalidRecurrenceType)
	})
}

func TestScheduleHandler_List(t *testing.T) {
	e := NewTestEcho()

	t.Run("一覧を取得できる", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("ListSchedules", mock.Anything, schedule.ListFilter{}).
			Return([]*schedule.ScheduledEvent{sampleScheduledEvent()}, nil)

		handler := NewScheduleHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/scheduled-events", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []ScheduledEventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
	})

	t.Run("future=true はフィルターに反映される", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("ListSchedules", mock.Anything, schedule.ListFilter{CreatedBy: "host-1", FutureOnly: true}).
			Return([]*schedule.ScheduledEvent{}, nil)

		handler := NewScheduleHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/scheduled-events?created_by=host-1&future=true", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler.List(c))
		mockService.AssertExpectations(t)
	})
}

func TestScheduleHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("インスタンス一覧付きで取得できる", func(t *testing.T) {
		mockService := new(MockScheduleService)
		event := sampleScheduledEvent()
		instances := []*instance.EventInstance{
			{ID: "instance-1", ScheduledEventID: event.ID, Status: instance.StatusScheduled},
			{ID: "instance-2", ScheduledEventID: event.ID, Status: instance.StatusScheduled},
		}
		mockService.On("GetSchedule", mock.Anything, "event-123").Return(event, instances, nil)

		handler := NewScheduleHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/scheduled-events/event-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		require.NoError(t, handler.GetByID(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ScheduledEventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Instances, 2)
	})

	t.Run("存在しないIDはドメインエラーが伝播する", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("GetSchedule", mock.Anything, "missing").
			Return(nil, nil, schedule.ErrScheduledEventNotFound)

		handler := NewScheduleHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/scheduled-events/missing", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.GetByID(c)
		assert.ErrorIs(t, err, schedule.ErrScheduledEventNotFound)
	})
}

func TestScheduleHandler_Update(t *testing.T) {
	e := NewTestEcho()

	t.Run("confirm_regeneration が入力に引き渡される", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("UpdateSchedule", mock.Anything, mock.MatchedBy(func(input application.UpdateScheduleInput) bool {
			return input.ID == "event-123" && input.ConfirmRegeneration && *input.RecurrenceInterval == 2
		})).Return(sampleScheduledEvent(), nil)

		handler := NewScheduleHandler(mockService)

		reqBody := `{"recurrence_interval": 2, "confirm_regeneration": true}`
		req := httptest.NewRequest(http.MethodPut, "/scheduled-events/event-123", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		require.NoError(t, handler.Update(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("確認なしの再生成はエラーが伝播する", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("UpdateSchedule", mock.Anything, mock.Anything).
			Return(nil, schedule.ErrRegenerationNotConfirmed)

		handler := NewScheduleHandler(mockService)

		reqBody := `{"recurrence_interval": 2}`
		req := httptest.NewRequest(http.MethodPut, "/scheduled-events/event-123", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.Update(c)
		assert.ErrorIs(t, err, schedule.ErrRegenerationNotConfirmed)
	})
}

func TestScheduleHandler_Delete(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に削除できる", func(t *testing.T) {
		mockService := new(MockScheduleService)
		mockService.On("DeleteSchedule", mock.Anything, "event-123").Return(nil)

		handler := NewScheduleHandler(mockService)

		req := httptest.NewRequest(http.MethodDelete, "/scheduled-events/event-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
	})
}
