package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-checkin/internal/application"
	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
)

type ScheduleHandler struct {
	service ScheduleServiceInterface
}

func NewScheduleHandler(s ScheduleServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{service: s}
}

type CreateScheduledEventRequest struct {
	Name               string     `json:"name" validate:"required" example:"朝のヨガ"`
	Description        string     `json:"description" example:"初心者歓迎"`
	Location           string     `json:"location" example:"スタジオA"`
	StartDate          time.Time  `json:"start_date" validate:"required"`
	EndDate            time.Time  `json:"end_date" validate:"required"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurrenceType     string     `json:"recurrence_type" example:"weekly"`
	RecurrenceInterval int        `json:"recurrence_interval" example:"1"`
	RecurrenceDays     []int      `json:"recurrence_days" example:"1,3,5"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date"`
}

type UpdateScheduledEventRequest struct {
	Name               *string    `json:"name"`
	Description        *string    `json:"description"`
	Location           *string    `json:"location"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	Status             *string    `json:"status" validate:"omitempty,oneof=active cancelled"`
	IsRecurring        *bool      `json:"is_recurring"`
	RecurrenceType     *string    `json:"recurrence_type"`
	RecurrenceInterval *int       `json:"recurrence_interval"`
	RecurrenceDays     []int      `json:"recurrence_days"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date"`

	// 繰り返し関連の変更で未来インスタンスが破棄されることへの明示的な同意
	ConfirmRegeneration bool `json:"confirm_regeneration"`
}

type ScheduledEventResponse struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	Description        string                  `json:"description,omitempty"`
	Location           string                  `json:"location,omitempty"`
	StartDate          time.Time               `json:"start_date"`
	EndDate            time.Time               `json:"end_date"`
	Status             string                  `json:"status"`
	IsRecurring        bool                    `json:"is_recurring"`
	RecurrenceType     string                  `json:"recurrence_type,omitempty"`
	RecurrenceInterval int                     `json:"recurrence_interval,omitempty"`
	RecurrenceDays     []int                   `json:"recurrence_days,omitempty"`
	RecurrenceEndDate  *time.Time              `json:"recurrence_end_date,omitempty"`
	CreatedBy          string                  `json:"created_by,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	Instances          []EventInstanceResponse `json:"instances,omitempty"`
}

func toScheduledEventResponse(e *schedule.ScheduledEvent) ScheduledEventResponse {
	return ScheduledEventResponse{
		ID: e.ID, Name: e.Name, Description: e.Description, Location: e.Location,
		StartDate: e.StartDate, EndDate: e.EndDate, Status: string(e.Status),
		IsRecurring: e.IsRecurring, RecurrenceType: string(e.RecurrenceType),
		RecurrenceInterval: e.RecurrenceInterval, RecurrenceDays: e.RecurrenceDays,
		RecurrenceEndDate: e.RecurrenceEndDate, CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

// Create godoc
// @Summary スケジュールイベントを作成
// @Description イベント定義を作成し、繰り返しを展開した全インスタンスを同時に生成します
// @Tags scheduled-events
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ホストのユーザーID"
// @Param request body CreateScheduledEventRequest true "イベント定義"
// @Success 201 {object} ScheduledEventResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /scheduled-events [post]
func (h *ScheduleHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CreateScheduledEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.CreateSchedule(c.Request().Context(), application.CreateScheduleInput{
		Name:               req.Name,
		Description:        req.Description,
		Location:           req.Location,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		IsRecurring:        req.IsRecurring,
		RecurrenceType:     req.RecurrenceType,
		RecurrenceInterval: req.RecurrenceInterval,
		RecurrenceDays:     req.RecurrenceDays,
		RecurrenceEndDate:  req.RecurrenceEndDate,
		CreatedBy:          userID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toScheduledEventResponse(e))
}

// List godoc
// @Summary スケジュールイベント一覧を取得
// @Description イベント定義の一覧を取得します
// @Tags scheduled-events
// @Produce json
// @Param created_by query string false "作成者で絞り込み"
// @Param future query bool false "未来のインスタンスを持つイベントのみ"
// @Success 200 {array} ScheduledEventResponse
// @Router /scheduled-events [get]
func (h *ScheduleHandler) List(c echo.Context) error {
	filter := schedule.ListFilter{
		CreatedBy:  c.QueryParam("created_by"),
		FutureOnly: c.QueryParam("future") == "true",
	}
	events, err := h.service.ListSchedules(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	resp := make([]ScheduledEventResponse, len(events))
	for i, e := range events {
		resp[i] = toScheduledEventResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary スケジュールイベントを取得
// @Description イベント定義をインスタンス一覧付きで取得します
// @Tags scheduled-events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} ScheduledEventResponse
// @Failure 404 {object} map[string]string
// @Router /scheduled-events/{id} [get]
func (h *ScheduleHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	e, instances, err := h.service.GetSchedule(c.Request().Context(), id)
	if err != nil {
		return err
	}
	resp := toScheduledEventResponse(e)
	resp.Instances = make([]EventInstanceResponse, len(instances))
	for i, inst := range instances {
		resp.Instances[i] = toEventInstanceResponse(inst)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary スケジュールイベントを更新
// @Description イベント定義を部分更新します。繰り返し関連の変更は confirm_regeneration が必要で、未来インスタンスを削除・再生成します
// @Tags scheduled-events
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ホストのユーザーID"
// @Param id path string true "イベントID"
// @Param request body UpdateScheduledEventRequest true "更新内容"
// @Success 200 {object} ScheduledEventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "confirm_regeneration が未設定"
// @Router /scheduled-events/{id} [put]
func (h *ScheduleHandler) Update(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req UpdateScheduledEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	e, err := h.service.UpdateSchedule(c.Request().Context(), application.UpdateScheduleInput{
		ID:                  c.Param("id"),
		Name:                req.Name,
		Description:         req.Description,
		Location:            req.Location,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		Status:              req.Status,
		IsRecurring:         req.IsRecurring,
		RecurrenceType:      req.RecurrenceType,
		RecurrenceInterval:  req.RecurrenceInterval,
		RecurrenceDays:      req.RecurrenceDays,
		RecurrenceEndDate:   req.RecurrenceEndDate,
		UpdatedBy:           userID,
		ConfirmRegeneration: req.ConfirmRegeneration,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toScheduledEventResponse(e))
}

// Delete godoc
// @Summary スケジュールイベントを削除
// @Description イベント定義を削除します。インスタンスと登録もカスケード削除されます
// @Tags scheduled-events
// @Produce json
// @Param id path string true "イベントID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /scheduled-events/{id} [delete]
func (h *ScheduleHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteSchedule(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
