package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
)

type InstanceHandler struct {
	service InstanceServiceInterface
}

func NewInstanceHandler(s InstanceServiceInterface) *InstanceHandler {
	return &InstanceHandler{service: s}
}

type UpdateInstanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled" example:"completed"`
}

type EventInstanceResponse struct {
	ID               string    `json:"id"`
	ScheduledEventID string    `json:"scheduled_event_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Status           string    `json:"status"`
	EventName        string    `json:"event_name,omitempty"`
	EventLocation    string    `json:"event_location,omitempty"`
}

func toEventInstanceResponse(i *instance.EventInstance) EventInstanceResponse {
	return EventInstanceResponse{
		ID: i.ID, ScheduledEventID: i.ScheduledEventID,
		StartDate: i.StartDate, EndDate: i.EndDate, Status: string(i.Status),
		EventName: i.EventName, EventLocation: i.EventLocation,
	}
}

// GetByID godoc
// @Summary インスタンスを取得
// @Description 開催1回分を親イベント情報付きで取得します
// @Tags instances
// @Produce json
// @Param instanceId path string true "インスタンスID"
// @Success 200 {object} EventInstanceResponse
// @Failure 404 {object} map[string]string
// @Router /instances/{instanceId} [get]
func (h *InstanceHandler) GetByID(c echo.Context) error {
	inst, err := h.service.GetInstance(c.Request().Context(), c.Param("instanceId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventInstanceResponse(inst))
}

// UpdateStatus godoc
// @Summary インスタンスの状態を変更
// @Description scheduled のインスタンスを completed または cancelled にします（ホスト操作）
// @Tags instances
// @Accept json
// @Produce json
// @Param instanceId path string true "インスタンスID"
// @Param request body UpdateInstanceStatusRequest true "遷移先の状態"
// @Success 200 {object} EventInstanceResponse
// @Failure 400 {object} map[string]string "不正な入力または終端状態からの遷移"
// @Failure 404 {object} map[string]string
// @Router /instances/{instanceId}/status [patch]
func (h *InstanceHandler) UpdateStatus(c echo.Context) error {
	var req UpdateInstanceStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var (
		inst *instance.EventInstance
		err  error
	)
	switch req.Status {
	case string(instance.StatusCompleted):
		inst, err = h.service.CompleteInstance(c.Request().Context(), c.Param("instanceId"))
	case string(instance.StatusCancelled):
		inst, err = h.service.CancelInstance(c.Request().Context(), c.Param("instanceId"))
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventInstanceResponse(inst))
}
