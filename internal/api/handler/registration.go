package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-checkin/internal/application"
	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/registration"
)

type RegistrationHandler struct {
	service RegistrationServiceInterface
}

func NewRegistrationHandler(s RegistrationServiceInterface) *RegistrationHandler {
	return &RegistrationHandler{service: s}
}

type RegisterRequest struct {
	Phone string `json:"phone" validate:"required" example:"090-1234-5678"`
	Notes string `json:"notes" example:"初参加"`
}

type CancelRegistrationRequest struct {
	Phone string `json:"phone" validate:"required" example:"090-1234-5678"`
}

type RegistrationResponse struct {
	ID               string    `json:"id"`
	VisitorID        string    `json:"visitor_id"`
	EventInstanceID  string    `json:"event_instance_id"`
	RegistrationDate time.Time `json:"registration_date"`
	Status           string    `json:"status"`
	Notes            string    `json:"notes,omitempty"`
	VisitorName      string    `json:"visitor_name,omitempty"`
	VisitorPhone     string    `json:"visitor_phone,omitempty"`
	VisitorEmail     string    `json:"visitor_email,omitempty"`
	EventName        string    `json:"event_name,omitempty"`
	EventStartDate   time.Time `json:"event_start_date,omitempty"`
	EventEndDate     time.Time `json:"event_end_date,omitempty"`
}

func toRegistrationResponse(r *registration.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID: r.ID, VisitorID: r.VisitorID, EventInstanceID: r.EventInstanceID,
		RegistrationDate: r.RegistrationDate, Status: string(r.Status), Notes: r.Notes,
		VisitorName: r.VisitorName, VisitorPhone: r.VisitorPhone, VisitorEmail: r.VisitorEmail,
		EventName: r.EventName, EventStartDate: r.EventStartDate, EventEndDate: r.EventEndDate,
	}
}

type InstanceRegistrationsResponse struct {
	Count         int                    `json:"count"`
	Registrations []RegistrationResponse `json:"registrations"`
}

type VisitorEventResponse struct {
	InstanceID         string    `json:"instance_id"`
	ScheduledEventID   string    `json:"scheduled_event_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Location           string    `json:"location,omitempty"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	IsRegistered       bool      `json:"is_registered"`
	RegistrationStatus string    `json:"registration_status"`
	RegistrationID     string    `json:"registration_id,omitempty"`
}

func toVisitorEventResponse(v *instance.VisitorEvent) VisitorEventResponse {
	return VisitorEventResponse{
		InstanceID: v.InstanceID, ScheduledEventID: v.ScheduledEventID,
		Name: v.Name, Description: v.Description, Location: v.Location,
		StartDate: v.StartDate, EndDate: v.EndDate,
		IsRegistered:       v.RegistrationStatus == string(registration.StatusRegistered),
		RegistrationStatus: v.RegistrationStatus,
		RegistrationID:     v.RegistrationID,
	}
}

// Register godoc
// @Summary インスタンスに参加登録
// @Description 電話番号で識別される訪問者を開催1回分に登録します
// @Tags registrations
// @Accept json
// @Produce json
// @Param instanceId path string true "インスタンスID"
// @Param request body RegisterRequest true "登録情報"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} map[string]string "不正な入力または受付終了"
// @Failure 404 {object} map[string]string "インスタンスまたは訪問者が未登録"
// @Failure 409 {object} map[string]string "二重登録"
// @Router /instances/{instanceId}/register [post]
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	reg, err := h.service.Register(c.Request().Context(), application.RegisterInput{
		InstanceID: c.Param("instanceId"),
		Phone:      req.Phone,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRegistrationResponse(reg))
}

// Cancel godoc
// @Summary 参加登録をキャンセル
// @Description 登録時と同じ電話番号の提示でキャンセルします。キャンセル後の再登録はできません
// @Tags registrations
// @Accept json
// @Produce json
// @Param registrationId path string true "登録ID"
// @Param request body CancelRegistrationRequest true "照合用の電話番号"
// @Success 200 {object} RegistrationResponse
// @Failure 400 {object} map[string]string "開始済みまたはキャンセル済み"
// @Failure 403 {object} map[string]string "電話番号の不一致"
// @Failure 404 {object} map[string]string
// @Router /registrations/{registrationId}/cancel [post]
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	var req CancelRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	reg, err := h.service.Cancel(c.Request().Context(), application.CancelInput{
		RegistrationID: c.Param("registrationId"),
		Phone:          req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg))
}

// ListByInstance godoc
// @Summary インスタンスの登録一覧を取得
// @Description 開催1回分の全登録を訪問者情報・有効登録数付きで取得します（ホスト向け）
// @Tags registrations
// @Produce json
// @Param instanceId path string true "インスタンスID"
// @Success 200 {object} InstanceRegistrationsResponse
// @Failure 404 {object} map[string]string
// @Router /instances/{instanceId}/registrations [get]
func (h *RegistrationHandler) ListByInstance(c echo.Context) error {
	instanceID := c.Param("instanceId")
	regs, err := h.service.ListByInstance(c.Request().Context(), instanceID)
	if err != nil {
		return err
	}
	count, err := h.service.CountByInstance(c.Request().Context(), instanceID)
	if err != nil {
		return err
	}
	resp := InstanceRegistrationsResponse{
		Count:         count,
		Registrations: make([]RegistrationResponse, len(regs)),
	}
	for i, r := range regs {
		resp.Registrations[i] = toRegistrationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListByVisitor godoc
// @Summary 訪問者の登録一覧を取得
// @Description 電話番号に紐づく全登録をイベント情報付きで取得します
// @Tags registrations
// @Produce json
// @Param phone query string true "訪問者の電話番号"
// @Success 200 {array} RegistrationResponse
// @Failure 404 {object} map[string]string "訪問者がディレクトリに未登録"
// @Router /registrations/visitor [get]
func (h *RegistrationHandler) ListByVisitor(c echo.Context) error {
	phone := c.QueryParam("phone")
	if phone == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "電話番号が必要です")
	}
	regs, err := h.service.ListByVisitor(c.Request().Context(), phone)
	if err != nil {
		return err
	}
	resp := make([]RegistrationResponse, len(regs))
	for i, r := range regs {
		resp[i] = toRegistrationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// VisitorEvents godoc
// @Summary 訪問者向けの未来イベント一覧を取得
// @Description 受付中の未来インスタンスを訪問者の登録状況付きで取得します
// @Tags registrations
// @Produce json
// @Param phone query string true "訪問者の電話番号"
// @Success 200 {array} VisitorEventResponse
// @Failure 404 {object} map[string]string "訪問者がディレクトリに未登録"
// @Router /visitor-events [get]
func (h *RegistrationHandler) VisitorEvents(c echo.Context) error {
	phone := c.QueryParam("phone")
	if phone == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "電話番号が必要です")
	}
	events, err := h.service.ListVisitorEvents(c.Request().Context(), phone)
	if err != nil {
		return err
	}
	resp := make([]VisitorEventResponse, len(events))
	for i, v := range events {
		resp[i] = toVisitorEventResponse(v)
	}
	return c.JSON(http.StatusOK, resp)
}
