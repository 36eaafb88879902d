package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/registration"
	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
	"github.com/sanosuguru/go-event-checkin/internal/domain/visitor"
	"github.com/sanosuguru/go-event-checkin/internal/pkg/logger"
)

// エラーレスポンスの判別コード
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidState         = "INVALID_STATE"
	CodeAlreadyRegistered    = "ALREADY_REGISTERED"
	CodeVisitorNotFound      = "VISITOR_NOT_FOUND"
	CodePhoneMismatch        = "PHONE_MISMATCH"
	CodeRegenerationRequired = "REGENERATION_REQUIRED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
// Code はクライアントが分岐に使う判別文字列
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// mapDomainError はドメインエラーをHTTPステータスと判別コードに対応付ける
func mapDomainError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, schedule.ErrNameRequired),
		errors.Is(err, schedule.ErrInvalidEventWindow),
		errors.Is(err, schedule.ErrRecurrenceTypeRequired),
		errors.Is(err, schedule.ErrInvalidRecurrenceType),
		errors.Is(err, schedule.ErrInvalidRecurrenceInterval),
		errors.Is(err, schedule.ErrInvalidRecurrenceDay),
		errors.Is(err, schedule.ErrInvalidStatus):
		return http.StatusBadRequest, CodeValidationError, true
	case errors.Is(err, visitor.ErrVisitorNotFound):
		return http.StatusNotFound, CodeVisitorNotFound, true
	case errors.Is(err, schedule.ErrScheduledEventNotFound),
		errors.Is(err, instance.ErrInstanceNotFound),
		errors.Is(err, registration.ErrRegistrationNotFound):
		return http.StatusNotFound, CodeNotFound, true
	case errors.Is(err, registration.ErrAlreadyRegistered):
		return http.StatusConflict, CodeAlreadyRegistered, true
	case errors.Is(err, registration.ErrPhoneMismatch):
		return http.StatusForbidden, CodePhoneMismatch, true
	case errors.Is(err, schedule.ErrRegenerationNotConfirmed):
		return http.StatusConflict, CodeRegenerationRequired, true
	case errors.Is(err, registration.ErrInstanceNotOpen),
		errors.Is(err, registration.ErrInstanceStarted),
		errors.Is(err, registration.ErrAlreadyCancelled),
		errors.Is(err, instance.ErrInstanceNotSchedulable):
		return http.StatusBadRequest, CodeInvalidState, true
	}
	return 0, "", false
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return CodeValidationError
	case status == http.StatusNotFound:
		return CodeNotFound
	case status >= 500:
		return CodeInternalError
	default:
		return http.StatusText(status)
	}
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ハンドラーはドメインエラーをそのまま返してよく、対応付けはここで一元化する
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status  = http.StatusInternalServerError
		code    = CodeInternalError
		message = "内部サーバーエラー"
	)

	if s, dc, ok := mapDomainError(err); ok {
		status = s
		code = dc
		message = err.Error()
	} else if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		code = codeForStatus(status)
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
		// Bind/Validate 由来のHTTPErrorがドメインエラーをラップしている場合
		if s, dc, ok := mapDomainError(he); ok {
			status = s
			code = dc
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if status >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", status),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(status, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
