package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeHandler は受付用QRコードを生成するハンドラー
type QRCodeHandler struct {
	service InstanceServiceInterface
	baseURL string
}

func NewQRCodeHandler(s InstanceServiceInterface, baseURL string) *QRCodeHandler {
	return &QRCodeHandler{service: s, baseURL: baseURL}
}

// Generate godoc
// @Summary 受付用QRコードを取得
// @Description 開催1回分の受付ページURLをエンコードしたPNGを返します
// @Tags instances
// @Produce png
// @Param instanceId path string true "インスタンスID"
// @Success 200 {file} png
// @Failure 404 {object} map[string]string
// @Router /instances/{instanceId}/qrcode [get]
func (h *QRCodeHandler) Generate(c echo.Context) error {
	// 存在しないインスタンスのQRは発行しない
	inst, err := h.service.GetInstance(c.Request().Context(), c.Param("instanceId"))
	if err != nil {
		return err
	}

	checkInURL := fmt.Sprintf("%s/check-in/%s", h.baseURL, inst.ID)
	png, err := qrcode.Encode(checkInURL, qrcode.Medium, 256)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "QRコードの生成に失敗しました")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
