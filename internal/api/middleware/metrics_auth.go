package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth は /metrics エンドポイント用の Basic 認証ミドルウェア
// 資格情報が未設定の場合は認証をスキップする（ローカル開発用）
func MetricsBasicAuth(expectedUser, expectedPass string) echo.MiddlewareFunc {
	if expectedUser == "" || expectedPass == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	return middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		// タイミング攻撃を防ぐため ConstantTimeCompare を使用
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(expectedUser)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPass)) == 1

		return userMatch && passMatch, nil
	})
}
