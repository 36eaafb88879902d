package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-checkin/internal/api"
	"github.com/sanosuguru/go-event-checkin/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-event-checkin/internal/api/middleware"
	"github.com/sanosuguru/go-event-checkin/internal/application"
	"github.com/sanosuguru/go-event-checkin/internal/config"
	"github.com/sanosuguru/go-event-checkin/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-checkin/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-checkin/internal/pkg/logger"
	"github.com/sanosuguru/go-event-checkin/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-checkin/internal/worker"
)

func main() {
	cfg := config.Load()
	defer logger.Sync()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	if err := postgres.RunMigrations(db.DB, cfg.App.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// Redis接続（任意：使えない場合はロック・キャッシュなしで起動する）
	var (
		lockManager *redisinfra.LockManager
		countCache  *redisinfra.RegistrationCountCache
	)
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis接続に失敗したため、分散ロックとキャッシュを無効化します", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		countCache = redisinfra.NewRegistrationCountCache(redisClient)
	}

	// メトリクス
	m := metrics.New()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	instanceRepo := postgres.NewInstanceRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	visitorDir := postgres.NewVisitorDirectory(db)

	// サービス
	scheduleService := application.NewScheduleService(txManager, scheduleRepo, instanceRepo, cfg.App.MaxInstances, m)
	instanceService := application.NewInstanceService(instanceRepo)
	registrationService := application.NewRegistrationService(
		txManager, registrationRepo, instanceRepo, visitorDir, lockManager, countCache, m)

	// Echoサーバー
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	instanceHandler := handler.NewInstanceHandler(instanceService)
	registrationHandler := handler.NewRegistrationHandler(registrationService)
	qrcodeHandler := handler.NewQRCodeHandler(instanceService, cfg.App.BaseURL)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/scheduled-events", scheduleHandler.Create)
	v1.GET("/scheduled-events", scheduleHandler.List)
	v1.GET("/scheduled-events/:id", scheduleHandler.GetByID)
	v1.PUT("/scheduled-events/:id", scheduleHandler.Update)
	v1.DELETE("/scheduled-events/:id", scheduleHandler.Delete)

	v1.GET("/instances/:instanceId", instanceHandler.GetByID)
	v1.PATCH("/instances/:instanceId/status", instanceHandler.UpdateStatus)
	v1.GET("/instances/:instanceId/qrcode", qrcodeHandler.Generate)
	v1.POST("/instances/:instanceId/register", registrationHandler.Register)
	v1.GET("/instances/:instanceId/registrations", registrationHandler.ListByInstance)

	v1.POST("/registrations/:registrationId/cancel", registrationHandler.Cancel)
	v1.GET("/registrations/visitor", registrationHandler.ListByVisitor)
	v1.GET("/visitor-events", registrationHandler.VisitorEvents)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()),
		custommiddleware.MetricsBasicAuth(cfg.App.MetricsUser, cfg.App.MetricsPassword))

	// 過去インスタンスの完了ワーカー
	completer := worker.NewPastInstanceCompleter(instanceService, cfg.App.CompleterInterval)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	go completer.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています")

	workerCancel()
	completer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
