package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-checkin/internal/pkg/logger"
)

// InstanceCompleter は終了済みインスタンスを完了させるインターフェース
type InstanceCompleter interface {
	CompletePastInstances(ctx context.Context) (int, error)
}

// PastInstanceCompleter は終了日時が過ぎた scheduled インスタンスを
// 定期的に completed へ遷移させるワーカー
type PastInstanceCompleter struct {
	instanceService InstanceCompleter
	interval        time.Duration
	stopCh          chan struct{}
	doneCh          chan struct{}
}

// NewPastInstanceCompleter は新しいコンプリーターを作成
func NewPastInstanceCompleter(is InstanceCompleter, interval time.Duration) *PastInstanceCompleter {
	return &PastInstanceCompleter{
		instanceService: is,
		interval:        interval,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start はコンプリーターを開始
func (c *PastInstanceCompleter) Start(ctx context.Context) {
	logger.Info("インスタンスコンプリーター開始",
		zap.Duration("interval", c.interval),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("インスタンスコンプリーター停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("インスタンスコンプリーター停止（シグナル受信）")
			return
		case <-ticker.C:
			c.complete(ctx)
		}
	}
}

// Stop はコンプリーターを停止
func (c *PastInstanceCompleter) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// complete は終了済みインスタンスを完了状態にする
func (c *PastInstanceCompleter) complete(ctx context.Context) {
	log := logger.Get()
	log.Debug("終了済みインスタンスの完了処理開始")

	count, err := c.instanceService.CompletePastInstances(ctx)
	if err != nil {
		log.Error("終了済みインスタンスの完了処理失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("インスタンスを完了状態に遷移", zap.Int("count", count))
	} else {
		log.Debug("完了対象のインスタンスなし")
	}
}
