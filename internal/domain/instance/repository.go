package instance

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
)

// VisitorEvent は訪問者向けの開催一覧1件分（登録状況付き）を表す
type VisitorEvent struct {
	InstanceID         string
	ScheduledEventID   string
	Name               string
	Description        string
	Location           string
	StartDate          time.Time
	EndDate            time.Time
	Status             Status
	RegistrationID     string
	RegistrationStatus string // 未登録の場合は "not_registered"
}

// Repository はイベントインスタンスリポジトリのインターフェース
type Repository interface {
	// CreateBulk はインスタンスを一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, instances []*EventInstance) error

	// GetByID はIDからインスタンスを親イベント情報付きで取得する
	GetByID(ctx context.Context, id string) (*EventInstance, error)

	// ListByScheduledEvent はイベントの全インスタンスを開始日時昇順で取得する
	ListByScheduledEvent(ctx context.Context, scheduledEventID string) ([]*EventInstance, error)

	// DeleteFuture は開始日時が now より後のインスタンスを削除する（トランザクション必須）
	// 登録はDBの外部キーでカスケード削除される
	DeleteFuture(ctx context.Context, tx transaction.Tx, scheduledEventID string, now time.Time) error

	// UpdateStatus はインスタンスの状態を更新する
	UpdateStatus(ctx context.Context, inst *EventInstance) error

	// CompletePast は終了日時が now より前の scheduled インスタンスを completed にする
	CompletePast(ctx context.Context, now time.Time) (int, error)

	// ListFutureForVisitor は未来の開催可能インスタンスを訪問者の登録状況付きで取得する
	ListFutureForVisitor(ctx context.Context, visitorID string, now time.Time) ([]*VisitorEvent, error)
}
