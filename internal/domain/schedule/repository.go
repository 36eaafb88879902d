package schedule

import (
	"context"

	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
)

// ListFilter はスケジュールイベント一覧の絞り込み条件
type ListFilter struct {
	CreatedBy  string
	FutureOnly bool
}

// Repository はスケジュールイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいスケジュールイベントを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, event *ScheduledEvent) error

	// GetByID はIDからスケジュールイベントを取得する
	GetByID(ctx context.Context, id string) (*ScheduledEvent, error)

	// List は条件に一致するスケジュールイベント一覧を取得する
	List(ctx context.Context, filter ListFilter) ([]*ScheduledEvent, error)

	// Update はスケジュールイベントを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, event *ScheduledEvent) error

	// Delete はスケジュールイベントを削除する（トランザクション必須）
	// インスタンスと登録はDBの外部キーでカスケード削除される
	Delete(ctx context.Context, tx transaction.Tx, id string) error
}
