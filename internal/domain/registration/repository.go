package registration

import (
	"context"

	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
)

// Repository は登録リポジトリのインターフェース
type Repository interface {
	// Create は新しい登録を作成する（トランザクション必須）
	// (visitor_id, event_instance_id) の一意制約違反は ErrAlreadyRegistered を返す
	Create(ctx context.Context, tx transaction.Tx, reg *Registration) error

	// GetByID はIDから登録を関連情報付きで取得する
	GetByID(ctx context.Context, id string) (*Registration, error)

	// GetByVisitorAndInstance は (訪問者, インスタンス) の登録を状態に関係なく取得する
	GetByVisitorAndInstance(ctx context.Context, visitorID, instanceID string) (*Registration, error)

	// ListByVisitor は訪問者の全登録をインスタンス開始日時の降順で取得する
	ListByVisitor(ctx context.Context, visitorID string) ([]*Registration, error)

	// ListByInstance はインスタンスの全登録を登録日時の昇順で取得する
	ListByInstance(ctx context.Context, instanceID string) ([]*Registration, error)

	// UpdateStatus は登録の状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, reg *Registration) error

	// CountActiveByInstance はインスタンスの registered 状態の登録数を取得する
	CountActiveByInstance(ctx context.Context, instanceID string) (int, error)
}
