package visitor

import "context"

// Directory は訪問者ディレクトリ（外部コラボレーター）のインターフェース
// 本サービスは読み取りのみを行い、エントリの作成・更新は行わない
type Directory interface {
	// GetByPhone は電話番号から訪問者を取得する
	GetByPhone(ctx context.Context, phone string) (*Visitor, error)
}
