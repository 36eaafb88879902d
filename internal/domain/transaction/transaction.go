package transaction

import "context"

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
// 書き込み系の各操作は1つの論理トランザクションで完結し、途中失敗時は全体をロールバックする
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}
