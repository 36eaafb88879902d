package visitor

import "errors"

// Visitor ドメインのエラー定義
var (
	// ErrVisitorNotFound はディレクトリに電話番号が存在しない場合のエラー
	// 登録がディレクトリエントリを作成することはない（存在が前提条件）
	ErrVisitorNotFound = errors.New("訪問者がディレクトリに見つかりません")
)
