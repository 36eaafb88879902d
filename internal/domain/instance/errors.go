package instance

import "errors"

// EventInstance ドメインのエラー定義
var (
	ErrInstanceNotFound       = errors.New("イベントインスタンスが見つかりません")
	ErrInstanceNotSchedulable = errors.New("完了またはキャンセル済みのインスタンスです")
)
