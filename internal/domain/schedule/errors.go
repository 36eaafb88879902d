package schedule

import "errors"

// ScheduledEvent ドメインのエラー定義
var (
	ErrScheduledEventNotFound    = errors.New("スケジュールイベントが見つかりません")
	ErrNameRequired              = errors.New("イベント名は必須です")
	ErrInvalidEventWindow        = errors.New("終了日時は開始日時より後である必要があります")
	ErrRecurrenceTypeRequired    = errors.New("繰り返しイベントには繰り返し種別と間隔が必須です")
	ErrInvalidRecurrenceType     = errors.New("不正な繰り返し種別です")
	ErrInvalidRecurrenceInterval = errors.New("繰り返し間隔は1以上である必要があります")
	ErrInvalidRecurrenceDay      = errors.New("曜日インデックスは0〜6である必要があります")
	ErrInvalidStatus             = errors.New("不正なイベント状態です")
	ErrRegenerationNotConfirmed  = errors.New("繰り返し設定の変更には未来インスタンス再生成の確認が必要です")
)
