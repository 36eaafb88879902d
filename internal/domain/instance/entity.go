package instance

import "time"

// Status はイベントインスタンスの状態を表す
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// EventInstance は繰り返し定義から生成された具体的な開催1回分を表す
// RecurrenceExpander + 一括挿入のみが生成経路であり、個別作成のAPIは存在しない
type EventInstance struct {
	ID               string
	ScheduledEventID string
	StartDate        time.Time
	EndDate          time.Time
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// 親イベント情報（JOINで取得された場合のみ設定される）
	EventName     string
	EventLocation string
	EventStatus   string
}

// NewEventInstance は新しいイベントインスタンスを作成する
func NewEventInstance(scheduledEventID string, startDate, endDate time.Time) *EventInstance {
	now := time.Now()
	return &EventInstance{
		ScheduledEventID: scheduledEventID,
		StartDate:        startDate,
		EndDate:          endDate,
		Status:           StatusScheduled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsSchedulable は新規登録を受け付けられる状態かを返す
func (i *EventInstance) IsSchedulable() bool {
	return i.Status == StatusScheduled
}

// IsPast は開始日時が過去かを返す
func (i *EventInstance) IsPast(now time.Time) bool {
	return i.StartDate.Before(now)
}

// Complete はインスタンスを完了状態にする
// completed / cancelled は終端状態であり、そこからの遷移は許可しない
func (i *EventInstance) Complete() error {
	if i.Status != StatusScheduled {
		return ErrInstanceNotSchedulable
	}
	i.Status = StatusCompleted
	i.UpdatedAt = time.Now()
	return nil
}

// Cancel はインスタンスをキャンセル状態にする
func (i *EventInstance) Cancel() error {
	if i.Status != StatusScheduled {
		return ErrInstanceNotSchedulable
	}
	i.Status = StatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}
