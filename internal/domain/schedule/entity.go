package schedule

import "time"

// Status はスケジュールイベントの状態を表す
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// RecurrenceType は繰り返しの種類を表す
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

// ScheduledEvent はスケジュールイベント（繰り返し定義）エンティティを表す
// 予約可能な枠そのものではなく、インスタンス生成のテンプレート
type ScheduledEvent struct {
	ID                 string
	Name               string
	Description        string
	Location           string
	StartDate          time.Time
	EndDate            time.Time
	Status             Status
	IsRecurring        bool
	RecurrenceType     RecurrenceType
	RecurrenceInterval int
	RecurrenceDays     []int // 曜日インデックス（0=日曜〜6=土曜）、weekly のみ有効
	RecurrenceEndDate  *time.Time
	CreatedBy          string
	UpdatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewScheduledEvent は新しいスケジュールイベントを作成する
func NewScheduledEvent(name, description, location string, startDate, endDate time.Time, createdBy string) *ScheduledEvent {
	now := time.Now()
	return &ScheduledEvent{
		Name:        name,
		Description: description,
		Location:    location,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      StatusActive,
		CreatedBy:   createdBy,
		UpdatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetRecurrence は繰り返し設定を付与する
func (e *ScheduledEvent) SetRecurrence(rt RecurrenceType, interval int, days []int, endDate *time.Time) {
	e.IsRecurring = true
	e.RecurrenceType = rt
	e.RecurrenceInterval = interval
	e.RecurrenceDays = days
	e.RecurrenceEndDate = endDate
}

// Duration はテンプレート期間（1インスタンスの長さ）を返す
func (e *ScheduledEvent) Duration() time.Duration {
	return e.EndDate.Sub(e.StartDate)
}

// IsActive はイベントが有効かを返す
func (e *ScheduledEvent) IsActive() bool {
	return e.Status == StatusActive
}

// Validate はスケジュールイベントの検証を行う
func (e *ScheduledEvent) Validate() error {
	if e.Name == "" {
		return ErrNameRequired
	}
	if !e.EndDate.After(e.StartDate) {
		return ErrInvalidEventWindow
	}
	switch e.Status {
	case StatusActive, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	if !e.IsRecurring {
		return nil
	}
	switch e.RecurrenceType {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
	case "":
		return ErrRecurrenceTypeRequired
	default:
		return ErrInvalidRecurrenceType
	}
	// インターバル0はカーソルが進まず上限まで同一窓を生成してしまうため、ここで拒否する
	if e.RecurrenceInterval < 1 {
		return ErrInvalidRecurrenceInterval
	}
	for _, d := range e.RecurrenceDays {
		if d < 0 || d > 6 {
			return ErrInvalidRecurrenceDay
		}
	}
	return nil
}

// RecurrenceRelevantChanged は再生成が必要なフィールドが変更されたかを判定する
func RecurrenceRelevantChanged(before, after *ScheduledEvent) bool {
	if before.IsRecurring != after.IsRecurring ||
		before.RecurrenceType != after.RecurrenceType ||
		before.RecurrenceInterval != after.RecurrenceInterval ||
		!before.StartDate.Equal(after.StartDate) ||
		!before.EndDate.Equal(after.EndDate) {
		return true
	}
	if !equalTimePtr(before.RecurrenceEndDate, after.RecurrenceEndDate) {
		return true
	}
	if len(before.RecurrenceDays) != len(after.RecurrenceDays) {
		return true
	}
	for i := range before.RecurrenceDays {
		if before.RecurrenceDays[i] != after.RecurrenceDays[i] {
			return true
		}
	}
	return false
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
