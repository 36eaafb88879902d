package registration

import "time"

// Status は登録の状態を表す
type Status string

const (
	StatusRegistered Status = "registered"
	StatusCancelled  Status = "cancelled"
)

// Registration は訪問者によるインスタンス1件への参加登録を表す
// (visitor_id, event_instance_id) にはDB側で一意制約があり、
// キャンセル済みの行が残っている場合も再登録はできない
type Registration struct {
	ID               string
	VisitorID        string
	EventInstanceID  string
	RegistrationDate time.Time
	Status           Status
	Notes            string

	// 関連情報（JOINで取得された場合のみ設定される）
	VisitorName    string
	VisitorPhone   string
	VisitorEmail   string
	EventName      string
	EventStartDate time.Time
	EventEndDate   time.Time
	InstanceStatus string
}

// NewRegistration は新しい登録を作成する
func NewRegistration(visitorID, eventInstanceID, notes string) *Registration {
	return &Registration{
		VisitorID:        visitorID,
		EventInstanceID:  eventInstanceID,
		RegistrationDate: time.Now(),
		Status:           StatusRegistered,
		Notes:            notes,
	}
}

// Cancel は登録をキャンセル状態にする
// 行は削除せず status のみ変更する（一意制約により再登録はブロックされる）
func (r *Registration) Cancel() error {
	if r.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	r.Status = StatusCancelled
	return nil
}
