package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
	"github.com/sanosuguru/go-event-checkin/internal/pkg/metrics"
)

// ScheduleService はスケジュールイベントのライフサイクルを管理する
// 作成・更新時の展開結果の永続化は1トランザクションで行い、
// 失敗時は定義・インスタンスとも全体をロールバックする
type ScheduleService struct {
	txManager    transaction.Manager
	scheduleRepo schedule.Repository
	instanceRepo instance.Repository
	maxInstances int
	metrics      *metrics.Metrics
}

// NewScheduleService はScheduleServiceを作成する
func NewScheduleService(tm transaction.Manager, sr schedule.Repository, ir instance.Repository, maxInstances int, m *metrics.Metrics) *ScheduleService {
	if maxInstances <= 0 {
		maxInstances = schedule.DefaultMaxInstances
	}
	return &ScheduleService{
		txManager:    tm,
		scheduleRepo: sr,
		instanceRepo: ir,
		maxInstances: maxInstances,
		metrics:      m,
	}
}

// CreateScheduleInput はスケジュールイベント作成の入力
type CreateScheduleInput struct {
	Name               string
	Description        string
	Location           string
	StartDate          time.Time
	EndDate            time.Time
	IsRecurring        bool
	RecurrenceType     string
	RecurrenceInterval int
	RecurrenceDays     []int
	RecurrenceEndDate  *time.Time
	CreatedBy          string
}

// CreateSchedule はスケジュールイベントを作成し、展開された全インスタンスを永続化する
func (s *ScheduleService) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*schedule.ScheduledEvent, error) {
	e := schedule.NewScheduledEvent(input.Name, input.Description, input.Location, input.StartDate, input.EndDate, input.CreatedBy)
	if input.IsRecurring {
		e.SetRecurrence(schedule.RecurrenceType(input.RecurrenceType), input.RecurrenceInterval, input.RecurrenceDays, input.RecurrenceEndDate)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}

	windows := e.Expand(s.maxInstances)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := s.scheduleRepo.Create(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := s.instanceRepo.CreateBulk(ctx, tx, buildInstances(e.ID, windows)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.InstancesGenerated.Observe(float64(len(windows)))
	}
	return e, nil
}

// GetSchedule はスケジュールイベントをインスタンス一覧付きで取得する
func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (*schedule.ScheduledEvent, []*instance.EventInstance, error) {
	e, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	instances, err := s.instanceRepo.ListByScheduledEvent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return e, instances, nil
}

// ListSchedules はスケジュールイベント一覧を取得する
func (s *ScheduleService) ListSchedules(ctx context.Context, filter schedule.ListFilter) ([]*schedule.ScheduledEvent, error) {
	return s.scheduleRepo.List(ctx, filter)
}

// UpdateScheduleInput はスケジュールイベント更新の入力
// nil のフィールドは既存の値を維持する
type UpdateScheduleInput struct {
	ID                 string
	Name               *string
	Description        *string
	Location           *string
	StartDate          *time.Time
	EndDate            *time.Time
	Status             *string
	IsRecurring        *bool
	RecurrenceType     *string
	RecurrenceInterval *int
	RecurrenceDays     []int // nil は維持、空スライスはクリア
	RecurrenceEndDate  *time.Time
	UpdatedBy          string

	// ConfirmRegeneration は未来インスタンスの破棄を伴う再生成の明示的な確認
	// 再生成で削除されたインスタンス上の登録は復元できない
	ConfirmRegeneration bool
}

// UpdateSchedule はスケジュールイベントを部分更新する
// 繰り返し関連フィールドが変更された場合は未来インスタンスを削除して再展開する
// 過去・進行中のインスタンスには触れない
func (s *ScheduleService) UpdateSchedule(ctx context.Context, input UpdateScheduleInput) (*schedule.ScheduledEvent, error) {
	before, err := s.scheduleRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	after := cloneSchedule(before)
	applyChanges(after, input)
	if err := after.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}

	regenerate := schedule.RecurrenceRelevantChanged(before, after)
	if regenerate && !input.ConfirmRegeneration {
		return nil, schedule.ErrRegenerationNotConfirmed
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := s.scheduleRepo.Update(ctx, tx, after); err != nil {
		return nil, err
	}

	if regenerate {
		now := time.Now()
		// 削除が再挿入より先に行われるため、同一トランザクション内の
		// 読み手が部分的に再生成されたインスタンス集合を観測することはない
		if err := s.instanceRepo.DeleteFuture(ctx, tx, after.ID, now); err != nil {
			return nil, err
		}
		windows := futureWindows(after.Expand(s.maxInstances), now)
		if err := s.instanceRepo.CreateBulk(ctx, tx, buildInstances(after.ID, windows)); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.RegenerationsTotal.Inc()
			s.metrics.InstancesGenerated.Observe(float64(len(windows)))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗しました: %w", err)
	}
	return after, nil
}

// DeleteSchedule はスケジュールイベントを削除する
// インスタンスとその登録はDBの外部キーでカスケード削除される
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id string) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := s.scheduleRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗しました: %w", err)
	}
	return nil
}

func buildInstances(scheduledEventID string, windows []schedule.Window) []*instance.EventInstance {
	instances := make([]*instance.EventInstance, len(windows))
	for i, w := range windows {
		instances[i] = instance.NewEventInstance(scheduledEventID, w.Start, w.End)
	}
	return instances
}

// futureWindows は再生成時に過去のウィンドウを除外する
// 過去のインスタンスは削除されずに残るため、再挿入すると重複してしまう
func futureWindows(windows []schedule.Window, now time.Time) []schedule.Window {
	result := make([]schedule.Window, 0, len(windows))
	for _, w := range windows {
		if w.Start.After(now) {
			result = append(result, w)
		}
	}
	return result
}

func cloneSchedule(e *schedule.ScheduledEvent) *schedule.ScheduledEvent {
	c := *e
	if e.RecurrenceDays != nil {
		c.RecurrenceDays = append([]int(nil), e.RecurrenceDays...)
	}
	if e.RecurrenceEndDate != nil {
		t := *e.RecurrenceEndDate
		c.RecurrenceEndDate = &t
	}
	return &c
}

func applyChanges(e *schedule.ScheduledEvent, input UpdateScheduleInput) {
	if input.Name != nil {
		e.Name = *input.Name
	}
	if input.Description != nil {
		e.Description = *input.Description
	}
	if input.Location != nil {
		e.Location = *input.Location
	}
	if input.StartDate != nil {
		e.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		e.EndDate = *input.EndDate
	}
	if input.Status != nil {
		e.Status = schedule.Status(*input.Status)
	}
	if input.IsRecurring != nil {
		e.IsRecurring = *input.IsRecurring
	}
	if input.RecurrenceType != nil {
		e.RecurrenceType = schedule.RecurrenceType(*input.RecurrenceType)
	}
	if input.RecurrenceInterval != nil {
		e.RecurrenceInterval = *input.RecurrenceInterval
	}
	if input.RecurrenceDays != nil {
		e.RecurrenceDays = input.RecurrenceDays
	}
	if input.RecurrenceEndDate != nil {
		e.RecurrenceEndDate = input.RecurrenceEndDate
	}
	e.UpdatedBy = input.UpdatedBy
	e.UpdatedAt = time.Now()
}
