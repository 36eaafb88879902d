package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
)

// scheduledEventRow はDBの行を表す構造体
type scheduledEventRow struct {
	ID                 string        `db:"id"`
	Name               string        `db:"name"`
	Description        *string       `db:"description"`
	Location           *string       `db:"location"`
	StartDate          time.Time     `db:"start_date"`
	EndDate            time.Time     `db:"end_date"`
	Status             string        `db:"status"`
	IsRecurring        bool          `db:"is_recurring"`
	RecurrenceType     *string       `db:"recurrence_type"`
	RecurrenceInterval *int          `db:"recurrence_interval"`
	RecurrenceDays     pq.Int64Array `db:"recurrence_days"`
	RecurrenceEndDate  *time.Time    `db:"recurrence_end_date"`
	CreatedBy          *string       `db:"created_by"`
	UpdatedBy          *string       `db:"updated_by"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

const scheduledEventColumns = `id, name, description, location, start_date, end_date, status, is_recurring, recurrence_type, recurrence_interval, recurrence_days, recurrence_end_date, created_by, updated_by, created_at, updated_at`

// toEntity はscheduledEventRowをScheduledEventエンティティに変換する
func (r *scheduledEventRow) toEntity() *schedule.ScheduledEvent {
	e := &schedule.ScheduledEvent{
		ID:                r.ID,
		Name:              r.Name,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		Status:            schedule.Status(r.Status),
		IsRecurring:       r.IsRecurring,
		RecurrenceEndDate: r.RecurrenceEndDate,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Location != nil {
		e.Location = *r.Location
	}
	if r.RecurrenceType != nil {
		e.RecurrenceType = schedule.RecurrenceType(*r.RecurrenceType)
	}
	if r.RecurrenceInterval != nil {
		e.RecurrenceInterval = *r.RecurrenceInterval
	}
	if len(r.RecurrenceDays) > 0 {
		e.RecurrenceDays = make([]int, len(r.RecurrenceDays))
		for i, d := range r.RecurrenceDays {
			e.RecurrenceDays[i] = int(d)
		}
	}
	if r.CreatedBy != nil {
		e.CreatedBy = *r.CreatedBy
	}
	if r.UpdatedBy != nil {
		e.UpdatedBy = *r.UpdatedBy
	}
	return e
}

func recurrenceDaysArray(days []int) interface{} {
	if len(days) == 0 {
		return nil
	}
	arr := make(pq.Int64Array, len(days))
	for i, d := range days {
		arr[i] = int64(d)
	}
	return arr
}

// prefixColumns はカラムリストにテーブルエイリアスを付与する
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ScheduleRepository はスケジュールイベントリポジトリのPostgreSQL実装
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository はScheduleRepositoryを作成する
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create は新しいスケジュールイベントを作成する
func (r *ScheduleRepository) Create(ctx context.Context, tx transaction.Tx, e *schedule.ScheduledEvent) error {
	query := `
		INSERT INTO scheduled_events
			(name, description, location, start_date, end_date, status, is_recurring,
			 recurrence_type, recurrence_interval, recurrence_days, recurrence_end_date,
			 created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	var rt *string
	if e.RecurrenceType != "" {
		s := string(e.RecurrenceType)
		rt = &s
	}
	var interval *int
	if e.IsRecurring {
		interval = &e.RecurrenceInterval
	}

	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		e.Name, nullableString(e.Description), nullableString(e.Location),
		e.StartDate, e.EndDate, string(e.Status), e.IsRecurring,
		rt, interval, recurrenceDaysArray(e.RecurrenceDays), e.RecurrenceEndDate,
		nullableString(e.CreatedBy), nullableString(e.UpdatedBy), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("スケジュールイベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからスケジュールイベントを取得する
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*schedule.ScheduledEvent, error) {
	query := `SELECT ` + scheduledEventColumns + ` FROM scheduled_events WHERE id = $1`

	var row scheduledEventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrScheduledEventNotFound
		}
		return nil, fmt.Errorf("スケジュールイベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List は条件に一致するスケジュールイベント一覧を取得する
func (r *ScheduleRepository) List(ctx context.Context, filter schedule.ListFilter) ([]*schedule.ScheduledEvent, error) {
	var (
		query string
		args  []interface{}
	)
	switch {
	case filter.CreatedBy != "":
		query = `SELECT ` + scheduledEventColumns + ` FROM scheduled_events WHERE created_by = $1 ORDER BY start_date DESC`
		args = []interface{}{filter.CreatedBy}
	case filter.FutureOnly:
		// テンプレート開始が未来、または未来のインスタンスを持つ繰り返しイベント
		query = `
			SELECT DISTINCT ` + prefixColumns("se", scheduledEventColumns) + `
			FROM scheduled_events se
			LEFT JOIN event_instances ei ON se.id = ei.scheduled_event_id
			WHERE se.start_date > NOW()
			   OR (se.is_recurring = true AND ei.start_date > NOW())
			ORDER BY se.start_date ASC
		`
	default:
		query = `SELECT ` + scheduledEventColumns + ` FROM scheduled_events ORDER BY start_date DESC`
	}

	var rows []scheduledEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("スケジュールイベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*schedule.ScheduledEvent, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// Update はスケジュールイベントを更新する
func (r *ScheduleRepository) Update(ctx context.Context, tx transaction.Tx, e *schedule.ScheduledEvent) error {
	query := `
		UPDATE scheduled_events
		SET name = $1, description = $2, location = $3, start_date = $4, end_date = $5,
		    status = $6, is_recurring = $7, recurrence_type = $8, recurrence_interval = $9,
		    recurrence_days = $10, recurrence_end_date = $11, updated_by = $12, updated_at = NOW()
		WHERE id = $13
	`
	var rt *string
	if e.RecurrenceType != "" {
		s := string(e.RecurrenceType)
		rt = &s
	}
	var interval *int
	if e.IsRecurring {
		interval = &e.RecurrenceInterval
	}

	result, err := UnwrapTx(tx).ExecContext(ctx, query,
		e.Name, nullableString(e.Description), nullableString(e.Location),
		e.StartDate, e.EndDate, string(e.Status), e.IsRecurring,
		rt, interval, recurrenceDaysArray(e.RecurrenceDays), e.RecurrenceEndDate,
		nullableString(e.UpdatedBy), e.ID,
	)
	if err != nil {
		return fmt.Errorf("スケジュールイベント更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return schedule.ErrScheduledEventNotFound
	}
	return nil
}

// Delete はスケジュールイベントを削除する（インスタンス・登録はカスケード削除）
func (r *ScheduleRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	result, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM scheduled_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("スケジュールイベント削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return schedule.ErrScheduledEventNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ schedule.Repository = (*ScheduleRepository)(nil)
