package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
)

type instanceRow struct {
	ID               string    `db:"id"`
	ScheduledEventID string    `db:"scheduled_event_id"`
	StartDate        time.Time `db:"start_date"`
	EndDate          time.Time `db:"end_date"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
	EventName        *string   `db:"event_name"`
	EventLocation    *string   `db:"event_location"`
	EventStatus      *string   `db:"event_status"`
}

func (r *instanceRow) toEntity() *instance.EventInstance {
	inst := &instance.EventInstance{
		ID:               r.ID,
		ScheduledEventID: r.ScheduledEventID,
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		Status:           instance.Status(r.Status),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.EventName != nil {
		inst.EventName = *r.EventName
	}
	if r.EventLocation != nil {
		inst.EventLocation = *r.EventLocation
	}
	if r.EventStatus != nil {
		inst.EventStatus = *r.EventStatus
	}
	return inst
}

// InstanceRepository はイベントインスタンスリポジトリのPostgreSQL実装
type InstanceRepository struct {
	db *sqlx.DB
}

// NewInstanceRepository はInstanceRepositoryを作成する
func NewInstanceRepository(db *sqlx.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// CreateBulk はインスタンスをマルチバリューINSERTで一括作成する
func (r *InstanceRepository) CreateBulk(ctx context.Context, tx transaction.Tx, instances []*instance.EventInstance) error {
	if len(instances) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 500
	for i := 0; i < len(instances); i += batchSize {
		end := i + batchSize
		if end > len(instances) {
			end = len(instances)
		}
		if err := r.createBulkBatch(ctx, tx, instances[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *InstanceRepository) createBulkBatch(ctx context.Context, tx transaction.Tx, instances []*instance.EventInstance) error {
	query := `INSERT INTO event_instances (scheduled_event_id, start_date, end_date, status, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(instances)*6)
	placeholders := make([]string, 0, len(instances))

	for i, inst := range instances {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, inst.ScheduledEventID, inst.StartDate, inst.EndDate, string(inst.Status), inst.CreatedAt, inst.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := UnwrapTx(tx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("インスタンス一括作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからインスタンスを親イベント情報付きで取得する
func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*instance.EventInstance, error) {
	query := `
		SELECT ei.id, ei.scheduled_event_id, ei.start_date, ei.end_date, ei.status,
		       ei.created_at, ei.updated_at,
		       se.name AS event_name, se.location AS event_location, se.status AS event_status
		FROM event_instances ei
		JOIN scheduled_events se ON ei.scheduled_event_id = se.id
		WHERE ei.id = $1
	`
	var row instanceRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, instance.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("インスタンス取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByScheduledEvent はイベントの全インスタンスを開始日時昇順で取得する
func (r *InstanceRepository) ListByScheduledEvent(ctx context.Context, scheduledEventID string) ([]*instance.EventInstance, error) {
	query := `
		SELECT id, scheduled_event_id, start_date, end_date, status, created_at, updated_at
		FROM event_instances
		WHERE scheduled_event_id = $1
		ORDER BY start_date ASC
	`
	var rows []instanceRow
	if err := r.db.SelectContext(ctx, &rows, query, scheduledEventID); err != nil {
		return nil, fmt.Errorf("インスタンス一覧取得に失敗しました: %w", err)
	}
	instances := make([]*instance.EventInstance, len(rows))
	for i, row := range rows {
		instances[i] = row.toEntity()
	}
	return instances, nil
}

// DeleteFuture は開始日時が now より後のインスタンスを削除する
// 過去・進行中のインスタンスとその登録には触れない
func (r *InstanceRepository) DeleteFuture(ctx context.Context, tx transaction.Tx, scheduledEventID string, now time.Time) error {
	query := `DELETE FROM event_instances WHERE scheduled_event_id = $1 AND start_date > $2`
	if _, err := UnwrapTx(tx).ExecContext(ctx, query, scheduledEventID, now); err != nil {
		return fmt.Errorf("未来インスタンス削除に失敗しました: %w", err)
	}
	return nil
}

// UpdateStatus はインスタンスの状態を更新する
func (r *InstanceRepository) UpdateStatus(ctx context.Context, inst *instance.EventInstance) error {
	query := `UPDATE event_instances SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, string(inst.Status), inst.ID)
	if err != nil {
		return fmt.Errorf("インスタンス状態更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return instance.ErrInstanceNotFound
	}
	return nil
}

// CompletePast は終了日時が now より前の scheduled インスタンスを completed にする
func (r *InstanceRepository) CompletePast(ctx context.Context, now time.Time) (int, error) {
	query := `UPDATE event_instances SET status = 'completed', updated_at = NOW() WHERE status = 'scheduled' AND end_date < $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("過去インスタンス完了処理に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("完了処理結果の確認に失敗しました: %w", err)
	}
	return int(rows), nil
}

type visitorEventRow struct {
	InstanceID         string    `db:"instance_id"`
	ScheduledEventID   string    `db:"scheduled_event_id"`
	Name               string    `db:"name"`
	Description        *string   `db:"description"`
	Location           *string   `db:"location"`
	StartDate          time.Time `db:"start_date"`
	EndDate            time.Time `db:"end_date"`
	Status             string    `db:"status"`
	RegistrationID     *string   `db:"registration_id"`
	RegistrationStatus *string   `db:"registration_status"`
}

// ListFutureForVisitor は未来の開催可能インスタンスを訪問者の登録状況付きで取得する
func (r *InstanceRepository) ListFutureForVisitor(ctx context.Context, visitorID string, now time.Time) ([]*instance.VisitorEvent, error) {
	query := `
		SELECT ei.id AS instance_id, se.id AS scheduled_event_id, se.name, se.description, se.location,
		       ei.start_date, ei.end_date, ei.status,
		       er.id AS registration_id, er.status AS registration_status
		FROM event_instances ei
		JOIN scheduled_events se ON ei.scheduled_event_id = se.id
		LEFT JOIN event_registrations er ON ei.id = er.event_instance_id AND er.visitor_id = $1
		WHERE ei.start_date > $2 AND ei.status = 'scheduled' AND se.status = 'active'
		ORDER BY ei.start_date ASC
	`
	var rows []visitorEventRow
	if err := r.db.SelectContext(ctx, &rows, query, visitorID, now); err != nil {
		return nil, fmt.Errorf("訪問者向けイベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*instance.VisitorEvent, len(rows))
	for i, row := range rows {
		ev := &instance.VisitorEvent{
			InstanceID:         row.InstanceID,
			ScheduledEventID:   row.ScheduledEventID,
			Name:               row.Name,
			StartDate:          row.StartDate,
			EndDate:            row.EndDate,
			Status:             instance.Status(row.Status),
			RegistrationStatus: "not_registered",
		}
		if row.Description != nil {
			ev.Description = *row.Description
		}
		if row.Location != nil {
			ev.Location = *row.Location
		}
		if row.RegistrationID != nil {
			ev.RegistrationID = *row.RegistrationID
			if row.RegistrationStatus != nil {
				ev.RegistrationStatus = *row.RegistrationStatus
			}
		}
		events[i] = ev
	}
	return events, nil
}

var _ instance.Repository = (*InstanceRepository)(nil)
