package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-checkin/internal/domain/registration"
	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
)

type registrationRow struct {
	ID               string     `db:"id"`
	VisitorID        string     `db:"visitor_id"`
	EventInstanceID  string     `db:"event_instance_id"`
	RegistrationDate time.Time  `db:"registration_date"`
	Status           string     `db:"status"`
	Notes            *string    `db:"notes"`
	VisitorFirstName *string    `db:"first_name"`
	VisitorLastName  *string    `db:"last_name"`
	VisitorPhone     *string    `db:"phone"`
	VisitorEmail     *string    `db:"email"`
	EventName        *string    `db:"event_name"`
	EventStartDate   *time.Time `db:"event_start_date"`
	EventEndDate     *time.Time `db:"event_end_date"`
	InstanceStatus   *string    `db:"instance_status"`
}

func (r *registrationRow) toEntity() *registration.Registration {
	reg := &registration.Registration{
		ID:               r.ID,
		VisitorID:        r.VisitorID,
		EventInstanceID:  r.EventInstanceID,
		RegistrationDate: r.RegistrationDate,
		Status:           registration.Status(r.Status),
	}
	if r.Notes != nil {
		reg.Notes = *r.Notes
	}
	if r.VisitorFirstName != nil && r.VisitorLastName != nil {
		reg.VisitorName = *r.VisitorFirstName + " " + *r.VisitorLastName
	}
	if r.VisitorPhone != nil {
		reg.VisitorPhone = *r.VisitorPhone
	}
	if r.VisitorEmail != nil {
		reg.VisitorEmail = *r.VisitorEmail
	}
	if r.EventName != nil {
		reg.EventName = *r.EventName
	}
	if r.EventStartDate != nil {
		reg.EventStartDate = *r.EventStartDate
	}
	if r.EventEndDate != nil {
		reg.EventEndDate = *r.EventEndDate
	}
	if r.InstanceStatus != nil {
		reg.InstanceStatus = *r.InstanceStatus
	}
	return reg
}

// RegistrationRepository は登録リポジトリのPostgreSQL実装
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository はRegistrationRepositoryを作成する
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create は新しい登録を作成する
// (visitor_id, event_instance_id) の一意制約が実際の安全機構であり、
// 事前のアプリケーション側チェックはエラーメッセージのための最適化にすぎない
func (r *RegistrationRepository) Create(ctx context.Context, tx transaction.Tx, reg *registration.Registration) error {
	query := `
		INSERT INTO event_registrations (visitor_id, event_instance_id, registration_date, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		reg.VisitorID, reg.EventInstanceID, reg.RegistrationDate, string(reg.Status), reg.Notes,
	).Scan(&reg.ID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return registration.ErrAlreadyRegistered
		}
		return fmt.Errorf("登録作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから登録を関連情報付きで取得する
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*registration.Registration, error) {
	query := `
		SELECT er.id, er.visitor_id, er.event_instance_id, er.registration_date, er.status, er.notes,
		       vd.first_name, vd.last_name, vd.phone, vd.email,
		       se.name AS event_name, ei.start_date AS event_start_date, ei.end_date AS event_end_date,
		       ei.status AS instance_status
		FROM event_registrations er
		JOIN visitor_directory vd ON er.visitor_id = vd.id
		JOIN event_instances ei ON er.event_instance_id = ei.id
		JOIN scheduled_events se ON ei.scheduled_event_id = se.id
		WHERE er.id = $1
	`
	var row registrationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("登録取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByVisitorAndInstance は (訪問者, インスタンス) の登録を状態に関係なく取得する
func (r *RegistrationRepository) GetByVisitorAndInstance(ctx context.Context, visitorID, instanceID string) (*registration.Registration, error) {
	query := `
		SELECT id, visitor_id, event_instance_id, registration_date, status, notes
		FROM event_registrations
		WHERE visitor_id = $1 AND event_instance_id = $2
	`
	var row registrationRow
	if err := r.db.GetContext(ctx, &row, query, visitorID, instanceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("登録取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByVisitor は訪問者の全登録をインスタンス開始日時の降順で取得する
func (r *RegistrationRepository) ListByVisitor(ctx context.Context, visitorID string) ([]*registration.Registration, error) {
	query := `
		SELECT er.id, er.visitor_id, er.event_instance_id, er.registration_date, er.status, er.notes,
		       se.name AS event_name, ei.start_date AS event_start_date, ei.end_date AS event_end_date,
		       ei.status AS instance_status
		FROM event_registrations er
		JOIN event_instances ei ON er.event_instance_id = ei.id
		JOIN scheduled_events se ON ei.scheduled_event_id = se.id
		WHERE er.visitor_id = $1
		ORDER BY ei.start_date DESC
	`
	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, visitorID); err != nil {
		return nil, fmt.Errorf("登録一覧取得に失敗しました: %w", err)
	}
	result := make([]*registration.Registration, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

// ListByInstance はインスタンスの全登録を訪問者情報付き・登録日時の昇順で取得する
func (r *RegistrationRepository) ListByInstance(ctx context.Context, instanceID string) ([]*registration.Registration, error) {
	query := `
		SELECT er.id, er.visitor_id, er.event_instance_id, er.registration_date, er.status, er.notes,
		       vd.first_name, vd.last_name, vd.phone, vd.email
		FROM event_registrations er
		JOIN visitor_directory vd ON er.visitor_id = vd.id
		WHERE er.event_instance_id = $1
		ORDER BY er.registration_date ASC
	`
	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, instanceID); err != nil {
		return nil, fmt.Errorf("登録一覧取得に失敗しました: %w", err)
	}
	result := make([]*registration.Registration, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

// UpdateStatus は登録の状態を更新する
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, reg *registration.Registration) error {
	query := `UPDATE event_registrations SET status = $1 WHERE id = $2`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, string(reg.Status), reg.ID)
	if err != nil {
		return fmt.Errorf("登録状態更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return registration.ErrRegistrationNotFound
	}
	return nil
}

// CountActiveByInstance はインスタンスの registered 状態の登録数を取得する
func (r *RegistrationRepository) CountActiveByInstance(ctx context.Context, instanceID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM event_registrations WHERE event_instance_id = $1 AND status = 'registered'`
	if err := r.db.GetContext(ctx, &count, query, instanceID); err != nil {
		return 0, fmt.Errorf("登録数取得に失敗しました: %w", err)
	}
	return count, nil
}

var _ registration.Repository = (*RegistrationRepository)(nil)
