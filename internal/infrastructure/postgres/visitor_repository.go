package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-checkin/internal/domain/visitor"
)

type visitorRow struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     *string   `db:"email"`
	Phone     string    `db:"phone"`
	Address   *string   `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *visitorRow) toEntity() *visitor.Visitor {
	v := &visitor.Visitor{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Email != nil {
		v.Email = *r.Email
	}
	if r.Address != nil {
		v.Address = *r.Address
	}
	return v
}

// VisitorDirectory は訪問者ディレクトリのPostgreSQL実装（読み取り専用）
type VisitorDirectory struct {
	db *sqlx.DB
}

// NewVisitorDirectory はVisitorDirectoryを作成する
func NewVisitorDirectory(db *sqlx.DB) *VisitorDirectory {
	return &VisitorDirectory{db: db}
}

// GetByPhone は電話番号から訪問者を取得する
func (r *VisitorDirectory) GetByPhone(ctx context.Context, phone string) (*visitor.Visitor, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, address, created_at, updated_at
		FROM visitor_directory
		WHERE phone = $1
	`
	var row visitorRow
	if err := r.db.GetContext(ctx, &row, query, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, visitor.ErrVisitorNotFound
		}
		return nil, fmt.Errorf("訪問者取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

var _ visitor.Directory = (*VisitorDirectory)(nil)
