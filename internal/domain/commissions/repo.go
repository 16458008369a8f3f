package commissions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/spa-clinic/internal/infra/db"
)

var ErrUnknownStaff = errors.New("commissions: unknown staff member")

// Execer — пул или транзакция.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Insert пишет строки журнала; вызывается внутри транзакций назначений и сессий.
func Insert(ctx context.Context, ex Execer, entries []Entry) error {
	for _, e := range entries {
		if e.Amount.IsZero() {
			continue
		}
		_, err := ex.Exec(ctx, `
			INSERT INTO commission_entries (staff_id, assignment_id, session_id, kind, amount, detail)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, e.StaffID, e.AssignmentID, e.SessionID, e.Kind, e.Amount, e.Detail)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrUnknownStaff
			}
			return err
		}
	}
	return nil
}

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) CreatePayout(ctx context.Context, in PayoutInput) (*Entry, error) {
	e := Entry{StaffID: in.StaffID, Kind: KindPayout, Amount: in.Amount, Detail: in.Detail}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO commission_entries (staff_id, kind, amount, detail)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, e.StaffID, e.Kind, e.Amount, e.Detail).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUnknownStaff
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repo) ListByStaff(ctx context.Context, staffID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, staff_id, assignment_id, session_id, kind, amount, detail, created_at
		FROM commission_entries
		WHERE staff_id=$1
		ORDER BY created_at, id
	`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.StaffID, &e.AssignmentID, &e.SessionID, &e.Kind, &e.Amount, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
