package staff

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("staff: not found")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	if err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Active, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, in Input) (*Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		INSERT INTO staff (name, phone) VALUES ($1,$2)
		RETURNING id, name, phone, active, created_at
	`, strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone)))
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		SELECT id, name, phone, active, created_at
		FROM staff WHERE id=$1
	`, id))
}

func (r *Repo) Update(ctx context.Context, id int64, in Input) (*Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		UPDATE staff SET name=$2, phone=$3 WHERE id=$1
		RETURNING id, name, phone, active, created_at
	`, id, strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone)))
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		UPDATE staff SET active=$2 WHERE id=$1
		RETURNING id, name, phone, active, created_at
	`, id, active))
}

// List — сотрудники с начисленными/выплаченными комиссиями.
func (r *Repo) List(ctx context.Context, onlyActive bool) ([]WithBalance, error) {
	q := `
		SELECT s.id, s.name, s.phone, s.active, s.created_at,
		       COALESCE(SUM(e.amount) FILTER (WHERE e.kind <> 'PAYOUT'), 0),
		       COALESCE(SUM(e.amount) FILTER (WHERE e.kind = 'PAYOUT'), 0)
		FROM staff s
		LEFT JOIN commission_entries e ON e.staff_id = s.id
	`
	if onlyActive {
		q += " WHERE s.active = TRUE"
	}
	q += " GROUP BY s.id ORDER BY s.name"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []WithBalance{}
	for rows.Next() {
		var m WithBalance
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone, &m.Active, &m.CreatedAt, &m.Earned, &m.PaidOut); err != nil {
			return nil, err
		}
		m.Pending = m.Earned.Sub(m.PaidOut)
		out = append(out, m)
	}
	return out, rows.Err()
}
