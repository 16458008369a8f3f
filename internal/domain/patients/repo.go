package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/spa-clinic/internal/infra/db"
)

var (
	ErrNotFound = errors.New("patients: not found")
	ErrInUse    = errors.New("patients: patient has assignments")
)

type Repo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool, now: time.Now} }

const columns = `id, name, sex, birth_date, phone, email, created_at`

func (r *Repo) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Sex, &p.BirthDate, &p.Phone, &p.Email, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.fillAge(r.now())
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, in Input) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (name, sex, birth_date, phone, email)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+columns,
		strings.TrimSpace(in.Name), in.Sex, in.BirthDate, strings.TrimSpace(in.Phone), strings.TrimSpace(in.Email))
	return r.scan(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := r.scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM patients WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *Repo) Update(ctx context.Context, id int64, in Input) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients SET name=$2, sex=$3, birth_date=$4, phone=$5, email=$6
		WHERE id=$1
		RETURNING `+columns,
		id, strings.TrimSpace(in.Name), in.Sex, in.BirthDate, strings.TrimSpace(in.Phone), strings.TrimSpace(in.Email))
	p, err := r.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id=$1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List ищет по части имени, почты или телефона без учёта регистра.
// Пустой search — все пациенты.
func (r *Repo) List(ctx context.Context, search string) ([]Patient, error) {
	q := `SELECT ` + columns + ` FROM patients`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		q += ` WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+s+"%")
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Patient{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
