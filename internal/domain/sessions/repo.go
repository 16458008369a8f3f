package sessions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/infra/db"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, assignment_id, component_name, session_number, session_date, assistant_id,
	assistant_pct, payment_status, completed, amount_paid, billed_amount, commission_amount,
	next_appointment_date, created_at, updated_at`

func scan(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.AssignmentID, &s.ComponentName, &s.SessionNumber, &s.SessionDate, &s.AssistantID,
		&s.AssistantPercentage, &s.PaymentStatus, &s.Completed, &s.AmountPaid, &s.BilledAmount, &s.CommissionAmount,
		&s.NextAppointmentDate, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, ErrNotFound
	}
	return s, err
}

func (r *Repo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (r *Repo) Get(ctx context.Context, id int64) (*Session, error) {
	s, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM sessions WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List — сессии назначения по порядку; component != "" — только этого компонента.
func (r *Repo) List(ctx context.Context, assignmentID int64, component string) ([]Session, error) {
	q := `SELECT ` + columns + ` FROM sessions WHERE assignment_id=$1`
	args := []any{assignmentID}
	if component != "" {
		q += ` AND component_name=$2`
		args = append(args, component)
	}
	q += ` ORDER BY component_name, session_number`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Session{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type pgTx struct{ tx pgx.Tx }

// InsertTx пишет сессию в транзакции вызывающего (первые сессии назначения).
func InsertTx(ctx context.Context, tx pgx.Tx, s *Session) error {
	return (&pgTx{tx: tx}).Insert(ctx, s)
}

func (t *pgTx) LockParent(ctx context.Context, assignmentID int64, component string) (Parent, error) {
	var p Parent
	// цена сессии обычной процедуры — та, что была при назначении
	err := t.tx.QueryRow(ctx, `
		SELECT id, is_promotion, status, sessions_assigned, sessions_remaining,
		       ROUND(total_cost / sessions_assigned, 2)
		FROM assignments
		WHERE id=$1
		FOR UPDATE
	`, assignmentID).Scan(&p.AssignmentID, &p.IsPromotion, &p.Status, &p.SessionsAssigned, &p.SessionsRemaining, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrAssignmentNotFound
	}
	if err != nil {
		return p, err
	}
	if p.IsPromotion && component == "" {
		return p, nil
	}

	if p.IsPromotion {
		err = t.tx.QueryRow(ctx, `
			SELECT id, price_per_session, sessions_assigned, sessions_remaining
			FROM promotion_component_assignments
			WHERE assignment_id=$1 AND component_name=$2
			FOR UPDATE
		`, assignmentID, component).Scan(&p.ComponentID, &p.Price, &p.ComponentAssigned, &p.ComponentRemaining)
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrComponentNotFound
		}
		if err != nil {
			return p, err
		}
	}

	err = t.tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM sessions
		WHERE assignment_id=$1 AND component_name=$2 AND completed = FALSE
	`, assignmentID, component).Scan(&p.Open)
	return p, err
}

func (t *pgTx) NextNumber(ctx context.Context, assignmentID int64, component string) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(session_number), 0) + 1
		FROM sessions
		WHERE assignment_id=$1 AND component_name=$2
	`, assignmentID, component).Scan(&n)
	return n, err
}

func (t *pgTx) GetForUpdate(ctx context.Context, sessionID int64) (Session, error) {
	return scan(t.tx.QueryRow(ctx, `SELECT `+columns+` FROM sessions WHERE id=$1 FOR UPDATE`, sessionID))
}

func (t *pgTx) Insert(ctx context.Context, s *Session) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO sessions (assignment_id, component_name, session_number, session_date, assistant_id,
			assistant_pct, payment_status, completed, amount_paid, billed_amount, commission_amount, next_appointment_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at
	`, s.AssignmentID, s.ComponentName, s.SessionNumber, s.SessionDate, s.AssistantID,
		s.AssistantPercentage, s.PaymentStatus, s.Completed, s.AmountPaid, s.BilledAmount, s.CommissionAmount, s.NextAppointmentDate,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapWriteErr(err)
}

func (t *pgTx) Update(ctx context.Context, s *Session) error {
	err := t.tx.QueryRow(ctx, `
		UPDATE sessions
		SET session_date=$2, assistant_id=$3, assistant_pct=$4, payment_status=$5, completed=$6,
		    amount_paid=$7, billed_amount=$8, commission_amount=$9, next_appointment_date=$10, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, s.ID, s.SessionDate, s.AssistantID, s.AssistantPercentage, s.PaymentStatus, s.Completed,
		s.AmountPaid, s.BilledAmount, s.CommissionAmount, s.NextAppointmentDate,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return mapWriteErr(err)
}

func (t *pgTx) ApplyDelta(ctx context.Context, p Parent, d Delta) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE assignments
		SET total_paid = total_paid + $2,
		    balance = total_cost - (total_paid + $2),
		    sessions_remaining = sessions_remaining - $3,
		    assistant_commission = assistant_commission + $4,
		    status = $5
		WHERE id=$1
	`, p.AssignmentID, d.Paid, d.Done, d.Commission, p.NextStatus(d))
	if err != nil {
		return err
	}
	if p.ComponentID == 0 || d.Done == 0 {
		return nil
	}
	_, err = t.tx.Exec(ctx, `
		UPDATE promotion_component_assignments
		SET sessions_remaining = sessions_remaining - $2
		WHERE id=$1
	`, p.ComponentID, d.Done)
	return err
}

func (t *pgTx) AddEntries(ctx context.Context, entries []commissions.Entry) error {
	return commissions.Insert(ctx, t.tx, entries)
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrDuplicateNumber
	case db.IsForeignKeyViolation(err):
		return ErrUnknownAssistant
	}
	return err
}
