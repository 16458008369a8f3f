package assignments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/lifecycle"
	"github.com/Spok95/spa-clinic/internal/domain/sessions"
	"github.com/Spok95/spa-clinic/internal/infra/db"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, patient_id, treatment_id, assistant_id, seller_id, assistant_pct, seller_pct,
	sessions_assigned, sessions_paid, sessions_remaining, total_cost, total_paid, balance,
	assistant_commission, seller_commission, assigned_at, first_session_date, status, is_promotion`

func scan(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.PatientID, &a.TreatmentID, &a.AssistantID, &a.SellerID, &a.AssistantPercentage, &a.SellerPercentage,
		&a.SessionsAssigned, &a.SessionsPaid, &a.SessionsRemaining, &a.TotalCost, &a.TotalPaid, &a.PendingBalance,
		&a.AssistantCommission, &a.SellerCommission, &a.AssignedAt, &a.FirstSessionDate, &a.Status, &a.IsPromotion)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create пишет назначение, компоненты, первые сессии и строки журнала
// комиссий. Либо всё, либо ничего.
func (r *Repo) Create(ctx context.Context, d Draft) (*Assignment, error) {
	a := d.Assignment
	a.Components = append([]ComponentAssignment(nil), d.Assignment.Components...)
	firsts := append([]sessions.Session(nil), d.FirstSessions...)

	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO assignments (patient_id, treatment_id, assistant_id, seller_id, assistant_pct, seller_pct,
				sessions_assigned, sessions_paid, sessions_remaining, total_cost, total_paid, balance,
				assistant_commission, seller_commission, assigned_at, first_session_date, status, is_promotion)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
			RETURNING id, assigned_at
		`, a.PatientID, a.TreatmentID, a.AssistantID, a.SellerID, a.AssistantPercentage, a.SellerPercentage,
			a.SessionsAssigned, a.SessionsPaid, a.SessionsRemaining, a.TotalCost, a.TotalPaid, a.PendingBalance,
			a.AssistantCommission, a.SellerCommission, a.AssignedAt, a.FirstSessionDate, a.Status, a.IsPromotion,
		).Scan(&a.ID, &a.AssignedAt)
		if err != nil {
			return err
		}

		for i := range a.Components {
			c := &a.Components[i]
			c.AssignmentID = a.ID
			if err := tx.QueryRow(ctx, `
				INSERT INTO promotion_component_assignments (assignment_id, component_ref, component_name, assistant_id,
					assistant_pct, price_per_session, sessions_assigned, sessions_remaining)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
				RETURNING id
			`, c.AssignmentID, c.ComponentRef, c.Name, c.AssistantID,
				c.AssistantPercentage, c.PricePerSession, c.SessionsAssigned, c.SessionsRemaining,
			).Scan(&c.ID); err != nil {
				return err
			}
		}

		for i := range firsts {
			firsts[i].AssignmentID = a.ID
			if err := sessions.InsertTx(ctx, tx, &firsts[i]); err != nil {
				return err
			}
		}

		return commissions.Insert(ctx, tx, openingEntries(a, firsts))
	})
	if err != nil {
		if db.IsForeignKeyViolation(err) ||
			errors.Is(err, sessions.ErrUnknownAssistant) ||
			errors.Is(err, commissions.ErrUnknownStaff) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	return &a, nil
}

// Get — назначение вместе с компонентами (для промо-пакета).
func (r *Repo) Get(ctx context.Context, id int64) (*Assignment, error) {
	a, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM assignments WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if a.IsPromotion {
		if a.Components, err = r.components(ctx, id); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (r *Repo) ListByPatient(ctx context.Context, patientID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+`
		FROM assignments
		WHERE patient_id=$1
		ORDER BY assigned_at DESC, id DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Assignment{}
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Complete — ручное закрытие. Повторное закрытие — ErrAlreadyCompleted.
func (r *Repo) Complete(ctx context.Context, id int64) (*Assignment, error) {
	a, err := scan(r.pool.QueryRow(ctx, `
		UPDATE assignments SET status=$2
		WHERE id=$1 AND status=$3
		RETURNING `+columns,
		id, lifecycle.StatusCompleted, lifecycle.StatusActive))
	if errors.Is(err, ErrNotFound) {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM assignments WHERE id=$1)`, id).Scan(&exists); err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAlreadyCompleted
		}
		return nil, ErrNotFound
	}
	return a, err
}

func (r *Repo) components(ctx context.Context, assignmentID int64) ([]ComponentAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, assignment_id, component_ref, component_name, assistant_id, assistant_pct,
		       price_per_session, sessions_assigned, sessions_remaining
		FROM promotion_component_assignments
		WHERE assignment_id=$1
		ORDER BY id
	`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ComponentAssignment{}
	for rows.Next() {
		var c ComponentAssignment
		if err := rows.Scan(&c.ID, &c.AssignmentID, &c.ComponentRef, &c.Name, &c.AssistantID, &c.AssistantPercentage,
			&c.PricePerSession, &c.SessionsAssigned, &c.SessionsRemaining); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
