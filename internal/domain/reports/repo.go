package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Assignments — назначения под фильтр, с именами пациента, процедуры и
// сотрудников. Ассистент совпадает, если он ведёт назначение целиком или
// хотя бы один компонент промо-пакета.
func (r *Repo) Assignments(ctx context.Context, f Filter) ([]Row, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.From != nil {
		where = append(where, "a.assigned_at >= "+arg(*f.From))
	}
	if until := f.Until(); until != nil {
		where = append(where, "a.assigned_at < "+arg(*until))
	}
	if f.TreatmentID != nil {
		where = append(where, "a.treatment_id = "+arg(*f.TreatmentID))
	}
	if f.AssistantID != nil {
		p := arg(*f.AssistantID)
		where = append(where, `(a.assistant_id = `+p+` OR EXISTS (
			SELECT 1 FROM promotion_component_assignments pc
			WHERE pc.assignment_id = a.id AND pc.assistant_id = `+p+`))`)
	}

	q := `
		SELECT a.id, a.assigned_at, a.patient_id, p.name, a.treatment_id, t.name, a.is_promotion,
		       COALESCE(st.name, ''), COALESCE(sl.name, ''), a.status,
		       a.sessions_assigned, a.sessions_remaining,
		       a.total_cost, a.total_paid, a.balance, a.assistant_commission, a.seller_commission
		FROM assignments a
		JOIN patients p ON p.id = a.patient_id
		JOIN treatments t ON t.id = a.treatment_id
		LEFT JOIN staff st ON st.id = a.assistant_id
		LEFT JOIN staff sl ON sl.id = a.seller_id
	`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY a.assigned_at DESC, a.id DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var x Row
		if err := rows.Scan(&x.AssignmentID, &x.AssignedAt, &x.PatientID, &x.PatientName, &x.TreatmentID, &x.TreatmentName, &x.IsPromotion,
			&x.AssistantName, &x.SellerName, &x.Status,
			&x.SessionsAssigned, &x.SessionsRemaining,
			&x.TotalCost, &x.TotalPaid, &x.PendingBalance, &x.AssistantCommission, &x.SellerCommission); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}
