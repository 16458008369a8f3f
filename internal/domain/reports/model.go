package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/lifecycle"
)

// Filter — пустое поле означает «все». Даты включительно, по дню назначения.
type Filter struct {
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	AssistantID *int64     `json:"assistant_id,omitempty"`
	TreatmentID *int64     `json:"treatment_id,omitempty"`
}

// Key — ключ кэша для фильтра.
// Until — исключающая верхняя граница по assigned_at: полночь дня после To
// в том же часовом поясе.
func (f Filter) Until() *time.Time {
	if f.To == nil {
		return nil
	}
	u := f.To.AddDate(0, 0, 1)
	return &u
}

func (f Filter) Key() string {
	day := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.Format(time.DateOnly)
	}
	id := func(v *int64) string {
		if v == nil {
			return "*"
		}
		return fmt.Sprint(*v)
	}
	return fmt.Sprintf("assignments:%s:%s:%s:%s", day(f.From), day(f.To), id(f.AssistantID), id(f.TreatmentID))
}

type Row struct {
	AssignmentID        int64                      `json:"assignment_id"`
	AssignedAt          time.Time                  `json:"assigned_at"`
	PatientID           int64                      `json:"patient_id"`
	PatientName         string                     `json:"patient_name"`
	TreatmentID         int64                      `json:"treatment_id"`
	TreatmentName       string                     `json:"treatment_name"`
	IsPromotion         bool                       `json:"is_promotion"`
	AssistantName       string                     `json:"assistant_name,omitempty"`
	SellerName          string                     `json:"seller_name,omitempty"`
	Status              lifecycle.AssignmentStatus `json:"status"`
	SessionsAssigned    int                        `json:"sessions_assigned"`
	SessionsRemaining   int                        `json:"sessions_remaining"`
	TotalCost           decimal.Decimal            `json:"total_cost"`
	TotalPaid           decimal.Decimal            `json:"total_paid"`
	PendingBalance      decimal.Decimal            `json:"pending_balance"`
	AssistantCommission decimal.Decimal            `json:"assistant_commission"`
	SellerCommission    decimal.Decimal            `json:"seller_commission"`
}

type Summary struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Report struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// Summarize: TotalAmount — сумма стоимости назначений.
func Summarize(rows []Row) Summary {
	s := Summary{Count: len(rows), TotalAmount: decimal.Zero}
	for _, r := range rows {
		s.TotalAmount = s.TotalAmount.Add(r.TotalCost)
	}
	return s
}
