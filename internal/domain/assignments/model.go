package assignments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/lifecycle"
	"github.com/Spok95/spa-clinic/internal/domain/sessions"
)

type Assignment struct {
	ID                  int64                      `json:"id"`
	PatientID           int64                      `json:"patient_id"`
	TreatmentID         int64                      `json:"treatment_id"`
	AssistantID         *int64                     `json:"assistant_id,omitempty"`
	SellerID            *int64                     `json:"seller_id,omitempty"`
	AssistantPercentage decimal.Decimal            `json:"assistant_percentage"`
	SellerPercentage    decimal.Decimal            `json:"seller_percentage"`
	SessionsAssigned    int                        `json:"sessions_assigned"`
	SessionsPaid        int                        `json:"sessions_paid"`
	SessionsRemaining   int                        `json:"sessions_remaining"`
	TotalCost           decimal.Decimal            `json:"total_cost"`
	TotalPaid           decimal.Decimal            `json:"total_paid"`
	PendingBalance      decimal.Decimal            `json:"pending_balance"`
	AssistantCommission decimal.Decimal            `json:"assistant_commission"`
	SellerCommission    decimal.Decimal            `json:"seller_commission"`
	AssignedAt          time.Time                  `json:"assigned_at"`
	FirstSessionDate    time.Time                  `json:"first_session_date"`
	Status              lifecycle.AssignmentStatus `json:"status"`
	IsPromotion         bool                       `json:"is_promotion"`

	Components []ComponentAssignment `json:"components,omitempty"`
}

// ComponentAssignment — компонент промо-пакета внутри назначения. Цена,
// ассистент и процент фиксируются при назначении.
type ComponentAssignment struct {
	ID                  int64           `json:"id"`
	AssignmentID        int64           `json:"assignment_id"`
	ComponentRef        int64           `json:"component_ref"`
	Name                string          `json:"name"`
	AssistantID         int64           `json:"assistant_id"`
	AssistantPercentage decimal.Decimal `json:"assistant_percentage"`
	PricePerSession     decimal.Decimal `json:"price_per_session"`
	SessionsAssigned    int             `json:"sessions_assigned"`
	SessionsRemaining   int             `json:"sessions_remaining"`
}

// ComponentChoice — кто ведёт компонент и за какой процент.
// Percentage == nil — процент по умолчанию из конфига.
type ComponentChoice struct {
	AssistantID int64            `json:"assistant_id"`
	Percentage  *decimal.Decimal `json:"percentage"`
}

type CreateInput struct {
	PatientID           int64           `json:"patient_id" validate:"required,gt=0"`
	TreatmentID         int64           `json:"treatment_id" validate:"required,gt=0"`
	AssistantID         *int64          `json:"assistant_id" validate:"omitempty,gt=0"`
	SellerID            *int64          `json:"seller_id" validate:"omitempty,gt=0"`
	AssistantPercentage decimal.Decimal `json:"assistant_percentage"`
	SellerPercentage    decimal.Decimal `json:"seller_percentage"`
	SessionsAssigned    int             `json:"sessions_assigned" validate:"gte=0"`
	SessionsPaid        int             `json:"sessions_paid" validate:"gte=0"`
	FirstSessionDate    time.Time       `json:"first_session_date" validate:"required"`
	PaidInAdvance       bool            `json:"paid_in_advance"`

	// только для промо-пакета, ключ — имя компонента
	Components map[string]ComponentChoice `json:"components"`
}

// Draft — всё, что пишется одной транзакцией при создании назначения.
// FirstSessions идут в том же порядке, что и Components (для промо).
type Draft struct {
	Assignment    Assignment
	FirstSessions []sessions.Session
}

// Preview — итоги без записи, для формы перед подтверждением.
type Preview struct {
	TotalCost           decimal.Decimal   `json:"total_cost"`
	TotalPaid           decimal.Decimal   `json:"total_paid"`
	PendingBalance      decimal.Decimal   `json:"pending_balance"`
	AssistantCommission decimal.Decimal   `json:"assistant_commission"`
	SellerCommission    decimal.Decimal   `json:"seller_commission"`
	SessionsAssigned    int               `json:"sessions_assigned"`
	Components          []ComponentTotals `json:"components,omitempty"`
}

type ComponentTotals struct {
	Name       string          `json:"name"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Commission decimal.Decimal `json:"commission"`
}
