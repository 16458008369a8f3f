package sessions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/lifecycle"
)

// Session — одно посещение по назначению. ComponentName пустой для обычной
// процедуры и равен имени компонента для промо-пакета.
type Session struct {
	ID                  int64                   `json:"id"`
	AssignmentID        int64                   `json:"assignment_id"`
	ComponentName       string                  `json:"component_name,omitempty"`
	SessionNumber       int                     `json:"session_number"`
	SessionDate         time.Time               `json:"session_date"`
	AssistantID         int64                   `json:"assistant_id"`
	AssistantPercentage decimal.Decimal         `json:"assistant_percentage"`
	PaymentStatus       lifecycle.PaymentStatus `json:"payment_status"`
	Completed           bool                    `json:"completed"`
	AmountPaid          decimal.Decimal         `json:"amount_paid"`
	BilledAmount        decimal.Decimal         `json:"billed_amount"`
	CommissionAmount    decimal.Decimal         `json:"commission_amount"`
	NextAppointmentDate *time.Time              `json:"next_appointment_date,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

func (s Session) State() lifecycle.SessionState {
	return lifecycle.StateOf(s.Completed, s.PaymentStatus)
}

type CreateInput struct {
	AssignmentID        int64                   `json:"assignment_id" validate:"required,gt=0"`
	ComponentName       string                  `json:"component_name" validate:"max=200"`
	SessionDate         time.Time               `json:"session_date" validate:"required"`
	AssistantID         int64                   `json:"assistant_id" validate:"required,gt=0"`
	AssistantPercentage decimal.Decimal         `json:"assistant_percentage"`
	PaymentStatus       lifecycle.PaymentStatus `json:"payment_status" validate:"required,oneof=PAID PENDING"`
	Completed           bool                    `json:"completed"`
	NextAppointmentDate *time.Time              `json:"next_appointment_date"`
}

type UpdateInput struct {
	SessionDate         time.Time               `json:"session_date" validate:"required"`
	AssistantID         int64                   `json:"assistant_id" validate:"required,gt=0"`
	AssistantPercentage decimal.Decimal         `json:"assistant_percentage"`
	PaymentStatus       lifecycle.PaymentStatus `json:"payment_status" validate:"required,oneof=PAID PENDING"`
	Completed           bool                    `json:"completed"`
	NextAppointmentDate *time.Time              `json:"next_appointment_date"`
}

// Parent — заблокированное на время транзакции назначение (и компонент,
// если сессия по промо-пакету).
type Parent struct {
	AssignmentID      int64
	IsPromotion       bool
	Status            lifecycle.AssignmentStatus
	SessionsAssigned  int
	SessionsRemaining int

	// цена одной сессии: стоимость процедуры или цена компонента
	Price decimal.Decimal

	ComponentID        int64
	ComponentAssigned  int
	ComponentRemaining int

	// Open — сессии этой линии, ещё не отмеченные проведёнными
	Open int
}

// Remaining — сколько сессий ещё можно провести по этой линии.
func (p Parent) Remaining() int {
	if p.ComponentID != 0 {
		return p.ComponentRemaining
	}
	return p.SessionsRemaining
}
