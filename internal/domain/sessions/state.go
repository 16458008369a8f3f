package sessions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/lifecycle"
	"github.com/Spok95/spa-clinic/internal/domain/pricing"
)

var (
	ErrNotFound           = errors.New("sessions: not found")
	ErrAssignmentNotFound = errors.New("sessions: assignment not found")
	ErrComponentNotFound  = errors.New("sessions: promotion component not found")
	ErrNoSessionsLeft     = errors.New("sessions: no sessions remaining")
	ErrAssignmentClosed   = errors.New("sessions: assignment is completed")
	ErrDuplicateNumber    = errors.New("sessions: session number already taken")
	ErrUnknownAssistant   = errors.New("sessions: unknown assistant")
)

// Delta — вклад сессии в агрегаты назначения.
type Delta struct {
	Paid       decimal.Decimal
	Done       int
	Commission decimal.Decimal
}

func (d Delta) IsZero() bool {
	return d.Paid.IsZero() && d.Done == 0 && d.Commission.IsZero()
}

func (d Delta) Neg() Delta {
	return Delta{Paid: d.Paid.Neg(), Done: -d.Done, Commission: d.Commission.Neg()}
}

// Contribution: оплачено = amountPaid, проведено = completed ? 1 : 0,
// комиссия = сохранённая комиссия сессии.
func Contribution(s Session) Delta {
	d := Delta{Paid: s.AmountPaid, Commission: s.CommissionAmount}
	if s.Completed {
		d.Done = 1
	}
	return d
}

// Diff — на сколько сдвигаются агрегаты при переходе prev -> next.
func Diff(prev, next Session) Delta {
	a, b := Contribution(prev), Contribution(next)
	return Delta{
		Paid:       b.Paid.Sub(a.Paid),
		Done:       b.Done - a.Done,
		Commission: b.Commission.Sub(a.Commission),
	}
}

// sessionCommission — комиссия обычной процедуры берётся с оплаченной суммы;
// у промо-пакета комиссия начислена при назначении и сессиями не меняется.
func sessionCommission(p Parent, amountPaid decimal.Decimal, payment lifecycle.PaymentStatus, pct decimal.Decimal) decimal.Decimal {
	if p.IsPromotion || payment != lifecycle.PaymentPaid {
		return decimal.Zero
	}
	return pricing.Percent(amountPaid, pct)
}

// Check — предусловие записи новой сессии.
func (p Parent) Check() error {
	if p.Status == lifecycle.StatusCompleted {
		return ErrAssignmentClosed
	}
	if p.Remaining() <= 0 || p.SessionsRemaining <= 0 {
		return ErrNoSessionsLeft
	}
	// остаток уже занят записанными, но не проведёнными сессиями
	if p.Open >= p.Remaining() {
		return ErrNoSessionsLeft
	}
	return nil
}

// Build собирает новую сессию. Номер выдаёт вызывающий под блокировкой.
func Build(p Parent, in CreateInput, number int, nextAfter time.Duration) Session {
	s := Session{
		AssignmentID:        p.AssignmentID,
		ComponentName:       in.ComponentName,
		SessionNumber:       number,
		SessionDate:         in.SessionDate,
		AssistantID:         in.AssistantID,
		AssistantPercentage: in.AssistantPercentage,
		PaymentStatus:       in.PaymentStatus,
		Completed:           in.Completed,
		AmountPaid:          decimal.Zero,
		NextAppointmentDate: in.NextAppointmentDate,
	}
	if s.PaymentStatus == lifecycle.PaymentPaid {
		s.AmountPaid = p.Price
		s.BilledAmount = p.Price
	}
	s.CommissionAmount = sessionCommission(p, s.AmountPaid, s.PaymentStatus, s.AssistantPercentage)
	if s.NextAppointmentDate == nil {
		next := in.SessionDate.Add(nextAfter)
		s.NextAppointmentDate = &next
	}
	return s
}

// Edit применяет правку к сохранённой сессии. Сумма оплаты меняется только
// при смене статуса оплаты: PENDING -> 0, PAID -> выставленная сессии сумма
// (у первой сессии это вся предоплата), а если сессию ещё не оплачивали —
// цена одной сессии.
func Edit(p Parent, prev Session, in UpdateInput) Session {
	next := prev
	next.SessionDate = in.SessionDate
	next.AssistantID = in.AssistantID
	next.AssistantPercentage = in.AssistantPercentage
	next.PaymentStatus = in.PaymentStatus
	next.Completed = in.Completed
	if in.NextAppointmentDate != nil {
		next.NextAppointmentDate = in.NextAppointmentDate
	}

	if next.PaymentStatus != prev.PaymentStatus {
		if next.PaymentStatus == lifecycle.PaymentPaid {
			next.AmountPaid = billed(p, prev)
			next.BilledAmount = next.AmountPaid
		} else {
			next.AmountPaid = decimal.Zero
		}
	}
	if !p.IsPromotion {
		next.CommissionAmount = sessionCommission(p, next.AmountPaid, next.PaymentStatus, next.AssistantPercentage)
	}
	return next
}

func billed(p Parent, s Session) decimal.Decimal {
	if s.BilledAmount.IsPositive() {
		return s.BilledAmount
	}
	return p.Price
}

// CheckDelta — остаток после применения не уходит ниже нуля и не
// превышает назначенное.
func (p Parent) CheckDelta(d Delta) error {
	after := p.SessionsRemaining - d.Done
	if after < 0 {
		return ErrNoSessionsLeft
	}
	if after > p.SessionsAssigned {
		return fmt.Errorf("sessions: remaining %d exceeds assigned %d", after, p.SessionsAssigned)
	}
	if p.ComponentID != 0 {
		c := p.ComponentRemaining - d.Done
		if c < 0 {
			return ErrNoSessionsLeft
		}
		if c > p.ComponentAssigned {
			return fmt.Errorf("sessions: component remaining %d exceeds assigned %d", c, p.ComponentAssigned)
		}
	}
	return nil
}

// NextStatus — статус назначения после применения дельты.
func (p Parent) NextStatus(d Delta) lifecycle.AssignmentStatus {
	return lifecycle.NextStatus(p.Status, p.SessionsRemaining, p.SessionsRemaining-d.Done)
}

// LedgerEntries — строки журнала комиссий для перехода prev -> next.
// Если сменился ассистент, комиссия переезжает: минус старому, плюс новому.
func LedgerEntries(prev *Session, next Session) []commissions.Entry {
	assignmentID, sessionID := next.AssignmentID, next.ID
	entry := func(staffID int64, amount decimal.Decimal) commissions.Entry {
		return commissions.Entry{
			StaffID:      staffID,
			AssignmentID: &assignmentID,
			SessionID:    &sessionID,
			Kind:         commissions.KindSession,
			Amount:       amount,
			Detail:       strings.TrimSpace(fmt.Sprintf("session %d %s", next.SessionNumber, next.ComponentName)),
		}
	}

	if prev == nil {
		if next.CommissionAmount.IsZero() {
			return nil
		}
		return []commissions.Entry{entry(next.AssistantID, next.CommissionAmount)}
	}

	var out []commissions.Entry
	if prev.AssistantID == next.AssistantID {
		if d := next.CommissionAmount.Sub(prev.CommissionAmount); !d.IsZero() {
			out = append(out, entry(next.AssistantID, d))
		}
		return out
	}
	if !prev.CommissionAmount.IsZero() {
		out = append(out, entry(prev.AssistantID, prev.CommissionAmount.Neg()))
	}
	if !next.CommissionAmount.IsZero() {
		out = append(out, entry(next.AssistantID, next.CommissionAmount))
	}
	return out
}
