package commissions

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindAssignment Kind = "ASSIGNMENT" // комиссия ассистента при назначении
	KindSale       Kind = "SALE"       // комиссия продавца
	KindSession    Kind = "SESSION"    // поправка по сессии (создание/правка)
	KindPayout     Kind = "PAYOUT"     // выплата сотруднику
)

// Entry — строка журнала комиссий. Сумма может быть отрицательной:
// правка сессии пишет разницу, а не перезаписывает прошлые строки.
type Entry struct {
	ID           int64           `json:"id"`
	StaffID      int64           `json:"staff_id"`
	AssignmentID *int64          `json:"assignment_id,omitempty"`
	SessionID    *int64          `json:"session_id,omitempty"`
	Kind         Kind            `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Detail       string          `json:"detail,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Balance struct {
	StaffID int64           `json:"staff_id"`
	Earned  decimal.Decimal `json:"earned"`
	PaidOut decimal.Decimal `json:"paid_out"`
	Pending decimal.Decimal `json:"pending"`
}

// BalanceOf сворачивает журнал: выплаты отдельно, всё остальное — начислено.
func BalanceOf(staffID int64, entries []Entry) Balance {
	b := Balance{StaffID: staffID}
	for _, e := range entries {
		if e.Kind == KindPayout {
			b.PaidOut = b.PaidOut.Add(e.Amount)
			continue
		}
		b.Earned = b.Earned.Add(e.Amount)
	}
	b.Pending = b.Earned.Sub(b.PaidOut)
	return b
}

type PayoutInput struct {
	StaffID int64           `json:"staff_id" validate:"required,gt=0"`
	Amount  decimal.Decimal `json:"amount"`
	Detail  string          `json:"detail" validate:"max=500"`
}
