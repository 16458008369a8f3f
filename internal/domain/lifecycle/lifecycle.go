// Package lifecycle описывает состояния назначения и сессии.
//
//	Assignment: ACTIVE -> COMPLETED (осталось 0 сессий или закрыли вручную),
//	            COMPLETED -> ACTIVE (правка вернула сессию в остаток).
//	Session:    {PENDING, COMPLETED} x {PENDING, PAID}; любые переходы — правкой.
package lifecycle

type AssignmentStatus string

const (
	StatusActive    AssignmentStatus = "ACTIVE"
	StatusCompleted AssignmentStatus = "COMPLETED"
)

// NextStatus — статус назначения после изменения остатка сессий.
func NextStatus(current AssignmentStatus, remainingBefore, remainingAfter int) AssignmentStatus {
	switch {
	case remainingAfter <= 0:
		return StatusCompleted
	case remainingBefore <= 0 && remainingAfter > 0:
		return StatusActive
	default:
		return current
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

type Progress string

const (
	ProgressPending   Progress = "PENDING"
	ProgressCompleted Progress = "COMPLETED"
)

type SessionState struct {
	Progress Progress      `json:"progress"`
	Payment  PaymentStatus `json:"payment"`
}

func StateOf(completed bool, payment PaymentStatus) SessionState {
	s := SessionState{Progress: ProgressPending, Payment: payment}
	if completed {
		s.Progress = ProgressCompleted
	}
	return s
}

// Done — сессия проведена и оплачена.
func (s SessionState) Done() bool {
	return s.Progress == ProgressCompleted && s.Payment == PaymentPaid
}
