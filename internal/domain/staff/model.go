package staff

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

// Member — косметолог/ассистент. Продавцом в назначении тоже выступает сотрудник.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Input struct {
	Name  string `json:"name" validate:"required,max=200"`
	Phone string `json:"phone" validate:"max=50"`
}

func (in Input) Validate() error { return validation.Struct(in) }

// WithBalance — сотрудник с остатком комиссий к выплате.
type WithBalance struct {
	Member
	Earned  decimal.Decimal `json:"earned"`
	PaidOut decimal.Decimal `json:"paid_out"`
	Pending decimal.Decimal `json:"pending"`
}
