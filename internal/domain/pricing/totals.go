// Package pricing считает итоги назначения: стоимость, оплату, остаток и
// комиссии ассистента и продавца. Это единственное место с формулами —
// и создание назначения, и предпросмотр в форме вызывают ComputeAssignmentTotals.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrPercentageRange = errors.New("pricing: percentage must be within [0,100]")
	ErrNegativeAmount  = errors.New("pricing: amount must not be negative")
	ErrSessions        = errors.New("pricing: invalid session counts")
	ErrNoComponents    = errors.New("pricing: promotion has no components")
)

var hundred = decimal.NewFromInt(100)

// Component — строка промо-пакета с выбранным процентом ассистента.
type Component struct {
	Name       string
	Price      decimal.Decimal // цена одной сессии
	Sessions   int
	Percentage decimal.Decimal
}

// Subtotal = Price * Sessions
func (c Component) Subtotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Sessions)))
}

type Input struct {
	IsPromotion bool

	// обычная процедура
	CostPerSession      decimal.Decimal
	SessionsAssigned    int
	SessionsPaid        int
	AssistantPercentage decimal.Decimal

	// промо-пакет
	Components    []Component
	PaidInAdvance bool

	HasSeller        bool
	SellerPercentage decimal.Decimal
}

type Totals struct {
	Total               decimal.Decimal
	TotalPaid           decimal.Decimal
	PendingBalance      decimal.Decimal
	AssistantCommission decimal.Decimal
	SellerCommission    decimal.Decimal
	SessionsAssigned    int

	// доля комиссии по каждому компоненту, в порядке Input.Components
	ComponentCommissions []decimal.Decimal
}

// Percent возвращает amount * pct / 100, округлённое до копеек.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}

func ValidPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

func ComputeAssignmentTotals(in Input) (Totals, error) {
	if !ValidPercentage(in.SellerPercentage) {
		return Totals{}, ErrPercentageRange
	}
	if in.IsPromotion {
		return promotionTotals(in)
	}
	return normalTotals(in)
}

func normalTotals(in Input) (Totals, error) {
	if in.CostPerSession.IsNegative() {
		return Totals{}, ErrNegativeAmount
	}
	if !ValidPercentage(in.AssistantPercentage) {
		return Totals{}, ErrPercentageRange
	}
	if in.SessionsAssigned < 1 || in.SessionsPaid < 0 || in.SessionsPaid > in.SessionsAssigned {
		return Totals{}, ErrSessions
	}

	var t Totals
	t.SessionsAssigned = in.SessionsAssigned
	t.Total = in.CostPerSession.Mul(decimal.NewFromInt(int64(in.SessionsAssigned)))
	t.TotalPaid = in.CostPerSession.Mul(decimal.NewFromInt(int64(in.SessionsPaid)))
	t.PendingBalance = t.Total.Sub(t.TotalPaid)
	t.AssistantCommission = Percent(t.TotalPaid, in.AssistantPercentage)
	t.SellerCommission = sellerCommission(in, t.Total)
	return t, nil
}

func promotionTotals(in Input) (Totals, error) {
	if len(in.Components) == 0 {
		return Totals{}, ErrNoComponents
	}

	var t Totals
	t.ComponentCommissions = make([]decimal.Decimal, 0, len(in.Components))
	for _, c := range in.Components {
		if c.Price.IsNegative() {
			return Totals{}, ErrNegativeAmount
		}
		if c.Sessions < 1 {
			return Totals{}, ErrSessions
		}
		if !ValidPercentage(c.Percentage) {
			return Totals{}, ErrPercentageRange
		}
		sub := c.Subtotal()
		share := Percent(sub, c.Percentage)

		t.Total = t.Total.Add(sub)
		t.AssistantCommission = t.AssistantCommission.Add(share)
		t.ComponentCommissions = append(t.ComponentCommissions, share)
		t.SessionsAssigned += c.Sessions
	}
	if in.PaidInAdvance {
		t.TotalPaid = t.Total
	}
	t.PendingBalance = t.Total.Sub(t.TotalPaid)
	t.SellerCommission = sellerCommission(in, t.Total)
	return t, nil
}

func sellerCommission(in Input, total decimal.Decimal) decimal.Decimal {
	if !in.HasSeller {
		return decimal.Zero
	}
	return Percent(total, in.SellerPercentage)
}

// PromotionTotal — отображаемая цена промо-пакета: сумма Price*Sessions.
func PromotionTotal(components []Component) decimal.Decimal {
	total := decimal.Zero
	for _, c := range components {
		total = total.Add(c.Subtotal())
	}
	return total
}
