package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

// Treatment — позиция прайса. Для промо-пакета Cost хранит сумму компонентов
// и напрямую не выставляется: счёт идёт по компонентам.
type Treatment struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Cost        decimal.Decimal      `json:"cost"`
	IsPromotion bool                 `json:"is_promotion"`
	CreatedAt   time.Time            `json:"created_at"`
	Components  []PromotionComponent `json:"components,omitempty"`
}

type PromotionComponent struct {
	ID              int64           `json:"id"`
	PromotionID     int64           `json:"promotion_id"`
	Name            string          `json:"name"`
	SessionCount    int             `json:"session_count"`
	PricePerSession decimal.Decimal `json:"price_per_session"`
}

type TreatmentInput struct {
	Name string          `json:"name" validate:"required,max=200"`
	Cost decimal.Decimal `json:"cost"`
}

type ComponentInput struct {
	Name            string          `json:"name" validate:"required,max=200"`
	SessionCount    int             `json:"session_count" validate:"gte=1"`
	PricePerSession decimal.Decimal `json:"price_per_session"`
}

type PromotionInput struct {
	Name       string           `json:"name" validate:"required,max=200"`
	Components []ComponentInput `json:"components" validate:"required,min=1,dive"`
}

func (in TreatmentInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.Cost.IsNegative() {
		return validation.New("cost", "gte", "must not be negative")
	}
	return nil
}

func (in PromotionInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(in.Components))
	for _, c := range in.Components {
		if c.PricePerSession.IsNegative() {
			return validation.New("price_per_session", "gte", "must not be negative")
		}
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, dup := seen[key]; dup {
			return validation.New("components", "unique", "component names must be unique: "+c.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
