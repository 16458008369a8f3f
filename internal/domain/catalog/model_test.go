package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

func TestTreatmentInput_Validate(t *testing.T) {
	assert.NoError(t, TreatmentInput{Name: "Facial", Cost: decimal.NewFromInt(80)}.Validate())
	assert.NoError(t, TreatmentInput{Name: "Consultation"}.Validate())

	err := TreatmentInput{Name: "", Cost: decimal.NewFromInt(80)}.Validate()
	assert.True(t, errors.Is(err, validation.ErrInvalid))

	err = TreatmentInput{Name: "Facial", Cost: decimal.NewFromInt(-1)}.Validate()
	var verr *validation.Error
	if assert.ErrorAs(t, err, &verr) {
		assert.Equal(t, "cost", verr.Fields[0].Field)
	}
}

func TestPromotionInput_Validate(t *testing.T) {
	comp := func(name string, n int, price int64) ComponentInput {
		return ComponentInput{Name: name, SessionCount: n, PricePerSession: decimal.NewFromInt(price)}
	}

	tests := []struct {
		name  string
		in    PromotionInput
		field string
	}{
		{"ok", PromotionInput{Name: "Spring pack", Components: []ComponentInput{comp("Peeling", 2, 100), comp("Massage", 4, 50)}}, ""},
		{"no components", PromotionInput{Name: "Empty"}, "components"},
		{"zero sessions", PromotionInput{Name: "P", Components: []ComponentInput{comp("Peeling", 0, 100)}}, "session_count"},
		{"negative price", PromotionInput{Name: "P", Components: []ComponentInput{comp("Peeling", 1, -5)}}, "price_per_session"},
		{"duplicate names", PromotionInput{Name: "P", Components: []ComponentInput{comp("Peeling", 1, 10), comp(" peeling", 1, 10)}}, "components"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *validation.Error
			if assert.ErrorAs(t, err, &verr) {
				assert.Equal(t, tt.field, verr.Fields[0].Field)
			}
		})
	}
}
