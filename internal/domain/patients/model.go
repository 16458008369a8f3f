package patients

import (
	"time"

	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

type Patient struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Sex       Sex        `json:"sex"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`

	// вычисляется при чтении из BirthDate
	Age *int `json:"age,omitempty"`
}

type Input struct {
	Name      string     `json:"name" validate:"required,max=200"`
	Sex       Sex        `json:"sex" validate:"omitempty,oneof=F M"`
	BirthDate *time.Time `json:"birth_date"`
	Phone     string     `json:"phone" validate:"max=50"`
	Email     string     `json:"email" validate:"omitempty,email"`
}

func (in Input) Validate() error { return validation.Struct(in) }

// AgeAt — полных лет на дату now.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func (p *Patient) fillAge(now time.Time) {
	if p.BirthDate == nil {
		p.Age = nil
		return
	}
	a := AgeAt(*p.BirthDate, now)
	p.Age = &a
}
