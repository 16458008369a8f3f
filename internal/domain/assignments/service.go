package assignments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/catalog"
	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/lifecycle"
	"github.com/Spok95/spa-clinic/internal/domain/pricing"
	"github.com/Spok95/spa-clinic/internal/domain/sessions"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
	"github.com/Spok95/spa-clinic/internal/infra/metrics"
)

var (
	ErrNotFound          = errors.New("assignments: not found")
	ErrTreatmentNotFound = errors.New("assignments: treatment not found")
	ErrUnknownReference  = errors.New("assignments: unknown patient or staff member")
	ErrAlreadyCompleted  = errors.New("assignments: already completed")
)

type TreatmentSource interface {
	GetTreatment(ctx context.Context, id int64) (*catalog.Treatment, error)
}

type Store interface {
	Create(ctx context.Context, d Draft) (*Assignment, error)
	Get(ctx context.Context, id int64) (*Assignment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]Assignment, error)
	Complete(ctx context.Context, id int64) (*Assignment, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	store      Store
	catalog    TreatmentSource
	log        *slog.Logger
	metrics    *metrics.Metrics
	cache      Invalidator
	defaultPct decimal.Decimal
	now        func() time.Time
}

func NewService(store Store, treatments TreatmentSource, log *slog.Logger, m *metrics.Metrics, cache Invalidator, defaultComponentPct float64) *Service {
	return &Service{
		store:      store,
		catalog:    treatments,
		log:        log,
		metrics:    m,
		cache:      cache,
		defaultPct: decimal.NewFromFloat(defaultComponentPct),
		now:        time.Now,
	}
}

// Create считает итоги и пишет назначение вместе с первыми сессиями одной
// транзакцией.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Assignment, error) {
	t, err := s.treatment(ctx, in)
	if err != nil {
		return nil, err
	}
	d, _, err := s.plan(in, t)
	if err != nil {
		return nil, err
	}

	a, err := s.store.Create(ctx, d)
	if err != nil {
		if !errors.Is(err, ErrUnknownReference) {
			s.log.Error("assignment create failed", "patient_id", in.PatientID, "treatment_id", in.TreatmentID, "err", err)
		}
		return nil, err
	}

	s.metrics.AssignmentCreated(a.IsPromotion)
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.log.Info("assignment created",
		"assignment_id", a.ID,
		"patient_id", a.PatientID,
		"treatment_id", a.TreatmentID,
		"promotion", a.IsPromotion,
		"total", a.TotalCost.StringFixed(2),
	)
	return a, nil
}

// Preview — те же расчёты, что и в Create, без записи.
func (s *Service) Preview(ctx context.Context, in CreateInput) (*Preview, error) {
	t, err := s.treatment(ctx, in)
	if err != nil {
		return nil, err
	}
	d, totals, err := s.plan(in, t)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		TotalCost:           totals.Total,
		TotalPaid:           totals.TotalPaid,
		PendingBalance:      totals.PendingBalance,
		AssistantCommission: totals.AssistantCommission,
		SellerCommission:    totals.SellerCommission,
		SessionsAssigned:    totals.SessionsAssigned,
	}
	for i, c := range d.Assignment.Components {
		p.Components = append(p.Components, ComponentTotals{
			Name:       c.Name,
			Subtotal:   c.PricePerSession.Mul(decimal.NewFromInt(int64(c.SessionsAssigned))),
			Commission: totals.ComponentCommissions[i],
		})
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Assignment, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]Assignment, error) {
	return s.store.ListByPatient(ctx, patientID)
}

// Complete закрывает назначение вручную, даже если сессии остались.
func (s *Service) Complete(ctx context.Context, id int64) (*Assignment, error) {
	a, err := s.store.Complete(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.log.Info("assignment completed", "assignment_id", id, "sessions_remaining", a.SessionsRemaining)
	return a, nil
}

func (s *Service) treatment(ctx context.Context, in CreateInput) (*catalog.Treatment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	t, err := s.catalog.GetTreatment(ctx, in.TreatmentID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, ErrTreatmentNotFound
	}
	return t, err
}

func (s *Service) plan(in CreateInput, t *catalog.Treatment) (Draft, pricing.Totals, error) {
	if t.IsPromotion {
		return s.planPromotion(in, t)
	}
	return s.planTreatment(in, t)
}

func (s *Service) planTreatment(in CreateInput, t *catalog.Treatment) (Draft, pricing.Totals, error) {
	if in.AssistantID == nil {
		return Draft{}, pricing.Totals{}, validation.New("assistant_id", "required", "is required unless the treatment is a promotion")
	}
	if len(in.Components) > 0 {
		return Draft{}, pricing.Totals{}, validation.New("components", "excluded", "only promotions take components")
	}

	totals, err := pricing.ComputeAssignmentTotals(pricing.Input{
		CostPerSession:      t.Cost,
		SessionsAssigned:    in.SessionsAssigned,
		SessionsPaid:        in.SessionsPaid,
		AssistantPercentage: in.AssistantPercentage,
		HasSeller:           in.SellerID != nil,
		SellerPercentage:    in.SellerPercentage,
	})
	if err != nil {
		return Draft{}, pricing.Totals{}, pricingError(err)
	}

	a := s.baseAssignment(in, t, totals)
	a.SessionsPaid = in.SessionsPaid

	payment := lifecycle.PaymentPending
	if in.SessionsPaid > 0 {
		payment = lifecycle.PaymentPaid
	}
	// предоплата целиком числится за первой сессией
	first := firstSession(in.FirstSessionDate, "", *in.AssistantID, in.AssistantPercentage, payment)
	first.AmountPaid = totals.TotalPaid
	first.BilledAmount = totals.TotalPaid
	first.CommissionAmount = totals.AssistantCommission

	return Draft{Assignment: a, FirstSessions: []sessions.Session{first}}, totals, nil
}

func (s *Service) planPromotion(in CreateInput, t *catalog.Treatment) (Draft, pricing.Totals, error) {
	known := make(map[string]bool, len(t.Components))
	for _, c := range t.Components {
		known[c.Name] = true
	}
	unknown := make([]string, 0)
	for name := range in.Components {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Draft{}, pricing.Totals{}, validation.New("components."+unknown[0], "unknown", "is not a component of this promotion")
	}

	comps := make([]pricing.Component, 0, len(t.Components))
	choices := make([]ComponentChoice, 0, len(t.Components))
	for _, c := range t.Components {
		choice := in.Components[c.Name]
		if choice.AssistantID <= 0 {
			return Draft{}, pricing.Totals{}, validation.New("components."+c.Name+".assistant_id", "required", "is required")
		}
		pct := s.defaultPct
		if choice.Percentage != nil {
			pct = *choice.Percentage
		}
		choice.Percentage = &pct
		choices = append(choices, choice)
		comps = append(comps, pricing.Component{Name: c.Name, Price: c.PricePerSession, Sessions: c.SessionCount, Percentage: pct})
	}

	totals, err := pricing.ComputeAssignmentTotals(pricing.Input{
		IsPromotion:      true,
		Components:       comps,
		PaidInAdvance:    in.PaidInAdvance,
		HasSeller:        in.SellerID != nil,
		SellerPercentage: in.SellerPercentage,
	})
	if err != nil {
		return Draft{}, pricing.Totals{}, pricingError(err)
	}

	a := s.baseAssignment(in, t, totals)
	if in.PaidInAdvance {
		a.SessionsPaid = totals.SessionsAssigned
	}

	payment := lifecycle.PaymentPending
	if in.PaidInAdvance {
		payment = lifecycle.PaymentPaid
	}
	firsts := make([]sessions.Session, 0, len(t.Components))
	for i, c := range t.Components {
		a.Components = append(a.Components, ComponentAssignment{
			ComponentRef:        c.ID,
			Name:                c.Name,
			AssistantID:         choices[i].AssistantID,
			AssistantPercentage: *choices[i].Percentage,
			PricePerSession:     c.PricePerSession,
			SessionsAssigned:    c.SessionCount,
			SessionsRemaining:   c.SessionCount,
		})

		// комиссия компонента начисляется сразу и живёт на первой сессии
		first := firstSession(in.FirstSessionDate, c.Name, choices[i].AssistantID, *choices[i].Percentage, payment)
		if in.PaidInAdvance {
			first.AmountPaid = comps[i].Subtotal()
			first.BilledAmount = first.AmountPaid
		}
		first.CommissionAmount = totals.ComponentCommissions[i]
		firsts = append(firsts, first)
	}

	return Draft{Assignment: a, FirstSessions: firsts}, totals, nil
}

func (s *Service) baseAssignment(in CreateInput, t *catalog.Treatment, totals pricing.Totals) Assignment {
	return Assignment{
		PatientID:           in.PatientID,
		TreatmentID:         t.ID,
		AssistantID:         in.AssistantID,
		SellerID:            in.SellerID,
		AssistantPercentage: in.AssistantPercentage,
		SellerPercentage:    in.SellerPercentage,
		SessionsAssigned:    totals.SessionsAssigned,
		SessionsRemaining:   totals.SessionsAssigned,
		TotalCost:           totals.Total,
		TotalPaid:           totals.TotalPaid,
		PendingBalance:      totals.PendingBalance,
		AssistantCommission: totals.AssistantCommission,
		SellerCommission:    totals.SellerCommission,
		AssignedAt:          s.now(),
		FirstSessionDate:    in.FirstSessionDate,
		Status:              lifecycle.StatusActive,
		IsPromotion:         t.IsPromotion,
	}
}

func firstSession(date time.Time, component string, assistantID int64, pct decimal.Decimal, payment lifecycle.PaymentStatus) sessions.Session {
	next := date
	return sessions.Session{
		ComponentName:       component,
		SessionNumber:       1,
		SessionDate:         date,
		AssistantID:         assistantID,
		AssistantPercentage: pct,
		PaymentStatus:       payment,
		AmountPaid:          decimal.Zero,
		CommissionAmount:    decimal.Zero,
		NextAppointmentDate: &next,
	}
}

// openingEntries — строки журнала комиссий при создании назначения:
// по одной на первую сессию с комиссией и одна продавцу.
func openingEntries(a Assignment, firsts []sessions.Session) []commissions.Entry {
	assignmentID := a.ID
	out := make([]commissions.Entry, 0, len(firsts)+1)
	for _, s := range firsts {
		if s.CommissionAmount.IsZero() {
			continue
		}
		sessionID := s.ID
		out = append(out, commissions.Entry{
			StaffID:      s.AssistantID,
			AssignmentID: &assignmentID,
			SessionID:    &sessionID,
			Kind:         commissions.KindAssignment,
			Amount:       s.CommissionAmount,
			Detail:       strings.TrimSpace(fmt.Sprintf("assignment %d %s", a.ID, s.ComponentName)),
		})
	}
	if a.SellerID != nil && !a.SellerCommission.IsZero() {
		out = append(out, commissions.Entry{
			StaffID:      *a.SellerID,
			AssignmentID: &assignmentID,
			Kind:         commissions.KindSale,
			Amount:       a.SellerCommission,
			Detail:       fmt.Sprintf("sale %d", a.ID),
		})
	}
	return out
}

func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrPercentageRange):
		return validation.New("percentage", "range", "must be within [0,100]")
	case errors.Is(err, pricing.ErrSessions):
		return validation.New("sessions_paid", "range", "sessions assigned must be at least 1 and sessions paid within [0, assigned]")
	case errors.Is(err, pricing.ErrNegativeAmount):
		return validation.New("cost", "gte", "must not be negative")
	case errors.Is(err, pricing.ErrNoComponents):
		return validation.New("components", "required", "promotion has no components")
	}
	return err
}
