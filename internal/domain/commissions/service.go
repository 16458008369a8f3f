package commissions

import (
	"context"
	"log/slog"

	"github.com/Spok95/spa-clinic/internal/domain/validation"
	"github.com/Spok95/spa-clinic/internal/infra/metrics"
)

type Store interface {
	CreatePayout(ctx context.Context, in PayoutInput) (*Entry, error)
	ListByStaff(ctx context.Context, staffID int64) ([]Entry, error)
}

type Service struct {
	store   Store
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, log: log, metrics: m}
}

// Payout регистрирует выплату. Больше начисленного выплатить можно —
// тогда pending уходит в минус (аванс).
func (s *Service) Payout(ctx context.Context, in PayoutInput) (*Entry, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, validation.New("amount", "gt", "must be greater than 0")
	}
	e, err := s.store.CreatePayout(ctx, in)
	if err != nil {
		return nil, err
	}
	s.metrics.Payout()
	s.log.Info("commission payout", "staff_id", in.StaffID, "amount", in.Amount.StringFixed(2))
	return e, nil
}

func (s *Service) Ledger(ctx context.Context, staffID int64) ([]Entry, Balance, error) {
	entries, err := s.store.ListByStaff(ctx, staffID)
	if err != nil {
		return nil, Balance{}, err
	}
	return entries, BalanceOf(staffID, entries), nil
}
