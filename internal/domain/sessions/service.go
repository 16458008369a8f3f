package sessions

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/pricing"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
	"github.com/Spok95/spa-clinic/internal/infra/metrics"
)

// Tx — шаги записи сессии внутри одной транзакции.
type Tx interface {
	// LockParent блокирует назначение (и компонент, если component != "")
	// до конца транзакции.
	LockParent(ctx context.Context, assignmentID int64, component string) (Parent, error)
	NextNumber(ctx context.Context, assignmentID int64, component string) (int, error)
	GetForUpdate(ctx context.Context, sessionID int64) (Session, error)
	Insert(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	ApplyDelta(ctx context.Context, p Parent, d Delta) error
	AddEntries(ctx context.Context, entries []commissions.Entry) error
}

type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, id int64) (*Session, error)
	List(ctx context.Context, assignmentID int64, component string) ([]Session, error)
}

// Invalidator сбрасывает кэш отчётов после записи.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	store     Store
	log       *slog.Logger
	metrics   *metrics.Metrics
	cache     Invalidator
	nextAfter time.Duration
}

func NewService(store Store, log *slog.Logger, m *metrics.Metrics, cache Invalidator, nextAfter time.Duration) *Service {
	return &Service{store: store, log: log, metrics: m, cache: cache, nextAfter: nextAfter}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Session, error) {
	in.ComponentName = strings.TrimSpace(in.ComponentName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !pricing.ValidPercentage(in.AssistantPercentage) {
		return nil, validation.New("assistant_percentage", "range", "must be within [0,100]")
	}

	var out Session
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := tx.LockParent(ctx, in.AssignmentID, in.ComponentName)
		if err != nil {
			return err
		}
		if p.IsPromotion && in.ComponentName == "" {
			return validation.New("component_name", "required", "is required for promotions")
		}
		if !p.IsPromotion && in.ComponentName != "" {
			return validation.New("component_name", "excluded", "must be empty for a single treatment")
		}
		if err := p.Check(); err != nil {
			return err
		}

		n, err := tx.NextNumber(ctx, p.AssignmentID, in.ComponentName)
		if err != nil {
			return err
		}
		out = Build(p, in, n, s.nextAfter)
		d := Contribution(out)
		if err := p.CheckDelta(d); err != nil {
			return err
		}

		if err := tx.Insert(ctx, &out); err != nil {
			return err
		}
		if err := tx.ApplyDelta(ctx, p, d); err != nil {
			return err
		}
		return tx.AddEntries(ctx, LedgerEntries(nil, out))
	})
	if err != nil {
		s.reject(err)
		return nil, err
	}

	s.metrics.SessionRecorded("create")
	s.invalidate(ctx)
	s.log.Info("session created",
		"assignment_id", out.AssignmentID,
		"component", out.ComponentName,
		"number", out.SessionNumber,
		"payment", out.PaymentStatus,
		"completed", out.Completed,
	)
	return &out, nil
}

// Update правит сессию; агрегаты назначения сдвигаются ровно на разницу
// вкладов старой и новой версии этой сессии.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Session, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !pricing.ValidPercentage(in.AssistantPercentage) {
		return nil, validation.New("assistant_percentage", "range", "must be within [0,100]")
	}

	var out Session
	var d Delta
	err := s.store.InTx(ctx, func(tx Tx) error {
		prev, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		p, err := tx.LockParent(ctx, prev.AssignmentID, prev.ComponentName)
		if err != nil {
			return err
		}

		out = Edit(p, prev, in)
		d = Diff(prev, out)
		if err := p.CheckDelta(d); err != nil {
			return err
		}
		if err := tx.Update(ctx, &out); err != nil {
			return err
		}
		if !d.IsZero() {
			if err := tx.ApplyDelta(ctx, p, d); err != nil {
				return err
			}
		}
		return tx.AddEntries(ctx, LedgerEntries(&prev, out))
	})
	if err != nil {
		s.reject(err)
		return nil, err
	}

	s.metrics.SessionRecorded("update")
	s.invalidate(ctx)
	s.log.Info("session updated",
		"session_id", out.ID,
		"assignment_id", out.AssignmentID,
		"delta_paid", d.Paid.StringFixed(2),
		"delta_done", d.Done,
	)
	return &out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Session, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, assignmentID int64, component string) ([]Session, error) {
	return s.store.List(ctx, assignmentID, strings.TrimSpace(component))
}

func (s *Service) reject(err error) {
	switch {
	case errors.Is(err, ErrNoSessionsLeft):
		s.metrics.Rejected("no_sessions_remaining")
	case errors.Is(err, ErrAssignmentClosed):
		s.metrics.Rejected("assignment_completed")
	case errors.Is(err, ErrDuplicateNumber):
		s.metrics.Rejected("duplicate_session_number")
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAssignmentNotFound),
		errors.Is(err, ErrComponentNotFound),
		errors.Is(err, ErrUnknownAssistant):
	default:
		s.log.Error("session write failed", "err", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
