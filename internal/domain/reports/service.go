package reports

import (
	"context"
	"log/slog"

	"github.com/Spok95/spa-clinic/internal/domain/sessions"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

type Store interface {
	Assignments(ctx context.Context, f Filter) ([]Row, error)
}

type SessionLister interface {
	List(ctx context.Context, assignmentID int64, component string) ([]sessions.Session, error)
}

type Cache interface {
	// Get возвращает ключ с поколением кэша; SetAt пишет под ним же.
	Get(ctx context.Context, key string, dst any) (bool, string, error)
	SetAt(ctx context.Context, genKey string, v any) error
}

type Service struct {
	store    Store
	sessions SessionLister
	cache    Cache
	log      *slog.Logger
}

func NewService(store Store, sl SessionLister, cache Cache, log *slog.Logger) *Service {
	return &Service{store: store, sessions: sl, cache: cache, log: log}
}

// Assignments — отчёт по назначениям. Сбой кэша не валит запрос:
// читаем из БД и пишем в лог.
func (s *Service) Assignments(ctx context.Context, f Filter) (*Report, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, validation.New("to", "gtefield", "must not be before from")
	}

	key := f.Key()
	var cached Report
	hit, genKey, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("reports cache read failed", "key", key, "err", err)
	}
	if hit {
		return &cached, nil
	}

	rows, err := s.store.Assignments(ctx, f)
	if err != nil {
		return nil, err
	}
	rep := &Report{Rows: rows, Summary: Summarize(rows)}
	if err := s.cache.SetAt(ctx, genKey, rep); err != nil {
		s.log.Warn("reports cache write failed", "key", key, "err", err)
	}
	return rep, nil
}

// Sessions — все сессии одного назначения (всех компонентов).
func (s *Service) Sessions(ctx context.Context, assignmentID int64) ([]sessions.Session, error) {
	return s.sessions.List(ctx, assignmentID, "")
}
