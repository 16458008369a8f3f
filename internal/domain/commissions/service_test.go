package commissions

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

type memStore struct {
	entries []Entry
}

func (m *memStore) CreatePayout(_ context.Context, in PayoutInput) (*Entry, error) {
	e := Entry{ID: int64(len(m.entries) + 1), StaffID: in.StaffID, Kind: KindPayout, Amount: in.Amount, Detail: in.Detail}
	m.entries = append(m.entries, e)
	return &e, nil
}

func (m *memStore) ListByStaff(_ context.Context, staffID int64) ([]Entry, error) {
	out := []Entry{}
	for _, e := range m.entries {
		if e.StaffID == staffID {
			out = append(out, e)
		}
	}
	return out, nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBalanceOf(t *testing.T) {
	entries := []Entry{
		{Kind: KindAssignment, Amount: decimal.NewFromInt(48)},
		{Kind: KindSession, Amount: decimal.NewFromInt(24)},
		{Kind: KindSession, Amount: decimal.NewFromInt(-24)},
		{Kind: KindSale, Amount: decimal.NewFromInt(40)},
		{Kind: KindPayout, Amount: decimal.NewFromInt(50)},
	}
	b := BalanceOf(7, entries)
	assert.Equal(t, int64(7), b.StaffID)
	assert.True(t, decimal.NewFromInt(88).Equal(b.Earned))
	assert.True(t, decimal.NewFromInt(50).Equal(b.PaidOut))
	assert.True(t, decimal.NewFromInt(38).Equal(b.Pending))
}

func TestPayout(t *testing.T) {
	store := &memStore{entries: []Entry{{StaffID: 3, Kind: KindAssignment, Amount: decimal.NewFromInt(100)}}}
	svc := NewService(store, discard(), nil)

	_, err := svc.Payout(context.Background(), PayoutInput{StaffID: 3, Amount: decimal.NewFromInt(30), Detail: "cash"})
	require.NoError(t, err)

	_, bal, err := svc.Ledger(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(bal.Pending))
}

func TestPayout_Rejects(t *testing.T) {
	svc := NewService(&memStore{}, discard(), nil)

	_, err := svc.Payout(context.Background(), PayoutInput{StaffID: 3, Amount: decimal.Zero})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Payout(context.Background(), PayoutInput{StaffID: 3, Amount: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Payout(context.Background(), PayoutInput{Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, validation.ErrInvalid)
}
