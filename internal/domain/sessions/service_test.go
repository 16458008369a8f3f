package sessions

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/lifecycle"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

type memComponent struct {
	id        int64
	price     decimal.Decimal
	assigned  int
	remaining int
}

type memAssignment struct {
	promotion  bool
	status     lifecycle.AssignmentStatus
	assigned   int
	remaining  int
	price      decimal.Decimal
	totalCost  decimal.Decimal
	totalPaid  decimal.Decimal
	commission decimal.Decimal
	components map[string]*memComponent
}

func (a *memAssignment) clone() *memAssignment {
	c := *a
	c.components = map[string]*memComponent{}
	for k, v := range a.components {
		cc := *v
		c.components[k] = &cc
	}
	return &c
}

// memStore — Store и Tx в памяти; InTx откатывает состояние при ошибке.
type memStore struct {
	assignments map[int64]*memAssignment
	sessions    map[int64]Session
	entries     []commissions.Entry
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{assignments: map[int64]*memAssignment{}, sessions: map[int64]Session{}}
}

func (m *memStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	assignments := map[int64]*memAssignment{}
	for k, v := range m.assignments {
		assignments[k] = v.clone()
	}
	sessions := map[int64]Session{}
	for k, v := range m.sessions {
		sessions[k] = v
	}
	entries := append([]commissions.Entry(nil), m.entries...)
	nextID := m.nextID

	if err := fn(m); err != nil {
		m.assignments, m.sessions, m.entries, m.nextID = assignments, sessions, entries, nextID
		return err
	}
	return nil
}

func (m *memStore) Get(_ context.Context, id int64) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *memStore) List(_ context.Context, assignmentID int64, component string) ([]Session, error) {
	out := []Session{}
	for id := int64(1); id <= m.nextID; id++ {
		s, ok := m.sessions[id]
		if ok && s.AssignmentID == assignmentID && (component == "" || s.ComponentName == component) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) LockParent(_ context.Context, assignmentID int64, component string) (Parent, error) {
	a, ok := m.assignments[assignmentID]
	if !ok {
		return Parent{}, ErrAssignmentNotFound
	}
	p := Parent{
		AssignmentID:      assignmentID,
		IsPromotion:       a.promotion,
		Status:            a.status,
		SessionsAssigned:  a.assigned,
		SessionsRemaining: a.remaining,
		Price:             a.price,
	}
	if a.promotion && component == "" {
		return p, nil
	}
	if a.promotion {
		c, ok := a.components[component]
		if !ok {
			return Parent{}, ErrComponentNotFound
		}
		p.ComponentID, p.Price, p.ComponentAssigned, p.ComponentRemaining = c.id, c.price, c.assigned, c.remaining
	}
	for _, x := range m.sessions {
		if x.AssignmentID == assignmentID && x.ComponentName == component && !x.Completed {
			p.Open++
		}
	}
	return p, nil
}

func (m *memStore) NextNumber(_ context.Context, assignmentID int64, component string) (int, error) {
	n := 0
	for _, s := range m.sessions {
		if s.AssignmentID == assignmentID && s.ComponentName == component && s.SessionNumber > n {
			n = s.SessionNumber
		}
	}
	return n + 1, nil
}

func (m *memStore) GetForUpdate(_ context.Context, id int64) (Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *memStore) Insert(_ context.Context, s *Session) error {
	for _, x := range m.sessions {
		if x.AssignmentID == s.AssignmentID && x.ComponentName == s.ComponentName && x.SessionNumber == s.SessionNumber {
			return ErrDuplicateNumber
		}
	}
	m.nextID++
	s.ID = m.nextID
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) Update(_ context.Context, s *Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) ApplyDelta(_ context.Context, p Parent, d Delta) error {
	a := m.assignments[p.AssignmentID]
	a.totalPaid = a.totalPaid.Add(d.Paid)
	a.remaining -= d.Done
	a.commission = a.commission.Add(d.Commission)
	a.status = p.NextStatus(d)
	for _, c := range a.components {
		if c.id == p.ComponentID {
			c.remaining -= d.Done
		}
	}
	return nil
}

func (m *memStore) AddEntries(_ context.Context, entries []commissions.Entry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memStore) earned(staffID int64) decimal.Decimal {
	return commissions.BalanceOf(staffID, m.staffEntries(staffID)).Earned
}

func (m *memStore) staffEntries(staffID int64) []commissions.Entry {
	var out []commissions.Entry
	for _, e := range m.entries {
		if e.StaffID == staffID {
			out = append(out, e)
		}
	}
	return out
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newService(store *memStore) (*Service, *countingCache) {
	cache := &countingCache{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, log, nil, cache, 7*24*time.Hour), cache
}

// normal: 80 за сессию, 5 сессий, ничего не оплачено.
func seedNormal(store *memStore) {
	store.assignments[1] = &memAssignment{
		status:    lifecycle.StatusActive,
		assigned:  5,
		remaining: 5,
		price:     dec(80),
		totalCost: dec(400),
	}
}

// promotion: Peeling 100 x2, Massage 50 x4.
func seedPromotion(store *memStore) {
	store.assignments[2] = &memAssignment{
		promotion: true,
		status:    lifecycle.StatusActive,
		assigned:  6,
		remaining: 6,
		totalCost: dec(400),
		components: map[string]*memComponent{
			"Peeling": {id: 21, price: dec(100), assigned: 2, remaining: 2},
			"Massage": {id: 22, price: dec(50), assigned: 4, remaining: 4},
		},
	}
}

func paidInput(assignmentID int64, component string) CreateInput {
	return CreateInput{
		AssignmentID:        assignmentID,
		ComponentName:       component,
		SessionDate:         day,
		AssistantID:         7,
		AssistantPercentage: dec(30),
		PaymentStatus:       lifecycle.PaymentPaid,
		Completed:           true,
	}
}

func TestCreate_PaidCompletedSession(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, cache := newService(store)

	s, err := svc.Create(context.Background(), paidInput(1, ""))
	require.NoError(t, err)

	assert.Equal(t, 1, s.SessionNumber)
	assert.True(t, dec(80).Equal(s.AmountPaid))
	assert.True(t, dec(24).Equal(s.CommissionAmount))

	a := store.assignments[1]
	assert.True(t, dec(80).Equal(a.totalPaid))
	assert.Equal(t, 4, a.remaining)
	assert.True(t, dec(24).Equal(a.commission))
	assert.True(t, dec(24).Equal(store.earned(7)))
	assert.Equal(t, 1, cache.n)
}

func TestCreate_PendingSessionDoesNotMoveMoney(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, _ := newService(store)

	in := paidInput(1, "")
	in.PaymentStatus = lifecycle.PaymentPending
	in.Completed = false
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, s.AmountPaid.IsZero())
	assert.True(t, s.CommissionAmount.IsZero())
	assert.True(t, store.assignments[1].totalPaid.IsZero())
	assert.Equal(t, 5, store.assignments[1].remaining)
	assert.Empty(t, store.entries)
}

func TestCreate_DefaultNextAppointment(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, _ := newService(store)

	s, err := svc.Create(context.Background(), paidInput(1, ""))
	require.NoError(t, err)
	require.NotNil(t, s.NextAppointmentDate)
	assert.Equal(t, day.AddDate(0, 0, 7), *s.NextAppointmentDate)

	explicit := day.AddDate(0, 0, 3)
	in := paidInput(1, "")
	in.NextAppointmentDate = &explicit
	s, err = svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, explicit, *s.NextAppointmentDate)
}

func TestCreate_NumbersArePerComponent(t *testing.T) {
	store := newMemStore()
	seedPromotion(store)
	svc, _ := newService(store)
	ctx := context.Background()

	in := paidInput(2, "Massage")
	in.Completed = false

	s1, err := svc.Create(ctx, in)
	require.NoError(t, err)
	s2, err := svc.Create(ctx, in)
	require.NoError(t, err)
	in.ComponentName = "Peeling"
	s3, err := svc.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 1}, []int{s1.SessionNumber, s2.SessionNumber, s3.SessionNumber})

	massage, err := svc.List(ctx, 2, "Massage")
	require.NoError(t, err)
	assert.Len(t, massage, 2)
}

func TestCreate_PromotionSessionBooksNoCommission(t *testing.T) {
	store := newMemStore()
	seedPromotion(store)
	svc, _ := newService(store)

	s, err := svc.Create(context.Background(), paidInput(2, "Peeling"))
	require.NoError(t, err)

	assert.True(t, dec(100).Equal(s.AmountPaid))
	assert.True(t, s.CommissionAmount.IsZero())
	a := store.assignments[2]
	assert.Equal(t, 1, a.components["Peeling"].remaining)
	assert.Equal(t, 4, a.components["Massage"].remaining)
	assert.Equal(t, 5, a.remaining)
}

func TestCreate_RejectsWhenNoSessionsRemaining(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	store.assignments[1].remaining = 0
	svc, cache := newService(store)

	_, err := svc.Create(context.Background(), paidInput(1, ""))
	assert.ErrorIs(t, err, ErrNoSessionsLeft)
	assert.Empty(t, store.sessions)
	assert.True(t, store.assignments[1].totalPaid.IsZero())
	assert.Zero(t, cache.n)
}

func TestCreate_RejectsWhenOpenSessionsFillRemaining(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	store.assignments[1].assigned, store.assignments[1].remaining = 2, 2
	svc, _ := newService(store)
	ctx := context.Background()

	in := paidInput(1, "")
	in.Completed = false
	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrNoSessionsLeft)
	assert.Len(t, store.sessions, 2)
	assert.True(t, dec(160).Equal(store.assignments[1].totalPaid))

	// проведённая сессия освобождает место только вместе с остатком
	first := store.sessions[1]
	_, err = svc.Update(ctx, first.ID, UpdateInput{SessionDate: day, AssistantID: 7, AssistantPercentage: dec(30), PaymentStatus: lifecycle.PaymentPaid, Completed: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrNoSessionsLeft)
}

func TestCreate_RejectsExhaustedComponent(t *testing.T) {
	store := newMemStore()
	seedPromotion(store)
	store.assignments[2].components["Peeling"].remaining = 0
	svc, _ := newService(store)

	_, err := svc.Create(context.Background(), paidInput(2, "Peeling"))
	assert.ErrorIs(t, err, ErrNoSessionsLeft)
	assert.Empty(t, store.sessions)

	_, err = svc.Create(context.Background(), paidInput(2, "Massage"))
	assert.NoError(t, err)
}

func TestCreate_RejectsClosedAssignment(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	store.assignments[1].status = lifecycle.StatusCompleted
	svc, _ := newService(store)

	_, err := svc.Create(context.Background(), paidInput(1, ""))
	assert.ErrorIs(t, err, ErrAssignmentClosed)
}

func TestCreate_Validation(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	seedPromotion(store)
	svc, _ := newService(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		want   error
	}{
		{"missing assistant", func(in *CreateInput) { in.AssistantID = 0 }, validation.ErrInvalid},
		{"missing date", func(in *CreateInput) { in.SessionDate = time.Time{} }, validation.ErrInvalid},
		{"bad payment status", func(in *CreateInput) { in.PaymentStatus = "Pagado" }, validation.ErrInvalid},
		{"percentage over 100", func(in *CreateInput) { in.AssistantPercentage = dec(101) }, validation.ErrInvalid},
		{"component on single treatment", func(in *CreateInput) { in.ComponentName = "Peeling" }, validation.ErrInvalid},
		{"promotion without component", func(in *CreateInput) { in.AssignmentID = 2 }, validation.ErrInvalid},
		{"unknown component", func(in *CreateInput) { in.AssignmentID, in.ComponentName = 2, "Nope" }, ErrComponentNotFound},
		{"unknown assignment", func(in *CreateInput) { in.AssignmentID = 99 }, ErrAssignmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := paidInput(1, "")
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, store.sessions)
}

func TestUpdate_PendingToPaidAddsExactlyOnePrice(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, _ := newService(store)
	ctx := context.Background()

	other, err := svc.Create(ctx, paidInput(1, ""))
	require.NoError(t, err)

	in := paidInput(1, "")
	in.PaymentStatus = lifecycle.PaymentPending
	in.Completed = false
	pending, err := svc.Create(ctx, in)
	require.NoError(t, err)

	before := store.assignments[1].totalPaid
	_, err = svc.Update(ctx, pending.ID, UpdateInput{
		SessionDate:         day,
		AssistantID:         7,
		AssistantPercentage: dec(30),
		PaymentStatus:       lifecycle.PaymentPaid,
	})
	require.NoError(t, err)

	assert.True(t, before.Add(dec(80)).Equal(store.assignments[1].totalPaid))
	assert.Equal(t, *other, store.sessions[other.ID])
}

func TestUpdate_IsAntisymmetric(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, _ := newService(store)
	ctx := context.Background()

	s, err := svc.Create(ctx, paidInput(1, ""))
	require.NoError(t, err)
	snapshot := *store.assignments[1]
	earned := store.earned(7)

	_, err = svc.Update(ctx, s.ID, UpdateInput{
		SessionDate:         day,
		AssistantID:         7,
		AssistantPercentage: dec(30),
		PaymentStatus:       lifecycle.PaymentPending,
		Completed:           false,
	})
	require.NoError(t, err)
	a := store.assignments[1]
	assert.True(t, a.totalPaid.IsZero())
	assert.Equal(t, 5, a.remaining)

	_, err = svc.Update(ctx, s.ID, UpdateInput{
		SessionDate:         day,
		AssistantID:         7,
		AssistantPercentage: dec(30),
		PaymentStatus:       lifecycle.PaymentPaid,
		Completed:           true,
	})
	require.NoError(t, err)

	a = store.assignments[1]
	assert.True(t, snapshot.totalPaid.Equal(a.totalPaid))
	assert.True(t, snapshot.commission.Equal(a.commission))
	assert.Equal(t, snapshot.remaining, a.remaining)
	assert.Equal(t, snapshot.status, a.status)
	assert.True(t, earned.Equal(store.earned(7)))
}

func TestUpdate_UnchangedPaymentKeepsStoredAmount(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, _ := newService(store)
	ctx := context.Background()

	s, err := svc.Create(ctx, paidInput(1, ""))
	require.NoError(t, err)
	// сессию оплатили по старой цене
	stored := store.sessions[s.ID]
	stored.AmountPaid = dec(70)
	stored.CommissionAmount = dec(21)
	store.sessions[s.ID] = stored

	out, err := svc.Update(ctx, s.ID, UpdateInput{
		SessionDate:         day.AddDate(0, 0, 1),
		AssistantID:         7,
		AssistantPercentage: dec(30),
		PaymentStatus:       lifecycle.PaymentPaid,
		Completed:           true,
	})
	require.NoError(t, err)
	assert.True(t, dec(70).Equal(out.AmountPaid))
	assert.True(t, dec(21).Equal(out.CommissionAmount))
}

func TestUpdate_LastSessionCompletesAssignment(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	store.assignments[1].assigned, store.assignments[1].remaining = 1, 1
	svc, _ := newService(store)
	ctx := context.Background()

	in := paidInput(1, "")
	in.Completed = false
	s, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusActive, store.assignments[1].status)

	upd := UpdateInput{SessionDate: day, AssistantID: 7, AssistantPercentage: dec(30), PaymentStatus: lifecycle.PaymentPaid, Completed: true}
	_, err = svc.Update(ctx, s.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 0, store.assignments[1].remaining)
	assert.Equal(t, lifecycle.StatusCompleted, store.assignments[1].status)

	_, err = svc.Create(ctx, paidInput(1, ""))
	assert.Error(t, err)

	upd.Completed = false
	_, err = svc.Update(ctx, s.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 1, store.assignments[1].remaining)
	assert.Equal(t, lifecycle.StatusActive, store.assignments[1].status)
}

func TestUpdate_CannotCompleteBeyondAssigned(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	store.assignments[1].assigned, store.assignments[1].remaining = 2, 2
	svc, _ := newService(store)
	ctx := context.Background()

	in := paidInput(1, "")
	in.Completed = false
	a, err := svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)

	// остаток уже выбран другими сессиями
	store.assignments[1].remaining = 0
	_, err = svc.Update(ctx, a.ID, UpdateInput{SessionDate: day, AssistantID: 7, PaymentStatus: lifecycle.PaymentPaid, Completed: true})
	assert.ErrorIs(t, err, ErrNoSessionsLeft)
	assert.False(t, store.sessions[a.ID].Completed)
}

func TestUpdate_AssistantChangeMovesCommission(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, _ := newService(store)
	ctx := context.Background()

	s, err := svc.Create(ctx, paidInput(1, ""))
	require.NoError(t, err)

	_, err = svc.Update(ctx, s.ID, UpdateInput{
		SessionDate:         day,
		AssistantID:         8,
		AssistantPercentage: dec(25),
		PaymentStatus:       lifecycle.PaymentPaid,
		Completed:           true,
	})
	require.NoError(t, err)

	assert.True(t, store.earned(7).IsZero())
	assert.True(t, dec(20).Equal(store.earned(8)))
	assert.True(t, dec(20).Equal(store.assignments[1].commission))
}

func TestUpdate_PromotionPaymentAddsComponentPrice(t *testing.T) {
	store := newMemStore()
	seedPromotion(store)
	svc, _ := newService(store)
	ctx := context.Background()

	in := paidInput(2, "Massage")
	in.PaymentStatus = lifecycle.PaymentPending
	s, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Update(ctx, s.ID, UpdateInput{
		SessionDate:   day,
		AssistantID:   7,
		PaymentStatus: lifecycle.PaymentPaid,
		Completed:     true,
	})
	require.NoError(t, err)
	a := store.assignments[2]
	assert.True(t, dec(50).Equal(a.totalPaid))
	assert.True(t, a.commission.IsZero())
	assert.Equal(t, 3, a.components["Massage"].remaining)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newService(newMemStore())
	_, err := svc.Update(context.Background(), 42, UpdateInput{SessionDate: day, AssistantID: 7, PaymentStatus: lifecycle.PaymentPaid})
	assert.ErrorIs(t, err, ErrNotFound)
}

// seedPrepaidNormal: 80 x5, две сессии оплачены заранее и числятся за первой.
func seedPrepaidNormal(t *testing.T, store *memStore) Session {
	t.Helper()
	seedNormal(store)
	a := store.assignments[1]
	a.totalPaid, a.commission = dec(160), dec(48)

	first := Session{
		AssignmentID:        1,
		SessionNumber:       1,
		SessionDate:         day,
		AssistantID:         7,
		AssistantPercentage: dec(30),
		PaymentStatus:       lifecycle.PaymentPaid,
		AmountPaid:          dec(160),
		BilledAmount:        dec(160),
		CommissionAmount:    dec(48),
	}
	require.NoError(t, store.Insert(context.Background(), &first))
	assignmentID := int64(1)
	store.entries = append(store.entries, commissions.Entry{StaffID: 7, AssignmentID: &assignmentID, Kind: commissions.KindAssignment, Amount: dec(48)})
	return first
}

func TestUpdate_PrepaidFirstSessionRoundTrip(t *testing.T) {
	store := newMemStore()
	first := seedPrepaidNormal(t, store)
	svc, _ := newService(store)
	ctx := context.Background()

	upd := UpdateInput{SessionDate: day, AssistantID: 7, AssistantPercentage: dec(30), PaymentStatus: lifecycle.PaymentPending}
	_, err := svc.Update(ctx, first.ID, upd)
	require.NoError(t, err)
	a := store.assignments[1]
	assert.True(t, a.totalPaid.IsZero())
	assert.True(t, a.commission.IsZero())

	upd.PaymentStatus = lifecycle.PaymentPaid
	out, err := svc.Update(ctx, first.ID, upd)
	require.NoError(t, err)

	assert.True(t, dec(160).Equal(out.AmountPaid))
	assert.True(t, dec(48).Equal(out.CommissionAmount))
	a = store.assignments[1]
	assert.True(t, dec(160).Equal(a.totalPaid))
	assert.True(t, dec(48).Equal(a.commission))
	assert.True(t, dec(48).Equal(store.earned(7)))
}

func TestUpdate_PrepaidPromotionSessionRoundTrip(t *testing.T) {
	store := newMemStore()
	seedPromotion(store)
	a := store.assignments[2]
	a.totalPaid, a.commission = dec(400), dec(60)
	first := Session{
		AssignmentID:        2,
		ComponentName:       "Peeling",
		SessionNumber:       1,
		SessionDate:         day,
		AssistantID:         7,
		AssistantPercentage: dec(30),
		PaymentStatus:       lifecycle.PaymentPaid,
		AmountPaid:          dec(200),
		BilledAmount:        dec(200),
		CommissionAmount:    dec(60),
	}
	require.NoError(t, store.Insert(context.Background(), &first))
	svc, _ := newService(store)
	ctx := context.Background()

	upd := UpdateInput{SessionDate: day, AssistantID: 7, AssistantPercentage: dec(30), PaymentStatus: lifecycle.PaymentPending}
	_, err := svc.Update(ctx, first.ID, upd)
	require.NoError(t, err)
	assert.True(t, dec(200).Equal(store.assignments[2].totalPaid))

	upd.PaymentStatus = lifecycle.PaymentPaid
	out, err := svc.Update(ctx, first.ID, upd)
	require.NoError(t, err)

	assert.True(t, dec(200).Equal(out.AmountPaid))
	assert.True(t, dec(60).Equal(out.CommissionAmount))
	assert.True(t, dec(400).Equal(store.assignments[2].totalPaid))
	assert.True(t, dec(60).Equal(store.assignments[2].commission))
}

func TestUpdate_UnpaidSessionIsBilledOnePrice(t *testing.T) {
	store := newMemStore()
	seedNormal(store)
	svc, _ := newService(store)
	ctx := context.Background()

	in := paidInput(1, "")
	in.PaymentStatus = lifecycle.PaymentPending
	in.Completed = false
	s, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, s.BilledAmount.IsZero())

	out, err := svc.Update(ctx, s.ID, UpdateInput{SessionDate: day, AssistantID: 7, AssistantPercentage: dec(30), PaymentStatus: lifecycle.PaymentPaid})
	require.NoError(t, err)
	assert.True(t, dec(80).Equal(out.AmountPaid))
	assert.True(t, dec(80).Equal(out.BilledAmount))
}
