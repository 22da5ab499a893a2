package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/customers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/pricing"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/notify"
)

type memStore struct {
	byID    map[string]Session
	nextID  int
	failOn  string
	failErr error
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]Session{}}
}

func (m *memStore) Insert(_ context.Context, s Session) (*Session, error) {
	if m.failOn == "insert" {
		return nil, m.failErr
	}
	if s.ID == "" {
		m.nextID++
		s.ID = "sess-" + string(rune('0'+m.nextID))
	}
	s.CreatedAt = time.Now()
	m.byID[s.ID] = s
	return &s, nil
}

func (m *memStore) Update(_ context.Context, s Session) error {
	if m.failOn == "update" {
		return m.failErr
	}
	if _, ok := m.byID[s.ID]; !ok {
		return ErrNotFound
	}
	m.byID[s.ID] = s
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*Session, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *memStore) List(_ context.Context) ([]Session, error) {
	out := make([]Session, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	return out, nil
}

type memCatalog struct {
	cat pricing.Catalog
	err error
}

func (m memCatalog) Load(context.Context) (pricing.Catalog, error) { return m.cat, m.err }

type memCustomers struct {
	byID map[string]customers.Customer
}

func (m memCustomers) GetByID(_ context.Context, id string) (*customers.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func testRules() []pricing.PricingRule {
	return []pricing.PricingRule{
		{ID: "r30", DurationMinutes: 30, RegularPrice: 190, LoyaltyPrice: 190, RegularCommission: 90, LoyaltyCommission: 90, Active: true},
		{ID: "r60", DurationMinutes: 60, RegularPrice: 290, LoyaltyPrice: 230, RegularCommission: 170, LoyaltyCommission: 150, Active: true},
	}
}

// memNotifier records messages so tests can assert on emitted outcomes.
type memNotifier struct {
	messages []string
	kinds    []notify.Kind
}

func (m *memNotifier) Notify(message string, kind notify.Kind) {
	m.messages = append(m.messages, message)
	m.kinds = append(m.kinds, kind)
}

func newTestService(store Store) *Service {
	return newNotifyingTestService(store, &memNotifier{})
}

func newNotifyingTestService(store Store, n notify.Notifier) *Service {
	return NewService(store, memCatalog{cat: pricing.NewCatalog(testRules())}, memCustomers{byID: map[string]customers.Customer{
		"c1":  {ID: "c1", Name: "João"},
		"vip": {ID: "vip", Name: "Maria", IsLoyalty: true, LoyaltyNickname: "M"},
	}}, n)
}

func validCreate() CreateInput {
	return CreateInput{
		CustomerID:      "c1",
		ProviderIDs:     []string{"Ana"},
		Date:            "2026-08-29",
		StartTime:       "14:00",
		DurationMinutes: 60,
		Room:            "Sala 1",
		PaymentMethod:   PayPix,
		RecordedBy:      "recepcao",
	}
}

func TestCreateScheduledBooking(t *testing.T) {
	svc := newTestService(newMemStore())

	s, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	assert.Equal(t, StatusScheduled, s.Status)
	assert.Equal(t, 290.0, s.TotalValue)
	require.Len(t, s.Commissions, 1)
	assert.Equal(t, "Ana", s.Commissions[0].ProviderID)
	assert.Equal(t, 170.0, s.Commissions[0].Value)
	assert.Equal(t, CommissionPending, s.Commissions[0].Status)
	require.NotNil(t, s.PriceRuleID)
	assert.Equal(t, "r60", *s.PriceRuleID)
	require.NotNil(t, s.PriceSnapshot)
	assert.Equal(t, Snapshot{Regular: 290, Loyalty: 230}, *s.PriceSnapshot)
	assert.Equal(t, Snapshot{Regular: 170, Loyalty: 150}, *s.CommissionSnapshot)
}

func TestCreateImmediateStartsPending(t *testing.T) {
	svc := newTestService(newMemStore())

	in := validCreate()
	in.Immediate = true
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s.Status)
}

func TestCreateUpfrontIsPaidWithSettledCommission(t *testing.T) {
	svc := newTestService(newMemStore())

	in := validCreate()
	in.PaymentTiming = PayUpfront
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, s.Status)
	require.Len(t, s.Commissions, 1)
	assert.Equal(t, CommissionPaid, s.Commissions[0].Status)
}

func TestCreateLoyaltyUsesLoyaltyColumn(t *testing.T) {
	svc := newTestService(newMemStore())

	in := validCreate()
	in.CustomerID = "vip"
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 230.0, s.TotalValue)
	assert.Equal(t, 150.0, s.Commissions[0].Value)
}

func TestCreateOverrideScalesCommission(t *testing.T) {
	svc := newTestService(newMemStore())

	in := validCreate()
	override := 145.0
	in.ValueOverride = &override
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 145.0, s.TotalValue)
	assert.Equal(t, 85.0, s.Commissions[0].Value)
}

func TestCreateMultiProviderDefersCommission(t *testing.T) {
	svc := newTestService(newMemStore())

	in := validCreate()
	in.ProviderIDs = []string{"Ana", "Bia"}
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, s.Commissions, 2)
	for _, c := range s.Commissions {
		assert.Zero(t, c.Value)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemStore())

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing customer", func(in *CreateInput) { in.CustomerID = "" }},
		{"no providers", func(in *CreateInput) { in.ProviderIDs = nil }},
		{"blank provider", func(in *CreateInput) { in.ProviderIDs = []string{""} }},
		{"bad date", func(in *CreateInput) { in.Date = "29/08/2026" }},
		{"duration too short", func(in *CreateInput) { in.DurationMinutes = 15 }},
		{"missing room", func(in *CreateInput) { in.Room = "" }},
		{"unknown customer", func(in *CreateInput) { in.CustomerID = "ghost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreate()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreatePersistFailurePropagates(t *testing.T) {
	store := newMemStore()
	store.failOn = "insert"
	store.failErr = errors.New("connection reset")
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), validCreate())
	assert.ErrorContains(t, err, "connection reset")
}

func TestStartOnlyFromScheduled(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	s, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	started, err := svc.Start(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, started.Status)
	assert.NotEmpty(t, started.StartTime)

	_, err = svc.Start(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFinishComputesChargeAndFansOutCommissions(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	in := validCreate()
	in.ProviderIDs = []string{"Ana", "Bia"}
	in.Immediate = true
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	done, err := svc.Finish(context.Background(), s.ID, FinishInput{
		ActualStart:   "14:00",
		ActualEnd:     "15:30",
		PaymentMethod: PayCash,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, done.Status)
	assert.True(t, done.IsFinished)
	assert.Equal(t, PayCash, done.PaymentMethod)
	assert.Equal(t, 480.0, done.TotalValue)
	assert.Equal(t, 90, done.DurationMinutes)
	require.NotNil(t, done.BilledDurationMinutes)
	assert.Equal(t, 90, *done.BilledDurationMinutes)
	require.NotNil(t, done.EndTime)
	assert.Equal(t, "15:30", *done.EndTime)

	// each provider is owed the full per-provider figure
	require.Len(t, done.Commissions, 2)
	for _, c := range done.Commissions {
		assert.Equal(t, 260.0, c.Value)
		assert.Equal(t, CommissionPending, c.Status)
	}
}

func TestFinishOvertimeGrace(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	in := validCreate()
	in.Immediate = true
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	done, err := svc.Finish(context.Background(), s.ID, FinishInput{
		ActualStart: "14:00", ActualEnd: "15:08", PaymentMethod: PayPix,
	})
	require.NoError(t, err)
	assert.Equal(t, 60, *done.BilledDurationMinutes)
	assert.Equal(t, 290.0, done.TotalValue)
}

func TestFinishRequiresPending(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	s, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.Finish(context.Background(), s.ID, FinishInput{
		ActualStart: "14:00", ActualEnd: "15:00", PaymentMethod: PayPix,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFinishValueOverride(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	in := validCreate()
	in.Immediate = true
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	override := 250.0
	done, err := svc.Finish(context.Background(), s.ID, FinishInput{
		ActualStart: "14:00", ActualEnd: "15:00", PaymentMethod: PayPix, ValueOverride: &override,
	})
	require.NoError(t, err)
	assert.Equal(t, 250.0, done.TotalValue)
	// commission still follows the computed figure, not the override
	assert.Equal(t, 170.0, done.Commissions[0].Value)
}

func TestFinishBadClock(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	in := validCreate()
	in.Immediate = true
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Finish(context.Background(), s.ID, FinishInput{
		ActualStart: "25:99", ActualEnd: "15:00", PaymentMethod: PayPix,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelClearsCommissions(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	s, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.IsFinished)
	assert.Empty(t, cancelled.Commissions)

	_, err = svc.Cancel(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEditRejectsTerminal(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	in := validCreate()
	in.PaymentTiming = PayUpfront
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	room := "Sala 2"
	_, err = svc.Edit(context.Background(), s.ID, EditInput{Room: &room})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEditAppliesPartialChanges(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	s, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	room, value, prov := "Sala 2", 199.9, "Bia"
	edited, err := svc.Edit(context.Background(), s.ID, EditInput{
		Room: &room, TotalValue: &value, Provider: &prov,
	})
	require.NoError(t, err)

	assert.Equal(t, "Sala 2", edited.Room)
	assert.Equal(t, 200.0, edited.TotalValue)
	assert.Equal(t, []string{"Bia"}, edited.ProviderIDs)
	// untouched fields survive
	assert.Equal(t, "2026-08-29", edited.Date)
	assert.Equal(t, 60, edited.DurationMinutes)
}

func TestEditReassignmentMovesCommission(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	s, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	require.Len(t, s.Commissions, 1)
	require.Equal(t, "Ana", s.Commissions[0].ProviderID)

	prov := "Bia"
	edited, err := svc.Edit(context.Background(), s.ID, EditInput{Provider: &prov})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bia"}, edited.ProviderIDs)
	require.Len(t, edited.Commissions, 1)
	assert.Equal(t, "Bia", edited.Commissions[0].ProviderID)
	assert.Equal(t, 170.0, edited.Commissions[0].Value)
	assert.Equal(t, CommissionPending, edited.Commissions[0].Status)
	assert.Nil(t, edited.CommissionFor("Ana"))
}

func TestLifecycleOutcomesReachNotifier(t *testing.T) {
	store := newMemStore()
	rec := &memNotifier{}
	svc := newNotifyingTestService(store, rec)

	in := validCreate()
	in.Immediate = true
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Finish(context.Background(), s.ID, FinishInput{
		ActualStart: "14:00", ActualEnd: "15:00", PaymentMethod: PayPix,
	})
	require.NoError(t, err)

	s2, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), s2.ID)
	require.NoError(t, err)

	require.Len(t, rec.kinds, 4)
	for _, k := range rec.kinds {
		assert.Equal(t, notify.KindSuccess, k)
	}
	assert.Contains(t, rec.messages[1], "checkout")
	assert.Contains(t, rec.messages[3], "cancelado")
}

func TestPersistFailureNotifiesError(t *testing.T) {
	store := newMemStore()
	store.failOn = "insert"
	store.failErr = errors.New("pool exhausted")
	rec := &memNotifier{}
	svc := newNotifyingTestService(store, rec)

	_, err := svc.Create(context.Background(), validCreate())
	require.Error(t, err)
	require.Len(t, rec.kinds, 1)
	assert.Equal(t, notify.KindError, rec.kinds[0])
}

func TestSnapshotsSurviveCatalogEdits(t *testing.T) {
	store := newMemStore()
	rules := testRules()
	cat := memCatalog{cat: pricing.NewCatalog(rules)}
	svc := NewService(store, cat, memCustomers{byID: map[string]customers.Customer{"c1": {ID: "c1"}}}, &memNotifier{})

	s, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	rules[1].RegularPrice = 999

	got, err := svc.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 290.0, got.PriceSnapshot.Regular)
	assert.Equal(t, 290.0, got.TotalValue)
}

func TestDeleteRemovesAnyStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	in := validCreate()
	in.PaymentTiming = PayUpfront
	s, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), s.ID))
	_, err = svc.Get(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
