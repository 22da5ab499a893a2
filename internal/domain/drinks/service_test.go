package drinks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

type memOrders struct {
	byID map[string]Order
	seq  int
}

func newMemOrders() *memOrders { return &memOrders{byID: map[string]Order{}} }

func (m *memOrders) InsertOrder(_ context.Context, o Order) (*Order, error) {
	if o.ID == "" {
		m.seq++
		o.ID = "o" + string(rune('0'+m.seq))
	}
	m.byID[o.ID] = o
	return &o, nil
}

func (m *memOrders) UpdateOrder(_ context.Context, o Order) error {
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) GetOrder(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func newTestService(store OrderStore) *Service {
	s := NewService(store)
	s.now = func() time.Time { return time.Date(2026, 8, 29, 20, 30, 0, 0, time.UTC) }
	return s
}

func items() []OrderItem {
	return []OrderItem{
		{ProductID: "d1", Name: "Água", Quantity: 2, UnitPrice: 5},
		{ProductID: "d2", Name: "Cerveja", Quantity: 1, UnitPrice: 12},
	}
}

func TestOpenOrder(t *testing.T) {
	svc := newTestService(newMemOrders())

	o, err := svc.Open(context.Background(), nil, "João", items())
	require.NoError(t, err)

	assert.Equal(t, OrderOpen, o.Status)
	assert.Equal(t, 22.0, o.TotalValue)
	assert.Equal(t, "2026-08-29", o.Date)
	assert.Nil(t, o.ClosedAt)
}

func TestAddItemsRecomputesTotal(t *testing.T) {
	store := newMemOrders()
	svc := newTestService(store)

	o, err := svc.Open(context.Background(), nil, "João", items())
	require.NoError(t, err)

	o, err = svc.AddItems(context.Background(), o.ID, []OrderItem{
		{ProductID: "d2", Name: "Cerveja", Quantity: 2, UnitPrice: 12},
	})
	require.NoError(t, err)
	assert.Equal(t, 46.0, o.TotalValue)
	assert.Len(t, o.Items, 3)
}

func TestCloseOrder(t *testing.T) {
	store := newMemOrders()
	svc := newTestService(store)

	o, err := svc.Open(context.Background(), nil, "João", items())
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), o.ID, sessions.PayCash)
	require.NoError(t, err)
	assert.Equal(t, OrderPaid, closed.Status)
	require.NotNil(t, closed.PaymentMethod)
	assert.Equal(t, sessions.PayCash, *closed.PaymentMethod)
	require.NotNil(t, closed.ClosedAt)

	// a paid tab takes no further changes
	_, err = svc.Close(context.Background(), o.ID, sessions.PayPix)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = svc.AddItems(context.Background(), o.ID, items())
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = svc.Cancel(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestCloseEmptyTab(t *testing.T) {
	svc := newTestService(newMemOrders())

	o, err := svc.Open(context.Background(), nil, "João", nil)
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), o.ID, sessions.PayPix)
	assert.ErrorIs(t, err, ErrEmptyTab)
}

func TestCancelOrder(t *testing.T) {
	svc := newTestService(newMemOrders())

	o, err := svc.Open(context.Background(), nil, "João", items())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.ClosedAt)
}

func TestUnknownOrder(t *testing.T) {
	svc := newTestService(newMemOrders())

	_, err := svc.Close(context.Background(), "ghost", sessions.PayPix)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddItems(context.Background(), "ghost", items())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Cancel(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
