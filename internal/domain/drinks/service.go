package drinks

import (
	"context"
	"errors"
	"time"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

var (
	ErrNotFound = errors.New("drink order not found")
	ErrNotOpen  = errors.New("drink order is not open")
	ErrEmptyTab = errors.New("drink order has no items")
)

// OrderStore is the persistence surface the service needs; *Repo is the
// production implementation.
type OrderStore interface {
	InsertOrder(ctx context.Context, o Order) (*Order, error)
	UpdateOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
}

type Service struct {
	repo OrderStore
	now  func() time.Time
}

func NewService(repo OrderStore) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Open(ctx context.Context, customerID *string, customerName string, items []OrderItem) (*Order, error) {
	now := s.now()
	o := Order{
		CustomerID:   customerID,
		CustomerName: customerName,
		Items:        items,
		TotalValue:   Total(items),
		Status:       OrderOpen,
		Date:         now.Format("2006-01-02"),
		CreatedAt:    now,
	}
	return s.repo.InsertOrder(ctx, o)
}

func (s *Service) AddItems(ctx context.Context, id string, items []OrderItem) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if o.Status != OrderOpen {
		return nil, ErrNotOpen
	}
	o.Items = append(o.Items, items...)
	o.TotalValue = Total(o.Items)
	if err := s.repo.UpdateOrder(ctx, *o); err != nil {
		return nil, err
	}
	return o, nil
}

// Close settles an open tab. Empty tabs cannot be paid.
func (s *Service) Close(ctx context.Context, id string, method sessions.PaymentMethod) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if o.Status != OrderOpen {
		return nil, ErrNotOpen
	}
	if len(o.Items) == 0 {
		return nil, ErrEmptyTab
	}
	now := s.now()
	o.Status = OrderPaid
	o.PaymentMethod = &method
	o.ClosedAt = &now
	if err := s.repo.UpdateOrder(ctx, *o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	if o.Status != OrderOpen {
		return nil, ErrNotOpen
	}
	now := s.now()
	o.Status = OrderCancelled
	o.ClosedAt = &now
	if err := s.repo.UpdateOrder(ctx, *o); err != nil {
		return nil, err
	}
	return o, nil
}
