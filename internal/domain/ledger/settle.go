package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/metrics"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/notify"
)

// ErrNoCommission reports a settlement target that has no commission entry
// for the provider at all, which should be impossible for well-formed data.
var ErrNoCommission = errors.New("no commission entry for provider")

// Service performs the mutating ledger operations against the session store.
type Service struct {
	store    sessions.Store
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(store sessions.Store, n notify.Notifier) *Service {
	return &Service{store: store, notifier: n, now: time.Now}
}

// Settle marks the provider's pending commissions on the targeted sessions
// as paid, stamping the payout moment and method. It is idempotent per
// commission: entries already paid are left exactly as they are. There is
// no partial settlement of a single entry's value.
func (s *Service) Settle(ctx context.Context, providerName string, sessionIDs []string, method sessions.PaymentMethod) error {
	paidAt := s.now()
	for _, id := range sessionIDs {
		if err := s.settleOne(ctx, id, providerName, method, paidAt); err != nil {
			s.notifier.Notify(fmt.Sprintf("falha na baixa de repasse para %s: %v", providerName, err), notify.KindError)
			return err
		}
	}
	s.notifier.Notify(fmt.Sprintf("repasse baixado para %s (%d atendimentos)", providerName, len(sessionIDs)), notify.KindSuccess)
	return nil
}

// settleOne holds the same per-session lock the lifecycle operations take,
// so a checkout rebuilding the commission list cannot race the paid stamp.
func (s *Service) settleOne(ctx context.Context, id, providerName string, method sessions.PaymentMethod, paidAt time.Time) error {
	defer sessions.LockSession(id)()

	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("settle %s: %w", id, err)
	}

	comm := sess.CommissionFor(providerName)
	if comm == nil {
		return fmt.Errorf("settle %s for %s: %w", id, providerName, ErrNoCommission)
	}
	if comm.Status == sessions.CommissionPaid {
		return nil
	}

	t := paidAt
	m := method
	comm.Status = sessions.CommissionPaid
	comm.PaidAt = &t
	comm.PaymentMethod = &m

	if err := s.store.Update(ctx, *sess); err != nil {
		return fmt.Errorf("settle %s: %w", id, err)
	}
	metrics.CommissionsSettled.Inc()
	return nil
}
