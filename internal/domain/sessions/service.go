package sessions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/billing"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/customers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/pricing"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/metrics"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/notify"
)

var ErrValidation = errors.New("invalid session input")

// CatalogSource supplies the current pricing catalog; pricing.Repo is the
// production implementation.
type CatalogSource interface {
	Load(ctx context.Context) (pricing.Catalog, error)
}

// CustomerSource resolves the loyalty flag at booking and checkout time.
type CustomerSource interface {
	GetByID(ctx context.Context, id string) (*customers.Customer, error)
}

// Service owns the session lifecycle. All state leaves through the Store;
// nothing is kept in memory, so a failed write never diverges from storage.
type Service struct {
	store     Store
	catalog   CatalogSource
	customers CustomerSource
	notifier  notify.Notifier
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(store Store, catalog CatalogSource, cust CustomerSource, n notify.Notifier) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		customers: cust,
		notifier:  n,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// PaymentTiming mirrors the booking form: settle at checkout or upfront.
type PaymentTiming string

const (
	PayAtCheckout PaymentTiming = "AFTER"
	PayUpfront    PaymentTiming = "NOW"
)

type CreateInput struct {
	CustomerID      string        `validate:"required"`
	ProviderIDs     []string      `validate:"required,min=1,dive,required"`
	Date            string        `validate:"required,datetime=2006-01-02"`
	StartTime       string        `validate:"required"`
	DurationMinutes int           `validate:"required,min=30"`
	Room            string        `validate:"required"`
	PaymentMethod   PaymentMethod `validate:"required"`
	PaymentTiming   PaymentTiming
	// Immediate marks a walk-in that starts right away rather than a
	// future booking.
	Immediate  bool
	RecordedBy string `validate:"required"`
	// ValueOverride replaces the quoted price; commission scales with it.
	ValueOverride *float64
}

// Create registers a booking against the current catalog, snapshotting the
// rule used so later catalog edits cannot touch this session.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Session, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	cust, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, fmt.Errorf("%w: unknown customer %s", ErrValidation, in.CustomerID)
	}

	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	value, ruleID := billing.Quote(in.DurationMinutes, cust.IsLoyalty, cat)
	if in.ValueOverride != nil {
		value = math.Round(*in.ValueOverride)
	}

	var rule *pricing.PricingRule
	if r, ok := cat.Resolve(in.DurationMinutes); ok {
		rule = &r
	}

	upfront := in.PaymentTiming == PayUpfront
	status := StatusScheduled
	if upfront {
		status = StatusPaid
	} else if in.Immediate {
		status = StatusPending
	}

	commStatus := CommissionPending
	if upfront {
		commStatus = CommissionPaid
	}
	comms := make([]Commission, 0, len(in.ProviderIDs))
	for _, p := range in.ProviderIDs {
		comms = append(comms, Commission{
			ProviderID: p,
			Value:      billing.CreationCommission(rule, cust.IsLoyalty, value, len(in.ProviderIDs)),
			Status:     commStatus,
		})
	}

	sess := Session{
		CustomerID:      in.CustomerID,
		ProviderIDs:     in.ProviderIDs,
		Date:            in.Date,
		StartTime:       in.StartTime,
		DurationMinutes: in.DurationMinutes,
		Room:            in.Room,
		TotalValue:      value,
		PaymentMethod:   in.PaymentMethod,
		Status:          status,
		RecordedBy:      in.RecordedBy,
		Commissions:     comms,
	}
	if rule != nil {
		id := rule.ID
		sess.PriceRuleID = &id
		sess.PriceSnapshot = &Snapshot{Regular: math.Round(rule.RegularPrice), Loyalty: math.Round(rule.LoyaltyPrice)}
		sess.CommissionSnapshot = &Snapshot{Regular: math.Round(rule.RegularCommission), Loyalty: math.Round(rule.LoyaltyCommission)}
	} else if ruleID != "" {
		sess.PriceRuleID = &ruleID
	}

	created, err := s.store.Insert(ctx, sess)
	if err != nil {
		s.notifier.Notify(fmt.Sprintf("falha ao registrar atendimento de %s: %v", in.Date, err), notify.KindError)
		return nil, err
	}
	metrics.SessionsCreated.Inc()
	s.notifier.Notify(fmt.Sprintf("atendimento registrado para %s às %s (%s)", created.Date, created.StartTime, created.Status), notify.KindSuccess)
	return created, nil
}

// Start moves a future booking into progress and stamps the actual start.
func (s *Service) Start(ctx context.Context, id string) (*Session, error) {
	defer LockSession(id)()

	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusScheduled {
		return nil, fmt.Errorf("%w: start from %s", ErrInvalidTransition, sess.Status)
	}

	sess.Status = StatusPending
	sess.StartTime = s.now().Format("15:04")
	if err := s.store.Update(ctx, *sess); err != nil {
		return nil, err
	}
	return sess, nil
}

type FinishInput struct {
	ActualStart   string        `validate:"required"`
	ActualEnd     string        `validate:"required"`
	PaymentMethod PaymentMethod `validate:"required"`
	// ValueOverride lets the operator adjust the computed charge at checkout.
	ValueOverride *float64
}

// Finish checks out an in-progress session: recomputes the charge from the
// actual clock times, replaces the creation-time commissions with the final
// ones (each assigned provider owed the full per-provider figure) and seals
// the session as PAID.
func (s *Service) Finish(ctx context.Context, id string, in FinishInput) (*Session, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	defer LockSession(id)()

	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusPending {
		return nil, fmt.Errorf("%w: finish from %s", ErrInvalidTransition, sess.Status)
	}

	cust, err := s.customers.GetByID(ctx, sess.CustomerID)
	if err != nil {
		return nil, err
	}
	loyalty := cust != nil && cust.IsLoyalty

	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	res, err := billing.Compute(sess.DurationMinutes, in.ActualStart, in.ActualEnd, loyalty, cat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	total := res.Total
	if in.ValueOverride != nil {
		total = math.Round(*in.ValueOverride)
	}

	comms := make([]Commission, 0, len(sess.ProviderIDs))
	for _, p := range sess.ProviderIDs {
		comms = append(comms, Commission{ProviderID: p, Value: res.Commission, Status: CommissionPending})
	}

	end := in.ActualEnd
	billed := res.BilledMinutes
	sess.Status = StatusPaid
	sess.IsFinished = true
	sess.PaymentMethod = in.PaymentMethod
	sess.TotalValue = total
	sess.StartTime = in.ActualStart
	sess.EndTime = &end
	sess.DurationMinutes = res.ElapsedMinutes
	sess.BilledDurationMinutes = &billed
	sess.Commissions = comms

	if err := s.store.Update(ctx, *sess); err != nil {
		s.notifier.Notify(fmt.Sprintf("falha no checkout do atendimento %s: %v", id, err), notify.KindError)
		return nil, err
	}
	metrics.SessionsFinished.Inc()
	s.notifier.Notify(fmt.Sprintf("checkout concluído: R$ %.0f.00 em %d min", sess.TotalValue, sess.DurationMinutes), notify.KindSuccess)
	return sess, nil
}

// Cancel releases a booking that never completed. The record stays for the
// history views; no commissions survive.
func (s *Service) Cancel(ctx context.Context, id string) (*Session, error) {
	defer LockSession(id)()

	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status.Terminal() {
		return nil, fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, sess.Status)
	}

	sess.Status = StatusCancelled
	sess.IsFinished = false
	sess.Commissions = nil
	if err := s.store.Update(ctx, *sess); err != nil {
		s.notifier.Notify(fmt.Sprintf("falha ao cancelar atendimento %s: %v", id, err), notify.KindError)
		return nil, err
	}
	metrics.SessionsCancelled.Inc()
	s.notifier.Notify(fmt.Sprintf("atendimento de %s cancelado", sess.Date), notify.KindSuccess)
	return sess, nil
}

type EditInput struct {
	Date            *string
	StartTime       *string
	Provider        *string // single reassignment
	Room            *string
	DurationMinutes *int
	TotalValue      *float64
}

// Edit is the manual correction path for non-terminal sessions. It bypasses
// the billing calculator on purpose: it exists to fix operator mistakes,
// not to price sessions.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (*Session, error) {
	defer LockSession(id)()

	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status.Terminal() {
		return nil, fmt.Errorf("%w: edit from %s", ErrInvalidTransition, sess.Status)
	}

	if in.Date != nil {
		sess.Date = *in.Date
	}
	if in.StartTime != nil {
		sess.StartTime = *in.StartTime
	}
	if in.Provider != nil {
		sess.ProviderIDs = []string{*in.Provider}
		// Commission entries follow the reassignment, keeping the earned
		// value and status, so no entry names an unassigned provider.
		if len(sess.Commissions) > 0 {
			comm := sess.Commissions[0]
			comm.ProviderID = *in.Provider
			sess.Commissions = []Commission{comm}
		}
	}
	if in.Room != nil {
		sess.Room = *in.Room
	}
	if in.DurationMinutes != nil {
		sess.DurationMinutes = *in.DurationMinutes
	}
	if in.TotalValue != nil {
		sess.TotalValue = math.Round(*in.TotalValue)
	}

	if err := s.store.Update(ctx, *sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete is the administrative hard removal, allowed from any status.
func (s *Service) Delete(ctx context.Context, id string) error {
	defer LockSession(id)()
	return s.store.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.GetByID(ctx, id)
}
