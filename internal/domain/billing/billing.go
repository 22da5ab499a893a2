// Package billing turns actual clock times into billed duration, client
// charge and per-provider commission. Everything here is pure; callers
// persist the results.
package billing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/pricing"
)

// Billing is block-based: elapsed time is charged in half-hour blocks,
// with a grace window before an incomplete block starts counting.
const (
	BlockMinutes = 30
	GraceMinutes = 10
)

var ErrBadClock = errors.New("clock time must be HH:MM")

type Result struct {
	ElapsedMinutes int
	BilledMinutes  int
	Total          float64
	Commission     float64
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return h*60 + m, nil
}

// BilledMinutes rounds elapsed minutes to half-hour blocks (minutes past a
// block only count once they exceed the grace window) and floors the result
// at the contracted duration, which is the guaranteed minimum per booking.
func BilledMinutes(contractedMinutes, elapsedMinutes int) int {
	blocks := elapsedMinutes / BlockMinutes
	if elapsedMinutes%BlockMinutes > GraceMinutes {
		blocks++
	}
	billed := blocks * BlockMinutes
	if billed < contractedMinutes {
		billed = contractedMinutes
	}
	return billed
}

// Compute derives the final charge for a checkout. The billed duration is
// priced compositionally: whole hours at the 60-minute rule plus an optional
// half hour at the 30-minute rule, never a single lookup for the total.
// Total and commission are rounded to whole currency units independently.
func Compute(contractedMinutes int, actualStart, actualEnd string, loyalty bool, cat pricing.Catalog) (Result, error) {
	start, err := ParseClock(actualStart)
	if err != nil {
		return Result{}, err
	}
	end, err := ParseClock(actualEnd)
	if err != nil {
		return Result{}, err
	}

	elapsed := end - start
	if elapsed < 0 {
		// session crossed midnight
		elapsed += 24 * 60
	}

	billed := BilledMinutes(contractedMinutes, elapsed)
	hours := billed / 60
	halfHour := billed%60 == BlockMinutes

	total := float64(hours) * cat.HourPrice(loyalty)
	commission := float64(hours) * cat.HourCommission(loyalty)
	if halfHour {
		total += cat.HalfHourPrice(loyalty)
		commission += cat.HalfHourCommission(loyalty)
	}

	return Result{
		ElapsedMinutes: elapsed,
		BilledMinutes:  billed,
		Total:          math.Round(total),
		Commission:     math.Round(commission),
	}, nil
}

// Quote suggests the booking value for a contracted duration before any
// actual times exist. Durations without a rule fall back to a flat hourly
// base so odd bookings still get a sensible default.
func Quote(contractedMinutes int, loyalty bool, cat pricing.Catalog) (value float64, ruleID string) {
	if r, ok := cat.Resolve(contractedMinutes); ok {
		return math.Round(r.Price(loyalty)), r.ID
	}
	base := pricing.FallbackHourlyBase
	if loyalty {
		base = pricing.FallbackHourlyBaseVIP
	}
	return math.Round(float64(contractedMinutes) / 60 * base), ""
}

// CreationCommission is the commission recorded at booking time. With a
// matching rule, a manual value override scales the commission by the same
// ratio; without a rule a flat cut of the charged value is owed. Bookings
// with more than one provider defer commission entirely to checkout.
func CreationCommission(rule *pricing.PricingRule, loyalty bool, totalValue float64, providerCount int) float64 {
	if providerCount > 1 {
		return 0
	}
	if rule == nil {
		return math.Round(totalValue * pricing.FallbackCommissionRatio)
	}
	commission := rule.Commission(loyalty)
	basePrice := rule.Price(loyalty)
	if basePrice > 0 && totalValue != basePrice {
		commission = commission * (totalValue / basePrice)
	}
	return math.Round(commission)
}
