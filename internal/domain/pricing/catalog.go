package pricing

// Fallback figures used when no catalog rule covers a duration. They match
// the house table that predates the configurable catalog.
const (
	FallbackHourPrice       = 290.0
	FallbackHourPriceVIP    = 230.0
	FallbackHalfPrice       = 190.0
	FallbackHalfPriceVIP    = 190.0
	FallbackHourCommission  = 170.0
	FallbackHourCommVIP     = 150.0
	FallbackHalfCommission  = 90.0
	FallbackHalfCommVIP     = 90.0
	FallbackCommissionRatio = 0.4
	FallbackHourlyBase      = 150.0
	FallbackHourlyBaseVIP   = 120.0
)

// Catalog is an immutable view over the loaded rule set.
type Catalog struct {
	rules []PricingRule
}

func NewCatalog(rules []PricingRule) Catalog {
	cp := make([]PricingRule, len(rules))
	copy(cp, rules)
	return Catalog{rules: cp}
}

// Resolve returns the first active rule for an exact duration match.
// Validity dates are deliberately not consulted: the catalog behaves as a
// single current rule per duration.
func (c Catalog) Resolve(durationMinutes int) (PricingRule, bool) {
	for _, r := range c.rules {
		if r.DurationMinutes == durationMinutes && r.Active {
			return r, true
		}
	}
	return PricingRule{}, false
}

func (c Catalog) ByID(id string) (PricingRule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return PricingRule{}, false
}

func (c Catalog) Rules() []PricingRule {
	cp := make([]PricingRule, len(c.rules))
	copy(cp, c.rules)
	return cp
}

// HourPrice and the helpers below fall back to the house figures when the
// catalog has no matching rule, so checkout never fails on a missing rule.
func (c Catalog) HourPrice(loyalty bool) float64 {
	if r, ok := c.Resolve(60); ok {
		return r.Price(loyalty)
	}
	if loyalty {
		return FallbackHourPriceVIP
	}
	return FallbackHourPrice
}

func (c Catalog) HalfHourPrice(loyalty bool) float64 {
	if r, ok := c.Resolve(30); ok {
		return r.Price(loyalty)
	}
	if loyalty {
		return FallbackHalfPriceVIP
	}
	return FallbackHalfPrice
}

func (c Catalog) HourCommission(loyalty bool) float64 {
	if r, ok := c.Resolve(60); ok {
		return r.Commission(loyalty)
	}
	if loyalty {
		return FallbackHourCommVIP
	}
	return FallbackHourCommission
}

func (c Catalog) HalfHourCommission(loyalty bool) float64 {
	if r, ok := c.Resolve(30); ok {
		return r.Commission(loyalty)
	}
	if loyalty {
		return FallbackHalfCommVIP
	}
	return FallbackHalfCommission
}
