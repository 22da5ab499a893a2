package pricing

import "time"

// PricingRule is a duration-keyed price/commission quadruple.
// ValidFrom/ValidUntil document the intended validity window; resolution
// is by duration only (see Catalog.Resolve).
type PricingRule struct {
	ID                string    `json:"id"`
	Label             string    `json:"label"`
	DurationMinutes   int       `json:"durationMinutes"`
	RegularPrice      float64   `json:"regularPrice"`
	LoyaltyPrice      float64   `json:"loyaltyPrice"`
	RegularCommission float64   `json:"regularCommission"`
	LoyaltyCommission float64   `json:"loyaltyCommission"`
	Active            bool      `json:"active"`
	ValidFrom         string    `json:"validFrom"` // YYYY-MM-DD
	ValidUntil        *string   `json:"validUntil,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (r PricingRule) Price(loyalty bool) float64 {
	if loyalty {
		return r.LoyaltyPrice
	}
	return r.RegularPrice
}

func (r PricingRule) Commission(loyalty bool) float64 {
	if loyalty {
		return r.LoyaltyCommission
	}
	return r.RegularCommission
}
