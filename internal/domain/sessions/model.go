package sessions

import "time"

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusPending   Status = "PENDING" // actively in progress
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

type PaymentMethod string

const (
	PayPix   PaymentMethod = "PIX"
	PayCash  PaymentMethod = "DINHEIRO"
	PayCard  PaymentMethod = "CARTÃO"
	PayOther PaymentMethod = "OUTROS"
)

type CommissionStatus string

const (
	CommissionPending CommissionStatus = "PENDING"
	CommissionPaid    CommissionStatus = "PAID"
)

// Commission is one provider's payout entry, embedded in its session.
// Providers are keyed by display name throughout, matching ProviderIDs.
type Commission struct {
	ProviderID    string           `json:"providerId"`
	Value         float64          `json:"value"`
	Status        CommissionStatus `json:"status"`
	PaidAt        *time.Time       `json:"paidAt,omitempty"`
	PaymentMethod *PaymentMethod   `json:"paymentMethod,omitempty"`
}

// Snapshot freezes a rule's regular/loyalty pair at booking time, so later
// catalog edits never alter what a historical session charged.
type Snapshot struct {
	Regular float64 `json:"regular"`
	Loyalty float64 `json:"loyalty"`
}

type Session struct {
	ID          string   `json:"id"`
	CustomerID  string   `json:"customerId"`
	ProviderIDs []string `json:"providerIds"`
	Date        string   `json:"date"`      // YYYY-MM-DD
	StartTime   string   `json:"startTime"` // HH:MM
	EndTime     *string  `json:"endTime,omitempty"`
	// DurationMinutes holds the contracted duration until checkout, then the
	// actual elapsed minutes; the billed figure is tracked separately.
	DurationMinutes       int           `json:"durationMinutes"`
	BilledDurationMinutes *int          `json:"billedDurationMinutes,omitempty"`
	Room                  string        `json:"room"`
	TotalValue            float64       `json:"totalValue"`
	PaymentMethod         PaymentMethod `json:"paymentMethod"`
	Status                Status        `json:"status"`
	IsFinished            bool          `json:"isFinished"`
	RecordedBy            string        `json:"recordedBy"`
	CreatedAt             time.Time     `json:"createdAt"`
	Commissions           []Commission  `json:"commissions,omitempty"`
	PriceRuleID           *string       `json:"priceRuleId,omitempty"`
	PriceSnapshot         *Snapshot     `json:"priceSnapshot,omitempty"`
	CommissionSnapshot    *Snapshot     `json:"commissionSnapshot,omitempty"`
}

// CommissionFor returns the embedded entry for a provider name, or nil.
func (s *Session) CommissionFor(provider string) *Commission {
	for i := range s.Commissions {
		if s.Commissions[i].ProviderID == provider {
			return &s.Commissions[i]
		}
	}
	return nil
}

func (s *Session) HasProvider(provider string) bool {
	for _, p := range s.ProviderIDs {
		if p == provider {
			return true
		}
	}
	return false
}
