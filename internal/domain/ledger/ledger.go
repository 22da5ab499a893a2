// Package ledger is the payout side of the house: a read-only aggregation
// of the commission records embedded in paid sessions, plus the settlement
// and daily-closure operations built on top of it. Sessions remain the
// single source of truth; nothing here stores commission state of its own.
package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/customers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/providers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

// Entry is one session's contribution to a provider's statement.
type Entry struct {
	SessionID      string                    `json:"sessionId"`
	Date           string                    `json:"date"`
	StartTime      string                    `json:"startTime"`
	EndTime        string                    `json:"endTime"`
	Client         string                    `json:"client"`
	Nickname       string                    `json:"nickname,omitempty"`
	VIP            bool                      `json:"vip"`
	BilledDuration int                       `json:"billedDuration"`
	Value          float64                   `json:"value"`
	Status         sessions.CommissionStatus `json:"status"`
	PaidAt         *time.Time                `json:"paidAt,omitempty"`
	PaymentMethod  *sessions.PaymentMethod   `json:"paymentMethod,omitempty"`
}

type ProviderSummary struct {
	Provider      providers.Provider `json:"provider"`
	Entries       []Entry            `json:"entries"`
	TotalInPeriod float64            `json:"totalInPeriod"`
	PendingAmount float64            `json:"pendingAmount"`
	PaidAmount    float64            `json:"paidAmount"`
	// PendingSessionIDs are the settlement targets for this provider.
	PendingSessionIDs []string `json:"pendingSessionIds"`
}

// SummarizeByProvider builds per-provider payout statements over the given
// sessions. Only PAID sessions inside the period count, and a provider only
// sees sessions they are assigned to, valued by their own commission entry.
// Entries are ordered date descending, then start time descending.
func SummarizeByProvider(sess []sessions.Session, provs []providers.Provider, custs []customers.Customer, p Period) []ProviderSummary {
	custByID := make(map[string]customers.Customer, len(custs))
	for _, c := range custs {
		custByID[c.ID] = c
	}

	var inPeriod []sessions.Session
	for _, s := range sess {
		if s.Status == sessions.StatusPaid && p.Contains(s.Date) {
			inPeriod = append(inPeriod, s)
		}
	}

	var out []ProviderSummary
	for _, prov := range provs {
		var ps ProviderSummary
		ps.Provider = prov
		for _, s := range inPeriod {
			if !s.HasProvider(prov.Name) {
				continue
			}
			e := Entry{
				SessionID: s.ID,
				Date:      s.Date,
				StartTime: s.StartTime,
				Value:     0,
				Status:    sessions.CommissionPending,
			}
			if s.EndTime != nil {
				e.EndTime = *s.EndTime
			}
			if s.BilledDurationMinutes != nil {
				e.BilledDuration = *s.BilledDurationMinutes
			} else {
				e.BilledDuration = s.DurationMinutes
			}
			if c, ok := custByID[s.CustomerID]; ok {
				e.Client = c.Name
				e.Nickname = c.LoyaltyNickname
				e.VIP = c.IsLoyalty
			}
			if comm := s.CommissionFor(prov.Name); comm != nil {
				e.Value = math.Round(comm.Value)
				e.Status = comm.Status
				e.PaidAt = comm.PaidAt
				e.PaymentMethod = comm.PaymentMethod
			}
			ps.Entries = append(ps.Entries, e)
		}
		if len(ps.Entries) == 0 {
			continue
		}

		sort.Slice(ps.Entries, func(i, j int) bool {
			a, b := ps.Entries[i], ps.Entries[j]
			if a.Date != b.Date {
				return a.Date > b.Date
			}
			return a.StartTime > b.StartTime
		})

		for _, e := range ps.Entries {
			ps.TotalInPeriod += e.Value
			if e.Status == sessions.CommissionPaid {
				ps.PaidAmount += e.Value
			} else {
				ps.PendingAmount += e.Value
				ps.PendingSessionIDs = append(ps.PendingSessionIDs, e.SessionID)
			}
		}
		out = append(out, ps)
	}
	return out
}
