// Package reports builds management rollups over settled sessions and
// bar orders. All functions are pure: callers load the rows, reports
// only folds them.
package reports

import (
	"sort"
	"time"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/drinks"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

type Summary struct {
	From           string         `json:"from"`
	To             string         `json:"to"`
	SessionCount   int            `json:"sessionCount"`
	Revenue        float64        `json:"revenue"`
	DrinkRevenue   float64        `json:"drinkRevenue"`
	Commissions    float64        `json:"commissions"`
	Net            float64        `json:"net"`
	AverageTicket  float64        `json:"averageTicket"`
	ByHour         [24]int        `json:"byHour"`
	ByWeekday      [7]int         `json:"byWeekday"` // 0 = Sunday
	Providers      []ProviderStat `json:"providers"`
	DrinkConsumers []ConsumerStat `json:"drinkConsumers"`
}

type ProviderStat struct {
	Name        string  `json:"name"`
	Sessions    int     `json:"sessions"`
	Commissions float64 `json:"commissions"`
}

type ConsumerStat struct {
	Customer string  `json:"customer"`
	Orders   int     `json:"orders"`
	Spent    float64 `json:"spent"`
}

// Build folds PAID sessions and PAID drink orders within [from, to].
// Hour buckets use the scheduled start time, weekday buckets the
// session date; rows with unparseable fields are counted in the money
// totals but skipped in the histograms.
func Build(from, to string, sess []sessions.Session, orders []drinks.Order) Summary {
	sum := Summary{From: from, To: to}

	provIdx := map[string]int{}
	for _, s := range sess {
		if s.Status != sessions.StatusPaid || s.Date < from || s.Date > to {
			continue
		}
		sum.SessionCount++
		sum.Revenue += s.TotalValue
		for _, c := range s.Commissions {
			sum.Commissions += c.Value
			i, ok := provIdx[c.ProviderID]
			if !ok {
				i = len(sum.Providers)
				provIdx[c.ProviderID] = i
				sum.Providers = append(sum.Providers, ProviderStat{Name: c.ProviderID})
			}
			sum.Providers[i].Sessions++
			sum.Providers[i].Commissions += c.Value
		}
		if h, ok := startHour(s.StartTime); ok {
			sum.ByHour[h]++
		}
		if d, err := time.Parse("2006-01-02", s.Date); err == nil {
			sum.ByWeekday[int(d.Weekday())]++
		}
	}

	consIdx := map[string]int{}
	for _, o := range orders {
		if o.Status != drinks.OrderPaid || o.Date < from || o.Date > to {
			continue
		}
		sum.DrinkRevenue += o.TotalValue
		i, ok := consIdx[o.CustomerName]
		if !ok {
			i = len(sum.DrinkConsumers)
			consIdx[o.CustomerName] = i
			sum.DrinkConsumers = append(sum.DrinkConsumers, ConsumerStat{Customer: o.CustomerName})
		}
		sum.DrinkConsumers[i].Orders++
		sum.DrinkConsumers[i].Spent += o.TotalValue
	}

	sum.Net = sum.Revenue + sum.DrinkRevenue - sum.Commissions
	if sum.SessionCount > 0 {
		sum.AverageTicket = sum.Revenue / float64(sum.SessionCount)
	}

	sort.SliceStable(sum.Providers, func(a, b int) bool {
		return sum.Providers[a].Commissions > sum.Providers[b].Commissions
	})
	sort.SliceStable(sum.DrinkConsumers, func(a, b int) bool {
		return sum.DrinkConsumers[a].Spent > sum.DrinkConsumers[b].Spent
	})
	return sum
}

func startHour(clock string) (int, bool) {
	if len(clock) < 2 {
		return 0, false
	}
	h := 0
	for i := 0; i < len(clock) && clock[i] != ':'; i++ {
		if clock[i] < '0' || clock[i] > '9' {
			return 0, false
		}
		h = h*10 + int(clock[i]-'0')
	}
	if h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
