package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/drinks"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

func paid(id, date, start string, provs []string, value, commission float64) sessions.Session {
	comms := make([]sessions.Commission, 0, len(provs))
	for _, p := range provs {
		comms = append(comms, sessions.Commission{ProviderID: p, Value: commission, Status: sessions.CommissionPaid})
	}
	return sessions.Session{
		ID: id, Date: date, StartTime: start, ProviderIDs: provs,
		TotalValue: value, Status: sessions.StatusPaid, Commissions: comms,
	}
}

func paidOrder(customer string, date string, value float64) drinks.Order {
	return drinks.Order{CustomerName: customer, Date: date, TotalValue: value, Status: drinks.OrderPaid}
}

func TestBuildTotals(t *testing.T) {
	sess := []sessions.Session{
		paid("s1", "2026-08-10", "10:00", []string{"Ana"}, 290, 170),
		paid("s2", "2026-08-10", "14:30", []string{"Ana", "Bia"}, 480, 260),
		paid("s3", "2026-08-11", "10:15", []string{"Bia"}, 190, 90),
		// outside the window
		paid("s4", "2026-07-01", "10:00", []string{"Ana"}, 290, 170),
	}
	pending := paid("s5", "2026-08-10", "16:00", []string{"Ana"}, 290, 170)
	pending.Status = sessions.StatusPending
	sess = append(sess, pending)

	orders := []drinks.Order{
		paidOrder("João", "2026-08-10", 45),
		paidOrder("Maria", "2026-08-11", 80),
		{CustomerName: "João", Date: "2026-08-10", TotalValue: 30, Status: drinks.OrderOpen},
	}

	sum := Build("2026-08-01", "2026-08-31", sess, orders)

	assert.Equal(t, 3, sum.SessionCount)
	assert.Equal(t, 960.0, sum.Revenue)
	assert.Equal(t, 125.0, sum.DrinkRevenue)
	assert.Equal(t, 170.0+260*2+90, sum.Commissions)
	assert.Equal(t, 960.0+125-780, sum.Net)
	assert.Equal(t, 320.0, sum.AverageTicket)
}

func TestBuildZeroSessionsHasZeroAverage(t *testing.T) {
	sum := Build("2026-08-01", "2026-08-31", nil, nil)
	assert.Zero(t, sum.SessionCount)
	assert.Zero(t, sum.AverageTicket)
	assert.Zero(t, sum.Net)
}

func TestBuildHistograms(t *testing.T) {
	sess := []sessions.Session{
		paid("s1", "2026-08-10", "10:00", []string{"Ana"}, 290, 170), // Monday
		paid("s2", "2026-08-10", "10:45", []string{"Ana"}, 290, 170),
		paid("s3", "2026-08-15", "22:30", []string{"Ana"}, 290, 170), // Saturday
	}
	badClock := paid("s4", "2026-08-10", "", []string{"Ana"}, 290, 170)
	sess = append(sess, badClock)

	sum := Build("2026-08-01", "2026-08-31", sess, nil)

	assert.Equal(t, 2, sum.ByHour[10])
	assert.Equal(t, 1, sum.ByHour[22])
	// the blank clock is skipped in the hour buckets but not the weekday ones
	assert.Equal(t, 3, sum.ByWeekday[1])
	assert.Equal(t, 1, sum.ByWeekday[6])
}

func TestBuildProviderRanking(t *testing.T) {
	sess := []sessions.Session{
		paid("s1", "2026-08-10", "10:00", []string{"Ana"}, 290, 170),
		paid("s2", "2026-08-11", "10:00", []string{"Bia"}, 480, 260),
		paid("s3", "2026-08-12", "10:00", []string{"Bia"}, 290, 170),
	}
	sum := Build("2026-08-01", "2026-08-31", sess, nil)

	require.Len(t, sum.Providers, 2)
	assert.Equal(t, "Bia", sum.Providers[0].Name)
	assert.Equal(t, 430.0, sum.Providers[0].Commissions)
	assert.Equal(t, 2, sum.Providers[0].Sessions)
	assert.Equal(t, "Ana", sum.Providers[1].Name)
}

func TestBuildDrinkConsumerRanking(t *testing.T) {
	orders := []drinks.Order{
		paidOrder("João", "2026-08-10", 45),
		paidOrder("Maria", "2026-08-10", 120),
		paidOrder("João", "2026-08-12", 50),
	}
	sum := Build("2026-08-01", "2026-08-31", nil, orders)

	require.Len(t, sum.DrinkConsumers, 2)
	assert.Equal(t, "Maria", sum.DrinkConsumers[0].Customer)
	assert.Equal(t, 120.0, sum.DrinkConsumers[0].Spent)
	assert.Equal(t, "João", sum.DrinkConsumers[1].Customer)
	assert.Equal(t, 2, sum.DrinkConsumers[1].Orders)
	assert.Equal(t, 95.0, sum.DrinkConsumers[1].Spent)
}

func TestExportProducesWorkbook(t *testing.T) {
	sess := []sessions.Session{
		paid("s1", "2026-08-10", "10:00", []string{"Ana"}, 290, 170),
	}
	orders := []drinks.Order{paidOrder("João", "2026-08-10", 45)}

	data, err := Export(Build("2026-08-01", "2026-08-31", sess, orders))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx files are zip containers
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
