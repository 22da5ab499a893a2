package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/pricing"
)

func testCatalog() pricing.Catalog {
	return pricing.NewCatalog([]pricing.PricingRule{
		{ID: "r30", DurationMinutes: 30, RegularPrice: 190, LoyaltyPrice: 190, RegularCommission: 90, LoyaltyCommission: 90, Active: true},
		{ID: "r60", DurationMinutes: 60, RegularPrice: 290, LoyaltyPrice: 230, RegularCommission: 170, LoyaltyCommission: 150, Active: true},
	})
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{" 14:05 ", 845, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"1230", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrBadClock, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBilledMinutes(t *testing.T) {
	tests := []struct {
		name       string
		contracted int
		elapsed    int
		want       int
	}{
		{"within grace rounds down", 30, 35, 30},
		{"past grace rounds up", 30, 42, 60},
		{"exactly at grace rounds down", 30, 40, 30},
		{"exact block", 60, 60, 60},
		{"short session floors at contracted", 60, 20, 60},
		{"long session bills actual blocks", 30, 95, 120},
		{"zero elapsed floors at contracted", 90, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BilledMinutes(tt.contracted, tt.elapsed))
		})
	}
}

func TestBilledMinutesNeverBelowContracted(t *testing.T) {
	for contracted := 30; contracted <= 180; contracted += 30 {
		for elapsed := 0; elapsed <= 240; elapsed += 7 {
			got := BilledMinutes(contracted, elapsed)
			assert.GreaterOrEqual(t, got, contracted, "contracted=%d elapsed=%d", contracted, elapsed)
		}
	}
}

func TestCompute(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name           string
		contracted     int
		start, end     string
		loyalty        bool
		wantElapsed    int
		wantBilled     int
		wantTotal      float64
		wantCommission float64
	}{
		{"one hour regular", 60, "14:00", "15:00", false, 60, 60, 290, 170},
		{"one hour loyalty", 60, "14:00", "15:00", true, 60, 60, 230, 150},
		{"ninety minutes prices compositionally", 60, "14:00", "15:30", false, 90, 90, 480, 260},
		{"overtime past grace adds a block", 60, "14:00", "15:12", false, 72, 90, 480, 260},
		{"overtime within grace stays", 60, "14:00", "15:08", false, 68, 60, 290, 170},
		{"short stay floors at contracted", 60, "14:00", "14:20", false, 20, 60, 290, 170},
		{"two hours loyalty", 120, "10:00", "12:00", true, 120, 120, 460, 300},
		{"crosses midnight", 60, "23:30", "00:30", false, 60, 60, 290, 170},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.contracted, tt.start, tt.end, tt.loyalty, cat)
			require.NoError(t, err)
			assert.Equal(t, tt.wantElapsed, got.ElapsedMinutes)
			assert.Equal(t, tt.wantBilled, got.BilledMinutes)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantCommission, got.Commission)
		})
	}
}

func TestComputeBadClock(t *testing.T) {
	_, err := Compute(60, "25:00", "26:00", false, testCatalog())
	assert.ErrorIs(t, err, ErrBadClock)
}

func TestComputeFallbackWithoutRules(t *testing.T) {
	got, err := Compute(60, "14:00", "15:30", false, pricing.NewCatalog(nil))
	require.NoError(t, err)
	assert.Equal(t, float64(290+190), got.Total)
	assert.Equal(t, float64(170+90), got.Commission)
}

func TestQuote(t *testing.T) {
	cat := testCatalog()

	value, ruleID := Quote(60, false, cat)
	assert.Equal(t, 290.0, value)
	assert.Equal(t, "r60", ruleID)

	value, ruleID = Quote(60, true, cat)
	assert.Equal(t, 230.0, value)
	assert.Equal(t, "r60", ruleID)

	// no rule for 45 minutes: flat hourly base, no rule reference
	value, ruleID = Quote(45, false, cat)
	assert.Equal(t, 113.0, value)
	assert.Empty(t, ruleID)

	value, _ = Quote(45, true, cat)
	assert.Equal(t, 90.0, value)
}

func TestCreationCommission(t *testing.T) {
	rule := &pricing.PricingRule{
		DurationMinutes: 60, RegularPrice: 290, LoyaltyPrice: 230,
		RegularCommission: 170, LoyaltyCommission: 150, Active: true,
	}

	t.Run("single provider with rule", func(t *testing.T) {
		assert.Equal(t, 170.0, CreationCommission(rule, false, 290, 1))
		assert.Equal(t, 150.0, CreationCommission(rule, true, 230, 1))
	})

	t.Run("override scales commission proportionally", func(t *testing.T) {
		// half price charged, half commission owed
		assert.Equal(t, 85.0, CreationCommission(rule, false, 145, 1))
	})

	t.Run("no rule falls back to flat cut", func(t *testing.T) {
		assert.Equal(t, 120.0, CreationCommission(nil, false, 300, 1))
	})

	t.Run("multiple providers defer to checkout", func(t *testing.T) {
		assert.Equal(t, 0.0, CreationCommission(rule, false, 290, 2))
	})
}
