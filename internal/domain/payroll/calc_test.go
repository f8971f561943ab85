package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUnpaidDeduction(t *testing.T) {
	tests := []struct {
		salary float64
		days   float64
		want   string
	}{
		{60000, 2, "4000.00"},
		{60000, 0.5, "1000.00"},
		{50000, 3, "5000.00"},
		{31000, 1, "1033.33"},
		{60000, 0, "0.00"},
	}

	for _, tc := range tests {
		got := UnpaidDeduction(tc.salary, tc.days)
		if got.StringFixed(2) != tc.want {
			t.Fatalf("UnpaidDeduction(%g, %g) = %s, want %s", tc.salary, tc.days, got.StringFixed(2), tc.want)
		}
	}
}

func TestDailyRateUsesThirtyDayMonth(t *testing.T) {
	rate := DailyRate(60000)
	if !rate.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("DailyRate(60000) = %s, want 2000", rate)
	}
}

func TestClampToPeriod(t *testing.T) {
	periodStart := day("2026-03-01")
	periodEnd := day("2026-03-31")

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
		ok        bool
	}{
		{"fully inside", "2026-03-10", "2026-03-12", "2026-03-10", "2026-03-12", true},
		{"straddles start", "2026-02-25", "2026-03-03", "2026-03-01", "2026-03-03", true},
		{"straddles end", "2026-03-30", "2026-04-02", "2026-03-30", "2026-03-31", true},
		{"before period", "2026-02-01", "2026-02-10", "", "", false},
		{"after period", "2026-04-01", "2026-04-05", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end, ok := ClampToPeriod(day(tc.start), day(tc.end), periodStart, periodEnd)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if !start.Equal(day(tc.wantStart)) || !end.Equal(day(tc.wantEnd)) {
				t.Fatalf("clamped to [%s, %s], want [%s, %s]",
					start.Format("2006-01-02"), end.Format("2006-01-02"), tc.wantStart, tc.wantEnd)
			}
		})
	}
}
