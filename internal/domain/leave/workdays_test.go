package leave

import (
	"testing"
	"time"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCountWorkingDays(t *testing.T) {
	labourDay := NewHolidayCalendar([]time.Time{day("2026-05-01")})

	tests := []struct {
		name  string
		start string
		end   string
		cal   HolidayCalendar
		want  float64
	}{
		{"full week", "2026-03-02", "2026-03-06", nil, 5},
		{"spanning a weekend", "2026-03-02", "2026-03-09", nil, 6},
		{"weekend only", "2026-03-07", "2026-03-08", nil, 0},
		{"single working day", "2026-03-02", "2026-03-02", nil, 1},
		{"holiday excluded", "2026-04-27", "2026-05-01", labourDay, 4},
		{"end before start", "2026-03-06", "2026-03-02", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CountWorkingDays(day(tc.start), day(tc.end), tc.cal)
			if got != tc.want {
				t.Fatalf("CountWorkingDays(%s, %s) = %g, want %g", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestMonthsOfService(t *testing.T) {
	joining := day("2025-03-15")

	tests := []struct {
		today string
		want  int
	}{
		{"2026-03-14", 11},
		{"2026-03-15", 12},
		{"2025-03-20", 0},
		{"2025-04-15", 1},
		{"2025-03-10", 0},
	}

	for _, tc := range tests {
		if got := MonthsOfService(joining, day(tc.today)); got != tc.want {
			t.Fatalf("MonthsOfService(joining, %s) = %d, want %d", tc.today, got, tc.want)
		}
	}
}

func TestHolidayCalendarNilSafe(t *testing.T) {
	var cal HolidayCalendar
	if cal.IsHoliday(day("2026-05-01")) {
		t.Fatal("nil calendar reported a holiday")
	}
}
