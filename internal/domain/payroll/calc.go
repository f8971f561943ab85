package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Salary deductions use a 30-day month convention regardless of the calendar
// month's length.
var daysPerMonth = decimal.NewFromInt(30)

// DailyRate returns baseSalary / 30.
func DailyRate(baseSalary float64) decimal.Decimal {
	return decimal.NewFromFloat(baseSalary).Div(daysPerMonth)
}

// UnpaidDeduction returns the deduction for unpaid leave days, rounded to two
// places.
func UnpaidDeduction(baseSalary, days float64) decimal.Decimal {
	return DailyRate(baseSalary).Mul(decimal.NewFromFloat(days)).Round(2)
}

// ClampToPeriod intersects a leave range with a payroll period. ok is false
// when they do not overlap.
func ClampToPeriod(start, end, periodStart, periodEnd time.Time) (time.Time, time.Time, bool) {
	if end.Before(periodStart) || start.After(periodEnd) {
		return time.Time{}, time.Time{}, false
	}
	if start.Before(periodStart) {
		start = periodStart
	}
	if end.After(periodEnd) {
		end = periodEnd
	}
	return start, end, true
}
