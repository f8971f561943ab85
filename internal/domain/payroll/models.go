package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"hrleave/internal/domain/core"
)

// PayslipLeaveImpact is derived, never a source of truth: recomputing it for
// the same period with unchanged inputs yields identical output.
type PayslipLeaveImpact struct {
	EmployeeID               string               `json:"employeeId"`
	PeriodStart              time.Time            `json:"periodStart"`
	PeriodEnd                time.Time            `json:"periodEnd"`
	PaidLeaveDays            float64              `json:"paidLeaveDays"`
	UnpaidLeaveDays          float64              `json:"unpaidLeaveDays"`
	LeaveDeductionAmount     decimal.Decimal      `json:"leaveDeductionAmount"`
	PerformancePenaltyAmount decimal.Decimal      `json:"performancePenaltyAmount"`
	TotalDeduction           decimal.Decimal      `json:"totalDeduction"`
	Breakdown                map[string]LeaveLine `json:"breakdown"`
	Attendance               core.AttendanceTotals `json:"attendance"`
}

type LeaveLine struct {
	Days      float64         `json:"days"`
	IsPaid    bool            `json:"isPaid"`
	Deduction decimal.Decimal `json:"deduction"`
}
