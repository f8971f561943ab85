package core

import (
	"time"

	"hrleave/internal/domain/policy"
)

// Employee is the read-only snapshot the leave and payroll engines consume.
// The employee record itself is owned by the directory; nothing here writes it.
type Employee struct {
	ID               string        `json:"id"`
	FirstName        string        `json:"firstName"`
	LastName         string        `json:"lastName"`
	EmploymentStatus policy.Status `json:"employmentStatus"`
	Gender           policy.Gender `json:"gender"`
	DateOfJoining    time.Time     `json:"dateOfJoining"`
	BaseSalary       float64       `json:"baseSalary"`
}

// AttendanceTotals are period aggregates produced by the attendance ledger
// (fed by biometric-device events upstream). Read-only input to payroll.
type AttendanceTotals struct {
	WorkingDays   int     `json:"workingDays"`
	PresentDays   int     `json:"presentDays"`
	LateDays      int     `json:"lateDays"`
	OvertimeHours float64 `json:"overtimeHours"`
}
