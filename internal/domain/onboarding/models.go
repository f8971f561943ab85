package onboarding

import "time"

// State holds the per-employee onboarding timers and penalty flags. Created
// at hire, frozen once probation completes.
type State struct {
	EmployeeID              string     `json:"employeeId"`
	TrainingEndDate         time.Time  `json:"trainingEndDate"`
	FirstMonthEndDate       time.Time  `json:"firstMonthEndDate"`
	FirstMonthSalesAchieved float64    `json:"firstMonthSalesAchieved"`
	FirstMonthPenaltyApplied bool      `json:"firstMonthPenaltyApplied"`
	ProbationEndDate        time.Time  `json:"probationEndDate"`
	IsProbationComplete     bool       `json:"isProbationComplete"`
	ProbationCompletedAt    *time.Time `json:"probationCompletedAt,omitempty"`
	BondMonths              int        `json:"bondMonths"`
	BondAmount              float64    `json:"bondAmount"`
}

// Milestones is the evaluated-on-read view of the timers.
type Milestones struct {
	TrainingComplete   bool `json:"trainingComplete"`
	FirstMonthComplete bool `json:"firstMonthComplete"`
	ProbationDue       bool `json:"probationDue"`
}

func (s State) MilestonesAt(today time.Time) Milestones {
	return Milestones{
		TrainingComplete:   today.After(s.TrainingEndDate),
		FirstMonthComplete: today.After(s.FirstMonthEndDate),
		ProbationDue:       !s.IsProbationComplete && today.After(s.ProbationEndDate),
	}
}

// PenaltyDue reports whether the one-shot first-month penalty should fire for
// a payroll period ending at periodEnd.
func (s State) PenaltyDue(periodEnd time.Time) bool {
	if s.FirstMonthPenaltyApplied {
		return false
	}
	if s.FirstMonthSalesAchieved > 0 {
		return false
	}
	return !periodEnd.Before(s.FirstMonthEndDate)
}
