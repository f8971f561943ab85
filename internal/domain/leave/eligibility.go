package leave

import (
	"fmt"
	"time"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/policy"
)

// EvalRequest carries everything Evaluate needs beyond the employee, policy
// and balance snapshots. Callers pre-fetch all of it; Evaluate performs no I/O.
type EvalRequest struct {
	Start       time.Time
	End         time.Time
	IsHalfDay   bool
	IsEmergency bool
	Today       time.Time

	// FirstMonthEndDate comes from the employee's onboarding state.
	FirstMonthEndDate time.Time

	// ApprovedThisMonth is the sum of already-approved days of this leave
	// type in the request's calendar month.
	ApprovedThisMonth float64

	// LifetimeApprovals is the count of approved applications of this leave
	// type across all years, for one-time and event-count restrictions.
	LifetimeApprovals int

	// EventDate is the triggering event (wedding, birth) for types with an
	// event window.
	EventDate *time.Time

	// LapsedCredits is the portion of the balance that aged past the type's
	// expiry window without being spent. Credits are consumed oldest first;
	// callers pre-compute this for types with an expiry window (comp-off).
	LapsedCredits float64

	Holidays HolidayCalendar
}

// Evaluate runs the ordered eligibility checks and stops at the first
// failure. The check order is a user-facing contract: the returned
// restriction is the message the applicant sees.
//
// An emergency request bypasses the tenure and monthly-cap checks, never the
// balance-sufficiency check.
func Evaluate(emp core.Employee, leaveType policy.LeaveType, balance LeaveBalance, req EvalRequest) Decision {
	requested := requestedDays(req)
	decision := Decision{RequestedDays: requested, Restrictions: []string{}}

	reject := func(reason string) Decision {
		decision.Restrictions = append(decision.Restrictions, reason)
		return decision
	}

	// 1. First-month lock: no leave type at all during the first month.
	if !req.Today.After(req.FirstMonthEndDate) {
		return reject("leave cannot be taken during the first month of employment")
	}

	// 2. Employment-status eligibility.
	if !leaveType.AllowsStatus(emp.EmploymentStatus) {
		return reject(fmt.Sprintf("not eligible for employment status %q", emp.EmploymentStatus))
	}

	// 3. Gender restriction.
	if leaveType.GenderRestriction != "" && leaveType.GenderRestriction != emp.Gender {
		return reject(fmt.Sprintf("%s is available to %s employees only", leaveType.Name, leaveType.GenderRestriction))
	}

	// 4. Tenure restriction.
	if !req.IsEmergency && leaveType.Eligibility.MinServiceMonths > 0 {
		if served := MonthsOfService(emp.DateOfJoining, req.Today); served < leaveType.Eligibility.MinServiceMonths {
			return reject(fmt.Sprintf("%s requires %d months of service, current tenure is %d months",
				leaveType.Name, leaveType.Eligibility.MinServiceMonths, served))
		}
	}

	// 5. Monthly cap.
	if !req.IsEmergency && leaveType.MaxDaysPerMonth > 0 {
		if req.ApprovedThisMonth+requested > leaveType.MaxDaysPerMonth {
			return reject(fmt.Sprintf("monthly cap of %g days for %s would be exceeded (%g already approved)",
				leaveType.MaxDaysPerMonth, leaveType.Name, req.ApprovedThisMonth))
		}
	}

	// 6. Balance sufficiency. Never bypassed.
	if requested <= 0 {
		return reject("requested range contains no working days")
	}
	usable := balance.Remaining() - req.LapsedCredits
	if requested > usable {
		return reject(fmt.Sprintf("insufficient balance: requested %g days, %g remaining", requested, usable))
	}

	// 7. One-time-only and event-window restrictions.
	if leaveType.Eligibility.OneTimeOnly && req.LifetimeApprovals >= 1 {
		return reject(fmt.Sprintf("%s can only be taken once", leaveType.Name))
	}
	if max := leaveType.Eligibility.MaxEventCount; max > 0 && req.LifetimeApprovals >= max {
		return reject(fmt.Sprintf("%s is limited to %d occurrences", leaveType.Name, max))
	}
	if weeks := leaveType.Eligibility.WithinWeeksOfEvent; weeks > 0 {
		if req.EventDate == nil {
			return reject(fmt.Sprintf("%s requires the triggering event date", leaveType.Name))
		}
		window := req.EventDate.AddDate(0, 0, 7*weeks)
		if req.Start.Before(*req.EventDate) || req.Start.After(window) {
			return reject(fmt.Sprintf("%s must start within %d weeks of the event", leaveType.Name, weeks))
		}
	}

	decision.CanApprove = true
	return decision
}

func requestedDays(req EvalRequest) float64 {
	if req.IsHalfDay {
		return 0.5
	}
	return CountWorkingDays(req.Start, req.End, req.Holidays)
}
