package leave

import (
	"strings"
	"testing"
	"time"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/policy"
)

func mustType(t *testing.T, code policy.Code) policy.LeaveType {
	t.Helper()
	leaveType, ok := policy.Default().Lookup(code)
	if !ok {
		t.Fatalf("leave type %q missing from default catalog", code)
	}
	return leaveType
}

func permanentEmployee() core.Employee {
	return core.Employee{
		ID:               "emp-1",
		FirstName:        "Asha",
		LastName:         "Perera",
		EmploymentStatus: policy.StatusPermanent,
		Gender:           policy.GenderFemale,
		DateOfJoining:    day("2023-01-10"),
	}
}

func balanceOf(code policy.Code, allocated, used float64) LeaveBalance {
	return LeaveBalance{EmployeeID: "emp-1", TypeCode: code, Year: 2026, AllocatedDays: allocated, UsedDays: used}
}

func evalReq(start, end string) EvalRequest {
	return EvalRequest{
		Start: day(start),
		End:   day(end),
		Today: day("2026-03-10"),
	}
}

func assertRejected(t *testing.T, d Decision, fragment string) {
	t.Helper()
	if d.CanApprove {
		t.Fatalf("expected rejection containing %q, got approval", fragment)
	}
	if len(d.Restrictions) != 1 {
		t.Fatalf("expected a single restriction, got %v", d.Restrictions)
	}
	if !strings.Contains(d.Restrictions[0], fragment) {
		t.Fatalf("restriction %q does not mention %q", d.Restrictions[0], fragment)
	}
}

func TestEvaluateFirstMonthLock(t *testing.T) {
	req := evalReq("2026-03-12", "2026-03-13")
	req.FirstMonthEndDate = day("2026-03-31")

	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeSick), balanceOf(policy.CodeSick, 7, 0), req)
	assertRejected(t, d, "first month of employment")
}

func TestEvaluateEmploymentStatus(t *testing.T) {
	emp := permanentEmployee()
	emp.EmploymentStatus = policy.StatusProbation

	d := Evaluate(emp, mustType(t, policy.CodeCasual), balanceOf(policy.CodeCasual, 12, 0), evalReq("2026-03-12", "2026-03-13"))
	assertRejected(t, d, `employment status "probation"`)
}

func TestEvaluateGenderRestriction(t *testing.T) {
	emp := permanentEmployee()
	emp.Gender = policy.GenderMale

	d := Evaluate(emp, mustType(t, policy.CodeMaternity), balanceOf(policy.CodeMaternity, 84, 0), evalReq("2026-04-01", "2026-04-30"))
	assertRejected(t, d, "available to female employees only")
}

func TestEvaluateTenure(t *testing.T) {
	emp := permanentEmployee()
	emp.DateOfJoining = day("2025-10-01")

	d := Evaluate(emp, mustType(t, policy.CodeEarned), balanceOf(policy.CodeEarned, 14, 0), evalReq("2026-03-12", "2026-03-13"))
	assertRejected(t, d, "12 months of service")
}

func TestEvaluateMonthlyCap(t *testing.T) {
	req := evalReq("2026-03-12", "2026-03-13")
	req.ApprovedThisMonth = 2

	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeEmergency), balanceOf(policy.CodeEmergency, 5, 2), req)
	assertRejected(t, d, "monthly cap")
}

func TestEvaluateEmergencyBypassesCapNotBalance(t *testing.T) {
	emergency := mustType(t, policy.CodeEmergency)

	req := evalReq("2026-03-12", "2026-03-12")
	req.ApprovedThisMonth = 2
	req.IsEmergency = true

	d := Evaluate(permanentEmployee(), emergency, balanceOf(policy.CodeEmergency, 5, 2), req)
	if !d.CanApprove {
		t.Fatalf("emergency request past the cap should pass, got %v", d.Restrictions)
	}

	// The balance check never yields to the emergency flag.
	d = Evaluate(permanentEmployee(), emergency, balanceOf(policy.CodeEmergency, 5, 5), req)
	assertRejected(t, d, "insufficient balance")
}

func TestEvaluateInsufficientBalance(t *testing.T) {
	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeCasual), balanceOf(policy.CodeCasual, 12, 10), evalReq("2026-03-09", "2026-03-13"))
	assertRejected(t, d, "insufficient balance: requested 5 days, 2 remaining")
}

func TestEvaluateLapsedCreditsShrinkUsableBalance(t *testing.T) {
	req := evalReq("2026-03-12", "2026-03-13")
	req.LapsedCredits = 2

	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeCompOff), balanceOf(policy.CodeCompOff, 3, 0), req)
	assertRejected(t, d, "insufficient balance: requested 2 days, 1 remaining")
}

func TestEvaluateNoWorkingDays(t *testing.T) {
	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeCasual), balanceOf(policy.CodeCasual, 12, 0), evalReq("2026-03-07", "2026-03-08"))
	assertRejected(t, d, "no working days")
}

func TestEvaluateOneTimeOnly(t *testing.T) {
	req := evalReq("2026-03-12", "2026-03-13")
	req.LifetimeApprovals = 1
	event := day("2026-03-10")
	req.EventDate = &event

	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeMarriage), balanceOf(policy.CodeMarriage, 3, 0), req)
	assertRejected(t, d, "only be taken once")
}

func TestEvaluateEventWindow(t *testing.T) {
	emp := permanentEmployee()
	emp.Gender = policy.GenderMale
	paternity := mustType(t, policy.CodePaternity)
	balance := balanceOf(policy.CodePaternity, 3, 0)

	req := evalReq("2026-03-12", "2026-03-13")
	d := Evaluate(emp, paternity, balance, req)
	assertRejected(t, d, "requires the triggering event date")

	event := day("2026-02-01")
	req.EventDate = &event
	d = Evaluate(emp, paternity, balance, req)
	assertRejected(t, d, "within 2 weeks of the event")

	event = day("2026-03-02")
	req.EventDate = &event
	d = Evaluate(emp, paternity, balance, req)
	if !d.CanApprove {
		t.Fatalf("request inside the event window should pass, got %v", d.Restrictions)
	}
}

func TestEvaluateHalfDay(t *testing.T) {
	req := evalReq("2026-03-12", "2026-03-12")
	req.IsHalfDay = true

	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeCasual), balanceOf(policy.CodeCasual, 12, 0), req)
	if !d.CanApprove {
		t.Fatalf("half-day request should pass, got %v", d.Restrictions)
	}
	if d.RequestedDays != 0.5 {
		t.Fatalf("half-day request = %g days, want 0.5", d.RequestedDays)
	}
}

func TestEvaluateHolidayExcludedFromRequest(t *testing.T) {
	req := evalReq("2026-04-27", "2026-05-01")
	req.Holidays = NewHolidayCalendar([]time.Time{day("2026-05-01")})

	d := Evaluate(permanentEmployee(), mustType(t, policy.CodeCasual), balanceOf(policy.CodeCasual, 12, 0), req)
	if !d.CanApprove {
		t.Fatalf("expected approval, got %v", d.Restrictions)
	}
	if d.RequestedDays != 4 {
		t.Fatalf("requested days = %g, want 4 with the holiday excluded", d.RequestedDays)
	}
}
