package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/policy"
)

// OnboardingInfo is the slice of the onboarding tracker the evaluator needs.
type OnboardingInfo interface {
	FirstMonthEnd(ctx context.Context, employeeID string) (time.Time, error)
}

const defaultLedgerRetries = 3

type Service struct {
	Store      StoreAPI
	Directory  core.DirectoryAPI
	Onboarding OnboardingInfo
	Catalog    *policy.Catalog

	// Retries bounds the internal retry on ErrConflict. Conflicts are
	// expected under concurrent approvals; a transient retry is the remedy.
	Retries int

	// Now is swappable for tests.
	Now func() time.Time
}

func NewService(store StoreAPI, directory core.DirectoryAPI, onboarding OnboardingInfo, catalog *policy.Catalog) *Service {
	return &Service{
		Store:      store,
		Directory:  directory,
		Onboarding: onboarding,
		Catalog:    catalog,
		Retries:    defaultLedgerRetries,
		Now:        time.Now,
	}
}

// Submit validates the request shape, evaluates eligibility against
// pre-fetched snapshots and creates the application. The application is
// created in pending even when the verdict is negative: restrictions are a
// result, not an error, and manual override review remains possible.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := validateSubmit(req); err != nil {
		return SubmitResult{}, err
	}

	emp, err := s.Directory.GetEmployee(ctx, req.EmployeeID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		return SubmitResult{}, fmt.Errorf("%w: employee %s", ErrNotFound, req.EmployeeID)
	}
	if err != nil {
		return SubmitResult{}, err
	}

	leaveType, ok := s.Catalog.Lookup(req.TypeCode)
	if !ok {
		return SubmitResult{}, fmt.Errorf("%w: unknown leave type %q", ErrNotFound, req.TypeCode)
	}

	year := req.StartDate.Year()
	balance, err := s.Store.GetBalance(ctx, req.EmployeeID, req.TypeCode, year)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return SubmitResult{}, err
	}

	approvedThisMonth, err := s.Store.ApprovedDaysInMonth(ctx, req.EmployeeID, req.TypeCode, year, req.StartDate.Month())
	if err != nil {
		return SubmitResult{}, err
	}
	lifetime, err := s.Store.ApprovedCountAllTime(ctx, req.EmployeeID, req.TypeCode)
	if err != nil {
		return SubmitResult{}, err
	}
	holidayDates, err := s.Store.Holidays(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return SubmitResult{}, err
	}
	firstMonthEnd, err := s.Onboarding.FirstMonthEnd(ctx, req.EmployeeID)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.Now()

	// Credits with an expiry window lapse once they age past it. Oldest
	// credits are spent first, so only the lapsed days not already consumed
	// shrink the usable balance.
	var lapsed float64
	if leaveType.ExpiryDays > 0 {
		cutoff := now.AddDate(0, 0, -leaveType.ExpiryDays)
		expired, err := s.Store.LapsedCompOffDays(ctx, req.EmployeeID, year, cutoff)
		if err != nil {
			return SubmitResult{}, err
		}
		lapsed = expired - balance.UsedDays
		if lapsed < 0 {
			lapsed = 0
		}
	}

	decision := Evaluate(emp, leaveType, balance, EvalRequest{
		Start:             req.StartDate,
		End:               req.EndDate,
		IsHalfDay:         req.IsHalfDay,
		IsEmergency:       req.IsEmergency,
		Today:             now,
		FirstMonthEndDate: firstMonthEnd,
		ApprovedThisMonth: approvedThisMonth,
		LifetimeApprovals: lifetime,
		EventDate:         req.EventDate,
		LapsedCredits:     lapsed,
		Holidays:          NewHolidayCalendar(holidayDates),
	})

	app := Application{
		ID:           uuid.NewString(),
		EmployeeID:   req.EmployeeID,
		TypeCode:     req.TypeCode,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		TotalDays:    decision.RequestedDays,
		Status:       StatusPending,
		IsHalfDay:    req.IsHalfDay,
		IsEmergency:  req.IsEmergency,
		Reason:       strings.TrimSpace(req.Reason),
		Restrictions: decision.Restrictions,
		AppliedDate:  now,
	}
	if err := s.Store.CreateApplication(ctx, app); err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{ApplicationID: app.ID, Status: app.Status, Decision: decision}, nil
}

// Approve drives the deduct-and-transition protocol. A lost balance race is
// retried a bounded number of times; any failure leaves the application
// pending.
func (s *Service) Approve(ctx context.Context, applicationID, approverID string) (Application, error) {
	if strings.TrimSpace(approverID) == "" {
		return Application{}, fmt.Errorf("%w: approver is required", ErrValidation)
	}
	return s.withRetry(func() (Application, error) {
		return s.Store.ApplyApproval(ctx, applicationID, approverID, s.Now())
	})
}

func (s *Service) Reject(ctx context.Context, applicationID, approverID, reason string) (Application, error) {
	if strings.TrimSpace(approverID) == "" {
		return Application{}, fmt.Errorf("%w: approver is required", ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		return Application{}, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	return s.Store.ApplyRejection(ctx, applicationID, approverID, strings.TrimSpace(reason), s.Now())
}

func (s *Service) Cancel(ctx context.Context, applicationID string) (Application, error) {
	return s.withRetry(func() (Application, error) {
		return s.Store.ApplyCancellation(ctx, applicationID, s.Now())
	})
}

func (s *Service) withRetry(fn func() (Application, error)) (Application, error) {
	retries := s.Retries
	if retries < 1 {
		retries = defaultLedgerRetries
	}
	var app Application
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		app, err = fn()
		if !errors.Is(err, ErrConflict) {
			return app, err
		}
		slog.Warn("balance write lost the race, retrying", "attempt", attempt)
	}
	return app, err
}

func (s *Service) Application(ctx context.Context, applicationID string) (Application, error) {
	return s.Store.GetApplication(ctx, applicationID)
}

func (s *Service) Applications(ctx context.Context, employeeID string, limit, offset int) ([]Application, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.ListApplications(ctx, employeeID, limit, offset)
}

func (s *Service) Balances(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error) {
	return s.Store.ListBalances(ctx, employeeID, year)
}

func (s *Service) Types() []policy.LeaveType {
	return s.Catalog.All()
}

// SeedBalances creates the year's balance rows for an employee from the
// catalog allocations of the given employment status. A re-seed, not a merge.
func (s *Service) SeedBalances(ctx context.Context, employeeID string, status policy.Status, year int) error {
	allocations := s.Catalog.Allocations(status)
	balances := make([]LeaveBalance, 0, len(allocations))
	for _, t := range s.Catalog.All() {
		allocated, ok := allocations[t.Code]
		if !ok {
			continue
		}
		balances = append(balances, LeaveBalance{
			ID:            uuid.NewString(),
			EmployeeID:    employeeID,
			TypeCode:      t.Code,
			Year:          year,
			AllocatedDays: allocated,
		})
	}
	return s.Store.ReplaceBalances(ctx, employeeID, year, balances)
}

// GrantCompOff credits a comp-off day earned by working a holiday. The grant
// date is recorded so the credit can lapse under the type's expiry window.
func (s *Service) GrantCompOff(ctx context.Context, employeeID string, days float64, workedDate time.Time) error {
	if days <= 0 {
		return fmt.Errorf("%w: comp-off credit must be positive", ErrValidation)
	}
	return s.Store.RecordCompOffGrant(ctx, employeeID, days, workedDate)
}

// Rollover seeds the next year's balances, carrying forward unused days for
// carry-forward leave types up to their configured limit. Comp-off credits
// expire with the year and never carry.
func (s *Service) Rollover(ctx context.Context, employeeID string, fromYear int) error {
	emp, err := s.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	previous, err := s.Store.ListBalances(ctx, employeeID, fromYear)
	if err != nil {
		return err
	}

	remaining := make(map[policy.Code]float64, len(previous))
	for _, b := range previous {
		remaining[b.TypeCode] = b.Remaining()
	}

	allocations := s.Catalog.Allocations(emp.EmploymentStatus)
	balances := make([]LeaveBalance, 0, len(allocations))
	for _, t := range s.Catalog.All() {
		allocated, ok := allocations[t.Code]
		if !ok {
			continue
		}
		var carried float64
		if t.CarryForward {
			carried = remaining[t.Code]
			if t.CarryForwardLimit > 0 && carried > t.CarryForwardLimit {
				carried = t.CarryForwardLimit
			}
		}
		balances = append(balances, LeaveBalance{
			ID:                 uuid.NewString(),
			EmployeeID:         employeeID,
			TypeCode:           t.Code,
			Year:               fromYear + 1,
			AllocatedDays:      allocated,
			CarriedForwardDays: carried,
		})
	}
	return s.Store.ReplaceBalances(ctx, employeeID, fromYear+1, balances)
}

func validateSubmit(req SubmitRequest) error {
	if strings.TrimSpace(req.EmployeeID) == "" {
		return fmt.Errorf("%w: employee is required", ErrValidation)
	}
	if req.TypeCode == "" {
		return fmt.Errorf("%w: leave type is required", ErrValidation)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrValidation)
	}
	if req.IsHalfDay && !req.StartDate.Equal(req.EndDate) {
		return fmt.Errorf("%w: half-day leave must cover a single day", ErrValidation)
	}
	return nil
}
