package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/policy"
)

// firstMonthPenaltyRate is the fraction of base salary deducted when an
// employee closes the first month with zero sales.
const firstMonthPenaltyRate = 0.5

var ErrProbationAlreadyComplete = errors.New("probation already completed")

// BalanceSeeder re-seeds an employee's leave balances, used at the
// probation-to-permanent transition.
type BalanceSeeder interface {
	SeedBalances(ctx context.Context, employeeID string, status policy.Status, year int) error
}

type Service struct {
	Store     StoreAPI
	Directory core.DirectoryAPI
	Seeder    BalanceSeeder
	Now       func() time.Time
}

func NewService(store StoreAPI, directory core.DirectoryAPI, seeder BalanceSeeder) *Service {
	return &Service{Store: store, Directory: directory, Seeder: seeder, Now: time.Now}
}

func (s *Service) State(ctx context.Context, employeeID string) (State, error) {
	return s.Store.GetState(ctx, employeeID)
}

// FirstMonthEnd satisfies the leave evaluator's onboarding lookup. An
// employee without onboarding state has no first-month lock.
func (s *Service) FirstMonthEnd(ctx context.Context, employeeID string) (time.Time, error) {
	state, err := s.Store.GetState(ctx, employeeID)
	if errors.Is(err, ErrStateNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return state.FirstMonthEndDate, nil
}

// ApplyFirstMonthPenaltyIfDue returns the penalty amount for the payroll
// integrator to apply, or zero. The flag flip is a conditional write, so a
// second call after the penalty fired is a no-op even under concurrency.
func (s *Service) ApplyFirstMonthPenaltyIfDue(ctx context.Context, employeeID string, periodEnd time.Time) (float64, error) {
	state, err := s.Store.GetState(ctx, employeeID)
	if errors.Is(err, ErrStateNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !state.PenaltyDue(periodEnd) {
		return 0, nil
	}

	// Resolve the salary before flipping the flag. A failed lookup must leave
	// the flag unset so the next payroll run can still apply the penalty.
	emp, err := s.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}

	applied, err := s.Store.MarkPenaltyApplied(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	if !applied {
		return 0, nil
	}

	penalty := emp.BaseSalary * firstMonthPenaltyRate
	slog.Info("first-month penalty applied", "employee", employeeID, "amount", penalty)
	return penalty, nil
}

// CompleteProbation marks the transition to permanent and re-seeds the
// employee's leave balances from the permanent policy set. The seed replaces
// the probation rows; it is not a merge.
func (s *Service) CompleteProbation(ctx context.Context, employeeID string) (State, error) {
	now := s.Now()
	completed, err := s.Store.MarkProbationComplete(ctx, employeeID, now)
	if err != nil {
		return State{}, err
	}
	if !completed {
		return State{}, ErrProbationAlreadyComplete
	}

	if err := s.Seeder.SeedBalances(ctx, employeeID, policy.StatusPermanent, now.Year()); err != nil {
		return State{}, fmt.Errorf("probation balance re-seed failed: %w", err)
	}
	return s.Store.GetState(ctx, employeeID)
}
