package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrleave/internal/platform/querier"
)

var ErrStateNotFound = errors.New("onboarding state not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type StoreAPI interface {
	GetState(ctx context.Context, employeeID string) (State, error)
	CreateState(ctx context.Context, state State) error
	RecordFirstMonthSales(ctx context.Context, employeeID string, amount float64) error

	// MarkPenaltyApplied flips the one-shot penalty flag. Returns false when
	// the flag was already set, which makes the caller a no-op.
	MarkPenaltyApplied(ctx context.Context, employeeID string) (bool, error)

	// MarkProbationComplete flips the completion flag, once.
	MarkProbationComplete(ctx context.Context, employeeID string, when time.Time) (bool, error)
}

func (s *Store) GetState(ctx context.Context, employeeID string) (State, error) {
	var state State
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id, training_end_date, first_month_end_date, first_month_sales_achieved,
           first_month_penalty_applied, probation_end_date, is_probation_complete,
           probation_completed_at, bond_months, bond_amount
    FROM onboarding_states
    WHERE employee_id = $1
  `, employeeID).Scan(&state.EmployeeID, &state.TrainingEndDate, &state.FirstMonthEndDate,
		&state.FirstMonthSalesAchieved, &state.FirstMonthPenaltyApplied, &state.ProbationEndDate,
		&state.IsProbationComplete, &state.ProbationCompletedAt, &state.BondMonths, &state.BondAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return State{}, ErrStateNotFound
	}
	if err != nil {
		return State{}, err
	}
	return state, nil
}

func (s *Store) CreateState(ctx context.Context, state State) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO onboarding_states
      (employee_id, training_end_date, first_month_end_date, first_month_sales_achieved,
       first_month_penalty_applied, probation_end_date, is_probation_complete, bond_months, bond_amount)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, state.EmployeeID, state.TrainingEndDate, state.FirstMonthEndDate, state.FirstMonthSalesAchieved,
		state.FirstMonthPenaltyApplied, state.ProbationEndDate, state.IsProbationComplete,
		state.BondMonths, state.BondAmount)
	return err
}

func (s *Store) RecordFirstMonthSales(ctx context.Context, employeeID string, amount float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE onboarding_states
    SET first_month_sales_achieved = first_month_sales_achieved + $1
    WHERE employee_id = $2
  `, amount, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateNotFound
	}
	return nil
}

func (s *Store) MarkPenaltyApplied(ctx context.Context, employeeID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE onboarding_states
    SET first_month_penalty_applied = TRUE
    WHERE employee_id = $1 AND NOT first_month_penalty_applied
  `, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) MarkProbationComplete(ctx context.Context, employeeID string, when time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE onboarding_states
    SET is_probation_complete = TRUE, probation_completed_at = $1
    WHERE employee_id = $2 AND NOT is_probation_complete
  `, when, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
