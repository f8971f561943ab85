package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrleave/internal/domain/policy"
	"hrleave/internal/platform/querier"
)

// Balance ledger protocol. Every mutation of a balance row goes through
// deduct/restore: read, check, then a version-guarded write. A concurrent
// writer bumping the version between read and write surfaces as ErrConflict.

// Deduct removes days from a balance in its own transaction. Approval uses
// the tx-scoped variant so the status write commits with the ledger write.
func (s *Store) Deduct(ctx context.Context, employeeID string, code policy.Code, year int, days float64) error {
	return s.inTx(ctx, func(q querier.Querier) error {
		return deductTx(ctx, q, employeeID, code, year, days)
	})
}

// Restore is the inverse of Deduct, invoked when an approved application is
// cancelled. The result is capped so remaining never exceeds allocated plus
// carried-forward days.
func (s *Store) Restore(ctx context.Context, employeeID string, code policy.Code, year int, days float64) error {
	return s.inTx(ctx, func(q querier.Querier) error {
		return restoreTx(ctx, q, employeeID, code, year, days)
	})
}

func (s *Store) inTx(ctx context.Context, fn func(q querier.Querier) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func deductTx(ctx context.Context, q querier.Querier, employeeID string, code policy.Code, year int, days float64) error {
	if days <= 0 {
		return fmt.Errorf("%w: deduction must be positive", ErrValidation)
	}

	balance, err := balanceForUpdate(ctx, q, employeeID, code, year)
	if err != nil {
		return err
	}
	if balance.Remaining() < days {
		return ErrInsufficientBalance
	}

	tag, err := q.Exec(ctx, `
    UPDATE leave_balances
    SET used_days = used_days + $1, version = version + 1, updated_at = now()
    WHERE id = $2 AND version = $3
  `, days, balance.ID, balance.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func restoreTx(ctx context.Context, q querier.Querier, employeeID string, code policy.Code, year int, days float64) error {
	if days <= 0 {
		return fmt.Errorf("%w: restore must be positive", ErrValidation)
	}

	balance, err := balanceForUpdate(ctx, q, employeeID, code, year)
	if err != nil {
		return err
	}
	newUsed := balance.UsedDays - days
	if newUsed < 0 {
		newUsed = 0
	}

	tag, err := q.Exec(ctx, `
    UPDATE leave_balances
    SET used_days = $1, version = version + 1, updated_at = now()
    WHERE id = $2 AND version = $3
  `, newUsed, balance.ID, balance.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func balanceForUpdate(ctx context.Context, q querier.Querier, employeeID string, code policy.Code, year int) (LeaveBalance, error) {
	var b LeaveBalance
	var codeStr string
	err := q.QueryRow(ctx, `
    SELECT id, employee_id, leave_type, year, allocated_days, used_days, carried_forward_days, version, updated_at
    FROM leave_balances
    WHERE employee_id = $1 AND leave_type = $2 AND year = $3
  `, employeeID, string(code), year).Scan(&b.ID, &b.EmployeeID, &codeStr, &b.Year, &b.AllocatedDays, &b.UsedDays, &b.CarriedForwardDays, &b.Version, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveBalance{}, ErrNotFound
	}
	if err != nil {
		return LeaveBalance{}, err
	}
	b.TypeCode = policy.Code(codeStr)
	return b, nil
}
