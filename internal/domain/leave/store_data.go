package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrleave/internal/domain/policy"
	"hrleave/internal/platform/querier"
)

func (s *Store) CreateApplication(ctx context.Context, app Application) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_applications
      (id, employee_id, leave_type, start_date, end_date, total_days, status,
       is_half_day, is_emergency, reason, restrictions, applied_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
  `, app.ID, app.EmployeeID, string(app.TypeCode), app.StartDate, app.EndDate, app.TotalDays,
		app.Status, app.IsHalfDay, app.IsEmergency, app.Reason, app.Restrictions, app.AppliedDate)
	return err
}

func (s *Store) GetApplication(ctx context.Context, applicationID string) (Application, error) {
	return scanApplication(s.DB.QueryRow(ctx, selectApplication+" WHERE id = $1", applicationID))
}

func (s *Store) ListApplications(ctx context.Context, employeeID string, limit, offset int) ([]Application, error) {
	rows, err := s.DB.Query(ctx, selectApplication+`
    WHERE employee_id = $1
    ORDER BY applied_date DESC
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

const selectApplication = `
    SELECT id, employee_id, leave_type, start_date, end_date, total_days, status,
           is_half_day, is_emergency, reason, restrictions, applied_date,
           COALESCE(decided_by, ''), decided_date, COALESCE(rejection_reason, '')
    FROM leave_applications`

func scanApplication(row pgx.Row) (Application, error) {
	var app Application
	var code string
	err := row.Scan(&app.ID, &app.EmployeeID, &code, &app.StartDate, &app.EndDate, &app.TotalDays,
		&app.Status, &app.IsHalfDay, &app.IsEmergency, &app.Reason, &app.Restrictions,
		&app.AppliedDate, &app.DecidedBy, &app.DecidedDate, &app.RejectionReason)
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, err
	}
	app.TypeCode = policy.Code(code)
	return app, nil
}

func (s *Store) GetBalance(ctx context.Context, employeeID string, code policy.Code, year int) (LeaveBalance, error) {
	return balanceForUpdate(ctx, s.DB, employeeID, code, year)
}

func (s *Store) ListBalances(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, leave_type, year, allocated_days, used_days, carried_forward_days, version, updated_at
    FROM leave_balances
    WHERE employee_id = $1 AND year = $2
    ORDER BY leave_type
  `, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []LeaveBalance
	for rows.Next() {
		var b LeaveBalance
		var code string
		if err := rows.Scan(&b.ID, &b.EmployeeID, &code, &b.Year, &b.AllocatedDays, &b.UsedDays, &b.CarriedForwardDays, &b.Version, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.TypeCode = policy.Code(code)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// ReplaceBalances swaps an employee's balance rows for a year in one
// transaction. Used at onboarding, probation completion and year rollover; a
// re-seed, not a merge.
func (s *Store) ReplaceBalances(ctx context.Context, employeeID string, year int, balances []LeaveBalance) error {
	return s.inTx(ctx, func(q querier.Querier) error {
		if _, err := q.Exec(ctx, "DELETE FROM leave_balances WHERE employee_id = $1 AND year = $2", employeeID, year); err != nil {
			return err
		}
		for _, b := range balances {
			if _, err := q.Exec(ctx, `
        INSERT INTO leave_balances (id, employee_id, leave_type, year, allocated_days, used_days, carried_forward_days, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,1)
      `, b.ID, employeeID, string(b.TypeCode), year, b.AllocatedDays, b.UsedDays, b.CarriedForwardDays); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordCompOffGrant writes the dated grant row and tops up the balance
// allocation in one transaction. The grant row is what lets the credit lapse
// after the expiry window.
func (s *Store) RecordCompOffGrant(ctx context.Context, employeeID string, days float64, grantedOn time.Time) error {
	return s.inTx(ctx, func(q querier.Querier) error {
		tag, err := q.Exec(ctx, `
      UPDATE leave_balances
      SET allocated_days = allocated_days + $1, version = version + 1, updated_at = now()
      WHERE employee_id = $2 AND leave_type = $3 AND year = $4
    `, days, employeeID, string(policy.CodeCompOff), grantedOn.Year())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = q.Exec(ctx, `
      INSERT INTO comp_off_grants (employee_id, days, granted_on, year)
      VALUES ($1,$2,$3,$4)
    `, employeeID, days, grantedOn, grantedOn.Year())
		return err
	})
}

func (s *Store) LapsedCompOffDays(ctx context.Context, employeeID string, year int, cutoff time.Time) (float64, error) {
	var days float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(days), 0)
    FROM comp_off_grants
    WHERE employee_id = $1 AND year = $2 AND granted_on < $3
  `, employeeID, year, cutoff).Scan(&days)
	return days, err
}

func (s *Store) ApprovedDaysInMonth(ctx context.Context, employeeID string, code policy.Code, year int, month time.Month) (float64, error) {
	var days float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(total_days), 0)
    FROM leave_applications
    WHERE employee_id = $1 AND leave_type = $2 AND status = $3
      AND EXTRACT(YEAR FROM start_date) = $4 AND EXTRACT(MONTH FROM start_date) = $5
  `, employeeID, string(code), StatusApproved, year, int(month)).Scan(&days)
	return days, err
}

func (s *Store) ApprovedCountAllTime(ctx context.Context, employeeID string, code policy.Code) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_applications
    WHERE employee_id = $1 AND leave_type = $2 AND status = $3
  `, employeeID, string(code), StatusApproved).Scan(&count)
	return count, err
}

func (s *Store) Holidays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	rows, err := s.DB.Query(ctx, "SELECT day FROM holidays WHERE day >= $1 AND day <= $2 ORDER BY day", from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// ApplyApproval is the transactional heart of the lifecycle: the application
// row is locked, the pending check, the balance deduction and the status
// write all commit or roll back together. An application can never read
// approved while the balance was not deducted.
func (s *Store) ApplyApproval(ctx context.Context, applicationID, approverID string, now time.Time) (Application, error) {
	var approved Application
	err := s.inTx(ctx, func(q querier.Querier) error {
		app, err := scanApplication(q.QueryRow(ctx, selectApplication+" WHERE id = $1 FOR UPDATE", applicationID))
		if err != nil {
			return err
		}
		if IsTerminal(app.Status) {
			return ErrAlreadyTerminal
		}

		if err := deductTx(ctx, q, app.EmployeeID, app.TypeCode, app.StartDate.Year(), app.TotalDays); err != nil {
			return err
		}

		tag, err := q.Exec(ctx, `
      UPDATE leave_applications
      SET status = $1, decided_by = $2, decided_date = $3
      WHERE id = $4 AND status = $5
    `, StatusApproved, approverID, now, applicationID, StatusPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyTerminal
		}

		approved = app
		approved.Status = StatusApproved
		approved.DecidedBy = approverID
		approved.DecidedDate = &now
		return nil
	})
	if err != nil {
		return Application{}, err
	}
	return approved, nil
}

func (s *Store) ApplyRejection(ctx context.Context, applicationID, approverID, reason string, now time.Time) (Application, error) {
	var rejected Application
	err := s.inTx(ctx, func(q querier.Querier) error {
		app, err := scanApplication(q.QueryRow(ctx, selectApplication+" WHERE id = $1 FOR UPDATE", applicationID))
		if err != nil {
			return err
		}
		if IsTerminal(app.Status) {
			return ErrAlreadyTerminal
		}

		if _, err := q.Exec(ctx, `
      UPDATE leave_applications
      SET status = $1, decided_by = $2, decided_date = $3, rejection_reason = $4
      WHERE id = $5
    `, StatusRejected, approverID, now, reason, applicationID); err != nil {
			return err
		}

		rejected = app
		rejected.Status = StatusRejected
		rejected.DecidedBy = approverID
		rejected.DecidedDate = &now
		rejected.RejectionReason = reason
		return nil
	})
	if err != nil {
		return Application{}, err
	}
	return rejected, nil
}

func (s *Store) ApplyCancellation(ctx context.Context, applicationID string, now time.Time) (Application, error) {
	var cancelled Application
	err := s.inTx(ctx, func(q querier.Querier) error {
		app, err := scanApplication(q.QueryRow(ctx, selectApplication+" WHERE id = $1 FOR UPDATE", applicationID))
		if err != nil {
			return err
		}
		if app.Status != StatusApproved {
			return ErrInvalidState
		}

		if err := restoreTx(ctx, q, app.EmployeeID, app.TypeCode, app.StartDate.Year(), app.TotalDays); err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `
      UPDATE leave_applications
      SET status = $1, decided_date = $2
      WHERE id = $3
    `, StatusCancelled, now, applicationID); err != nil {
			return err
		}

		cancelled = app
		cancelled.Status = StatusCancelled
		cancelled.DecidedDate = &now
		return nil
	})
	if err != nil {
		return Application{}, err
	}
	return cancelled, nil
}
