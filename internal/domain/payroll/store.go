package payroll

import (
	"context"
	"time"

	"hrleave/internal/domain/leave"
	"hrleave/internal/domain/policy"
	"hrleave/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type StoreAPI interface {
	ApprovedLeaveOverlapping(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]leave.Application, error)
	Holidays(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

func (s *Store) ApprovedLeaveOverlapping(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]leave.Application, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, leave_type, start_date, end_date, total_days, is_half_day
    FROM leave_applications
    WHERE employee_id = $1 AND status = $2 AND start_date <= $3 AND end_date >= $4
    ORDER BY start_date
  `, employeeID, leave.StatusApproved, periodEnd, periodStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		var app leave.Application
		var code string
		if err := rows.Scan(&app.ID, &app.EmployeeID, &code, &app.StartDate, &app.EndDate, &app.TotalDays, &app.IsHalfDay); err != nil {
			return nil, err
		}
		app.TypeCode = policy.Code(code)
		app.Status = leave.StatusApproved
		apps = append(apps, app)
	}
	return apps, rows.Err()
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
