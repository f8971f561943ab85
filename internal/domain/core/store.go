package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrleave/internal/domain/policy"
	"hrleave/internal/platform/querier"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// DirectoryAPI is what the leave and payroll services require from the
// employee directory.
type DirectoryAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	GetAttendanceTotals(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (AttendanceTotals, error)
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var e Employee
	var status, gender string
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, employment_status, gender, date_of_joining, base_salary
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&e.ID, &e.FirstName, &e.LastName, &status, &gender, &e.DateOfJoining, &e.BaseSalary)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	e.EmploymentStatus = policy.Status(status)
	e.Gender = policy.Gender(gender)
	return e, nil
}

func (s *Store) GetAttendanceTotals(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (AttendanceTotals, error) {
	var totals AttendanceTotals
	err := s.DB.QueryRow(ctx, `
    SELECT
      COUNT(1),
      COUNT(1) FILTER (WHERE check_in IS NOT NULL),
      COUNT(1) FILTER (WHERE is_late),
      COALESCE(SUM(overtime_hours), 0)
    FROM attendance_days
    WHERE employee_id = $1 AND day >= $2 AND day <= $3
  `, employeeID, periodStart, periodEnd).Scan(&totals.WorkingDays, &totals.PresentDays, &totals.LateDays, &totals.OvertimeHours)
	if err != nil {
		return AttendanceTotals{}, err
	}
	return totals, nil
}
