package leave

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"hrleave/internal/domain/policy"
)

const (
	selectBalanceSQL = "SELECT id, employee_id, leave_type, year, allocated_days, used_days, carried_forward_days, version, updated_at"
	updateBalanceSQL = "UPDATE leave_balances"
)

func balanceRow(allocated, used float64, version int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "employee_id", "leave_type", "year", "allocated_days", "used_days", "carried_forward_days", "version", "updated_at"}).
		AddRow("bal-1", "emp-1", "casual", 2026, allocated, used, float64(0), version, time.Now())
}

func TestDeductGuardsVersion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs("emp-1", "casual", 2026).
		WillReturnRows(balanceRow(12, 2, 5))
	mock.ExpectExec(regexp.QuoteMeta(updateBalanceSQL)).
		WithArgs(3.0, "bal-1", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := store.Deduct(context.Background(), "emp-1", policy.CodeCasual, 2026, 3); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeductLostRaceIsConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs("emp-1", "casual", 2026).
		WillReturnRows(balanceRow(12, 2, 5))
	mock.ExpectExec(regexp.QuoteMeta(updateBalanceSQL)).
		WithArgs(3.0, "bal-1", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err = store.Deduct(context.Background(), "emp-1", policy.CodeCasual, 2026, 3)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("deduct error = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeductInsufficientBalanceRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs("emp-1", "casual", 2026).
		WillReturnRows(balanceRow(12, 11, 5))
	mock.ExpectRollback()

	err = store.Deduct(context.Background(), "emp-1", policy.CodeCasual, 2026, 3)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("deduct error = %v, want ErrInsufficientBalance", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRestoreClampsAtZero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs("emp-1", "casual", 2026).
		WillReturnRows(balanceRow(12, 2, 5))
	mock.ExpectExec(regexp.QuoteMeta(updateBalanceSQL)).
		WithArgs(0.0, "bal-1", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := store.Restore(context.Background(), "emp-1", policy.CodeCasual, 2026, 5); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetBalanceNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs("emp-1", "casual", 2026).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = store.GetBalance(context.Background(), "emp-1", policy.CodeCasual, 2026)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("get balance error = %v, want ErrNotFound", err)
	}
}

func TestApplyApprovalCommitsStatusAndLedgerTogether(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	appRows := pgxmock.NewRows([]string{"id", "employee_id", "leave_type", "start_date", "end_date", "total_days", "status",
		"is_half_day", "is_emergency", "reason", "restrictions", "applied_date",
		"decided_by", "decided_date", "rejection_reason"}).
		AddRow("app-1", "emp-1", "casual", day("2026-03-11"), day("2026-03-13"), 3.0, StatusPending,
			false, false, "personal", []string{}, day("2026-03-10"), "", nil, "")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM leave_applications")).
		WithArgs("app-1").
		WillReturnRows(appRows)
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs("emp-1", "casual", 2026).
		WillReturnRows(balanceRow(12, 0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateBalanceSQL)).
		WithArgs(3.0, "bal-1", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_applications")).
		WithArgs(StatusApproved, "mgr-1", now, "app-1", StatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	app, err := store.ApplyApproval(context.Background(), "app-1", "mgr-1", now)
	if err != nil {
		t.Fatalf("apply approval: %v", err)
	}
	if app.Status != StatusApproved || app.DecidedBy != "mgr-1" {
		t.Fatalf("approved application = %+v", app)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
