package leave

import (
	"context"
	"time"

	"hrleave/internal/domain/policy"
)

// StoreAPI is the persistence contract of the lifecycle service. The Apply*
// methods are each one atomic unit: status transition and ledger write commit
// together or not at all.
type StoreAPI interface {
	CreateApplication(ctx context.Context, app Application) error
	GetApplication(ctx context.Context, applicationID string) (Application, error)
	ListApplications(ctx context.Context, employeeID string, limit, offset int) ([]Application, error)

	GetBalance(ctx context.Context, employeeID string, code policy.Code, year int) (LeaveBalance, error)
	ListBalances(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	ReplaceBalances(ctx context.Context, employeeID string, year int, balances []LeaveBalance) error

	// RecordCompOffGrant adds a dated comp-off credit to the ledger. The
	// grant date drives the expiry window.
	RecordCompOffGrant(ctx context.Context, employeeID string, days float64, grantedOn time.Time) error

	// LapsedCompOffDays sums the comp-off credits of the year granted before
	// the cutoff.
	LapsedCompOffDays(ctx context.Context, employeeID string, year int, cutoff time.Time) (float64, error)

	ApprovedDaysInMonth(ctx context.Context, employeeID string, code policy.Code, year int, month time.Month) (float64, error)
	ApprovedCountAllTime(ctx context.Context, employeeID string, code policy.Code) (int, error)
	Holidays(ctx context.Context, from, to time.Time) ([]time.Time, error)

	// ApplyApproval transitions pending -> approved and deducts the balance
	// in one transaction. Errors: ErrNotFound, ErrAlreadyTerminal,
	// ErrInsufficientBalance, ErrConflict.
	ApplyApproval(ctx context.Context, applicationID, approverID string, now time.Time) (Application, error)

	// ApplyRejection transitions pending -> rejected. No ledger interaction.
	ApplyRejection(ctx context.Context, applicationID, approverID, reason string, now time.Time) (Application, error)

	// ApplyCancellation transitions approved -> cancelled and restores the
	// deducted days, capped at allocated + carried-forward.
	ApplyCancellation(ctx context.Context, applicationID string, now time.Time) (Application, error)
}
