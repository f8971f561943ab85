package leave

import "errors"

var (
	// ErrValidation covers malformed requests: missing dates, end before
	// start, unknown leave type. Never retried.
	ErrValidation = errors.New("invalid leave request")

	// ErrNotFound is returned for unknown applications or balances.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyTerminal is returned when a decision is attempted on an
	// application that already left the pending state.
	ErrAlreadyTerminal = errors.New("application is already decided")

	// ErrInsufficientBalance is returned when a deduction would drive the
	// balance negative.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrConflict means a concurrent writer won the balance-row race. The
	// service retries this a bounded number of times before surfacing it.
	ErrConflict = errors.New("concurrent balance update lost the race")

	// ErrInvalidState is returned for transitions the state machine does not
	// permit, such as cancelling a pending application.
	ErrInvalidState = errors.New("invalid state transition")
)
