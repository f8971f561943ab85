package leave

import (
	"time"

	"hrleave/internal/domain/policy"
)

// LeaveBalance is one ledger row per (employee, leave type, year). Mutated
// only through the deduct/restore protocol; Version backs the optimistic CAS.
type LeaveBalance struct {
	ID                 string      `json:"id"`
	EmployeeID         string      `json:"employeeId"`
	TypeCode           policy.Code `json:"leaveType"`
	Year               int         `json:"year"`
	AllocatedDays      float64     `json:"allocatedDays"`
	UsedDays           float64     `json:"usedDays"`
	CarriedForwardDays float64     `json:"carriedForwardDays"`
	Version            int64       `json:"-"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// Remaining is always derived, never stored.
func (b LeaveBalance) Remaining() float64 {
	return b.AllocatedDays + b.CarriedForwardDays - b.UsedDays
}

type Application struct {
	ID              string      `json:"id"`
	EmployeeID      string      `json:"employeeId"`
	TypeCode        policy.Code `json:"leaveType"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	TotalDays       float64     `json:"totalDays"`
	Status          string      `json:"status"`
	IsHalfDay       bool        `json:"isHalfDay"`
	IsEmergency     bool        `json:"isEmergency"`
	Reason          string      `json:"reason,omitempty"`
	Restrictions    []string    `json:"restrictions,omitempty"`
	AppliedDate     time.Time   `json:"appliedDate"`
	DecidedBy       string      `json:"decidedBy,omitempty"`
	DecidedDate     *time.Time  `json:"decidedDate,omitempty"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
}

// Decision is the eligibility verdict attached to a submission. A failed
// verdict is a first-class result, not an error: the application is still
// created in pending for manual review.
type Decision struct {
	CanApprove    bool     `json:"canApprove"`
	RequestedDays float64  `json:"requestedDays"`
	Restrictions  []string `json:"restrictions"`
}

type SubmitRequest struct {
	EmployeeID  string      `json:"employeeId"`
	TypeCode    policy.Code `json:"leaveType"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	IsHalfDay   bool        `json:"isHalfDay"`
	IsEmergency bool        `json:"isEmergency"`
	Reason      string      `json:"reason"`
	EventDate   *time.Time  `json:"eventDate,omitempty"`
}

type SubmitResult struct {
	ApplicationID string   `json:"applicationId"`
	Status        string   `json:"status"`
	Decision      Decision `json:"decision"`
}
