package policy

// Code identifies a leave type. The set is closed: eligibility dispatch is
// driven off this enum, never off free-form strings.
type Code string

const (
	CodeCasual    Code = "casual"
	CodeSick      Code = "sick"
	CodeEarned    Code = "earned"
	CodeMaternity Code = "maternity"
	CodePaternity Code = "paternity"
	CodeMarriage  Code = "marriage"
	CodeCompOff   Code = "comp_off"
	CodeEmergency Code = "emergency"
	CodeUnpaid    Code = "unpaid"
)

type Status string

const (
	StatusProbation Status = "probation"
	StatusPermanent Status = "permanent"
	StatusContract  Status = "contract"
	StatusNotice    Status = "notice"
)

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

type Eligibility struct {
	MinServiceMonths   int      `json:"minServiceMonths,omitempty"`
	AllowedStatuses    []Status `json:"allowedStatuses"`
	MaxEventCount      int      `json:"maxEventCount,omitempty"`
	OneTimeOnly        bool     `json:"oneTimeOnly,omitempty"`
	WithinWeeksOfEvent int      `json:"withinWeeksOfEvent,omitempty"`
}

// LeaveType is an immutable policy record. Seeded once via Default, never
// mutated at runtime.
type LeaveType struct {
	Code                  Code        `json:"code"`
	Name                  string      `json:"name"`
	MaxDaysPerYear        float64     `json:"maxDaysPerYear"`
	MaxDaysPerMonth       float64     `json:"maxDaysPerMonth,omitempty"`
	CarryForward          bool        `json:"carryForward"`
	CarryForwardLimit     float64     `json:"carryForwardLimit,omitempty"`
	ExpiryDays            int         `json:"expiryDays,omitempty"`
	GenderRestriction     Gender      `json:"genderRestriction,omitempty"`
	Eligibility           Eligibility `json:"eligibility"`
	DocumentationRequired bool        `json:"documentationRequired"`
	IsPaid                bool        `json:"isPaid"`
}

func (t LeaveType) AllowsStatus(status Status) bool {
	for _, allowed := range t.Eligibility.AllowedStatuses {
		if allowed == status {
			return true
		}
	}
	return false
}
