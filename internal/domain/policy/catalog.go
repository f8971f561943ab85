package policy

// Catalog is the lookup table for leave-type policies. Built once at startup.
type Catalog struct {
	types map[Code]LeaveType
	order []Code
}

func NewCatalog(types []LeaveType) *Catalog {
	c := &Catalog{types: make(map[Code]LeaveType, len(types))}
	for _, t := range types {
		if _, exists := c.types[t.Code]; exists {
			continue
		}
		c.types[t.Code] = t
		c.order = append(c.order, t.Code)
	}
	return c
}

func (c *Catalog) Lookup(code Code) (LeaveType, bool) {
	t, ok := c.types[code]
	return t, ok
}

func (c *Catalog) All() []LeaveType {
	out := make([]LeaveType, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.types[code])
	}
	return out
}

// Allocations returns the annual day allocation per leave type for the given
// employment status. Comp-off is always allocated zero: its credits are
// granted when a holiday is worked, not up front.
func (c *Catalog) Allocations(status Status) map[Code]float64 {
	out := make(map[Code]float64)
	for _, code := range c.order {
		t := c.types[code]
		if !t.AllowsStatus(status) {
			continue
		}
		if t.Code == CodeCompOff {
			out[t.Code] = 0
			continue
		}
		out[t.Code] = t.MaxDaysPerYear
	}
	return out
}

// Default returns the configured leave policy set.
func Default() *Catalog {
	allStatuses := []Status{StatusProbation, StatusPermanent, StatusContract, StatusNotice}
	return NewCatalog([]LeaveType{
		{
			Code:           CodeCasual,
			Name:           "Casual Leave",
			MaxDaysPerYear: 12,
			Eligibility:    Eligibility{AllowedStatuses: []Status{StatusPermanent, StatusContract}},
			IsPaid:         true,
		},
		{
			Code:                  CodeSick,
			Name:                  "Sick Leave",
			MaxDaysPerYear:        7,
			Eligibility:           Eligibility{AllowedStatuses: allStatuses},
			DocumentationRequired: true,
			IsPaid:                true,
		},
		{
			Code:              CodeEarned,
			Name:              "Earned Leave",
			MaxDaysPerYear:    14,
			CarryForward:      true,
			CarryForwardLimit: 30,
			Eligibility: Eligibility{
				MinServiceMonths: 12,
				AllowedStatuses:  []Status{StatusPermanent},
			},
			IsPaid: true,
		},
		{
			Code:              CodeMaternity,
			Name:              "Maternity Leave",
			MaxDaysPerYear:    84,
			GenderRestriction: GenderFemale,
			Eligibility: Eligibility{
				MinServiceMonths: 10,
				AllowedStatuses:  []Status{StatusPermanent},
				MaxEventCount:    2,
			},
			DocumentationRequired: true,
			IsPaid:                true,
		},
		{
			Code:              CodePaternity,
			Name:              "Paternity Leave",
			MaxDaysPerYear:    3,
			GenderRestriction: GenderMale,
			Eligibility: Eligibility{
				AllowedStatuses:    []Status{StatusPermanent},
				MaxEventCount:      2,
				WithinWeeksOfEvent: 2,
			},
			IsPaid: true,
		},
		{
			Code:           CodeMarriage,
			Name:           "Marriage Leave",
			MaxDaysPerYear: 3,
			Eligibility: Eligibility{
				AllowedStatuses:    []Status{StatusPermanent},
				OneTimeOnly:        true,
				WithinWeeksOfEvent: 4,
			},
			DocumentationRequired: true,
			IsPaid:                true,
		},
		{
			Code:           CodeCompOff,
			Name:           "Compensatory Off",
			MaxDaysPerYear: 12,
			ExpiryDays:     90,
			Eligibility:    Eligibility{AllowedStatuses: allStatuses},
			IsPaid:         true,
		},
		{
			Code:            CodeEmergency,
			Name:            "Emergency Leave",
			MaxDaysPerYear:  5,
			MaxDaysPerMonth: 2,
			Eligibility:     Eligibility{AllowedStatuses: []Status{StatusPermanent}},
			IsPaid:          true,
		},
		{
			Code:           CodeUnpaid,
			Name:           "Unpaid Leave",
			MaxDaysPerYear: 30,
			Eligibility:    Eligibility{AllowedStatuses: allStatuses},
			IsPaid:         false,
		},
	})
}
