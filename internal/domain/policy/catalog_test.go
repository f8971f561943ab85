package policy

import "testing"

func TestDefaultCatalogLookup(t *testing.T) {
	catalog := Default()

	casual, ok := catalog.Lookup(CodeCasual)
	if !ok {
		t.Fatal("expected casual leave in default catalog")
	}
	if casual.MaxDaysPerYear != 12 {
		t.Fatalf("expected 12 casual days per year, got %v", casual.MaxDaysPerYear)
	}
	if casual.AllowsStatus(StatusProbation) {
		t.Fatal("casual leave must not be available during probation")
	}

	if _, ok := catalog.Lookup(Code("sabbatical")); ok {
		t.Fatal("unknown code must not resolve")
	}
}

func TestMaternityRestrictions(t *testing.T) {
	catalog := Default()
	maternity, _ := catalog.Lookup(CodeMaternity)

	if maternity.GenderRestriction != GenderFemale {
		t.Fatalf("expected female restriction, got %q", maternity.GenderRestriction)
	}
	if maternity.Eligibility.MaxEventCount != 2 {
		t.Fatalf("expected max 2 maternity events, got %d", maternity.Eligibility.MaxEventCount)
	}
}

func TestAllocationsByStatus(t *testing.T) {
	catalog := Default()

	probation := catalog.Allocations(StatusProbation)
	if _, ok := probation[CodeCasual]; ok {
		t.Fatal("probation allocations must not include casual leave")
	}
	if probation[CodeSick] != 7 {
		t.Fatalf("expected 7 sick days for probation, got %v", probation[CodeSick])
	}

	permanent := catalog.Allocations(StatusPermanent)
	if permanent[CodeCasual] != 12 {
		t.Fatalf("expected 12 casual days for permanent, got %v", permanent[CodeCasual])
	}
	if permanent[CodeCompOff] != 0 {
		t.Fatalf("comp-off must be allocated zero up front, got %v", permanent[CodeCompOff])
	}
}
