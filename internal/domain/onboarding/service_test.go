package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/policy"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

type memStore struct {
	states map[string]State
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]State)}
}

func (m *memStore) GetState(_ context.Context, employeeID string) (State, error) {
	state, ok := m.states[employeeID]
	if !ok {
		return State{}, ErrStateNotFound
	}
	return state, nil
}

func (m *memStore) CreateState(_ context.Context, state State) error {
	m.states[state.EmployeeID] = state
	return nil
}

func (m *memStore) RecordFirstMonthSales(_ context.Context, employeeID string, amount float64) error {
	state, ok := m.states[employeeID]
	if !ok {
		return ErrStateNotFound
	}
	state.FirstMonthSalesAchieved += amount
	m.states[employeeID] = state
	return nil
}

func (m *memStore) MarkPenaltyApplied(_ context.Context, employeeID string) (bool, error) {
	state, ok := m.states[employeeID]
	if !ok || state.FirstMonthPenaltyApplied {
		return false, nil
	}
	state.FirstMonthPenaltyApplied = true
	m.states[employeeID] = state
	return true, nil
}

func (m *memStore) MarkProbationComplete(_ context.Context, employeeID string, when time.Time) (bool, error) {
	state, ok := m.states[employeeID]
	if !ok || state.IsProbationComplete {
		return false, nil
	}
	state.IsProbationComplete = true
	state.ProbationCompletedAt = &when
	m.states[employeeID] = state
	return true, nil
}

type stubDirectory struct {
	employee core.Employee
}

func (d *stubDirectory) GetEmployee(_ context.Context, _ string) (core.Employee, error) {
	return d.employee, nil
}

func (d *stubDirectory) GetAttendanceTotals(_ context.Context, _ string, _, _ time.Time) (core.AttendanceTotals, error) {
	return core.AttendanceTotals{}, nil
}

type recordingSeeder struct {
	calls []policy.Status
}

func (s *recordingSeeder) SeedBalances(_ context.Context, _ string, status policy.Status, _ int) error {
	s.calls = append(s.calls, status)
	return nil
}

func newTestService(store *memStore) (*Service, *recordingSeeder) {
	seeder := &recordingSeeder{}
	svc := NewService(store, &stubDirectory{employee: core.Employee{ID: "emp-1", BaseSalary: 60000}}, seeder)
	svc.Now = func() time.Time { return day("2026-06-15") }
	return svc, seeder
}

func seedState(store *memStore) {
	store.states["emp-1"] = State{
		EmployeeID:        "emp-1",
		TrainingEndDate:   day("2026-01-15"),
		FirstMonthEndDate: day("2026-01-31"),
		ProbationEndDate:  day("2026-06-30"),
	}
}

func TestPenaltyAppliesExactlyOnce(t *testing.T) {
	store := newMemStore()
	seedState(store)
	svc, _ := newTestService(store)

	penalty, err := svc.ApplyFirstMonthPenaltyIfDue(context.Background(), "emp-1", day("2026-01-31"))
	if err != nil {
		t.Fatalf("penalty: %v", err)
	}
	if penalty != 30000 {
		t.Fatalf("penalty = %g, want 30000 (half of base salary)", penalty)
	}

	penalty, err = svc.ApplyFirstMonthPenaltyIfDue(context.Background(), "emp-1", day("2026-02-28"))
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if penalty != 0 {
		t.Fatalf("second call penalty = %g, must be zero", penalty)
	}
}

type flakyDirectory struct {
	stubDirectory
	failures int
}

func (d *flakyDirectory) GetEmployee(ctx context.Context, employeeID string) (core.Employee, error) {
	if d.failures > 0 {
		d.failures--
		return core.Employee{}, errors.New("directory unavailable")
	}
	return d.stubDirectory.GetEmployee(ctx, employeeID)
}

func TestPenaltySurvivesDirectoryOutage(t *testing.T) {
	store := newMemStore()
	seedState(store)
	svc, _ := newTestService(store)
	svc.Directory = &flakyDirectory{
		stubDirectory: stubDirectory{employee: core.Employee{ID: "emp-1", BaseSalary: 60000}},
		failures:      1,
	}

	if _, err := svc.ApplyFirstMonthPenaltyIfDue(context.Background(), "emp-1", day("2026-01-31")); err == nil {
		t.Fatal("want error while the directory is down")
	}
	if store.states["emp-1"].FirstMonthPenaltyApplied {
		t.Fatal("penalty flag must stay unset when the salary lookup fails")
	}

	penalty, err := svc.ApplyFirstMonthPenaltyIfDue(context.Background(), "emp-1", day("2026-01-31"))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if penalty != 30000 {
		t.Fatalf("retry penalty = %g, want 30000", penalty)
	}
}

func TestPenaltyNotDueWithSales(t *testing.T) {
	store := newMemStore()
	seedState(store)
	svc, _ := newTestService(store)

	if err := store.RecordFirstMonthSales(context.Background(), "emp-1", 1500); err != nil {
		t.Fatalf("record sales: %v", err)
	}

	penalty, err := svc.ApplyFirstMonthPenaltyIfDue(context.Background(), "emp-1", day("2026-01-31"))
	if err != nil {
		t.Fatalf("penalty: %v", err)
	}
	if penalty != 0 {
		t.Fatalf("penalty = %g, sales target was met", penalty)
	}
}

func TestPenaltyNotDueBeforeFirstMonthEnds(t *testing.T) {
	store := newMemStore()
	seedState(store)
	svc, _ := newTestService(store)

	penalty, err := svc.ApplyFirstMonthPenaltyIfDue(context.Background(), "emp-1", day("2026-01-15"))
	if err != nil {
		t.Fatalf("penalty: %v", err)
	}
	if penalty != 0 {
		t.Fatalf("penalty = %g, first month has not ended", penalty)
	}
	if store.states["emp-1"].FirstMonthPenaltyApplied {
		t.Fatal("penalty flag must stay unset before the period closes")
	}
}

func TestPenaltyUnknownEmployeeIsNoop(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	penalty, err := svc.ApplyFirstMonthPenaltyIfDue(context.Background(), "ghost", day("2026-01-31"))
	if err != nil || penalty != 0 {
		t.Fatalf("penalty=%g err=%v, want zero and nil for missing state", penalty, err)
	}
}

func TestCompleteProbationReseedsAsPermanent(t *testing.T) {
	store := newMemStore()
	seedState(store)
	svc, seeder := newTestService(store)

	state, err := svc.CompleteProbation(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("complete probation: %v", err)
	}
	if !state.IsProbationComplete || state.ProbationCompletedAt == nil {
		t.Fatalf("state after completion = %+v", state)
	}
	if len(seeder.calls) != 1 || seeder.calls[0] != policy.StatusPermanent {
		t.Fatalf("seeder calls = %v, want one permanent re-seed", seeder.calls)
	}

	if _, err := svc.CompleteProbation(context.Background(), "emp-1"); !errors.Is(err, ErrProbationAlreadyComplete) {
		t.Fatalf("second completion error = %v, want ErrProbationAlreadyComplete", err)
	}
	if len(seeder.calls) != 1 {
		t.Fatalf("seeder calls after repeat = %d, re-seed must fire once", len(seeder.calls))
	}
}

func TestFirstMonthEndWithoutState(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	end, err := svc.FirstMonthEnd(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("first month end: %v", err)
	}
	if !end.IsZero() {
		t.Fatalf("end = %v, want zero time for missing state", end)
	}
}

func TestMilestonesAt(t *testing.T) {
	state := State{
		TrainingEndDate:   day("2026-01-15"),
		FirstMonthEndDate: day("2026-01-31"),
		ProbationEndDate:  day("2026-06-30"),
	}

	m := state.MilestonesAt(day("2026-02-10"))
	if !m.TrainingComplete || !m.FirstMonthComplete || m.ProbationDue {
		t.Fatalf("milestones mid-probation = %+v", m)
	}

	m = state.MilestonesAt(day("2026-07-01"))
	if !m.ProbationDue {
		t.Fatalf("milestones past probation end = %+v", m)
	}

	state.IsProbationComplete = true
	m = state.MilestonesAt(day("2026-07-01"))
	if m.ProbationDue {
		t.Fatal("completed probation must not report as due")
	}
}
