// Package e2e exercises the full planning workflow end to end: generate a
// proposal, re-validate it, then find a replacement for one assignment.
// Everything runs in memory against a stubbed snapshot.
package e2e

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/constraint"
	"github.com/blocplan/blocplan/pkg/planner/generator"
	"github.com/blocplan/blocplan/pkg/planner/replacement"
	"github.com/blocplan/blocplan/pkg/stats"
)

type memoryLoader struct {
	snap *model.PlanningSnapshot
}

func (l *memoryLoader) LoadSnapshot(ctx context.Context, sectorID uuid.UUID, dateRange model.DateRange) (*model.PlanningSnapshot, error) {
	return l.snap, nil
}

func buildSector(rooms, anesthetists, nurses int) *model.PlanningSnapshot {
	sectorID := uuid.New()
	snap := &model.PlanningSnapshot{
		Sector: &model.Sector{BaseModel: model.BaseModel{ID: sectorID}, Name: "Bloc A"},
		Rule:   &model.SectorRule{SectorID: sectorID, MaxRoomsPerSupervisor: 3},
	}
	for i := 0; i < rooms; i++ {
		snap.Rooms = append(snap.Rooms, &model.Room{
			BaseModel: model.BaseModel{ID: uuid.New()},
			SectorID:  sectorID,
			Name:      string(rune('A' + i)),
		})
	}
	add := func(role model.StaffRole) {
		snap.Staff = append(snap.Staff, &model.StaffMember{
			BaseModel:   model.BaseModel{ID: uuid.New()},
			Name:        string(role),
			Role:        role,
			Status:      "active",
			WorkPattern: model.WorkPattern{FullTime: true},
		})
	}
	for i := 0; i < anesthetists; i++ {
		add(model.RoleAnesthetist)
	}
	for i := 0; i < nurses; i++ {
		add(model.RoleNurseAnesthetist)
	}
	return snap
}

func TestFullPlanningWorkflow(t *testing.T) {
	snap := buildSector(3, 2, 4)
	gen := generator.New(&memoryLoader{snap: snap}, constraint.NewEvaluator())
	ctx := context.Background()

	req := model.GenerationRequest{
		SectorID:  snap.Sector.ID,
		DateRange: model.DateRange{StartDate: "2025-08-04", EndDate: "2025-08-08"},
		Options:   model.GenerationOptions{BalanceWorkload: true},
	}

	// Step 1: generate a week of plannings.
	result, err := gen.Generate(ctx, req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Phase != generator.PhaseComplete {
		t.Fatalf("phase = %s, conflicts = %v", result.Phase, result.Generation.Conflicts)
	}
	// 5 weekdays, 2 periods, 3 rooms, 2 roles.
	if got := result.Generation.Statistics.TotalSlots; got != 60 {
		t.Fatalf("TotalSlots = %d, want 60", got)
	}
	if result.Generation.Statistics.UnassignedSlots != 0 {
		t.Fatalf("unassigned = %d, want a fully staffed week", result.Generation.Statistics.UnassignedSlots)
	}

	// Step 2: the proposal re-validates cleanly, as a publish would check.
	conflicts, err := gen.Validate(ctx, req, result.Generation.Assignments)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, c := range conflicts {
		if c.IsBlocking() {
			t.Fatalf("generated planning should re-validate without blockers, got %v", c)
		}
	}

	// Step 3: a nurse calls in sick; find a replacement for one assignment.
	var target *model.Assignment
	for _, a := range result.Generation.Assignments {
		if a.Role == model.AssignmentOperator {
			target = a
			break
		}
	}
	if target == nil {
		t.Fatal("no operator assignment in the proposal")
	}

	snap.Assignments = result.Generation.Assignments
	evalCtx := constraint.NewContext(snap, req)

	var pool []*model.StaffMember
	for _, s := range snap.Staff {
		if s.Role == model.RoleNurseAnesthetist {
			pool = append(pool, s)
		}
	}

	metrics := stats.NewWorkloadAnalyzer().BuildStaffMetrics(pool, snap.Assignments, nil, nil)
	candidates := replacement.NewRecommender().Recommend(evalCtx, target, pool, metrics)

	if len(candidates) == 0 {
		t.Fatal("expected replacement candidates")
	}
	for _, c := range candidates {
		if c.Staff.ID == target.StaffID {
			t.Fatal("the sick nurse must not be recommended as their own replacement")
		}
	}

	available := replacement.NewRecommender().ApplyFilter(candidates, replacement.FilterAvailable)
	for _, c := range available {
		if c.Availability == replacement.StateBusy {
			t.Fatal("available view should never contain busy staff")
		}
	}

	// Step 4: workload over the week is reasonably even.
	workload := stats.NewWorkloadAnalyzer().Analyze(result.Generation.Assignments, snap.Staff)
	if workload.EquityScore <= 0 {
		t.Errorf("equity = %.1f, want above zero", workload.EquityScore)
	}
	coverage := stats.NewCoverageAnalyzer().Analyze(result.Generation, snap.Rule)
	if coverage.OverallCoverage != 100 {
		t.Errorf("coverage = %.1f, want 100", coverage.OverallCoverage)
	}
}

func TestWorkflowWithLeaveAndShortage(t *testing.T) {
	snap := buildSector(2, 1, 2)
	gen := generator.New(&memoryLoader{snap: snap}, constraint.NewEvaluator())

	// The only anesthetist is on leave Wednesday.
	snap.Leaves = []*model.LeavePeriod{{
		StaffID:   snap.Staff[0].ID,
		StartDate: "2025-08-06",
		EndDate:   "2025-08-06",
		Period:    model.PeriodFullDay,
		Status:    model.LeaveApproved,
	}}

	req := model.GenerationRequest{
		SectorID:  snap.Sector.ID,
		DateRange: model.DateRange{StartDate: "2025-08-04", EndDate: "2025-08-08"},
	}

	result, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Wednesday supervisor slots stay empty and are reported, the rest of
	// the week is planned around the leave.
	if result.Generation.Statistics.UnassignedSlots == 0 {
		t.Fatal("expected unfilled supervisor slots on the leave day")
	}
	for _, a := range result.Generation.Assignments {
		if a.StaffID == snap.Staff[0].ID && a.Slot.Date == "2025-08-06" {
			t.Fatal("staff on leave was assigned")
		}
	}
	reported := false
	for _, c := range result.Generation.Conflicts {
		if c.Type == model.ConflictMinimumStaff && c.Date == "2025-08-06" {
			reported = true
		}
	}
	if !reported {
		t.Error("the leave-day shortage should surface as a conflict")
	}
}
