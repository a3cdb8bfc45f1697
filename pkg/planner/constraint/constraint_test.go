package constraint

import (
	"testing"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
)

func TestEvaluatorDefaultRules(t *testing.T) {
	e := NewEvaluator()
	rules := e.Rules()
	if len(rules) != 5 {
		t.Fatalf("got %d default rules, want 5", len(rules))
	}

	types := make(map[model.ConflictType]bool)
	for _, r := range rules {
		types[r.Type()] = true
	}
	for _, want := range []model.ConflictType{
		model.ConflictLeaveOverlap,
		model.ConflictDoubleBooking,
		model.ConflictSupervisionLimit,
		model.ConflictMinimumStaff,
		model.ConflictSpecialtyMismatch,
	} {
		if !types[want] {
			t.Errorf("missing default rule for %s", want)
		}
	}
}

func TestEvaluatorRegisterReplaces(t *testing.T) {
	e := NewEvaluator()
	before := len(e.Rules())

	// Registering a rule of an existing type replaces it, count unchanged.
	e.Register(&SpecialtyRule{})
	if got := len(e.Rules()); got != before {
		t.Errorf("re-registering should replace, got %d rules, want %d", got, before)
	}

	e.Unregister(model.ConflictSpecialtyMismatch)
	if got := len(e.Rules()); got != before-1 {
		t.Errorf("after unregister got %d rules, want %d", got, before-1)
	}
}

func TestCanAssignBlocksOnError(t *testing.T) {
	f := newFixture(1, 1, 0)
	f.snap.Leaves = []*model.LeavePeriod{{
		StaffID:   f.staff[0].ID,
		StartDate: "2025-08-04",
		EndDate:   "2025-08-04",
		Period:    model.PeriodFullDay,
		Status:    model.LeaveApproved,
	}}
	ctx := f.context(model.GenerationOptions{})
	e := NewEvaluator()

	a := f.assignment(f.staff[0].ID, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor)
	ok, blocking := e.CanAssign(ctx, a)
	if ok {
		t.Fatal("assignment during approved leave should be blocked")
	}
	if len(blocking) == 0 {
		t.Fatal("blocking conflicts should be returned")
	}
}

func TestCanAssignAllowsWarnings(t *testing.T) {
	f := newFixture(1, 1, 0)
	f.rooms[0].RequiredSpecialty = "cardiac"
	f.staff[0].Specialty = "pediatric"
	ctx := f.context(model.GenerationOptions{})
	e := NewEvaluator()

	a := f.assignment(f.staff[0].ID, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor)
	ok, blocking := e.CanAssign(ctx, a)
	if !ok {
		t.Fatalf("warning-level conflicts should not block, got %v", blocking)
	}
}

func TestEvaluateAssignmentCollectsAllRules(t *testing.T) {
	f := newFixture(1, 1, 0)
	f.rooms[0].RequiredSpecialty = "cardiac"
	f.staff[0].Specialty = "pediatric"
	f.snap.Leaves = []*model.LeavePeriod{{
		StaffID:   f.staff[0].ID,
		StartDate: "2025-08-04",
		EndDate:   "2025-08-04",
		Period:    model.PeriodFullDay,
		Status:    model.LeavePending,
	}}
	ctx := f.context(model.GenerationOptions{})
	e := NewEvaluator()

	a := f.assignment(f.staff[0].ID, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor)
	conflicts := e.EvaluateAssignment(ctx, a)

	// No short circuit: both the leave overlap and the specialty mismatch
	// surface in one pass.
	types := make(map[model.ConflictType]bool)
	for _, c := range conflicts {
		types[c.Type] = true
	}
	if !types[model.ConflictLeaveOverlap] || !types[model.ConflictSpecialtyMismatch] {
		t.Errorf("expected both conflict types, got %v", types)
	}
}

func TestOrderCandidatesDeterministicTieBreak(t *testing.T) {
	f := newFixture(1, 3, 0)
	ctx := f.context(model.GenerationOptions{})

	slot := model.AssignmentSlot{Date: "2025-08-04", Period: model.PeriodMorning, RoomID: f.rooms[0].ID, SectorID: f.sectorID}
	ordered := ctx.OrderCandidates(slot, f.staff)

	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].ID.String() > ordered[i].ID.String() {
			t.Fatal("candidates should be ordered by staff ID ascending")
		}
	}
}

func TestOrderCandidatesBalanceWorkload(t *testing.T) {
	f := newFixture(2, 2, 0)
	ctx := f.context(model.GenerationOptions{BalanceWorkload: true})
	busy, idle := f.staff[0], f.staff[1]

	ctx.AddAssignment(f.assignment(busy.ID, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor))

	slot := model.AssignmentSlot{Date: "2025-08-04", Period: model.PeriodAfternoon, RoomID: f.rooms[1].ID, SectorID: f.sectorID}
	ordered := ctx.OrderCandidates(slot, []*model.StaffMember{busy, idle})

	if ordered[0].ID != idle.ID {
		t.Error("the less loaded candidate should come first")
	}
}

func TestOrderCandidatesPreferenceFirst(t *testing.T) {
	f := newFixture(1, 2, 0)
	preferring := f.staff[1]
	preferring.Preferences = []model.SlotPreference{{Date: "2025-08-04", Period: model.PeriodMorning}}

	ctx := f.context(model.GenerationOptions{RespectPreferences: true})
	slot := model.AssignmentSlot{Date: "2025-08-04", Period: model.PeriodMorning, RoomID: f.rooms[0].ID, SectorID: f.sectorID}

	ordered := ctx.OrderCandidates(slot, f.staff)
	if ordered[0].ID != preferring.ID {
		t.Error("a preference match should come first")
	}

	// Without the option, preference is ignored and ID order applies.
	plain := f.context(model.GenerationOptions{})
	ordered = plain.OrderCandidates(slot, f.staff)
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].ID.String() > ordered[i].ID.String() {
			t.Fatal("without RespectPreferences order should be by ID")
		}
	}
}

func TestContextRemoveAssignment(t *testing.T) {
	f := newFixture(1, 1, 0)
	ctx := f.context(model.GenerationOptions{})

	a := f.assignment(f.staff[0].ID, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor)
	ctx.AddAssignment(a)
	if len(ctx.Assignments()) != 1 {
		t.Fatal("assignment should be indexed")
	}

	ctx.RemoveAssignment(a.ID)
	if len(ctx.Assignments()) != 0 {
		t.Error("assignment should be removed")
	}
	if len(ctx.StaffAssignments(f.staff[0].ID)) != 0 {
		t.Error("staff index should be rebuilt")
	}
	if got := ctx.Availability.FreeFor(f.staff[0].ID, a.Slot, a.Role); !got.Available {
		t.Error("availability index should free the slot")
	}
}

func TestStaffPresentCountsDistinct(t *testing.T) {
	f := newFixture(2, 1, 1)
	ctx := f.context(model.GenerationOptions{})

	ctx.AddAssignment(f.assignment(f.staff[0].ID, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor))
	ctx.AddAssignment(f.assignment(f.staff[0].ID, f.rooms[1].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor))
	ctx.AddAssignment(f.assignment(f.staff[1].ID, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentOperator))

	if got := ctx.StaffPresent("2025-08-04", model.PeriodMorning); got != 2 {
		t.Errorf("StaffPresent = %d, want 2 distinct staff", got)
	}
	if got := ctx.StaffPresent("2025-08-04", model.PeriodAfternoon); got != 0 {
		t.Errorf("afternoon StaffPresent = %d, want 0", got)
	}
}

func TestSupervisedRooms(t *testing.T) {
	f := newFixture(3, 1, 0)
	ctx := f.context(model.GenerationOptions{})
	id := f.staff[0].ID

	ctx.AddAssignment(f.assignment(id, f.rooms[0].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor))
	ctx.AddAssignment(f.assignment(id, f.rooms[1].ID, "2025-08-04", model.PeriodMorning, model.AssignmentSupervisor))
	ctx.AddAssignment(f.assignment(id, f.rooms[2].ID, "2025-08-04", model.PeriodAfternoon, model.AssignmentSupervisor))

	if got := ctx.SupervisedRooms(id, "2025-08-04", model.PeriodMorning); got != 2 {
		t.Errorf("morning SupervisedRooms = %d, want 2", got)
	}
	if got := ctx.SupervisedRooms(id, "2025-08-04", model.PeriodAfternoon); got != 1 {
		t.Errorf("afternoon SupervisedRooms = %d, want 1", got)
	}
}

func TestRoomAndStaffLookup(t *testing.T) {
	f := newFixture(1, 1, 0)
	ctx := f.context(model.GenerationOptions{})

	if ctx.Room(f.rooms[0].ID) == nil {
		t.Error("known room should resolve")
	}
	if ctx.Room(uuid.New()) != nil {
		t.Error("unknown room should be nil")
	}
	if ctx.Staff(f.staff[0].ID) == nil {
		t.Error("known staff should resolve")
	}
	if ctx.Staff(uuid.New()) != nil {
		t.Error("unknown staff should be nil")
	}
}
