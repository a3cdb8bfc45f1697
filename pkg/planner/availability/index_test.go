package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
)

func fullTimeStaff(id uuid.UUID) *model.StaffMember {
	return &model.StaffMember{
		BaseModel:   model.BaseModel{ID: id},
		Name:        "staff",
		Status:      "active",
		WorkPattern: model.WorkPattern{FullTime: true},
	}
}

func TestIndexLeaveBlocks(t *testing.T) {
	staffID := uuid.New()
	snap := &model.PlanningSnapshot{
		Staff: []*model.StaffMember{fullTimeStaff(staffID)},
		Leaves: []*model.LeavePeriod{{
			StaffID:   staffID,
			StartDate: "2025-08-04",
			EndDate:   "2025-08-08",
			Period:    model.PeriodFullDay,
			Status:    model.LeaveApproved,
		}},
	}
	idx := NewIndex(snap)

	// Inclusive on both endpoints.
	for _, date := range []string{"2025-08-04", "2025-08-06", "2025-08-08"} {
		got := idx.IsAvailable(staffID, date, model.PeriodMorning)
		if got.Available {
			t.Errorf("expected %s blocked by leave", date)
		}
		if got.Reason != ReasonLeave {
			t.Errorf("reason = %s, want %s", got.Reason, ReasonLeave)
		}
	}

	if got := idx.IsAvailable(staffID, "2025-08-11", model.PeriodMorning); !got.Available {
		t.Errorf("2025-08-11 should be free, got reason %s", got.Reason)
	}
}

func TestIndexNonBlockingLeavesDropped(t *testing.T) {
	staffID := uuid.New()
	snap := &model.PlanningSnapshot{
		Staff: []*model.StaffMember{fullTimeStaff(staffID)},
		Leaves: []*model.LeavePeriod{
			{StaffID: staffID, StartDate: "2025-08-04", EndDate: "2025-08-08", Period: model.PeriodFullDay, Status: model.LeaveRejected},
			{StaffID: staffID, StartDate: "2025-08-04", EndDate: "2025-08-08", Period: model.PeriodFullDay, Status: model.LeaveCancelled},
		},
	}
	idx := NewIndex(snap)

	if got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodMorning); !got.Available {
		t.Errorf("rejected and cancelled leaves must never block, got reason %s", got.Reason)
	}
}

func TestIndexHalfDayLeave(t *testing.T) {
	staffID := uuid.New()
	snap := &model.PlanningSnapshot{
		Staff: []*model.StaffMember{fullTimeStaff(staffID)},
		Leaves: []*model.LeavePeriod{{
			StaffID:   staffID,
			StartDate: "2025-08-05",
			EndDate:   "2025-08-05",
			Period:    model.PeriodMorning,
			Status:    model.LeavePending,
		}},
	}
	idx := NewIndex(snap)

	if got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodMorning); got.Available {
		t.Error("morning leave should block the morning")
	}
	if got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodAfternoon); !got.Available {
		t.Error("morning leave should spare the afternoon")
	}
	if got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodFullDay); got.Available {
		t.Error("morning leave should block a full-day query")
	}
}

func TestIndexDutyBlocks(t *testing.T) {
	staffID := uuid.New()
	snap := &model.PlanningSnapshot{
		Staff:  []*model.StaffMember{fullTimeStaff(staffID)},
		Duties: []*model.DutyRecord{{StaffID: staffID, Date: "2025-08-05", Type: model.DutyOnCall}},
	}
	idx := NewIndex(snap)

	got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodAfternoon)
	if got.Available || got.Reason != ReasonOnCall {
		t.Errorf("on-call day should block with %s, got %+v", ReasonOnCall, got)
	}
}

func TestIndexWorkPattern(t *testing.T) {
	staffID := uuid.New()
	partTime := fullTimeStaff(staffID)
	partTime.WorkPattern = model.WorkPattern{Weekdays: []time.Weekday{time.Monday, time.Wednesday}}

	idx := NewIndex(&model.PlanningSnapshot{Staff: []*model.StaffMember{partTime}})

	// 2025-08-04 is a Monday, 2025-08-05 a Tuesday.
	if got := idx.IsAvailable(staffID, "2025-08-04", model.PeriodMorning); !got.Available {
		t.Errorf("Monday should be within the pattern, got %+v", got)
	}
	got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodMorning)
	if got.Available || got.Reason != ReasonOffPattern {
		t.Errorf("Tuesday should be off pattern, got %+v", got)
	}
}

func TestIndexAssignmentOverlap(t *testing.T) {
	staffID := uuid.New()
	idx := NewIndex(&model.PlanningSnapshot{Staff: []*model.StaffMember{fullTimeStaff(staffID)}})

	a := &model.Assignment{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Slot:      model.AssignmentSlot{Date: "2025-08-05", Period: model.PeriodMorning, RoomID: uuid.New()},
		StaffID:   staffID,
		Role:      model.AssignmentOperator,
	}
	idx.AddAssignment(a)

	got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodMorning)
	if got.Available || got.Reason != ReasonAssigned {
		t.Errorf("overlapping assignment should block, got %+v", got)
	}
	if got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodAfternoon); !got.Available {
		t.Error("afternoon should remain free")
	}

	idx.RemoveAssignment(a)
	if got := idx.IsAvailable(staffID, "2025-08-05", model.PeriodMorning); !got.Available {
		t.Error("removing the assignment should free the slot")
	}
}

func TestFreeForConcurrentSupervision(t *testing.T) {
	staffID := uuid.New()
	roomA, roomB := uuid.New(), uuid.New()
	idx := NewIndex(&model.PlanningSnapshot{Staff: []*model.StaffMember{fullTimeStaff(staffID)}})

	idx.AddAssignment(&model.Assignment{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Slot:      model.AssignmentSlot{Date: "2025-08-05", Period: model.PeriodMorning, RoomID: roomA},
		StaffID:   staffID,
		Role:      model.AssignmentSupervisor,
	})

	// A supervisor already covering room A may also supervise room B in the
	// same period.
	slotB := model.AssignmentSlot{Date: "2025-08-05", Period: model.PeriodMorning, RoomID: roomB}
	if got := idx.FreeFor(staffID, slotB, model.AssignmentSupervisor); !got.Available {
		t.Errorf("second supervision in another room should be free, got %+v", got)
	}

	// But not operate in room B at the same time.
	if got := idx.FreeFor(staffID, slotB, model.AssignmentOperator); got.Available {
		t.Error("operating while supervising elsewhere should be blocked")
	}

	// And not supervise the same room twice.
	slotA := model.AssignmentSlot{Date: "2025-08-05", Period: model.PeriodMorning, RoomID: roomA}
	if got := idx.FreeFor(staffID, slotA, model.AssignmentSupervisor); got.Available {
		t.Error("same room supervision should be blocked")
	}
}

func TestFreeForOperatorBlocked(t *testing.T) {
	staffID := uuid.New()
	roomA, roomB := uuid.New(), uuid.New()
	idx := NewIndex(&model.PlanningSnapshot{Staff: []*model.StaffMember{fullTimeStaff(staffID)}})

	idx.AddAssignment(&model.Assignment{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Slot:      model.AssignmentSlot{Date: "2025-08-05", Period: model.PeriodMorning, RoomID: roomA},
		StaffID:   staffID,
		Role:      model.AssignmentOperator,
	})

	// An operator is bound to one room, even for a supervision request.
	slotB := model.AssignmentSlot{Date: "2025-08-05", Period: model.PeriodMorning, RoomID: roomB}
	if got := idx.FreeFor(staffID, slotB, model.AssignmentSupervisor); got.Available {
		t.Error("supervising while operating elsewhere should be blocked")
	}
}

func TestAssignmentCount(t *testing.T) {
	staffID := uuid.New()
	idx := NewIndex(&model.PlanningSnapshot{Staff: []*model.StaffMember{fullTimeStaff(staffID)}})

	if idx.AssignmentCount(staffID) != 0 {
		t.Error("fresh index should report zero assignments")
	}
	idx.AddAssignment(&model.Assignment{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Slot:      model.AssignmentSlot{Date: "2025-08-05", Period: model.PeriodMorning, RoomID: uuid.New()},
		StaffID:   staffID,
	})
	if idx.AssignmentCount(staffID) != 1 {
		t.Errorf("count = %d, want 1", idx.AssignmentCount(staffID))
	}
}
