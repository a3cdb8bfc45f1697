// Package availability answers "is this staff member free on that date and
// period" from a snapshot loaded once per generation run.
package availability

import (
	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
)

// Reason explains why a staff member is unavailable.
type Reason string

const (
	ReasonLeave      Reason = "LEAVE"
	ReasonAssigned   Reason = "ASSIGNED"
	ReasonOnCall     Reason = "ON_CALL"
	ReasonOffPattern Reason = "OFF_PATTERN"
)

// Availability is the answer for one (staff, date, period) query.
type Availability struct {
	Available bool   `json:"available"`
	Reason    Reason `json:"reason,omitempty"`
}

// Index resolves availability queries against bulk-loaded records. Build it
// once per run; per-slot queries are map lookups, never storage reads.
type Index struct {
	staff         map[uuid.UUID]*model.StaffMember
	leavesByStaff map[uuid.UUID][]*model.LeavePeriod
	dutiesByStaff map[uuid.UUID]map[string]bool
	assignments   map[uuid.UUID][]*model.Assignment
}

// NewIndex builds the index from a snapshot. Rejected and cancelled leaves
// are dropped at build time so they can never block.
func NewIndex(snap *model.PlanningSnapshot) *Index {
	idx := &Index{
		staff:         make(map[uuid.UUID]*model.StaffMember),
		leavesByStaff: make(map[uuid.UUID][]*model.LeavePeriod),
		dutiesByStaff: make(map[uuid.UUID]map[string]bool),
		assignments:   make(map[uuid.UUID][]*model.Assignment),
	}
	for _, s := range snap.Staff {
		idx.staff[s.ID] = s
	}
	for _, l := range snap.Leaves {
		if !l.IsBlocking() {
			continue
		}
		idx.leavesByStaff[l.StaffID] = append(idx.leavesByStaff[l.StaffID], l)
	}
	for _, d := range snap.Duties {
		if idx.dutiesByStaff[d.StaffID] == nil {
			idx.dutiesByStaff[d.StaffID] = make(map[string]bool)
		}
		idx.dutiesByStaff[d.StaffID][d.Date] = true
	}
	for _, a := range snap.Assignments {
		idx.assignments[a.StaffID] = append(idx.assignments[a.StaffID], a)
	}
	return idx
}

// AddAssignment records a tentative assignment so later queries in the same
// run see it.
func (idx *Index) AddAssignment(a *model.Assignment) {
	idx.assignments[a.StaffID] = append(idx.assignments[a.StaffID], a)
}

// RemoveAssignment drops a tentative assignment by ID.
func (idx *Index) RemoveAssignment(a *model.Assignment) {
	list := idx.assignments[a.StaffID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].ID == a.ID {
			idx.assignments[a.StaffID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// IsAvailable answers the availability query. Leave ranges are inclusive of
// both endpoints, and leave periods are honored at period granularity.
func (idx *Index) IsAvailable(staffID uuid.UUID, date string, period model.Period) Availability {
	if reason, blocked := idx.UnavailableReason(staffID, date, period); blocked {
		return Availability{Available: false, Reason: reason}
	}

	query := model.AssignmentSlot{Date: date, Period: period}
	for _, a := range idx.assignments[staffID] {
		if a.Slot.OverlapsTime(query) {
			return Availability{Available: false, Reason: ReasonAssigned}
		}
	}

	return Availability{Available: true}
}

// FreeFor answers whether the staff member can take a specific slot and
// role. Supervisors cover several rooms in the same period, so an existing
// supervision in another room does not block a further supervision; the
// supervision limit rule bounds how far that goes.
func (idx *Index) FreeFor(staffID uuid.UUID, slot model.AssignmentSlot, role model.AssignmentRole) Availability {
	if reason, blocked := idx.UnavailableReason(staffID, slot.Date, slot.Period); blocked {
		return Availability{Available: false, Reason: reason}
	}

	for _, a := range idx.assignments[staffID] {
		if !a.Slot.OverlapsTime(slot) {
			continue
		}
		if role == model.AssignmentSupervisor && a.Role == model.AssignmentSupervisor && a.Slot.RoomID != slot.RoomID {
			continue
		}
		return Availability{Available: false, Reason: ReasonAssigned}
	}

	return Availability{Available: true}
}

// UnavailableReason checks work pattern, leaves and duties only, ignoring
// assignments. Used when validating a state whose assignments are already
// indexed, where IsAvailable would report the assignment against itself.
func (idx *Index) UnavailableReason(staffID uuid.UUID, date string, period model.Period) (Reason, bool) {
	if s, ok := idx.staff[staffID]; ok {
		wd, err := model.Weekday(date)
		if err == nil && !s.WorksOn(wd) {
			return ReasonOffPattern, true
		}
	}
	for _, l := range idx.leavesByStaff[staffID] {
		if l.Blocks(date, period) {
			return ReasonLeave, true
		}
	}
	if idx.dutiesByStaff[staffID][date] {
		return ReasonOnCall, true
	}
	return "", false
}

// AssignmentCount returns the number of assignments currently held by a
// staff member. Used for workload balancing.
func (idx *Index) AssignmentCount(staffID uuid.UUID) int {
	return len(idx.assignments[staffID])
}

// Assignments returns the assignments currently held by a staff member.
func (idx *Index) Assignments(staffID uuid.UUID) []*model.Assignment {
	return idx.assignments[staffID]
}
