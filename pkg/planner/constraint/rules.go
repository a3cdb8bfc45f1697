package constraint

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/availability"
)

// AvailabilityRule reports assignments of staff who are on leave, on call,
// or outside their work pattern. Overlaps with other assignments are the
// double booking rule's concern.
type AvailabilityRule struct{}

// Name implements Rule.
func (r *AvailabilityRule) Name() string { return "staff availability" }

// Type implements Rule.
func (r *AvailabilityRule) Type() model.ConflictType { return model.ConflictLeaveOverlap }

// EvaluateAssignment implements Rule.
func (r *AvailabilityRule) EvaluateAssignment(ctx *Context, a *model.Assignment) []*model.Conflict {
	reason, blocked := ctx.Availability.UnavailableReason(a.StaffID, a.Slot.Date, a.Slot.Period)
	if !blocked {
		return nil
	}
	return []*model.Conflict{r.conflict(ctx, a, reason)}
}

// Evaluate implements Rule.
func (r *AvailabilityRule) Evaluate(ctx *Context) []*model.Conflict {
	var conflicts []*model.Conflict
	for _, a := range ctx.Assignments() {
		conflicts = append(conflicts, r.EvaluateAssignment(ctx, a)...)
	}
	return conflicts
}

func (r *AvailabilityRule) conflict(ctx *Context, a *model.Assignment, reason availability.Reason) *model.Conflict {
	name := a.StaffID.String()
	if s := ctx.Staff(a.StaffID); s != nil {
		name = s.Name
	}
	var msg string
	switch reason {
	case availability.ReasonOnCall:
		msg = fmt.Sprintf("%s is on call duty on %s", name, a.Slot.Date)
	case availability.ReasonOffPattern:
		msg = fmt.Sprintf("%s does not work on %s per their work pattern", name, a.Slot.Date)
	default:
		msg = fmt.Sprintf("%s has a blocking leave covering %s (%s)", name, a.Slot.Date, a.Slot.Period)
	}
	return &model.Conflict{
		Type:        model.ConflictLeaveOverlap,
		Severity:    model.SeverityError,
		StaffID:     a.StaffID,
		Date:        a.Slot.Date,
		Period:      a.Slot.Period,
		RoomID:      a.Slot.RoomID,
		SectorID:    a.Slot.SectorID,
		Message:     msg,
		Assignments: []uuid.UUID{a.ID},
	}
}

// DoubleBookingRule reports a staff member holding two assignments with
// overlapping time, and a (slot, role) pair filled twice.
type DoubleBookingRule struct{}

// Name implements Rule.
func (r *DoubleBookingRule) Name() string { return "double booking" }

// Type implements Rule.
func (r *DoubleBookingRule) Type() model.ConflictType { return model.ConflictDoubleBooking }

// EvaluateAssignment implements Rule.
func (r *DoubleBookingRule) EvaluateAssignment(ctx *Context, a *model.Assignment) []*model.Conflict {
	var conflicts []*model.Conflict

	for _, existing := range ctx.StaffAssignments(a.StaffID) {
		if existing.ID == a.ID || !existing.OverlapsTime(a) {
			continue
		}
		if concurrentSupervision(a, existing) {
			continue
		}
		conflicts = append(conflicts, r.overlapConflict(ctx, a, existing))
	}

	for _, existing := range ctx.OverlappingAssignments(a.Slot.Date, a.Slot.Period) {
		if existing.ID == a.ID || existing.StaffID == a.StaffID {
			continue
		}
		if existing.Slot.Key() == a.Slot.Key() && existing.Role == a.Role {
			conflicts = append(conflicts, &model.Conflict{
				Type:        model.ConflictDoubleBooking,
				Severity:    model.SeverityError,
				StaffID:     a.StaffID,
				Date:        a.Slot.Date,
				Period:      a.Slot.Period,
				RoomID:      a.Slot.RoomID,
				SectorID:    a.Slot.SectorID,
				Message:     fmt.Sprintf("role %s already filled for room on %s (%s)", a.Role, a.Slot.Date, a.Slot.Period),
				Assignments: []uuid.UUID{a.ID, existing.ID},
			})
		}
	}

	return conflicts
}

// Evaluate implements Rule. Each overlapping pair is reported once.
func (r *DoubleBookingRule) Evaluate(ctx *Context) []*model.Conflict {
	var conflicts []*model.Conflict
	seen := make(map[string]bool)
	for _, a := range ctx.Assignments() {
		for _, b := range ctx.StaffAssignments(a.StaffID) {
			if a.ID == b.ID || !a.OverlapsTime(b) {
				continue
			}
			if concurrentSupervision(a, b) {
				continue
			}
			key := pairKey(a.ID, b.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			conflicts = append(conflicts, r.overlapConflict(ctx, a, b))
		}
	}
	return conflicts
}

func (r *DoubleBookingRule) overlapConflict(ctx *Context, a, other *model.Assignment) *model.Conflict {
	name := a.StaffID.String()
	if s := ctx.Staff(a.StaffID); s != nil {
		name = s.Name
	}
	return &model.Conflict{
		Type:        model.ConflictDoubleBooking,
		Severity:    model.SeverityError,
		StaffID:     a.StaffID,
		Date:        a.Slot.Date,
		Period:      a.Slot.Period,
		RoomID:      a.Slot.RoomID,
		SectorID:    a.Slot.SectorID,
		Message:     fmt.Sprintf("%s is already assigned on %s (%s)", name, a.Slot.Date, other.Slot.Period),
		Assignments: []uuid.UUID{a.ID, other.ID},
	}
}

// concurrentSupervision reports whether two overlapping assignments are
// both supervision of different rooms, which the supervision limit rule
// bounds instead of the double booking rule.
func concurrentSupervision(a, b *model.Assignment) bool {
	return a.Role == model.AssignmentSupervisor &&
		b.Role == model.AssignmentSupervisor &&
		a.Slot.RoomID != b.Slot.RoomID
}

func pairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as < bs {
		return as + "|" + bs
	}
	return bs + "|" + as
}

// SupervisionLimitRule bounds the number of rooms one supervisor may cover
// in the same period.
type SupervisionLimitRule struct{}

// Name implements Rule.
func (r *SupervisionLimitRule) Name() string { return "supervision limit" }

// Type implements Rule.
func (r *SupervisionLimitRule) Type() model.ConflictType { return model.ConflictSupervisionLimit }

// EvaluateAssignment implements Rule.
func (r *SupervisionLimitRule) EvaluateAssignment(ctx *Context, a *model.Assignment) []*model.Conflict {
	if a.Role != model.AssignmentSupervisor || ctx.Rule == nil {
		return nil
	}
	current := ctx.SupervisedRooms(a.StaffID, a.Slot.Date, a.Slot.Period)
	if current+1 <= ctx.Rule.MaxRooms() {
		return nil
	}
	return []*model.Conflict{r.conflict(ctx, a.StaffID, a.Slot, current+1)}
}

// Evaluate implements Rule.
func (r *SupervisionLimitRule) Evaluate(ctx *Context) []*model.Conflict {
	if ctx.Rule == nil {
		return nil
	}
	var conflicts []*model.Conflict
	seen := make(map[string]bool)
	for _, a := range ctx.Assignments() {
		if a.Role != model.AssignmentSupervisor {
			continue
		}
		key := a.StaffID.String() + "|" + dpKey(a.Slot.Date, a.Slot.Period)
		if seen[key] {
			continue
		}
		seen[key] = true
		count := ctx.SupervisedRooms(a.StaffID, a.Slot.Date, a.Slot.Period)
		if count > ctx.Rule.MaxRooms() {
			conflicts = append(conflicts, r.conflict(ctx, a.StaffID, a.Slot, count))
		}
	}
	return conflicts
}

func (r *SupervisionLimitRule) conflict(ctx *Context, staffID uuid.UUID, slot model.AssignmentSlot, count int) *model.Conflict {
	name := staffID.String()
	if s := ctx.Staff(staffID); s != nil {
		name = s.Name
	}
	return &model.Conflict{
		Type:     model.ConflictSupervisionLimit,
		Severity: model.SeverityError,
		StaffID:  staffID,
		Date:     slot.Date,
		Period:   slot.Period,
		SectorID: slot.SectorID,
		Message: fmt.Sprintf("%s would supervise %d rooms on %s (%s), limit is %d",
			name, count, slot.Date, slot.Period, ctx.Rule.MaxRooms()),
	}
}

// MinimumStaffRule checks sector staffing levels per date and period. It is
// informational for single assignments so understaffing never blocks the
// assignment of the staff who are present.
type MinimumStaffRule struct{}

// Name implements Rule.
func (r *MinimumStaffRule) Name() string { return "minimum staff" }

// Type implements Rule.
func (r *MinimumStaffRule) Type() model.ConflictType { return model.ConflictMinimumStaff }

// EvaluateAssignment implements Rule.
func (r *MinimumStaffRule) EvaluateAssignment(ctx *Context, a *model.Assignment) []*model.Conflict {
	return nil
}

// Evaluate implements Rule. Understaffed slots are warnings, escalated to
// errors under strict conflict detection.
func (r *MinimumStaffRule) Evaluate(ctx *Context) []*model.Conflict {
	if ctx.Rule == nil || ctx.Rule.MinimumStaff <= 0 {
		return nil
	}
	severity := model.SeverityWarning
	if ctx.Options.StrictConflictDetection {
		severity = model.SeverityError
	}

	var conflicts []*model.Conflict
	for _, date := range ctx.DateRange.Days() {
		if !ctx.Options.IncludeWeekends && model.IsWeekend(date) {
			continue
		}
		for _, period := range []model.Period{model.PeriodMorning, model.PeriodAfternoon} {
			present := ctx.StaffPresent(date, period)
			if present >= ctx.Rule.MinimumStaff {
				continue
			}
			conflicts = append(conflicts, &model.Conflict{
				Type:     model.ConflictMinimumStaff,
				Severity: severity,
				Date:     date,
				Period:   period,
				SectorID: ctx.SectorID,
				Message: fmt.Sprintf("sector has %d staff on %s (%s), minimum is %d",
					present, date, period, ctx.Rule.MinimumStaff),
			})
		}
	}
	return conflicts
}

// SpecialtyRule warns when an assigned staff member's specialty does not
// match the room's required specialty.
type SpecialtyRule struct{}

// Name implements Rule.
func (r *SpecialtyRule) Name() string { return "specialty match" }

// Type implements Rule.
func (r *SpecialtyRule) Type() model.ConflictType { return model.ConflictSpecialtyMismatch }

// EvaluateAssignment implements Rule.
func (r *SpecialtyRule) EvaluateAssignment(ctx *Context, a *model.Assignment) []*model.Conflict {
	room := ctx.Room(a.Slot.RoomID)
	staff := ctx.Staff(a.StaffID)
	if room == nil || staff == nil || room.RequiredSpecialty == "" {
		return nil
	}
	if staff.Specialty == room.RequiredSpecialty {
		return nil
	}
	return []*model.Conflict{{
		Type:        model.ConflictSpecialtyMismatch,
		Severity:    model.SeverityWarning,
		StaffID:     a.StaffID,
		Date:        a.Slot.Date,
		Period:      a.Slot.Period,
		RoomID:      a.Slot.RoomID,
		SectorID:    a.Slot.SectorID,
		Message:     fmt.Sprintf("%s (%s) assigned to room requiring %s", staff.Name, staff.Specialty, room.RequiredSpecialty),
		Assignments: []uuid.UUID{a.ID},
	}}
}

// Evaluate implements Rule.
func (r *SpecialtyRule) Evaluate(ctx *Context) []*model.Conflict {
	var conflicts []*model.Conflict
	for _, a := range ctx.Assignments() {
		conflicts = append(conflicts, r.EvaluateAssignment(ctx, a)...)
	}
	return conflicts
}
