package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sector is an operating-room grouping with its own staffing rules.
type Sector struct {
	BaseModel
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
	Site string `json:"site,omitempty" db:"site"`
}

// Room is an operating room inside a sector.
type Room struct {
	BaseModel
	SectorID          uuid.UUID `json:"sector_id" db:"sector_id"`
	Name              string    `json:"name" db:"name"`
	RequiredSpecialty string    `json:"required_specialty,omitempty" db:"required_specialty"`
}

// SectorRule holds the per-sector constraint parameters.
type SectorRule struct {
	BaseModel
	SectorID              uuid.UUID `json:"sector_id" db:"sector_id"`
	MaxRoomsPerSupervisor int       `json:"max_rooms_per_supervisor" db:"max_rooms_per_supervisor"`
	MinimumStaff          int       `json:"minimum_staff" db:"minimum_staff"`
	RequiredSpecialties   []string  `json:"required_specialties,omitempty" db:"required_specialties"`
}

// DefaultMaxRoomsPerSupervisor applies when a sector rule leaves the
// supervision limit unset.
const DefaultMaxRoomsPerSupervisor = 3

// MaxRooms returns the effective supervision limit.
func (r *SectorRule) MaxRooms() int {
	if r.MaxRoomsPerSupervisor <= 0 {
		return DefaultMaxRoomsPerSupervisor
	}
	return r.MaxRoomsPerSupervisor
}

// AssignmentSlot is the atomic schedulable unit.
type AssignmentSlot struct {
	Date     string    `json:"date"` // YYYY-MM-DD
	Period   Period    `json:"period"`
	RoomID   uuid.UUID `json:"room_id"`
	SectorID uuid.UUID `json:"sector_id"`
}

// Key returns a stable identity for the slot.
func (s AssignmentSlot) Key() string {
	return fmt.Sprintf("%s|%s|%s", s.Date, s.Period, s.RoomID)
}

// OverlapsTime reports whether two slots occupy common time, regardless of
// room.
func (s AssignmentSlot) OverlapsTime(other AssignmentSlot) bool {
	return s.Date == other.Date && s.Period.Overlaps(other.Period)
}

// AssignmentRole is the role a staff member holds in a slot.
type AssignmentRole string

const (
	AssignmentSupervisor AssignmentRole = "supervisor"
	AssignmentSecondary  AssignmentRole = "secondary"
	AssignmentOperator   AssignmentRole = "operator"
)

// Assignment binds a staff member to a slot with a role.
type Assignment struct {
	BaseModel
	Slot    AssignmentSlot `json:"slot" db:"-"`
	StaffID uuid.UUID      `json:"staff_id" db:"staff_id"`
	Role    AssignmentRole `json:"role" db:"role"`
	Note    string         `json:"note,omitempty" db:"note"`
}

// OverlapsTime reports whether two assignments occupy common time for
// double-booking purposes.
func (a *Assignment) OverlapsTime(other *Assignment) bool {
	return a.Slot.OverlapsTime(other.Slot)
}

// ConflictType classifies a detected conflict.
type ConflictType string

const (
	ConflictLeaveOverlap      ConflictType = "leave_overlap"
	ConflictDoubleBooking     ConflictType = "double_booking"
	ConflictSupervisionLimit  ConflictType = "supervision_limit"
	ConflictMinimumStaff      ConflictType = "minimum_staff"
	ConflictSpecialtyMismatch ConflictType = "specialty_mismatch"
)

// Conflict is a detected constraint violation with entity references and a
// human-readable message.
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    Severity     `json:"severity"`
	StaffID     uuid.UUID    `json:"staff_id,omitempty"`
	Date        string       `json:"date,omitempty"`
	Period      Period       `json:"period,omitempty"`
	RoomID      uuid.UUID    `json:"room_id,omitempty"`
	SectorID    uuid.UUID    `json:"sector_id,omitempty"`
	Message     string       `json:"message"`
	Assignments []uuid.UUID  `json:"assignments,omitempty"`
}

// IsBlocking reports whether the conflict blocks publishing.
func (c *Conflict) IsBlocking() bool {
	return c.Severity == SeverityError
}

// GenerationOptions are the flags controlling a generation run.
type GenerationOptions struct {
	IncludeWeekends         bool `json:"include_weekends"`
	RespectPreferences      bool `json:"respect_preferences"`
	BalanceWorkload         bool `json:"balance_workload"`
	StrictConflictDetection bool `json:"strict_conflict_detection"`
	IgnoreConflicts         bool `json:"ignore_conflicts"`
}

// GenerationRequest asks for a planning proposal. Transient, never persisted.
type GenerationRequest struct {
	SectorID  uuid.UUID         `json:"sector_id"`
	DateRange DateRange         `json:"date_range"`
	Options   GenerationOptions `json:"options"`
}

// GenerationStatistics summarizes a run.
type GenerationStatistics struct {
	TotalSlots      int           `json:"total_slots"`
	AssignedSlots   int           `json:"assigned_slots"`
	UnassignedSlots int           `json:"unassigned_slots"`
	ConflictCount   int           `json:"conflict_count"`
	Duration        time.Duration `json:"duration"`
}

// GenerationResult is the proposal returned by a run. Every slot left
// unassigned has a matching Conflict explaining why.
type GenerationResult struct {
	SectorID    uuid.UUID            `json:"sector_id"`
	DateRange   DateRange            `json:"date_range"`
	Assignments []*Assignment        `json:"assignments"`
	Conflicts   []*Conflict          `json:"conflicts"`
	StaffCounts map[uuid.UUID]int    `json:"staff_counts,omitempty"`
	Statistics  GenerationStatistics `json:"statistics"`
}

// HasBlockingConflicts reports whether any conflict is error level.
func (r *GenerationResult) HasBlockingConflicts() bool {
	for _, c := range r.Conflicts {
		if c.IsBlocking() {
			return true
		}
	}
	return false
}

// PlanningStatus is the lifecycle state of a persisted planning.
type PlanningStatus string

const (
	PlanningDraft     PlanningStatus = "draft"
	PlanningPublished PlanningStatus = "published"
)

// Planning is a persisted published result. Once published its assignments
// are read-mostly.
type Planning struct {
	BaseModel
	SectorID  uuid.UUID      `json:"sector_id" db:"sector_id"`
	DateRange DateRange      `json:"date_range" db:"-"`
	Status    PlanningStatus `json:"status" db:"status"`
	Version   int            `json:"version" db:"version"`
}
