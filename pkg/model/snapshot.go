package model

import "github.com/google/uuid"

// PlanningSnapshot is the in-memory view of persisted state a generation
// run operates on. Loaded once per run; the engine never reads storage.
type PlanningSnapshot struct {
	Sector      *Sector        `json:"sector"`
	Rule        *SectorRule    `json:"rule"`
	Rooms       []*Room        `json:"rooms"`
	Staff       []*StaffMember `json:"staff"`
	Leaves      []*LeavePeriod `json:"leaves"`
	Duties      []*DutyRecord  `json:"duties"`
	Assignments []*Assignment  `json:"assignments"` // already persisted for the range
}

// StaffByID returns the staff member with the given ID, or nil.
func (s *PlanningSnapshot) StaffByID(id uuid.UUID) *StaffMember {
	for _, m := range s.Staff {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// RoomByID returns the room with the given ID, or nil.
func (s *PlanningSnapshot) RoomByID(id uuid.UUID) *Room {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}
