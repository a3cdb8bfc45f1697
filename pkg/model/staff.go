package model

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole is the clinical role of a staff member.
type StaffRole string

const (
	RoleSurgeon          StaffRole = "surgeon"
	RoleAnesthetist      StaffRole = "anesthetist"
	RoleNurseAnesthetist StaffRole = "nurse_anesthetist"
)

// StaffMember is a schedulable person. Treated as immutable reference data
// during a generation run.
type StaffMember struct {
	BaseModel
	Name      string      `json:"name" db:"name"`
	Role      StaffRole   `json:"role" db:"role"`
	Specialty string      `json:"specialty,omitempty" db:"specialty"`
	SectorIDs []uuid.UUID `json:"sector_ids" db:"sector_ids"`
	Status    string      `json:"status" db:"status"` // active/inactive

	WorkPattern WorkPattern      `json:"work_pattern" db:"work_pattern"`
	Preferences []SlotPreference `json:"preferences,omitempty" db:"preferences"`
}

// WorkPattern describes which weekdays a staff member works.
type WorkPattern struct {
	FullTime bool           `json:"full_time"`
	Weekdays []time.Weekday `json:"weekdays,omitempty"` // part-time only
}

// SlotPreference is a recorded wish to work a given date and period.
type SlotPreference struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Period Period `json:"period"`
	RoomID string `json:"room_id,omitempty"`
}

// IsActive reports whether the staff member is schedulable at all.
func (s *StaffMember) IsActive() bool {
	return s.Status == "active"
}

// WorksOn reports whether the work pattern covers the given weekday.
// Full-time staff work every weekday including weekends when the planning
// asks for them.
func (s *StaffMember) WorksOn(wd time.Weekday) bool {
	if s.WorkPattern.FullTime {
		return true
	}
	for _, d := range s.WorkPattern.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// EligibleForSector reports whether the staff member may work in the sector.
// An empty list means no restriction.
func (s *StaffMember) EligibleForSector(sectorID uuid.UUID) bool {
	if len(s.SectorIDs) == 0 {
		return true
	}
	for _, id := range s.SectorIDs {
		if id == sectorID {
			return true
		}
	}
	return false
}

// PrefersSlot reports whether a recorded preference overlaps the slot.
func (s *StaffMember) PrefersSlot(date string, period Period) bool {
	for _, p := range s.Preferences {
		if p.Date == date && p.Period.Overlaps(period) {
			return true
		}
	}
	return false
}
