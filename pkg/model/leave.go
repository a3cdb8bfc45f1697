package model

import "github.com/google/uuid"

// LeaveStatus is the workflow state of a leave request.
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "pending"
	LeaveApproved  LeaveStatus = "approved"
	LeaveRejected  LeaveStatus = "rejected"
	LeaveCancelled LeaveStatus = "cancelled"
)

// LeaveType classifies a leave request.
type LeaveType string

const (
	LeaveVacation LeaveType = "vacation"
	LeaveSick     LeaveType = "sick"
	LeaveTraining LeaveType = "training"
	LeaveOther    LeaveType = "other"
)

// LeavePeriod is a leave request over an inclusive date range. A leave may
// cover only part of each day via Period.
type LeavePeriod struct {
	BaseModel
	StaffID   uuid.UUID   `json:"staff_id" db:"staff_id"`
	StartDate string      `json:"start_date" db:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string      `json:"end_date" db:"end_date"`     // YYYY-MM-DD, inclusive
	Period    Period      `json:"period" db:"period"`
	Type      LeaveType   `json:"type" db:"type"`
	Status    LeaveStatus `json:"status" db:"status"`
	Reason    string      `json:"reason,omitempty" db:"reason"`
}

// IsBlocking reports whether the status counts against availability.
// Rejected and cancelled leaves never block.
func (l *LeavePeriod) IsBlocking() bool {
	return l.Status == LeavePending || l.Status == LeaveApproved
}

// CoversDate reports whether the date falls in the leave range, both
// endpoints inclusive.
func (l *LeavePeriod) CoversDate(date string) bool {
	return l.StartDate <= date && date <= l.EndDate
}

// Blocks reports whether this leave makes the staff member unavailable for
// the given date and period.
func (l *LeavePeriod) Blocks(date string, period Period) bool {
	return l.IsBlocking() && l.CoversDate(date) && l.Period.Overlaps(period)
}

// DutyType classifies an on-call duty record.
type DutyType string

const (
	DutyOnCall DutyType = "on_call"
	DutyGuard  DutyType = "guard"
)

// DutyRecord marks a staff member as on duty for a whole day.
type DutyRecord struct {
	BaseModel
	StaffID uuid.UUID `json:"staff_id" db:"staff_id"`
	Date    string    `json:"date" db:"date"` // YYYY-MM-DD
	Type    DutyType  `json:"type" db:"type"`
}
