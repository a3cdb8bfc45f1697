// Package model defines the core data model of the planning engine.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

// Period is the schedulable part of a day.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodFullDay   Period = "full_day"
)

// Overlaps reports whether two periods occupy common time within a day.
// A full day overlaps everything.
func (p Period) Overlaps(other Period) bool {
	if p == PeriodFullDay || other == PeriodFullDay {
		return true
	}
	return p == other
}

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodMorning, PeriodAfternoon, PeriodFullDay:
		return true
	}
	return false
}

// Severity grades a conflict.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// BaseModel carries the common entity fields.
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel creates a BaseModel with a fresh ID.
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DateRange is an inclusive date range.
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Validate checks format and ordering.
func (dr DateRange) Validate() error {
	start, err := time.Parse(DateLayout, dr.StartDate)
	if err != nil {
		return err
	}
	end, err := time.Parse(DateLayout, dr.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return errEndBeforeStart
	}
	return nil
}

// Contains reports whether date falls inside the range, both ends inclusive.
func (dr DateRange) Contains(date string) bool {
	return dr.StartDate <= date && date <= dr.EndDate
}

// Days returns every date in the range in chronological order.
func (dr DateRange) Days() []string {
	start, err := time.Parse(DateLayout, dr.StartDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse(DateLayout, dr.EndDate)
	if err != nil {
		return nil
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// IsWeekend reports whether a YYYY-MM-DD date is Saturday or Sunday.
func IsWeekend(date string) bool {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Weekday returns the weekday of a YYYY-MM-DD date.
func Weekday(date string) (time.Weekday, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, err
	}
	return d.Weekday(), nil
}

type rangeError string

func (e rangeError) Error() string { return string(e) }

var errEndBeforeStart = rangeError("end date before start date")
