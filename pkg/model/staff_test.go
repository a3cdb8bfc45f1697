package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStaffIsActive(t *testing.T) {
	active := &StaffMember{Status: "active"}
	if !active.IsActive() {
		t.Error("active staff should be active")
	}
	inactive := &StaffMember{Status: "inactive"}
	if inactive.IsActive() {
		t.Error("inactive staff should not be active")
	}
}

func TestStaffWorksOn(t *testing.T) {
	fullTime := &StaffMember{WorkPattern: WorkPattern{FullTime: true}}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !fullTime.WorksOn(d) {
			t.Errorf("full-time staff should work on %v", d)
		}
	}

	partTime := &StaffMember{WorkPattern: WorkPattern{
		Weekdays: []time.Weekday{time.Monday, time.Tuesday, time.Thursday},
	}}
	if !partTime.WorksOn(time.Monday) {
		t.Error("part-time staff should work on Monday")
	}
	if partTime.WorksOn(time.Wednesday) {
		t.Error("part-time staff should not work on Wednesday")
	}
}

func TestStaffEligibleForSector(t *testing.T) {
	sectorA := uuid.New()
	sectorB := uuid.New()

	unrestricted := &StaffMember{}
	if !unrestricted.EligibleForSector(sectorA) {
		t.Error("staff with no sector list should be eligible everywhere")
	}

	restricted := &StaffMember{SectorIDs: []uuid.UUID{sectorA}}
	if !restricted.EligibleForSector(sectorA) {
		t.Error("staff should be eligible for a listed sector")
	}
	if restricted.EligibleForSector(sectorB) {
		t.Error("staff should not be eligible for an unlisted sector")
	}
}

func TestStaffPrefersSlot(t *testing.T) {
	s := &StaffMember{Preferences: []SlotPreference{
		{Date: "2025-07-21", Period: PeriodMorning},
		{Date: "2025-07-22", Period: PeriodFullDay},
	}}

	if !s.PrefersSlot("2025-07-21", PeriodMorning) {
		t.Error("exact preference should match")
	}
	if s.PrefersSlot("2025-07-21", PeriodAfternoon) {
		t.Error("morning preference should not match the afternoon")
	}
	if !s.PrefersSlot("2025-07-22", PeriodAfternoon) {
		t.Error("full-day preference should match any period that day")
	}
	if s.PrefersSlot("2025-07-23", PeriodMorning) {
		t.Error("no preference recorded for that day")
	}
}
