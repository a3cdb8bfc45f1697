package model

import (
	"testing"
	"time"
)

func TestPeriodOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Period
		want bool
	}{
		{"morning vs morning", PeriodMorning, PeriodMorning, true},
		{"morning vs afternoon", PeriodMorning, PeriodAfternoon, false},
		{"afternoon vs morning", PeriodAfternoon, PeriodMorning, false},
		{"full day vs morning", PeriodFullDay, PeriodMorning, true},
		{"full day vs afternoon", PeriodFullDay, PeriodAfternoon, true},
		{"morning vs full day", PeriodMorning, PeriodFullDay, true},
		{"full day vs full day", PeriodFullDay, PeriodFullDay, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPeriodValid(t *testing.T) {
	for _, p := range []Period{PeriodMorning, PeriodAfternoon, PeriodFullDay} {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Period("evening").Valid() {
		t.Error("evening should not be valid")
	}
	if Period("").Valid() {
		t.Error("empty period should not be valid")
	}
}

func TestDateRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		dr      DateRange
		wantErr bool
	}{
		{"valid range", DateRange{"2025-07-01", "2025-07-14"}, false},
		{"single day", DateRange{"2025-07-01", "2025-07-01"}, false},
		{"end before start", DateRange{"2025-07-14", "2025-07-01"}, true},
		{"bad start format", DateRange{"01/07/2025", "2025-07-14"}, true},
		{"bad end format", DateRange{"2025-07-01", "14-07"}, true},
		{"empty", DateRange{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	dr := DateRange{StartDate: "2025-07-10", EndDate: "2025-07-20"}

	// Both endpoints are inclusive.
	if !dr.Contains("2025-07-10") {
		t.Error("start date should be contained")
	}
	if !dr.Contains("2025-07-20") {
		t.Error("end date should be contained")
	}
	if !dr.Contains("2025-07-15") {
		t.Error("middle date should be contained")
	}
	if dr.Contains("2025-07-09") {
		t.Error("day before start should not be contained")
	}
	if dr.Contains("2025-07-21") {
		t.Error("day after end should not be contained")
	}
}

func TestDateRangeDays(t *testing.T) {
	dr := DateRange{StartDate: "2025-07-10", EndDate: "2025-07-13"}
	days := dr.Days()

	want := []string{"2025-07-10", "2025-07-11", "2025-07-12", "2025-07-13"}
	if len(days) != len(want) {
		t.Fatalf("Days() returned %d days, want %d", len(days), len(want))
	}
	for i, d := range want {
		if days[i] != d {
			t.Errorf("Days()[%d] = %s, want %s", i, days[i], d)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	// 2025-07-19 is a Saturday, 2025-07-20 a Sunday, 2025-07-21 a Monday.
	if !IsWeekend("2025-07-19") {
		t.Error("2025-07-19 is a Saturday")
	}
	if !IsWeekend("2025-07-20") {
		t.Error("2025-07-20 is a Sunday")
	}
	if IsWeekend("2025-07-21") {
		t.Error("2025-07-21 is a Monday")
	}
	if IsWeekend("not-a-date") {
		t.Error("unparseable dates should not count as weekend")
	}
}

func TestWeekday(t *testing.T) {
	wd, err := Weekday("2025-07-21")
	if err != nil {
		t.Fatalf("Weekday() error = %v", err)
	}
	if wd != time.Monday {
		t.Errorf("Weekday(2025-07-21) = %v, want Monday", wd)
	}

	if _, err := Weekday("21/07/2025"); err == nil {
		t.Error("expected error for bad format")
	}
}

func TestAssignmentSlotOverlapsTime(t *testing.T) {
	roomA := AssignmentSlot{Date: "2025-07-21", Period: PeriodMorning}
	roomB := AssignmentSlot{Date: "2025-07-21", Period: PeriodMorning}
	if !roomA.OverlapsTime(roomB) {
		t.Error("same date and period should overlap regardless of room")
	}

	afternoon := AssignmentSlot{Date: "2025-07-21", Period: PeriodAfternoon}
	if roomA.OverlapsTime(afternoon) {
		t.Error("morning and afternoon should not overlap")
	}

	fullDay := AssignmentSlot{Date: "2025-07-21", Period: PeriodFullDay}
	if !roomA.OverlapsTime(fullDay) || !afternoon.OverlapsTime(fullDay) {
		t.Error("full day should overlap both half days")
	}

	otherDay := AssignmentSlot{Date: "2025-07-22", Period: PeriodMorning}
	if roomA.OverlapsTime(otherDay) {
		t.Error("different dates should never overlap")
	}
}

func TestSectorRuleMaxRooms(t *testing.T) {
	unset := &SectorRule{}
	if got := unset.MaxRooms(); got != DefaultMaxRoomsPerSupervisor {
		t.Errorf("unset rule MaxRooms() = %d, want %d", got, DefaultMaxRoomsPerSupervisor)
	}

	set := &SectorRule{MaxRoomsPerSupervisor: 2}
	if got := set.MaxRooms(); got != 2 {
		t.Errorf("MaxRooms() = %d, want 2", got)
	}
}
