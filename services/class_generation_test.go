package services

import (
	"testing"
	"time"

	"attendtrack_go/models"
)

func TestWeekdayIndex(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected int
	}{
		{name: "monday", date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), expected: 0},
		{name: "wednesday", date: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), expected: 2},
		{name: "saturday", date: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), expected: 5},
		{name: "sunday", date: time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), expected: 6},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := WeekdayIndex(tc.date); got != tc.expected {
				t.Fatalf("expected %d for %s, got %d", tc.expected, tc.date.Format("2006-01-02"), got)
			}
		})
	}
}

func TestClipRange(t *testing.T) {
	semStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	semEnd := time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from, to time.Time
		expFrom  time.Time
		expTo    time.Time
		expOK    bool
	}{
		{
			name:    "inside semester",
			from:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			to:      time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
			expFrom: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			expTo:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
			expOK:   true,
		},
		{
			name:    "overhangs both ends",
			from:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			to:      time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC),
			expFrom: semStart,
			expTo:   semEnd,
			expOK:   true,
		},
		{
			name:  "entirely before semester",
			from:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			to:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
			expOK: false,
		},
		{
			name:  "entirely after semester",
			from:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			to:    time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC),
			expOK: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			from, to, ok := clipRange(tc.from, tc.to, semStart, semEnd)
			if ok != tc.expOK {
				t.Fatalf("expected ok=%v, got %v", tc.expOK, ok)
			}
			if !ok {
				return
			}
			if !from.Equal(tc.expFrom) || !to.Equal(tc.expTo) {
				t.Fatalf("expected [%s, %s], got [%s, %s]",
					tc.expFrom.Format("2006-01-02"), tc.expTo.Format("2006-01-02"),
					from.Format("2006-01-02"), to.Format("2006-01-02"))
			}
		})
	}
}

// A routine with one Monday slot expanded over two full weeks must yield
// exactly two records, both absent and both typed routine.
func TestPlanClassSlotsTwoWeeks(t *testing.T) {
	entries := []models.RoutineEntry{
		{
			BaseModel: models.BaseModel{ID: 11},
			SubjectID: 1,
			DayOfWeek: 0,
			StartTime: "09:00",
			EndTime:   "10:30",
		},
	}

	// 2026-09-07 is a Monday.
	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	slots := planClassSlots(entries, from, to)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}

	expectedDates := []time.Time{
		time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
	}
	for i, slot := range slots {
		if !slot.Date.Equal(expectedDates[i]) {
			t.Fatalf("slot %d: expected date %s, got %s",
				i, expectedDates[i].Format("2006-01-02"), slot.Date.Format("2006-01-02"))
		}
		if slot.Status != models.AttendanceStatusAbsent {
			t.Fatalf("slot %d: expected default status absent, got %s", i, slot.Status)
		}
		if slot.AttendanceType != models.AttendanceTypeRoutine {
			t.Fatalf("slot %d: expected type routine, got %s", i, slot.AttendanceType)
		}
		if slot.RoutineEntryID == nil || *slot.RoutineEntryID != 11 {
			t.Fatalf("slot %d: expected routine entry id 11", i)
		}
		if slot.StartTime != "09:00" || slot.EndTime != "10:30" {
			t.Fatalf("slot %d: expected times 09:00-10:30, got %s-%s", i, slot.StartTime, slot.EndTime)
		}
	}
}

func TestPlanClassSlotsMultipleEntries(t *testing.T) {
	entries := []models.RoutineEntry{
		{BaseModel: models.BaseModel{ID: 1}, SubjectID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "10:30"},
		{BaseModel: models.BaseModel{ID: 2}, SubjectID: 2, DayOfWeek: 0, StartTime: "11:00", EndTime: "12:30"},
		{BaseModel: models.BaseModel{ID: 3}, SubjectID: 1, DayOfWeek: 2, StartTime: "09:00", EndTime: "10:30"},
	}

	// One calendar week starting Monday 2026-09-07.
	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	slots := planClassSlots(entries, from, to)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
}

func TestPlanClassSlotsSingleDay(t *testing.T) {
	entries := []models.RoutineEntry{
		{BaseModel: models.BaseModel{ID: 1}, SubjectID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "10:30"},
		{BaseModel: models.BaseModel{ID: 2}, SubjectID: 2, DayOfWeek: 1, StartTime: "11:00", EndTime: "12:30"},
	}

	// A Tuesday: only the Tuesday entry materializes.
	day := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	slots := planClassSlots(entries, day, day)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].SubjectID != 2 {
		t.Fatalf("expected subject 2, got %d", slots[0].SubjectID)
	}
}

func TestPlanClassSlotsNoMatchingDays(t *testing.T) {
	entries := []models.RoutineEntry{
		{BaseModel: models.BaseModel{ID: 1}, SubjectID: 1, DayOfWeek: 5, StartTime: "09:00", EndTime: "10:30"},
	}

	// Monday through Friday contains no Saturday.
	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)

	if slots := planClassSlots(entries, from, to); len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}
