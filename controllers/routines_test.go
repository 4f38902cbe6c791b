package controllers

import (
	"testing"

	"attendtrack_go/models"
)

func TestCheckOverlaps(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.RoutineEntry
		expErr  bool
	}{
		{
			name: "disjoint same day",
			entries: []models.RoutineEntry{
				{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"},
				{DayOfWeek: 0, StartTime: "10:00", EndTime: "11:00"},
			},
			expErr: false,
		},
		{
			name: "same times different days",
			entries: []models.RoutineEntry{
				{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"},
				{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
			},
			expErr: false,
		},
		{
			name: "overlap same day",
			entries: []models.RoutineEntry{
				{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:30"},
				{DayOfWeek: 0, StartTime: "10:00", EndTime: "11:00"},
			},
			expErr: true,
		},
		{
			name:    "empty",
			entries: nil,
			expErr:  false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := checkOverlaps(tc.entries)
			if tc.expErr && err == nil {
				t.Fatalf("expected overlap error")
			}
			if !tc.expErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
