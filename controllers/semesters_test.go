package controllers

import (
	"testing"
	"time"

	"attendtrack_go/models"
)

func TestMergeSemesterDates(t *testing.T) {
	stored := &models.Semester{
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "no date changes", start: "", end: "", wantErr: false},
		{name: "both valid", start: "2026-09-01", end: "2026-12-20", wantErr: false},
		{name: "start moved past stored end", start: "2027-01-01", end: "", wantErr: true},
		{name: "end moved before stored start", start: "", end: "2026-07-01", wantErr: true},
		{name: "pair inverted in one request", start: "2026-10-01", end: "2026-09-01", wantErr: true},
		{name: "bad start format", start: "01-08-2026", end: "", wantErr: true},
		{name: "bad end format", start: "", end: "soon", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			updates := map[string]interface{}{}
			err := mergeSemesterDates(stored, tc.start, tc.end, updates)
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.wantErr && tc.start != "" {
				if _, ok := updates["start_date"]; !ok {
					t.Fatal("expected start_date in updates")
				}
			}
		})
	}
}
