package services

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// Validation runs before any storage access, so these paths are exercised
// without a database behind the service.
func TestCreateAdHocValidation(t *testing.T) {
	as := &AttendanceService{}
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		start  string
		end    string
		status string
		field  string
	}{
		{name: "unknown status", start: "10:00", end: "11:00", status: "late", field: "status"},
		{name: "end before start", start: "11:00", end: "10:00", status: "present", field: "end_time"},
		{name: "end equals start", start: "10:00", end: "10:00", status: "present", field: "end_time"},
		{name: "malformed start", start: "10h00", end: "11:00", status: "present", field: "start_time"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := as.CreateAdHoc(1, date, tc.start, tc.end, tc.status, "")
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	as := &AttendanceService{}
	if _, err := as.UpdateStatus(1, "excused", ""); !IsValidationError(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

// An identity collision is reported through the duplicate sentinel even
// when wrapped with context, which is how the HTTP layer maps it to a
// conflict response instead of a server error.
func TestDuplicateRecordErrorWrapping(t *testing.T) {
	err := fmt.Errorf("%w for subject %d on %s at %s", ErrDuplicateRecord, 3, "2026-09-07", "10:00")
	if !errors.Is(err, ErrDuplicateRecord) {
		t.Fatal("wrapped duplicate error should match the sentinel")
	}
}
