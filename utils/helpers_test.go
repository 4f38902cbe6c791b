package utils

import (
	"testing"
	"time"
)

func TestNormalizeClockTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already canonical", input: "09:30", expected: "09:30"},
		{name: "single digit hour", input: "9:30", expected: "09:30"},
		{name: "single digit minute", input: "14:5", expected: "14:05"},
		{name: "whitespace", input: " 08:00 ", expected: "08:00"},
		{name: "midnight", input: "0:0", expected: "00:00"},
		{name: "end of day", input: "23:59", expected: "23:59"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeClockTime(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNormalizeClockTimeInvalid(t *testing.T) {
	inputs := []string{"", "9", "25:00", "12:60", "ab:cd", "12:30:00"}
	for _, input := range inputs {
		if _, err := NormalizeClockTime(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestClockTimesOverlap(t *testing.T) {
	tests := []struct {
		name     string
		s1, e1   string
		s2, e2   string
		expected bool
	}{
		{name: "disjoint", s1: "09:00", e1: "10:00", s2: "10:00", e2: "11:00", expected: false},
		{name: "back to back reversed", s1: "10:00", e1: "11:00", s2: "09:00", e2: "10:00", expected: false},
		{name: "partial overlap", s1: "09:00", e1: "10:30", s2: "10:00", e2: "11:00", expected: true},
		{name: "containment", s1: "09:00", e1: "12:00", s2: "10:00", e2: "11:00", expected: true},
		{name: "identical", s1: "09:00", e1: "10:00", s2: "09:00", e2: "10:00", expected: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := ClockTimesOverlap(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-09-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Fatalf("expected %s, got %s", expected, got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	inputs := []string{"", "07-09-2026", "2026/09/07", "2026-13-01", "not a date"}
	for _, input := range inputs {
		if _, err := ParseDate(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestIsValidAttendanceStatus(t *testing.T) {
	for _, status := range []string{"present", "absent", "cancelled"} {
		if !IsValidAttendanceStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	for _, status := range []string{"", "Present", "holiday", "late"} {
		if IsValidAttendanceStatus(status) {
			t.Fatalf("expected %q to be invalid", status)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckPassword("secret123", hash); err != nil {
		t.Fatalf("expected password to verify: %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Fatalf("expected mismatch error")
	}
}
