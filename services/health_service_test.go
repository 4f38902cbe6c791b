package services

import (
	"testing"
	"time"
)

func TestCombineStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		candidate string
		expected  string
	}{
		{name: "ok stays ok", current: overallStatusOK, candidate: overallStatusOK, expected: overallStatusOK},
		{name: "degraded wins over ok", current: overallStatusOK, candidate: overallStatusDegraded, expected: overallStatusDegraded},
		{name: "critical wins over degraded", current: overallStatusDegraded, candidate: overallStatusCritical, expected: overallStatusCritical},
		{name: "critical not downgraded", current: overallStatusCritical, candidate: overallStatusOK, expected: overallStatusCritical},
		{name: "unknown current treated as ok", current: "bogus", candidate: overallStatusDegraded, expected: overallStatusDegraded},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := combineStatus(tc.current, tc.candidate); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{name: "zero", d: 0, expected: "0s"},
		{name: "seconds", d: 42 * time.Second, expected: "42s"},
		{name: "minutes and seconds", d: 2*time.Minute + 5*time.Second, expected: "2m 5s"},
		{name: "days and hours", d: 25 * time.Hour, expected: "1d 1h"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := humanizeDuration(tc.d); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
