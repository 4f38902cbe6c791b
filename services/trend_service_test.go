package services

import (
	"testing"
	"time"

	"attendtrack_go/models"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected time.Time
	}{
		{
			name:     "monday maps to itself",
			date:     time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "sunday maps back to monday",
			date:     time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "midweek",
			date:     time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := weekStart(tc.date); !got.Equal(tc.expected) {
				t.Fatalf("expected %s, got %s", tc.expected.Format("2006-01-02"), got.Format("2006-01-02"))
			}
		})
	}
}

func TestMonthStart(t *testing.T) {
	got := monthStart(time.Date(2026, 9, 23, 0, 0, 0, 0, time.UTC))
	expected := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Fatalf("expected %s, got %s", expected.Format("2006-01-02"), got.Format("2006-01-02"))
	}
}

func TestBuildTrendWeeklyBuckets(t *testing.T) {
	records := []models.AttendanceRecord{
		// Week of 2026-09-07: 2 present, 1 absent.
		{Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusPresent},
		{Date: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusPresent},
		{Date: time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusAbsent},
		// Week of 2026-09-14: 1 present.
		{Date: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusPresent},
	}

	points := buildTrend(records, 8, weekStart, func(ts time.Time) string {
		return ts.Format("2006-01-02")
	})

	if len(points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(points))
	}
	if points[0].Label != "2026-09-07" || points[1].Label != "2026-09-14" {
		t.Fatalf("expected oldest-first ordering, got %s then %s", points[0].Label, points[1].Label)
	}
	if points[0].Conducted != 3 || points[0].Present != 2 {
		t.Fatalf("first bucket: expected 2/3, got %d/%d", points[0].Present, points[0].Conducted)
	}
	if points[0].Percentage != 66.67 {
		t.Fatalf("first bucket: expected 66.67%%, got %.2f%%", points[0].Percentage)
	}
	if points[1].Percentage != 100.00 {
		t.Fatalf("second bucket: expected 100.00%%, got %.2f%%", points[1].Percentage)
	}
}

// A bucket where every class was cancelled or a holiday is omitted rather
// than rendered as 0%.
func TestBuildTrendSkipsZeroConductedBuckets(t *testing.T) {
	records := []models.AttendanceRecord{
		{Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusCancelled},
		{Date: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusAbsent, IsHoliday: true},
		{Date: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusPresent},
	}

	points := buildTrend(records, 8, weekStart, func(ts time.Time) string {
		return ts.Format("2006-01-02")
	})

	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}
	if points[0].Label != "2026-09-14" {
		t.Fatalf("expected the all-cancelled week to be skipped, got %s", points[0].Label)
	}
}

func TestBuildTrendCapsTrailingBuckets(t *testing.T) {
	var records []models.AttendanceRecord
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) // a Monday
	for week := 0; week < 5; week++ {
		records = append(records, models.AttendanceRecord{
			Date:   start.AddDate(0, 0, 7*week),
			Status: models.AttendanceStatusPresent,
		})
	}

	points := buildTrend(records, 3, weekStart, func(ts time.Time) string {
		return ts.Format("2006-01-02")
	})

	if len(points) != 3 {
		t.Fatalf("expected 3 trailing buckets, got %d", len(points))
	}
	if points[0].Label != "2026-06-15" {
		t.Fatalf("expected the two oldest weeks dropped, first bucket %s", points[0].Label)
	}
}

func TestBuildAlerts(t *testing.T) {
	subjects := []SubjectAnalytics{
		{SubjectID: 1, SubjectName: "Safe Subject", AttendancePercentage: 92.50, MinRequiredPercentage: 75, Status: ComplianceSafe},
		{SubjectID: 2, SubjectName: "Borderline Subject", AttendancePercentage: 77.00, MinRequiredPercentage: 75, Status: ComplianceBorderline, ClassesCanMiss: 1},
		{SubjectID: 3, SubjectName: "Shortage Subject", AttendancePercentage: 50.00, MinRequiredPercentage: 75, Status: ComplianceShortage, ClassesNeedToAttend: 20},
	}

	alerts := buildAlerts(subjects)

	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}

	// Worst percentage first.
	if alerts[0].SubjectID != 3 || alerts[0].Type != AlertTypeDanger {
		t.Fatalf("expected shortage alert first, got subject %d type %s", alerts[0].SubjectID, alerts[0].Type)
	}
	if alerts[1].SubjectID != 2 || alerts[1].Type != AlertTypeWarning {
		t.Fatalf("expected borderline alert second, got subject %d type %s", alerts[1].SubjectID, alerts[1].Type)
	}
	if alerts[0].Message == "" || alerts[1].Message == "" {
		t.Fatalf("expected non-empty alert messages")
	}
}

func TestBuildAlertsUnrecoverableShortage(t *testing.T) {
	subjects := []SubjectAnalytics{
		{SubjectID: 1, SubjectName: "Lost Cause", AttendancePercentage: 90.00, MinRequiredPercentage: 100, Status: ComplianceShortage, ClassesNeedToAttend: ProjectionUnbounded},
	}

	alerts := buildAlerts(subjects)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Type != AlertTypeDanger {
		t.Fatalf("expected danger alert, got %s", alerts[0].Type)
	}
}

func TestBuildAlertsAllSafe(t *testing.T) {
	subjects := []SubjectAnalytics{
		{SubjectID: 1, AttendancePercentage: 95, MinRequiredPercentage: 75, Status: ComplianceSafe},
	}
	if alerts := buildAlerts(subjects); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(alerts))
	}
}
