package services

import (
	"testing"
	"time"

	"attendtrack_go/models"
)

func TestAttendancePercentage(t *testing.T) {
	tests := []struct {
		name      string
		attended  int
		conducted int
		expected  float64
	}{
		{name: "regular", attended: 40, conducted: 45, expected: 88.89},
		{name: "half", attended: 10, conducted: 20, expected: 50.00},
		{name: "perfect", attended: 20, conducted: 20, expected: 100.00},
		{name: "zero conducted", attended: 0, conducted: 0, expected: 0},
		{name: "all absent", attended: 0, conducted: 12, expected: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Round2(attendancePercentage(tc.attended, tc.conducted))
			if got != tc.expected {
				t.Fatalf("expected %.2f, got %.2f", tc.expected, got)
			}
		})
	}
}

func TestClassifyAttendance(t *testing.T) {
	tests := []struct {
		name     string
		pct      float64
		min      float64
		expected string
	}{
		{name: "well above", pct: 90, min: 75, expected: ComplianceSafe},
		{name: "exactly at margin boundary", pct: 80, min: 75, expected: ComplianceSafe},
		{name: "just under margin", pct: 79.99, min: 75, expected: ComplianceBorderline},
		{name: "exactly at minimum", pct: 75, min: 75, expected: ComplianceBorderline},
		{name: "just under minimum", pct: 74.99, min: 75, expected: ComplianceShortage},
		// The bands are pure formulas even at min=0: 0% sits inside the
		// borderline margin, 5% and up clears it.
		{name: "zero minimum, zero percentage", pct: 0, min: 0, expected: ComplianceBorderline},
		{name: "zero minimum, at margin", pct: 5, min: 0, expected: ComplianceSafe},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := classifyAttendance(tc.pct, tc.min)
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestClassesCanMiss(t *testing.T) {
	tests := []struct {
		name      string
		attended  int
		conducted int
		min       float64
		expected  int
	}{
		{name: "comfortable lead", attended: 40, conducted: 45, min: 75, expected: 8},
		{name: "below minimum", attended: 10, conducted: 20, min: 75, expected: 0},
		{name: "no minimum", attended: 5, conducted: 10, min: 0, expected: ProjectionUnbounded},
		{name: "hundred percent minimum, clean record", attended: 10, conducted: 10, min: 100, expected: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := classesCanMiss(tc.attended, tc.conducted, tc.min)
			if got != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

// The "comfortable lead" projection above must be the exact fixed point:
// missing n more classes keeps compliance, missing n+1 breaks it.
func TestClassesCanMissFixedPoint(t *testing.T) {
	attended, conducted, min := 40, 45, 75.0
	n := classesCanMiss(attended, conducted, min)

	if pct := attendancePercentage(attended, conducted+n); pct < min {
		t.Fatalf("missing %d classes should keep compliance, got %.4f%%", n, pct)
	}
	if pct := attendancePercentage(attended, conducted+n+1); pct >= min {
		t.Fatalf("missing %d classes should break compliance, got %.4f%%", n+1, pct)
	}
}

func TestClassesNeedToAttend(t *testing.T) {
	tests := []struct {
		name      string
		attended  int
		conducted int
		min       float64
		expected  int
	}{
		{name: "half attendance", attended: 10, conducted: 20, min: 75, expected: 20},
		{name: "already compliant", attended: 40, conducted: 45, min: 75, expected: 0},
		{name: "unreachable minimum", attended: 9, conducted: 10, min: 100, expected: ProjectionUnbounded},
		{name: "hundred percent minimum, clean record", attended: 10, conducted: 10, min: 100, expected: 0},
		{name: "nothing conducted", attended: 0, conducted: 0, min: 75, expected: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := classesNeedToAttend(tc.attended, tc.conducted, tc.min)
			if got != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

// Attending the projected number of classes must restore compliance, and
// one fewer must not.
func TestClassesNeedToAttendFixedPoint(t *testing.T) {
	attended, conducted, min := 10, 20, 75.0
	n := classesNeedToAttend(attended, conducted, min)

	if pct := attendancePercentage(attended+n, conducted+n); pct < min {
		t.Fatalf("attending %d classes should restore compliance, got %.4f%%", n, pct)
	}
	if pct := attendancePercentage(attended+n-1, conducted+n-1); pct >= min {
		t.Fatalf("attending %d classes should not yet restore compliance, got %.4f%%", n-1, pct)
	}
}

func TestTallyRecords(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		{Date: date, Status: models.AttendanceStatusPresent},
		{Date: date, Status: models.AttendanceStatusPresent},
		{Date: date, Status: models.AttendanceStatusAbsent},
		{Date: date, Status: models.AttendanceStatusCancelled},
		// Holiday records stay out of the denominator regardless of status,
		// and are counted apart from plain cancellations.
		{Date: date, Status: models.AttendanceStatusAbsent, IsHoliday: true},
		{Date: date, Status: models.AttendanceStatusCancelled, IsHoliday: true},
	}

	tally := tallyRecords(records)
	if tally.attended != 2 {
		t.Fatalf("expected 2 attended, got %d", tally.attended)
	}
	if tally.absent != 1 {
		t.Fatalf("expected 1 absent, got %d", tally.absent)
	}
	if tally.cancelled != 1 {
		t.Fatalf("expected 1 cancelled, got %d", tally.cancelled)
	}
	if tally.holidays != 2 {
		t.Fatalf("expected 2 holidays, got %d", tally.holidays)
	}
	if tally.conducted() != 3 {
		t.Fatalf("expected 3 conducted, got %d", tally.conducted())
	}
}

func TestBuildSubjectAnalyticsSafe(t *testing.T) {
	subject := &models.Subject{
		BaseModel:               models.BaseModel{ID: 1},
		Name:                    "Data Structures",
		Code:                    "CS201",
		MinAttendancePercentage: 75,
	}
	tally := attendanceTally{attended: 40, absent: 5, cancelled: 2}

	sa := buildSubjectAnalytics(subject, tally)

	if sa.TotalConducted != 45 {
		t.Fatalf("expected 45 conducted, got %d", sa.TotalConducted)
	}
	if sa.AttendancePercentage != 88.89 {
		t.Fatalf("expected 88.89%%, got %.2f%%", sa.AttendancePercentage)
	}
	if sa.Status != ComplianceSafe {
		t.Fatalf("expected safe, got %s", sa.Status)
	}
	if sa.ClassesCanMiss != 8 {
		t.Fatalf("expected classes_can_miss 8, got %d", sa.ClassesCanMiss)
	}
	if sa.ClassesNeedToAttend != 0 {
		t.Fatalf("expected classes_need_to_attend 0, got %d", sa.ClassesNeedToAttend)
	}
}

func TestBuildSubjectAnalyticsShortage(t *testing.T) {
	subject := &models.Subject{
		BaseModel:               models.BaseModel{ID: 2},
		Name:                    "Linear Algebra",
		MinAttendancePercentage: 75,
	}
	tally := attendanceTally{attended: 10, absent: 10}

	sa := buildSubjectAnalytics(subject, tally)

	if sa.AttendancePercentage != 50.00 {
		t.Fatalf("expected 50.00%%, got %.2f%%", sa.AttendancePercentage)
	}
	if sa.Status != ComplianceShortage {
		t.Fatalf("expected shortage, got %s", sa.Status)
	}
	if sa.ClassesNeedToAttend != 20 {
		t.Fatalf("expected classes_need_to_attend 20, got %d", sa.ClassesNeedToAttend)
	}
	if sa.ClassesCanMiss != 0 {
		t.Fatalf("expected classes_can_miss 0, got %d", sa.ClassesCanMiss)
	}
}

func TestBuildSubjectAnalyticsNoClasses(t *testing.T) {
	subject := &models.Subject{
		BaseModel:               models.BaseModel{ID: 3},
		Name:                    "Technical Writing",
		MinAttendancePercentage: 75,
	}

	sa := buildSubjectAnalytics(subject, attendanceTally{})

	if sa.AttendancePercentage != 0 {
		t.Fatalf("expected 0%% with no conducted classes, got %.2f%%", sa.AttendancePercentage)
	}
	if sa.Status != ComplianceShortage {
		t.Fatalf("expected shortage at 0%%, got %s", sa.Status)
	}
	if sa.ClassesNeedToAttend != 0 {
		t.Fatalf("expected classes_need_to_attend 0, got %d", sa.ClassesNeedToAttend)
	}
}
