package services

import (
	"fmt"
	"sort"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"

	"gorm.io/gorm"
)

// Trend window defaults
const (
	DefaultTrendWeeks  = 8
	DefaultTrendMonths = 6
)

// Alert severities, keyed off the compliance band.
const (
	AlertTypeDanger  = "danger"  // shortage
	AlertTypeWarning = "warning" // borderline
)

// TrendPoint is one bucket of a weekly or monthly trend. Buckets where no
// class was conducted are never emitted.
type TrendPoint struct {
	Label      string  `json:"label"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Cancelled  int     `json:"cancelled"`
	Conducted  int     `json:"conducted"`
	Percentage float64 `json:"percentage"`
}

// Alert flags a subject that slipped into borderline or shortage.
type Alert struct {
	SubjectID          uint    `json:"subject_id"`
	SubjectName        string  `json:"subject_name"`
	Type               string  `json:"type"`
	CurrentPercentage  float64 `json:"current_percentage"`
	RequiredPercentage float64 `json:"required_percentage"`
	Message            string  `json:"message"`
}

// DashboardOverview composes the read-side summary for a semester: overall
// percentage, today's classes and the alert list. No invariants of its own.
type DashboardOverview struct {
	Semester     SemesterAnalytics         `json:"semester"`
	Date         string                    `json:"date"`
	TodayClasses []models.AttendanceRecord `json:"today_classes"`
	Alerts       []Alert                   `json:"alerts"`
}

// TrendService buckets attendance records into time windows and raises
// compliance alerts. Depends on the analytics formulas and, like them, is
// stateless between requests.
type TrendService struct {
	db        *gorm.DB
	analytics *AnalyticsService
}

// NewTrendService creates a new service instance
func NewTrendService() *TrendService {
	return &TrendService{db: database.DB, analytics: NewAnalyticsService()}
}

// weekStart truncates a date to its Monday.
func weekStart(d time.Time) time.Time {
	d = truncateToDate(d)
	return d.AddDate(0, 0, -WeekdayIndex(d))
}

// monthStart truncates a date to the first of its month.
func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// buildTrend partitions records into buckets keyed by bucketOf, drops buckets
// with zero conducted classes, orders oldest to newest and keeps at most n
// trailing buckets.
func buildTrend(records []models.AttendanceRecord, n int, bucketOf func(time.Time) time.Time, label func(time.Time) string) []TrendPoint {
	type bucketTally struct {
		start time.Time
		tally attendanceTally
	}

	buckets := make(map[time.Time]*bucketTally)
	for i := range records {
		r := &records[i]
		key := bucketOf(r.Date)
		b, ok := buckets[key]
		if !ok {
			b = &bucketTally{start: key}
			buckets[key] = b
		}
		if !r.AffectsPercentage() {
			b.tally.cancelled++
		} else if r.Status == models.AttendanceStatusPresent {
			b.tally.attended++
		} else {
			b.tally.absent++
		}
	}

	ordered := make([]*bucketTally, 0, len(buckets))
	for _, b := range buckets {
		if b.tally.conducted() == 0 {
			// An all-cancelled bucket would render as a misleading 0% dip.
			continue
		}
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start.Before(ordered[j].start) })

	if len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}

	points := make([]TrendPoint, 0, len(ordered))
	for _, b := range ordered {
		conducted := b.tally.conducted()
		points = append(points, TrendPoint{
			Label:      label(b.start),
			Present:    b.tally.attended,
			Absent:     b.tally.absent,
			Cancelled:  b.tally.cancelled,
			Conducted:  conducted,
			Percentage: Round2(attendancePercentage(b.tally.attended, conducted)),
		})
	}
	return points
}

// trendRecords loads a subject's records over the trailing window ending now.
func (ts *TrendService) trendRecords(subjectID uint, from, to time.Time) ([]models.AttendanceRecord, error) {
	var subject models.Subject
	if err := ts.db.First(&subject, subjectID).Error; err != nil {
		return nil, fmt.Errorf("subject %d: %w", subjectID, err)
	}

	var records []models.AttendanceRecord
	err := ts.db.Where("subject_id = ? AND date >= ? AND date <= ?",
		subjectID, truncateToDate(from), truncateToDate(to)).
		Find(&records).Error
	return records, err
}

// WeeklyTrend returns up to weeks trailing weekly buckets for a subject,
// oldest first, labelled by week start date.
func (ts *TrendService) WeeklyTrend(subjectID uint, weeks int, now time.Time) ([]TrendPoint, error) {
	if weeks <= 0 {
		weeks = DefaultTrendWeeks
	}

	records, err := ts.trendRecords(subjectID, now.AddDate(0, 0, -7*weeks), now)
	if err != nil {
		return nil, err
	}

	return buildTrend(records, weeks, weekStart, func(t time.Time) string {
		return t.Format("2006-01-02")
	}), nil
}

// MonthlyTrend returns up to months trailing monthly buckets for a subject,
// oldest first, labelled like "January 2026".
func (ts *TrendService) MonthlyTrend(subjectID uint, months int, now time.Time) ([]TrendPoint, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}

	records, err := ts.trendRecords(subjectID, now.AddDate(0, -months, 0), now)
	if err != nil {
		return nil, err
	}

	return buildTrend(records, months, monthStart, func(t time.Time) string {
		return t.Format("January 2006")
	}), nil
}

// buildAlerts derives the alert list from subject reports: one alert per
// borderline or shortage subject, worst percentage first. Message text is a
// deterministic function of the band and the relevant projection counter.
func buildAlerts(subjects []SubjectAnalytics) []Alert {
	alerts := make([]Alert, 0)

	for i := range subjects {
		sa := &subjects[i]
		switch sa.Status {
		case ComplianceShortage:
			var msg string
			if sa.ClassesNeedToAttend >= ProjectionUnbounded {
				msg = fmt.Sprintf("Attendance shortage in %s: %.2f%% against a %.2f%% minimum, which can no longer be met.",
					sa.SubjectName, sa.AttendancePercentage, sa.MinRequiredPercentage)
			} else {
				msg = fmt.Sprintf("Attendance shortage in %s: %.2f%% against a %.2f%% minimum. Attend the next %d classes to recover.",
					sa.SubjectName, sa.AttendancePercentage, sa.MinRequiredPercentage, sa.ClassesNeedToAttend)
			}
			alerts = append(alerts, Alert{
				SubjectID:          sa.SubjectID,
				SubjectName:        sa.SubjectName,
				Type:               AlertTypeDanger,
				CurrentPercentage:  sa.AttendancePercentage,
				RequiredPercentage: sa.MinRequiredPercentage,
				Message:            msg,
			})
		case ComplianceBorderline:
			margin := Round2(sa.AttendancePercentage - sa.MinRequiredPercentage)
			alerts = append(alerts, Alert{
				SubjectID:          sa.SubjectID,
				SubjectName:        sa.SubjectName,
				Type:               AlertTypeWarning,
				CurrentPercentage:  sa.AttendancePercentage,
				RequiredPercentage: sa.MinRequiredPercentage,
				Message: fmt.Sprintf("%s is near the minimum: %.2f%% with only %.2f%% margin above the %.2f%% threshold.",
					sa.SubjectName, sa.AttendancePercentage, margin, sa.MinRequiredPercentage),
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CurrentPercentage < alerts[j].CurrentPercentage
	})
	return alerts
}

// AlertsForSemester computes alerts across every subject of a semester.
func (ts *TrendService) AlertsForSemester(semesterID uint, asOf time.Time) ([]Alert, error) {
	semester, err := ts.analytics.AnalyzeSemester(semesterID, asOf)
	if err != nil {
		return nil, err
	}
	return buildAlerts(semester.Subjects), nil
}

// Overview composes the dashboard view for a semester: the semester rollup,
// today's materialized classes and the alert list.
func (ts *TrendService) Overview(semesterID uint, now time.Time) (*DashboardOverview, error) {
	semester, err := ts.analytics.AnalyzeSemester(semesterID, now)
	if err != nil {
		return nil, err
	}

	today := truncateToDate(now)
	var todayClasses []models.AttendanceRecord
	err = ts.db.Preload("Subject").
		Where("subject_id IN (?)",
			ts.db.Model(&models.Subject{}).Select("id").Where("semester_id = ?", semesterID)).
		Where("date = ?", today).
		Order("start_time").
		Find(&todayClasses).Error
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		Semester:     *semester,
		Date:         today.Format("2006-01-02"),
		TodayClasses: todayClasses,
		Alerts:       buildAlerts(semester.Subjects),
	}, nil
}
