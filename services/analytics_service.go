package services

import (
	"fmt"
	"math"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"

	"gorm.io/gorm"
)

// Compliance classification bands relative to a subject's minimum
// attendance threshold.
const (
	ComplianceSafe       = "safe"
	ComplianceBorderline = "borderline"
	ComplianceShortage   = "shortage"

	// BorderlineMargin is the band width above the minimum that still counts
	// as borderline rather than safe.
	BorderlineMargin = 5.0

	// ProjectionUnbounded is the sentinel reported when a projection counter
	// has no finite answer: classes_can_miss with no minimum configured
	// (min=0), or classes_need_to_attend when the minimum is 100% and
	// unreachable.
	ProjectionUnbounded = 999
)

// SubjectAnalytics is the per-subject compliance report.
type SubjectAnalytics struct {
	SubjectID             uint    `json:"subject_id"`
	SubjectName           string  `json:"subject_name"`
	SubjectCode           string  `json:"subject_code"`
	TotalConducted        int     `json:"total_conducted"`
	TotalAttended         int     `json:"total_attended"`
	TotalAbsent           int     `json:"total_absent"`
	TotalCancelled        int     `json:"total_cancelled"`
	TotalHolidays         int     `json:"total_holidays"`
	AttendancePercentage  float64 `json:"attendance_percentage"`
	MinRequiredPercentage float64 `json:"min_required_percentage"`
	Status                string  `json:"status"`
	ClassesCanMiss        int     `json:"classes_can_miss"`
	ClassesNeedToAttend   int     `json:"classes_need_to_attend"`
}

// SemesterAnalytics is the semester-wide rollup.
type SemesterAnalytics struct {
	SemesterID         uint               `json:"semester_id"`
	SemesterName       string             `json:"semester_name"`
	TotalSubjects      int                `json:"total_subjects"`
	OverallAttendance  float64            `json:"overall_attendance"`
	SubjectsSafe       int                `json:"subjects_safe"`
	SubjectsBorderline int                `json:"subjects_borderline"`
	SubjectsShortage   int                `json:"subjects_shortage"`
	Subjects           []SubjectAnalytics `json:"subjects"`
}

// AnalyticsService computes attendance compliance from stored records. All
// reads are on-demand aggregation over current state; nothing is cached.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new service instance
func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{db: database.DB}
}

// attendanceTally is the raw status breakdown of a record set. Holiday
// records are counted separately from cancelled ones; neither enters the
// denominator.
type attendanceTally struct {
	attended  int
	absent    int
	cancelled int
	holidays  int
}

func (t attendanceTally) conducted() int {
	return t.attended + t.absent
}

// tallyRecords counts a record set by effective status. A holiday flag wins
// over the stored status: marking a day as a holiday cancels its records,
// and those land in the holiday bucket, not the cancelled one.
func tallyRecords(records []models.AttendanceRecord) attendanceTally {
	var tally attendanceTally
	for i := range records {
		r := &records[i]
		if r.IsHoliday {
			tally.holidays++
			continue
		}
		if r.Status == models.AttendanceStatusCancelled {
			tally.cancelled++
			continue
		}
		if r.Status == models.AttendanceStatusPresent {
			tally.attended++
		} else {
			tally.absent++
		}
	}
	return tally
}

// attendancePercentage returns attended/conducted*100 in full precision,
// and exactly 0 when nothing was conducted.
func attendancePercentage(attended, conducted int) float64 {
	if conducted == 0 {
		return 0
	}
	return float64(attended) * 100 / float64(conducted)
}

// Round2 rounds a percentage to two decimals for presentation. Internal
// math always runs on the unrounded value.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// classifyAttendance places a percentage into a compliance band:
// safe when pct >= min+5, shortage when pct < min, borderline between.
func classifyAttendance(pct, min float64) string {
	switch {
	case pct >= min+BorderlineMargin:
		return ComplianceSafe
	case pct < min:
		return ComplianceShortage
	default:
		return ComplianceBorderline
	}
}

// classesCanMiss is the largest n >= 0 with attended/(conducted+n) still at
// or above the minimum: floor(attended*100/min) - conducted.
func classesCanMiss(attended, conducted int, min float64) int {
	if min <= 0 {
		// No minimum configured; any number of misses keeps compliance.
		return ProjectionUnbounded
	}
	n := int(math.Floor(float64(attended)*100/min)) - conducted
	if n < 0 {
		return 0
	}
	return n
}

// classesNeedToAttend is the smallest n >= 0 with (attended+n)/(conducted+n)
// at or above the minimum: ceil((min*conducted - 100*attended)/(100-min)).
func classesNeedToAttend(attended, conducted int, min float64) int {
	deficit := min*float64(conducted) - 100*float64(attended)
	if deficit <= 0 {
		return 0
	}
	if min >= 100 {
		// A 100% minimum can never be recovered once a class is missed.
		return ProjectionUnbounded
	}
	return int(math.Ceil(deficit / (100 - min)))
}

// buildSubjectAnalytics assembles the report from a tally and threshold.
// Pure computation, shared by the DB-backed paths and the tests.
func buildSubjectAnalytics(subject *models.Subject, tally attendanceTally) SubjectAnalytics {
	min := subject.MinAttendancePercentage
	conducted := tally.conducted()
	pct := attendancePercentage(tally.attended, conducted)

	return SubjectAnalytics{
		SubjectID:             subject.ID,
		SubjectName:           subject.Name,
		SubjectCode:           subject.Code,
		TotalConducted:        conducted,
		TotalAttended:         tally.attended,
		TotalAbsent:           tally.absent,
		TotalCancelled:        tally.cancelled,
		TotalHolidays:         tally.holidays,
		AttendancePercentage:  Round2(pct),
		MinRequiredPercentage: min,
		Status:                classifyAttendance(pct, min),
		ClassesCanMiss:        classesCanMiss(tally.attended, conducted, min),
		ClassesNeedToAttend:   classesNeedToAttend(tally.attended, conducted, min),
	}
}

// subjectRecords loads the subject's records from semester start up to asOf
// (capped at the semester end).
func (ans *AnalyticsService) subjectRecords(subject *models.Subject, asOf time.Time) ([]models.AttendanceRecord, error) {
	end := truncateToDate(asOf)
	semEnd := truncateToDate(subject.Semester.EndDate)
	if end.After(semEnd) {
		end = semEnd
	}

	var records []models.AttendanceRecord
	err := ans.db.Where("subject_id = ? AND date >= ? AND date <= ?",
		subject.ID, truncateToDate(subject.Semester.StartDate), end).
		Find(&records).Error
	return records, err
}

// AnalyzeSubject computes the compliance report for one subject as of the
// given date.
func (ans *AnalyticsService) AnalyzeSubject(subjectID uint, asOf time.Time) (*SubjectAnalytics, error) {
	var subject models.Subject
	if err := ans.db.Preload("Semester").First(&subject, subjectID).Error; err != nil {
		return nil, fmt.Errorf("subject %d: %w", subjectID, err)
	}

	records, err := ans.subjectRecords(&subject, asOf)
	if err != nil {
		return nil, err
	}

	analytics := buildSubjectAnalytics(&subject, tallyRecords(records))
	return &analytics, nil
}

// AnalyzeSemester aggregates subject reports into a semester rollup. The
// overall percentage is attended/conducted summed across subjects, with the
// same zero-conducted guard as the per-subject formula.
func (ans *AnalyticsService) AnalyzeSemester(semesterID uint, asOf time.Time) (*SemesterAnalytics, error) {
	var semester models.Semester
	if err := ans.db.Preload("Subjects").First(&semester, semesterID).Error; err != nil {
		return nil, fmt.Errorf("semester %d: %w", semesterID, err)
	}

	result := SemesterAnalytics{
		SemesterID:    semester.ID,
		SemesterName:  semester.Name,
		TotalSubjects: len(semester.Subjects),
		Subjects:      make([]SubjectAnalytics, 0, len(semester.Subjects)),
	}

	var totalAttended, totalConducted int
	for i := range semester.Subjects {
		subject := semester.Subjects[i]
		subject.Semester = semester

		records, err := ans.subjectRecords(&subject, asOf)
		if err != nil {
			return nil, err
		}

		sa := buildSubjectAnalytics(&subject, tallyRecords(records))
		result.Subjects = append(result.Subjects, sa)

		totalAttended += sa.TotalAttended
		totalConducted += sa.TotalConducted

		switch sa.Status {
		case ComplianceSafe:
			result.SubjectsSafe++
		case ComplianceBorderline:
			result.SubjectsBorderline++
		case ComplianceShortage:
			result.SubjectsShortage++
		}
	}

	result.OverallAttendance = Round2(attendancePercentage(totalAttended, totalConducted))
	return &result, nil
}

// History returns the full attendance timeline for a subject, newest first.
func (ans *AnalyticsService) History(subjectID uint, from, to *time.Time) ([]models.AttendanceRecord, error) {
	var subject models.Subject
	if err := ans.db.First(&subject, subjectID).Error; err != nil {
		return nil, fmt.Errorf("subject %d: %w", subjectID, err)
	}

	query := ans.db.Where("subject_id = ?", subjectID)
	if from != nil {
		query = query.Where("date >= ?", truncateToDate(*from))
	}
	if to != nil {
		query = query.Where("date <= ?", truncateToDate(*to))
	}

	var records []models.AttendanceRecord
	err := query.Order("date DESC, start_time DESC").Find(&records).Error
	return records, err
}
