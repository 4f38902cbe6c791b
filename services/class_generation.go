package services

import (
	"fmt"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClassGenerationService materializes routine entries into dated attendance
// records. It holds no state beyond the database handle; idempotence comes
// from the identity index on (subject_id, date, start_time) together with
// insert-if-absent writes, so concurrent "generate today" requests cannot
// double-create a slot.
type ClassGenerationService struct {
	db *gorm.DB
}

// NewClassGenerationService creates a new service instance
func NewClassGenerationService() *ClassGenerationService {
	return &ClassGenerationService{db: database.DB}
}

// WeekdayIndex maps a date to the routine day numbering, Monday=0 .. Sunday=6.
func WeekdayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// truncateToDate drops the clock portion of a timestamp.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clipRange intersects [from,to] with [semStart,semEnd]. The returned flag is
// false when the intersection is empty, which is not an error: it simply means
// there is nothing to generate.
func clipRange(from, to, semStart, semEnd time.Time) (time.Time, time.Time, bool) {
	if from.Before(semStart) {
		from = semStart
	}
	if to.After(semEnd) {
		to = semEnd
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// planClassSlots expands routine entries over a date range into candidate
// attendance records. Pure computation: no lookups, no writes, no dedup
// against existing rows (the insert path handles that).
func planClassSlots(entries []models.RoutineEntry, from, to time.Time) []models.AttendanceRecord {
	var slots []models.AttendanceRecord

	for d := truncateToDate(from); !d.After(truncateToDate(to)); d = d.AddDate(0, 0, 1) {
		weekday := WeekdayIndex(d)
		for i := range entries {
			entry := &entries[i]
			if entry.DayOfWeek != weekday {
				continue
			}
			entryID := entry.ID
			slots = append(slots, models.AttendanceRecord{
				SubjectID:      entry.SubjectID,
				RoutineEntryID: &entryID,
				Date:           d,
				StartTime:      entry.StartTime,
				EndTime:        entry.EndTime,
				Status:         models.AttendanceStatusAbsent,
				AttendanceType: models.AttendanceTypeRoutine,
			})
		}
	}

	return slots
}

// GenerateForRange materializes every routine slot of the semester within
// [from,to], clipped to the semester period. Already-materialized slots are
// left untouched (status, notes and type are preserved). Returns only the
// records this call created.
func (cgs *ClassGenerationService) GenerateForRange(semesterID uint, from, to time.Time) ([]models.AttendanceRecord, error) {
	if from.After(to) {
		return nil, NewValidationError("date_range", "start date %s is after end date %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	var semester models.Semester
	if err := cgs.db.First(&semester, semesterID).Error; err != nil {
		return nil, fmt.Errorf("semester %d: %w", semesterID, err)
	}

	from, to, ok := clipRange(truncateToDate(from), truncateToDate(to),
		truncateToDate(semester.StartDate), truncateToDate(semester.EndDate))
	if !ok {
		// Range falls entirely outside the semester; nothing to generate.
		return nil, nil
	}

	var routine models.Routine
	err := cgs.db.Where("semester_id = ?", semester.ID).First(&routine).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entries []models.RoutineEntry
	if err := cgs.db.Where("routine_id = ?", routine.ID).
		Order("day_of_week, start_time").Find(&entries).Error; err != nil {
		return nil, err
	}

	slots := planClassSlots(entries, from, to)
	created := make([]models.AttendanceRecord, 0, len(slots))

	for i := range slots {
		slot := slots[i]
		// First-writer-wins: a concurrent insert for the same identity makes
		// this a no-op instead of an error.
		res := cgs.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}, {Name: "date"}, {Name: "start_time"}},
			DoNothing: true,
		}).Create(&slot)
		if res.Error != nil {
			return created, fmt.Errorf("failed to create attendance record for subject %d on %s: %w",
				slot.SubjectID, slot.Date.Format("2006-01-02"), res.Error)
		}
		if res.RowsAffected > 0 {
			created = append(created, slot)
		}
	}

	logrus.WithFields(logrus.Fields{
		"semester_id": semester.ID,
		"from":        from.Format("2006-01-02"),
		"to":          to.Format("2006-01-02"),
		"planned":     len(slots),
		"created":     len(created),
	}).Info("Generated attendance records")

	return created, nil
}

// GenerateDaily materializes today's classes for a semester. Outside the
// semester period it is a no-op.
func (cgs *ClassGenerationService) GenerateDaily(semesterID uint) ([]models.AttendanceRecord, error) {
	today := truncateToDate(time.Now())
	return cgs.GenerateForRange(semesterID, today, today)
}

// GenerateDailyForCurrentSemesters materializes today's classes for every
// semester currently flagged as current. Used by the morning cron job.
func (cgs *ClassGenerationService) GenerateDailyForCurrentSemesters() {
	var semesters []models.Semester
	if err := cgs.db.Where("is_current = ?", true).Find(&semesters).Error; err != nil {
		logrus.WithError(err).Error("Failed to load current semesters for daily generation")
		return
	}

	for _, semester := range semesters {
		created, err := cgs.GenerateDaily(semester.ID)
		if err != nil {
			logrus.WithError(err).WithField("semester_id", semester.ID).
				Error("Daily class generation failed")
			continue
		}
		if len(created) > 0 {
			logrus.WithFields(logrus.Fields{
				"semester_id": semester.ID,
				"created":     len(created),
			}).Info("Daily classes generated")
		}
	}
}
