package services

import (
	"fmt"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"
	"attendtrack_go/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceService governs status transitions on attendance records and
// explicit (ad-hoc) record creation. Any status in the enumerated set is a
// valid transition target from any other; the absent→present→cancelled cycle
// seen in clients is their affordance, not a rule enforced here. Identity
// fields (subject, date, start time) and the attendance type never change
// after creation.
type AttendanceService struct {
	db *gorm.DB
}

// NewAttendanceService creates a new service instance
func NewAttendanceService() *AttendanceService {
	return &AttendanceService{db: database.DB}
}

// UpdateStatus sets the status (and optionally notes) of a single record.
// Last-writer-wins; no optimistic versioning.
func (as *AttendanceService) UpdateStatus(recordID uint, status, notes string) (*models.AttendanceRecord, error) {
	if !utils.IsValidAttendanceStatus(status) {
		return nil, NewValidationError("status", "invalid status %q (expected present, absent or cancelled)", status)
	}

	var record models.AttendanceRecord
	if err := as.db.First(&record, recordID).Error; err != nil {
		return nil, fmt.Errorf("attendance record %d: %w", recordID, err)
	}

	updates := map[string]interface{}{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}

	if err := as.db.Model(&record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update attendance record %d: %w", recordID, err)
	}

	return &record, nil
}

// CreateAdHoc inserts an extra class outside the routine. Unlike routine
// generation, an identity collision here is surfaced to the caller.
func (as *AttendanceService) CreateAdHoc(subjectID uint, date time.Time, startTime, endTime, status, notes string) (*models.AttendanceRecord, error) {
	if status == "" {
		status = models.AttendanceStatusAbsent
	}
	if !utils.IsValidAttendanceStatus(status) {
		return nil, NewValidationError("status", "invalid status %q (expected present, absent or cancelled)", status)
	}

	startTime, err := utils.NormalizeClockTime(startTime)
	if err != nil {
		return nil, NewValidationError("start_time", "%v", err)
	}
	endTime, err = utils.NormalizeClockTime(endTime)
	if err != nil {
		return nil, NewValidationError("end_time", "%v", err)
	}
	if startTime >= endTime {
		return nil, NewValidationError("end_time", "end time %s must be after start time %s", endTime, startTime)
	}

	var subject models.Subject
	if err := as.db.Preload("Semester").First(&subject, subjectID).Error; err != nil {
		return nil, fmt.Errorf("subject %d: %w", subjectID, err)
	}

	date = truncateToDate(date)
	semStart := truncateToDate(subject.Semester.StartDate)
	semEnd := truncateToDate(subject.Semester.EndDate)
	if date.Before(semStart) || date.After(semEnd) {
		return nil, NewValidationError("date", "date %s is outside the semester period (%s to %s)",
			date.Format("2006-01-02"), semStart.Format("2006-01-02"), semEnd.Format("2006-01-02"))
	}

	record := models.AttendanceRecord{
		SubjectID:      subjectID,
		Date:           date,
		StartTime:      startTime,
		EndTime:        endTime,
		Status:         status,
		AttendanceType: models.AttendanceTypeAdhoc,
		Notes:          notes,
	}

	// Same insert-if-absent the generator uses, so a concurrent duplicate
	// cannot slip between a check and the insert. Zero rows means the
	// identity already exists.
	res := as.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create ad-hoc record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w for subject %d on %s at %s",
			ErrDuplicateRecord, subjectID, date.Format("2006-01-02"), startTime)
	}

	return &record, nil
}

// MarkBulk sets the same status on multiple records. Returns how many rows
// were updated.
func (as *AttendanceService) MarkBulk(recordIDs []uint, status string) (int64, error) {
	if !utils.IsValidAttendanceStatus(status) {
		return 0, NewValidationError("status", "invalid status %q (expected present, absent or cancelled)", status)
	}
	if len(recordIDs) == 0 {
		return 0, nil
	}

	res := as.db.Model(&models.AttendanceRecord{}).
		Where("id IN ?", recordIDs).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// MarkDay sets the same status on every record of a semester for one date.
func (as *AttendanceService) MarkDay(semesterID uint, date time.Time, status string) (int64, error) {
	if !utils.IsValidAttendanceStatus(status) {
		return 0, NewValidationError("status", "invalid status %q (expected present, absent or cancelled)", status)
	}

	var semester models.Semester
	if err := as.db.First(&semester, semesterID).Error; err != nil {
		return 0, fmt.Errorf("semester %d: %w", semesterID, err)
	}

	res := as.db.Model(&models.AttendanceRecord{}).
		Where("subject_id IN (?)",
			as.db.Model(&models.Subject{}).Select("id").Where("semester_id = ?", semester.ID)).
		Where("date = ?", truncateToDate(date)).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// MarkHoliday cancels every record of a semester for one date and flags it
// as a holiday, taking the whole day out of the attendance denominator.
func (as *AttendanceService) MarkHoliday(semesterID uint, date time.Time) (int64, error) {
	var semester models.Semester
	if err := as.db.First(&semester, semesterID).Error; err != nil {
		return 0, fmt.Errorf("semester %d: %w", semesterID, err)
	}

	res := as.db.Model(&models.AttendanceRecord{}).
		Where("subject_id IN (?)",
			as.db.Model(&models.Subject{}).Select("id").Where("semester_id = ?", semester.ID)).
		Where("date = ?", truncateToDate(date)).
		Updates(map[string]interface{}{
			"status":     models.AttendanceStatusCancelled,
			"is_holiday": true,
		})
	return res.RowsAffected, res.Error
}

// Delete soft-deletes a single attendance record.
func (as *AttendanceService) Delete(recordID uint) error {
	var record models.AttendanceRecord
	if err := as.db.First(&record, recordID).Error; err != nil {
		return fmt.Errorf("attendance record %d: %w", recordID, err)
	}
	return as.db.Delete(&record).Error
}
