package controllers

import (
	"time"

	"attendtrack_go/database"
	"attendtrack_go/middleware"
	"attendtrack_go/models"
	"attendtrack_go/services"
	"attendtrack_go/utils"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct {
	generation *services.ClassGenerationService
	attendance *services.AttendanceService
}

// NewAttendanceController creates a new controller instance
func NewAttendanceController() *AttendanceController {
	return &AttendanceController{
		generation: services.NewClassGenerationService(),
		attendance: services.NewAttendanceService(),
	}
}

// GenerateRequest represents the generation request body
type GenerateRequest struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// AdHocRequest represents the ad-hoc class request body
type AdHocRequest struct {
	SubjectID uint   `json:"subject_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

// GenerateClasses materializes routine slots for a date range. Slots that
// already exist are skipped; the response reports only what was created.
func (ac *AttendanceController) GenerateClasses(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	from, err := utils.ParseDate(req.FromDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from_date, expected YYYY-MM-DD"})
	}
	to, err := utils.ParseDate(req.ToDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to_date, expected YYYY-MM-DD"})
	}

	created, err := ac.generation.GenerateForRange(semesterID, from, to)
	if err != nil {
		return serviceError(c, err, "Failed to generate classes")
	}

	middleware.LogActivity(c, "CREATE", "attendance", semesterID, fiber.Map{
		"from":    req.FromDate,
		"to":      req.ToDate,
		"created": len(created),
	})

	return c.JSON(fiber.Map{
		"message":       "Classes generated successfully",
		"created_count": len(created),
		"created":       created,
	})
}

// GenerateToday materializes today's routine slots for a semester
func (ac *AttendanceController) GenerateToday(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	created, err := ac.generation.GenerateDaily(semesterID)
	if err != nil {
		return serviceError(c, err, "Failed to generate classes")
	}

	return c.JSON(fiber.Map{
		"message":       "Classes generated successfully",
		"created_count": len(created),
		"created":       created,
	})
}

// GetRecords lists attendance records for a semester, optionally filtered
// by date range or subject
func (ac *AttendanceController) GetRecords(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	query := database.DB.Preload("Subject").
		Where("subject_id IN (?)",
			database.DB.Model(&models.Subject{}).Select("id").Where("semester_id = ?", semesterID))

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := utils.ParseDate(fromStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from, expected YYYY-MM-DD"})
		}
		query = query.Where("date >= ?", from)
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := utils.ParseDate(toStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to, expected YYYY-MM-DD"})
		}
		query = query.Where("date <= ?", to)
	}
	if subjectStr := c.Query("subject_id"); subjectStr != "" {
		query = query.Where("subject_id = ?", subjectStr)
	}

	var records []models.AttendanceRecord
	if err := query.Order("date DESC, start_time DESC").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendance records",
		})
	}

	return c.JSON(fiber.Map{"records": records})
}

// userOwnsRecord verifies an attendance record belongs to one of the
// current user's subjects.
func (ac *AttendanceController) userOwnsRecord(userID, recordID uint) error {
	var record models.AttendanceRecord
	return database.DB.
		Joins("JOIN subjects ON subjects.id = attendance_records.subject_id").
		Joins("JOIN semesters ON semesters.id = subjects.semester_id").
		Where("attendance_records.id = ? AND semesters.user_id = ?", recordID, userID).
		First(&record).Error
}

// UpdateStatus marks a single record present, absent or cancelled
func (ac *AttendanceController) UpdateStatus(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := ac.userOwnsRecord(user.ID, id); err != nil {
		return serviceError(c, err, "Failed to fetch attendance record")
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := ac.attendance.UpdateStatus(id, req.Status, req.Notes)
	if err != nil {
		return serviceError(c, err, "Failed to update attendance record")
	}

	middleware.LogActivity(c, "UPDATE", "attendance", record.ID, fiber.Map{"status": record.Status})

	return c.JSON(fiber.Map{
		"message": "Attendance updated successfully",
		"record":  record,
	})
}

// CreateAdHoc adds an extra class outside the routine
func (ac *AttendanceController) CreateAdHoc(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req AdHocRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if _, err := userSubject(database.DB, user.ID, req.SubjectID); err != nil {
		return serviceError(c, err, "Failed to fetch subject")
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	record, err := ac.attendance.CreateAdHoc(req.SubjectID, date, req.StartTime, req.EndTime, req.Status, req.Notes)
	if err != nil {
		return serviceError(c, err, "Failed to create class")
	}

	middleware.LogActivity(c, "CREATE", "attendance", record.ID, fiber.Map{
		"subject_id": record.SubjectID,
		"date":       req.Date,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Class created successfully",
		"record":  record,
	})
}

// MarkBulk sets one status on a list of records
func (ac *AttendanceController) MarkBulk(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		RecordIDs []uint `json:"record_ids"`
		Status    string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.RecordIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "record_ids is required"})
	}

	for _, id := range req.RecordIDs {
		if err := ac.userOwnsRecord(user.ID, id); err != nil {
			return serviceError(c, err, "Failed to fetch attendance record")
		}
	}

	updated, err := ac.attendance.MarkBulk(req.RecordIDs, req.Status)
	if err != nil {
		return serviceError(c, err, "Failed to update attendance records")
	}

	middleware.LogActivity(c, "UPDATE", "attendance", 0, fiber.Map{
		"count":  updated,
		"status": req.Status,
	})

	return c.JSON(fiber.Map{
		"message":       "Attendance updated successfully",
		"updated_count": updated,
	})
}

// MarkDay sets one status on every class of a semester on a given date
func (ac *AttendanceController) MarkDay(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	var req struct {
		Date   string `json:"date"`
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	updated, err := ac.attendance.MarkDay(semesterID, date, req.Status)
	if err != nil {
		return serviceError(c, err, "Failed to update attendance records")
	}

	middleware.LogActivity(c, "UPDATE", "attendance", semesterID, fiber.Map{
		"date":   req.Date,
		"status": req.Status,
		"count":  updated,
	})

	return c.JSON(fiber.Map{
		"message":       "Attendance updated successfully",
		"updated_count": updated,
	})
}

// MarkHoliday cancels every class of a semester on a date and flags them as
// holiday so they stay out of the percentage
func (ac *AttendanceController) MarkHoliday(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	updated, err := ac.attendance.MarkHoliday(semesterID, date)
	if err != nil {
		return serviceError(c, err, "Failed to mark holiday")
	}

	middleware.LogActivity(c, "UPDATE", "attendance", semesterID, fiber.Map{
		"date":    req.Date,
		"holiday": true,
		"count":   updated,
	})

	return c.JSON(fiber.Map{
		"message":       "Holiday marked successfully",
		"updated_count": updated,
	})
}

// DeleteRecord soft-deletes an attendance record
func (ac *AttendanceController) DeleteRecord(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := ac.userOwnsRecord(user.ID, id); err != nil {
		return serviceError(c, err, "Failed to fetch attendance record")
	}

	if err := ac.attendance.Delete(id); err != nil {
		return serviceError(c, err, "Failed to delete attendance record")
	}

	middleware.LogActivity(c, "DELETE", "attendance", id, nil)

	return c.JSON(fiber.Map{"message": "Attendance record deleted successfully"})
}

// GetTodayRecords returns today's classes across the user's current semester
func (ac *AttendanceController) GetTodayRecords(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var semester models.Semester
	if err := database.DB.Where("user_id = ? AND is_current = ?", user.ID, true).
		First(&semester).Error; err != nil {
		return serviceError(c, err, "Failed to fetch current semester")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var records []models.AttendanceRecord
	err = database.DB.Preload("Subject").
		Where("subject_id IN (?)",
			database.DB.Model(&models.Subject{}).Select("id").Where("semester_id = ?", semester.ID)).
		Where("date = ?", today).
		Order("start_time").
		Find(&records).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendance records",
		})
	}

	return c.JSON(fiber.Map{"records": records})
}
