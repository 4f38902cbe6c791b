package controllers

import (
	"errors"

	"attendtrack_go/database"
	"attendtrack_go/middleware"
	"attendtrack_go/models"
	"attendtrack_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SemesterController struct{}

// SemesterRequest represents the create/update request body
type SemesterRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
	IsCurrent bool   `json:"is_current"`
}

// GetSemesters returns the current user's semesters, newest first
func (sc *SemesterController) GetSemesters(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var semesters []models.Semester
	if err := database.DB.Where("user_id = ?", user.ID).
		Order("start_date DESC").
		Find(&semesters).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch semesters",
		})
	}

	return c.JSON(fiber.Map{"semesters": semesters})
}

// GetSemester returns a single semester with its subjects and routine
func (sc *SemesterController) GetSemester(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var semester models.Semester
	err = database.DB.Preload("Subjects").
		Preload("Routine.Entries").
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&semester).Error
	if err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	return c.JSON(fiber.Map{"semester": semester})
}

// GetCurrentSemester returns the semester flagged current for the user
func (sc *SemesterController) GetCurrentSemester(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var semester models.Semester
	err = database.DB.Preload("Subjects").
		Where("user_id = ? AND is_current = ?", user.ID, true).
		First(&semester).Error
	if err != nil {
		return serviceError(c, err, "Failed to fetch current semester")
	}

	return c.JSON(fiber.Map{"semester": semester})
}

// CreateSemester creates a new semester for the current user
func (sc *SemesterController) CreateSemester(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req SemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date, expected YYYY-MM-DD"})
	}
	endDate, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date, expected YYYY-MM-DD"})
	}
	if endDate.Before(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must not be before start_date"})
	}

	status := req.Status
	if status == "" {
		status = models.SemesterStatusActive
	}
	if !utils.IsValidSemesterStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	semester := models.Semester{
		UserID:    user.ID,
		Name:      utils.SanitizeString(req.Name),
		StartDate: startDate,
		EndDate:   endDate,
		Status:    status,
		IsCurrent: req.IsCurrent,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if semester.IsCurrent {
			if err := tx.Model(&models.Semester{}).
				Where("user_id = ?", user.ID).
				Update("is_current", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&semester).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create semester",
		})
	}

	middleware.LogActivity(c, "CREATE", "semesters", semester.ID, fiber.Map{"name": semester.Name})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Semester created successfully",
		"semester": semester,
	})
}

// mergeSemesterDates folds requested date changes into updates. The stored
// pair merged with the changes must still satisfy start <= end, whichever
// side the request touches.
func mergeSemesterDates(semester *models.Semester, startStr, endStr string, updates map[string]interface{}) error {
	startDate := semester.StartDate
	endDate := semester.EndDate

	if startStr != "" {
		parsed, err := utils.ParseDate(startStr)
		if err != nil {
			return errors.New("Invalid start_date, expected YYYY-MM-DD")
		}
		startDate = parsed
		updates["start_date"] = parsed
	}
	if endStr != "" {
		parsed, err := utils.ParseDate(endStr)
		if err != nil {
			return errors.New("Invalid end_date, expected YYYY-MM-DD")
		}
		endDate = parsed
		updates["end_date"] = parsed
	}
	if endDate.Before(startDate) {
		return errors.New("end_date must not be before start_date")
	}
	return nil
}

// UpdateSemester updates a semester's fields
func (sc *SemesterController) UpdateSemester(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var semester models.Semester
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&semester).Error; err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	var req SemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = utils.SanitizeString(req.Name)
	}
	if err := mergeSemesterDates(&semester, req.StartDate, req.EndDate, updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Status != "" {
		if !utils.IsValidSemesterStatus(req.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&semester).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update semester",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "semesters", semester.ID, updates)

	return c.JSON(fiber.Map{
		"message":  "Semester updated successfully",
		"semester": semester,
	})
}

// SetCurrentSemester flags a semester as current, clearing any sibling flag
// inside the same transaction.
func (sc *SemesterController) SetCurrentSemester(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var semester models.Semester
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&semester).Error; err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Semester{}).
			Where("user_id = ? AND id <> ?", user.ID, semester.ID).
			Update("is_current", false).Error; err != nil {
			return err
		}
		return tx.Model(&semester).Update("is_current", true).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set current semester",
		})
	}

	middleware.LogActivity(c, "UPDATE", "semesters", semester.ID, fiber.Map{"is_current": true})

	return c.JSON(fiber.Map{
		"message":  "Current semester updated",
		"semester": semester,
	})
}

// DeleteSemester soft-deletes a semester and everything under it
func (sc *SemesterController) DeleteSemester(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var semester models.Semester
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&semester).Error; err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		subjectIDs := tx.Model(&models.Subject{}).Select("id").Where("semester_id = ?", semester.ID)

		if err := tx.Where("subject_id IN (?)", subjectIDs).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id IN (?)", subjectIDs).Delete(&models.RoutineEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("semester_id = ?", semester.ID).Delete(&models.Routine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("semester_id = ?", semester.ID).Delete(&models.Subject{}).Error; err != nil {
			return err
		}
		return tx.Delete(&semester).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete semester",
		})
	}

	middleware.LogActivity(c, "DELETE", "semesters", semester.ID, fiber.Map{"name": semester.Name})

	return c.JSON(fiber.Map{"message": "Semester deleted successfully"})
}
