package controllers

import (
	"attendtrack_go/database"
	"attendtrack_go/middleware"
	"attendtrack_go/models"
	"attendtrack_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubjectController struct{}

// SubjectRequest represents the create/update request body
type SubjectRequest struct {
	SemesterID              uint     `json:"semester_id"`
	Name                    string   `json:"name"`
	Code                    string   `json:"code"`
	Credit                  *float64 `json:"credit"`
	MinAttendancePercentage *float64 `json:"min_attendance_percentage"`
	Color                   string   `json:"color"`
}

// userOwnsSemester checks the semester belongs to the user.
func userOwnsSemester(db *gorm.DB, userID, semesterID uint) error {
	var semester models.Semester
	return db.Where("id = ? AND user_id = ?", semesterID, userID).First(&semester).Error
}

// userSubject loads a subject and verifies ownership through its semester.
func userSubject(db *gorm.DB, userID, subjectID uint) (*models.Subject, error) {
	var subject models.Subject
	err := db.Joins("JOIN semesters ON semesters.id = subjects.semester_id").
		Where("subjects.id = ? AND semesters.user_id = ?", subjectID, userID).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// GetSubjects lists the subjects of a semester
func (sc *SubjectController) GetSubjects(c *fiber.Ctx) error {
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

	var subjects []models.Subject
	if err := database.DB.Where("semester_id = ?", semesterID).
		Order("name").
		Find(&subjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch subjects",
		})
	}

	return c.JSON(fiber.Map{"subjects": subjects})
}

// GetSubject returns a single subject with its routine entries
func (sc *SubjectController) GetSubject(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	subject, err := userSubject(database.DB, user.ID, id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch subject")
	}

	database.DB.Preload("RoutineEntries").First(subject, subject.ID)

	return c.JSON(fiber.Map{"subject": subject})
}

// CreateSubject creates a subject under a semester
func (sc *SubjectController) CreateSubject(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}
	if req.SemesterID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "semester_id is required"})
	}
	if err := userOwnsSemester(database.DB, user.ID, req.SemesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	subject := models.Subject{
		SemesterID: req.SemesterID,
		Name:       utils.SanitizeString(req.Name),
		Code:       utils.SanitizeString(req.Code),
	}
	if req.Credit != nil {
		subject.Credit = *req.Credit
	}
	if req.MinAttendancePercentage != nil {
		min := *req.MinAttendancePercentage
		if min < 0 || min > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "min_attendance_percentage must be between 0 and 100",
			})
		}
		subject.MinAttendancePercentage = min
	}
	if req.Color != "" {
		subject.Color = req.Color
	}

	if err := database.DB.Create(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create subject",
		})
	}

	middleware.LogActivity(c, "CREATE", "subjects", subject.ID, fiber.Map{"name": subject.Name})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Subject created successfully",
		"subject": subject,
	})
}

// UpdateSubject updates a subject's fields
func (sc *SubjectController) UpdateSubject(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	subject, err := userSubject(database.DB, user.ID, id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch subject")
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = utils.SanitizeString(req.Name)
	}
	if req.Code != "" {
		updates["code"] = utils.SanitizeString(req.Code)
	}
	if req.Credit != nil {
		updates["credit"] = *req.Credit
	}
	if req.MinAttendancePercentage != nil {
		min := *req.MinAttendancePercentage
		if min < 0 || min > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "min_attendance_percentage must be between 0 and 100",
			})
		}
		updates["min_attendance_percentage"] = min
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}

	if len(updates) > 0 {
		if err := database.DB.Model(subject).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update subject",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "subjects", subject.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Subject updated successfully",
		"subject": subject,
	})
}

// DeleteSubject soft-deletes a subject, its routine entries and records
func (sc *SubjectController) DeleteSubject(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	subject, err := userSubject(database.DB, user.ID, id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch subject")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subject_id = ?", subject.ID).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", subject.ID).Delete(&models.RoutineEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(subject).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete subject",
		})
	}

	middleware.LogActivity(c, "DELETE", "subjects", subject.ID, fiber.Map{"name": subject.Name})

	return c.JSON(fiber.Map{"message": "Subject deleted successfully"})
}
