package controllers

import (
	"attendtrack_go/database"
	"attendtrack_go/middleware"
	"attendtrack_go/models"
	"attendtrack_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RoutineController struct{}

// RoutineEntryRequest represents one weekly slot in a routine request
type RoutineEntryRequest struct {
	SubjectID uint   `json:"subject_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Room      string `json:"room"`
	Notes     string `json:"notes"`
}

// RoutineRequest represents the create/replace request body
type RoutineRequest struct {
	Name    string                `json:"name"`
	Entries []RoutineEntryRequest `json:"entries"`
}

// validateEntry normalizes an entry's times and checks its shape. The
// returned entry carries canonical "HH:MM" times.
func validateEntry(db *gorm.DB, semesterID uint, req *RoutineEntryRequest) (*models.RoutineEntry, error) {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "day_of_week must be between 0 (Monday) and 6 (Sunday)")
	}

	startTime, err := utils.NormalizeClockTime(req.StartTime)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid start_time, expected HH:MM")
	}
	endTime, err := utils.NormalizeClockTime(req.EndTime)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid end_time, expected HH:MM")
	}
	if startTime >= endTime {
		return nil, fiber.NewError(fiber.StatusBadRequest, "start_time must be before end_time")
	}

	var subject models.Subject
	if err := db.Where("id = ? AND semester_id = ?", req.SubjectID, semesterID).First(&subject).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "subject_id does not belong to this semester")
	}

	return &models.RoutineEntry{
		SubjectID: req.SubjectID,
		DayOfWeek: req.DayOfWeek,
		StartTime: startTime,
		EndTime:   endTime,
		Room:      utils.SanitizeString(req.Room),
		Notes:     req.Notes,
	}, nil
}

// checkOverlaps rejects entry sets where two slots on the same day overlap.
func checkOverlaps(entries []models.RoutineEntry) error {
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].DayOfWeek != entries[j].DayOfWeek {
				continue
			}
			if utils.ClockTimesOverlap(entries[i].StartTime, entries[i].EndTime, entries[j].StartTime, entries[j].EndTime) {
				return fiber.NewError(fiber.StatusBadRequest, "routine entries overlap on the same day")
			}
		}
	}
	return nil
}

// GetRoutine returns the routine for a semester with entries preloaded
func (rc *RoutineController) GetRoutine(c *fiber.Ctx) error {
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

	var routine models.Routine
	err = database.DB.Preload("Entries.Subject").
		Where("semester_id = ?", semesterID).
		First(&routine).Error
	if err != nil {
		return serviceError(c, err, "Failed to fetch routine")
	}

	return c.JSON(fiber.Map{"routine": routine})
}

// CreateOrReplaceRoutine creates the semester's routine, or replaces its
// entries if one already exists. Attendance records generated from the old
// entries are not touched.
func (rc *RoutineController) CreateOrReplaceRoutine(c *fiber.Ctx) error {
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

	var req RoutineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entries := make([]models.RoutineEntry, 0, len(req.Entries))
	for i := range req.Entries {
		entry, err := validateEntry(database.DB, semesterID, &req.Entries[i])
		if err != nil {
			return err
		}
		entries = append(entries, *entry)
	}
	if err := checkOverlaps(entries); err != nil {
		return err
	}

	var routine models.Routine
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("semester_id = ?", semesterID).First(&routine).Error
		switch {
		case err == nil:
			if err := tx.Where("routine_id = ?", routine.ID).Delete(&models.RoutineEntry{}).Error; err != nil {
				return err
			}
			if req.Name != "" {
				if err := tx.Model(&routine).Update("name", utils.SanitizeString(req.Name)).Error; err != nil {
					return err
				}
			}
		case err == gorm.ErrRecordNotFound:
			routine = models.Routine{SemesterID: semesterID, IsActive: true}
			if req.Name != "" {
				routine.Name = utils.SanitizeString(req.Name)
			}
			if err := tx.Create(&routine).Error; err != nil {
				return err
			}
		default:
			return err
		}

		for i := range entries {
			entries[i].RoutineID = routine.ID
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save routine",
		})
	}

	database.DB.Preload("Entries.Subject").First(&routine, routine.ID)

	middleware.LogActivity(c, "UPDATE", "routines", routine.ID, fiber.Map{"entries": len(entries)})

	return c.JSON(fiber.Map{
		"message": "Routine saved successfully",
		"routine": routine,
	})
}

// AddEntry appends a single slot to the semester's routine
func (rc *RoutineController) AddEntry(c *fiber.Ctx) error {
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

	var routine models.Routine
	if err := database.DB.Preload("Entries").
		Where("semester_id = ?", semesterID).
		First(&routine).Error; err != nil {
		return serviceError(c, err, "Failed to fetch routine")
	}

	var req RoutineEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entry, err := validateEntry(database.DB, semesterID, &req)
	if err != nil {
		return err
	}
	entry.RoutineID = routine.ID

	if err := checkOverlaps(append(routine.Entries, *entry)); err != nil {
		return err
	}

	if err := database.DB.Create(entry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create routine entry",
		})
	}

	middleware.LogActivity(c, "CREATE", "routines", routine.ID, fiber.Map{"entry_id": entry.ID})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Routine entry created successfully",
		"entry":   entry,
	})
}

// DeleteEntry removes a single slot from the routine
func (rc *RoutineController) DeleteEntry(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	entryID, err := parseIDParam(c, "entryId")
	if err != nil {
		return err
	}

	var entry models.RoutineEntry
	err = database.DB.
		Joins("JOIN routines ON routines.id = routine_entries.routine_id").
		Joins("JOIN semesters ON semesters.id = routines.semester_id").
		Where("routine_entries.id = ? AND semesters.user_id = ?", entryID, user.ID).
		First(&entry).Error
	if err != nil {
		return serviceError(c, err, "Failed to fetch routine entry")
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete routine entry",
		})
	}

	middleware.LogActivity(c, "DELETE", "routines", entry.RoutineID, fiber.Map{"entry_id": entry.ID})

	return c.JSON(fiber.Map{"message": "Routine entry deleted successfully"})
}
