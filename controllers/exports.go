package controllers

import (
	"attendtrack_go/database"
	"attendtrack_go/middleware"
	"attendtrack_go/services"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	exports *services.ExportService
}

// NewExportController creates a new controller instance
func NewExportController() *ExportController {
	return &ExportController{exports: services.NewExportService()}
}

// CreateExport builds and uploads a semester export. Format defaults to
// xlsx; pass ?format=bundle for the CSV/JSON zip.
func (ec *ExportController) CreateExport(c *fiber.Ctx) error {
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

	var archive interface{}
	switch c.Query("format", "xlsx") {
	case "xlsx":
		archive, err = ec.exports.ExportSemester(semesterID)
	case "bundle":
		archive, err = ec.exports.ExportSemesterBundle(semesterID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "format must be xlsx or bundle"})
	}
	if err != nil {
		return serviceError(c, err, "Failed to create export")
	}

	middleware.LogActivity(c, "CREATE", "exports", semesterID, fiber.Map{
		"format": c.Query("format", "xlsx"),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Export created successfully",
		"export":  archive,
	})
}

// ListExports lists a semester's export archives
func (ec *ExportController) ListExports(c *fiber.Ctx) error {
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

	archives, err := ec.exports.ListExports(semesterID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch exports")
	}

	return c.JSON(fiber.Map{"exports": archives})
}

// DownloadExport streams an export file from S3
func (ec *ExportController) DownloadExport(c *fiber.Ctx) error {
	if _, err := middleware.GetCurrentUser(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	reader, fileName, err := ec.exports.DownloadExport(id)
	if err != nil {
		return serviceError(c, err, "Failed to download export")
	}

	c.Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	return c.SendStream(reader)
}
