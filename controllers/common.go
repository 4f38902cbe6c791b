package controllers

import (
	"errors"
	"strconv"

	"attendtrack_go/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// parseIDParam reads a numeric path parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// serviceError maps service-layer errors onto HTTP responses. Validation
// failures are 400, missing rows 404, duplicate records 409, everything
// else 500 with a generic message.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Message, "field": ve.Field})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	}
	if errors.Is(err, services.ErrDuplicateRecord) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A class already exists for this subject, date and start time"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}
