package handlers

import (
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/gofiber/fiber/v2"
)

// respondError writes {"error": message} with the status matching the error category
func respondError(c *fiber.Ctx, err error) error {
	if serviceErr, ok := shared.AsServiceError(err); ok {
		return c.Status(serviceErr.HTTPStatus()).JSON(fiber.Map{
			"error": serviceErr.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
