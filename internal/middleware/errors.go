package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// JSONError shapes every handler error as {"error": message} with the
// appropriate status code: 400s keep their validation message, anything
// unclassified collapses to a 500 with the error text.
func JSONError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
