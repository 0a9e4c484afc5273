// Package presenter shapes handler output. Errors always carry a
// human-readable message; job store messages pass through verbatim.
package presenter

import "github.com/gofiber/fiber/v2"

type ErrorResponse struct {
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// ErrorFrom renders err's message directly. Used where the error text is
// already user-facing (input validation, pipeline sequencing).
func ErrorFrom(c *fiber.Ctx, status int, err error) error {
	return Error(c, status, err.Error())
}
