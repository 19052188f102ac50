package handler

import (
	"errors"

	"go-pos-farmstall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Helpers for user info set by the auth middleware.
func getUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}

func getUsername(c *fiber.Ctx) string {
	if name, ok := c.Locals("username").(string); ok {
		return name
	}
	return "system"
}

// serviceError maps domain errors onto HTTP statuses with the error message
// as body. Unknown errors stay a 400 so storage detail never leaks.
func serviceError(c *fiber.Ctx, err error) error {
	status := 400
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = 404
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDuplicateBarcode),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrProductReferenced),
		errors.Is(err, service.ErrInsufficientStock):
		status = 409
	case errors.Is(err, service.ErrBarcodeExhausted):
		status = 500
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
