package utils

import "github.com/gofiber/fiber/v2"

// Error writes the API's uniform error body. Messages are short and
// human-readable; storage or upstream error text never passes through.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func Message(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
	})
}
