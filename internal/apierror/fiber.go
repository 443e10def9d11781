package apierror

import "github.com/gofiber/fiber/v2"

// Send writes a plain detail message with the given status.
func Send(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Message(msg))
}

// SendProblems writes a structured detail list with 422 Unprocessable Entity.
func SendProblems(c *fiber.Ctx, problems []Problem) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(Validation(problems...))
}

// ErrorHandler renders fiber errors (unknown routes, body limits, panics turned into
// errors) in the detail envelope so every failure has the same shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return Send(c, code, err.Error())
}
