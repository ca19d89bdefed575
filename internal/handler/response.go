package handler

import (
	"errors"
	"log"

	"go-shoeroom/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponder writes classified errors as {"error", "message", "details"}.
// Outside production the underlying cause is added as "detail".
type ErrorResponder struct {
	Production bool
}

func (r ErrorResponder) Respond(c *fiber.Ctx, err error) error {
	appErr := apperror.From(err)
	status := appErr.Status()

	body := fiber.Map{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	if !r.Production && appErr.Err != nil {
		body["detail"] = appErr.Err.Error()
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(body)
}

func (r ErrorResponder) invalidJSON(c *fiber.Ctx, err error) error {
	return r.Respond(c, &apperror.Error{
		Code:    apperror.CodeInvalidRequest,
		Message: "Invalid JSON",
		Err:     err,
	})
}

// FiberErrorHandler renders errors that escape handlers (unknown routes,
// recovered panics) in the same shape as classified errors.
func (r ErrorResponder) FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return r.Respond(c, err)
}
