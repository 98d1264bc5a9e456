package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"smartcontact/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// newValidator returns a validator that also knows the nonblank tag used on
// models.User.
func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic(fmt.Sprintf("handlers: register nonblank validation: %v", err))
	}
	return v
}

var errInvalidID = errors.New("id must be a positive integer")

// parseID reads the :id route parameter.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"success": false,
		"error":   err.Error(),
	})
}

// passwordRejected reports whether err is a password the client has to fix.
func passwordRejected(err error) bool {
	return errors.Is(err, services.ErrPasswordTooLong) || errors.Is(err, services.ErrPasswordRequired)
}

func internalError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"success": false,
		"error":   err.Error(),
	})
}

// validationFailed renders validator errors as a field to message map.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badRequest(c, "Validation failed", err)
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"success": false,
		"errors":  errorMessages,
	})
}
