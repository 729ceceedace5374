package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"learnhub/backend/lms"
)

// SuccessResponse структура для успешных ответов
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Retry   bool        `json:"retry,omitempty"`
}

// Success создает успешный JSON ответ
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

// Error создает JSON ответ с ошибкой
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// OK sends a 200 with data.
func OK(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusOK, data)
}

// Created отправляет ответ 201 Created
func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

// ValidationError создает JSON ответ для ошибок валидации
func ValidationError(c *fiber.Ctx, message string, details []lms.FieldError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Success: false,
		Error:   "Validation Error",
		Message: message,
		Details: details,
	})
}

// BadRequest отправляет ответ 400 Bad Request
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

// Unauthorized отправляет ответ 401 Unauthorized
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

// Forbidden отправляет ответ 403 Forbidden
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, fiber.NewError(fiber.StatusForbidden, message))
}

// Fail maps an lms error onto the response envelope. Persistence failures
// are reported as 503 with retry set so the client can offer a retry.
func Fail(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Error(c, fe.Code, fe)
	}

	switch lms.KindOf(err) {
	case lms.KindValidation:
		return ValidationError(c, err.Error(), lms.FieldsOf(err))
	case lms.KindNotFound:
		return Error(c, fiber.StatusNotFound, err)
	case lms.KindDuplicate:
		return Error(c, fiber.StatusConflict, err)
	case lms.KindForbidden:
		return Error(c, fiber.StatusForbidden, err)
	case lms.KindPersistence:
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Success: false,
			Error:   http.StatusText(fiber.StatusServiceUnavailable),
			Message: "the change could not be saved, please try again",
			Retry:   true,
		})
	default:
		return Error(c, fiber.StatusInternalServerError, errors.New("internal server error"))
	}
}
