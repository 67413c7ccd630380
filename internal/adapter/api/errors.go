package api

import (
	"errors"

	"adforge/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	ErrorKind string   `json:"errorKind"`
	Message   string   `json:"message"`
	Missing   []string `json:"missing,omitempty"`
}

var kindStatus = map[entity.ErrorKind]int{
	entity.KindInput:      fiber.StatusBadRequest,
	entity.KindValidation: fiber.StatusUnprocessableEntity,
	entity.KindSafety:     fiber.StatusUnprocessableEntity,
	entity.KindParse:      fiber.StatusBadGateway,
	entity.KindTransport:  fiber.StatusBadGateway,
}

// statusFor maps a usecase error to its HTTP status and body.
func statusFor(err error) (int, ErrorBody) {
	if pe, ok := entity.AsPipelineError(err); ok {
		status, known := kindStatus[pe.Kind]
		if !known {
			status = fiber.StatusInternalServerError
		}
		return status, ErrorBody{ErrorKind: string(pe.Kind), Message: pe.Error(), Missing: pe.Missing}
	}
	switch {
	case errors.Is(err, entity.ErrResourceNotFound):
		return fiber.StatusNotFound, ErrorBody{ErrorKind: "not_found", Message: err.Error()}
	case errors.Is(err, entity.ErrUnauthorized):
		return fiber.StatusUnauthorized, ErrorBody{ErrorKind: "unauthorized", Message: err.Error()}
	case errors.Is(err, entity.ErrFeatureDisabled):
		return fiber.StatusNotImplemented, ErrorBody{ErrorKind: "feature_disabled", Message: err.Error()}
	default:
		return fiber.StatusInternalServerError, ErrorBody{ErrorKind: "internal_error", Message: "internal server error"}
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{ErrorKind: string(entity.KindInput), Message: msg})
}
