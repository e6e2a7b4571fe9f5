package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
)

// respondError maps a typed application error to an HTTP response.
// The reason field is the stable code clients branch on; the error
// field is the human-readable message.
func respondError(c *fiber.Ctx, err error) error {
	var ae *apperrors.Error
	if !errors.As(err, &ae) {
		log.Printf("❌ Unclassified error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	status := statusForError(ae)
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error":  ae.Message,
		"reason": ae.Reason,
	})
}

func statusForError(ae *apperrors.Error) int {
	// A few reasons override their kind's default status
	switch ae.Reason {
	case "ride_unavailable", "ride_in_past":
		return fiber.StatusBadRequest
	case "too_many_attempts":
		return fiber.StatusTooManyRequests
	case "invalid_token":
		return fiber.StatusUnauthorized
	}

	switch ae.Kind {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindConflict:
		return fiber.StatusConflict
	case apperrors.KindExpired:
		return fiber.StatusGone
	case apperrors.KindUnauthorized:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
