package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mikromatter/internal/models"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// requireParam extracts a non-empty route parameter. On failure it writes a
// 400 JSON response and returns errResponseWritten; callers should then
// return nil.
func requireParam(c *fiber.Ctx, param string) (string, error) {
	value := c.Params(param)
	if value == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing "+param))
		return "", errResponseWritten
	}
	return value, nil
}

// currentUserID returns the authenticated user ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok {
		return uid
	}
	return ""
}

// respondServiceError maps service and repository errors onto HTTP statuses:
// record-not-found -> 404, AppError codes -> their statuses, anything
// else -> 500 with a generic message.
func respondServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			&models.AppError{Code: "NOT_FOUND", Message: "Resource not found"})
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "FORBIDDEN":
			return models.RespondWithError(c, fiber.StatusForbidden, appErr)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
	}

	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}
