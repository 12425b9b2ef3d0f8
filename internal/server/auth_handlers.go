package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"mikromatter/internal/models"
)

// GetAuthUser returns the authenticated user's own profile with stats,
// creating or refreshing the row from token claims first. The identity
// provider owns profile fields; this keeps the local row in sync.
func (s *Server) GetAuthUser(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user := &models.User{ID: userID}
	if claims, ok := c.Locals("claims").(jwt.MapClaims); ok {
		if email, ok := claims["email"].(string); ok {
			user.Email = email
		}
		if firstName, ok := claims["first_name"].(string); ok {
			user.FirstName = firstName
		}
		if lastName, ok := claims["last_name"].(string); ok {
			user.LastName = lastName
		}
		if imageURL, ok := claims["profile_image_url"].(string); ok {
			user.ProfileImageURL = imageURL
		}
	}

	if err := s.userService.UpsertUser(c.Context(), user); err != nil {
		return respondServiceError(c, err)
	}

	stats, err := s.userService.GetUserStats(c.Context(), userID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}
