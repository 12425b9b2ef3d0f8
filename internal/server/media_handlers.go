package server

import (
	"github.com/gofiber/fiber/v2"

	"mikromatter/internal/models"
	"mikromatter/internal/objectstore"
)

// FinalizeUploadRequest carries the raw storage URL the client uploaded to.
type FinalizeUploadRequest struct {
	URL string `json:"url"`
}

// AvatarUploadURL issues a presigned URL for uploading a profile image.
func (s *Server) AvatarUploadURL(c *fiber.Ctx) error {
	if s.objectStore == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Uploads are not configured"))
	}

	ticket, err := s.objectStore.UploadURL(c.Context(), objectstore.KindAvatar)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ticket)
}

// UpdateAvatar finalizes an avatar upload and points the user's profile at it.
func (s *Server) UpdateAvatar(c *fiber.Ctx) error {
	if s.objectStore == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Uploads are not configured"))
	}

	var req FinalizeUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	path, err := s.objectStore.Finalize(c.Context(), req.URL)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.userService.UpdateAvatar(c.Context(), currentUserID(c), path); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"profile_image_url": path})
}

// PostImageUploadURL issues a presigned URL for uploading a post image.
func (s *Server) PostImageUploadURL(c *fiber.Ctx) error {
	if s.objectStore == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Uploads are not configured"))
	}

	ticket, err := s.objectStore.UploadURL(c.Context(), objectstore.KindPostImage)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ticket)
}

// PostImageFinalize normalizes an uploaded post image URL into its stable
// serving path. The client sends the path back as image_url on post creation.
func (s *Server) PostImageFinalize(c *fiber.Ctx) error {
	if s.objectStore == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Uploads are not configured"))
	}

	var req FinalizeUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	path, err := s.objectStore.Finalize(c.Context(), req.URL)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"object_path": path})
}
