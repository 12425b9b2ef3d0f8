package server

import (
	"github.com/gofiber/fiber/v2"

	"mikromatter/internal/models"
)

// GenerateIdeasRequest is the request body for post idea generation.
type GenerateIdeasRequest struct {
	Topic string `json:"topic"`
}

// ProofreadRequest is the request body for proofreading a draft.
type ProofreadRequest struct {
	Text string `json:"text"`
}

// GenerateIdeas asks the writing assistant for post ideas, optionally
// focused on a topic.
func (s *Server) GenerateIdeas(c *fiber.Ctx) error {
	if s.assistant == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Writing assistant is not configured"))
	}

	var req GenerateIdeasRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ideas, err := s.assistant.GenerateIdeas(c.Context(), req.Topic)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ideas": ideas})
}

// Proofread returns a corrected version of the draft with per-change notes.
func (s *Server) Proofread(c *fiber.Ctx) error {
	if s.assistant == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Writing assistant is not configured"))
	}

	var req ProofreadRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.assistant.Proofread(c.Context(), req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
