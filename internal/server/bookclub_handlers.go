package server

import (
	"github.com/gofiber/fiber/v2"

	"mikromatter/internal/models"
	"mikromatter/internal/service"
)

// BookclubRequest is the request body for creating or updating a bookclub.
type BookclubRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	CurrentBook   string `json:"current_book"`
	CurrentAuthor string `json:"current_author"`
	AuthorWebsite string `json:"author_website"`
	BookCoverURL  string `json:"book_cover_url"`
}

// GetBookclubs lists bookclubs, newest first.
func (s *Server) GetBookclubs(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	clubs, err := s.bookclubService.ListBookclubs(c.Context(), p.Limit, p.Offset, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(clubs)
}

// GetBookclub returns a single bookclub with member count and viewer flags.
func (s *Server) GetBookclub(c *fiber.Ctx) error {
	clubID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	club, err := s.bookclubService.GetBookclub(c.Context(), clubID, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(club)
}

// GetBookclubMembers lists a bookclub's members, oldest first.
func (s *Server) GetBookclubMembers(c *fiber.Ctx) error {
	clubID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	members, err := s.bookclubService.ListMembers(c.Context(), clubID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(members)
}

// CreateBookclub creates a bookclub with the authenticated user as creator
// and first member.
func (s *Server) CreateBookclub(c *fiber.Ctx) error {
	var req BookclubRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	club, err := s.bookclubService.CreateBookclub(c.Context(), service.CreateBookclubInput{
		CreatorID:     currentUserID(c),
		Name:          req.Name,
		Description:   req.Description,
		CurrentBook:   req.CurrentBook,
		CurrentAuthor: req.CurrentAuthor,
		AuthorWebsite: req.AuthorWebsite,
		BookCoverURL:  req.BookCoverURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(club)
}

// UpdateBookclub lets the creator change the club profile and current book.
func (s *Server) UpdateBookclub(c *fiber.Ctx) error {
	clubID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	var req BookclubRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	club, err := s.bookclubService.UpdateBookclub(c.Context(), service.UpdateBookclubInput{
		UserID:        currentUserID(c),
		BookclubID:    clubID,
		Name:          req.Name,
		Description:   req.Description,
		CurrentBook:   req.CurrentBook,
		CurrentAuthor: req.CurrentAuthor,
		AuthorWebsite: req.AuthorWebsite,
		BookCoverURL:  req.BookCoverURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(club)
}

// DeleteBookclub removes the club. Creator only; memberships cascade.
func (s *Server) DeleteBookclub(c *fiber.Ctx) error {
	clubID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.bookclubService.DeleteBookclub(c.Context(), clubID, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// JoinBookclub adds the authenticated user as a member. Joining twice is a
// no-op.
func (s *Server) JoinBookclub(c *fiber.Ctx) error {
	clubID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.bookclubService.JoinBookclub(c.Context(), clubID, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LeaveBookclub removes the authenticated user's membership. The creator
// cannot leave their own club.
func (s *Server) LeaveBookclub(c *fiber.Ctx) error {
	clubID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.bookclubService.LeaveBookclub(c.Context(), clubID, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
