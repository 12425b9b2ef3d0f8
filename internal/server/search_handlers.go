package server

import (
	"github.com/gofiber/fiber/v2"
)

// SearchUsers finds users whose name or email matches the query.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, err := s.userService.SearchUsers(c.Context(), c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// SearchPosts finds posts whose content matches the query.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.SearchPosts(c.Context(), c.Query("q"), p.Limit, p.Offset, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}
