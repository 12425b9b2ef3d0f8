package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetTrendingHashtags returns the most-used hashtags, count descending.
func (s *Server) GetTrendingHashtags(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	trending, err := s.hashtagService.Trending(c.Context(), limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(trending)
}

// GetHashtagPosts returns the posts carrying a hashtag, newest first. An
// unknown tag yields an empty list.
func (s *Server) GetHashtagPosts(c *fiber.Ctx) error {
	name, err := requireParam(c, "name")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.hashtagService.PostsByTag(c.Context(), name, p.Limit, p.Offset, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}
