package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetUserProfile returns a user's profile with post, follower and following
// counts, plus whether the viewer follows them.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	stats, err := s.userService.GetUserStats(c.Context(), userID, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// GetUserPosts returns a user's posts, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.Context(), userID, p.Limit, p.Offset, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// FollowUser makes the authenticated user follow the target user.
// Following an already-followed user is a no-op.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.Follow(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser removes the follow edge. Unfollowing a user who was never
// followed is a no-op.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.Unfollow(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserBookclubs returns the bookclubs the user belongs to.
func (s *Server) GetUserBookclubs(c *fiber.Ctx) error {
	userID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	clubs, err := s.bookclubService.GetUserBookclubs(c.Context(), userID, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(clubs)
}
