package server

import (
	"github.com/gofiber/fiber/v2"

	"mikromatter/internal/models"
	"mikromatter/internal/service"
)

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// CreateCommentRequest is the request body for commenting on a post.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CreatePost stores a new post, indexes its hashtags and broadcasts it to
// connected clients.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts returns the global feed, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), p.Limit, p.Offset, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost returns a single post with counts and viewer flags.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes the authenticated user's own post. Likes, reposts,
// comments and hashtag links go with it via cascade.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost records a like and returns the refreshed post.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.LikePost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UnlikePost removes a like and returns the refreshed post.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.UnlikePost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// RepostPost records a repost and returns the refreshed post.
func (s *Server) RepostPost(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.RepostPost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UnrepostPost removes a repost and returns the refreshed post.
func (s *Server) UnrepostPost(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.UnrepostPost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetComments returns a post's comments, newest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	comments, err := s.postService.ListComments(c.Context(), postID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment adds a comment to a post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.postService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment removes the authenticated user's own comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := requireParam(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteComment(c.Context(), currentUserID(c), commentID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
