package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"mikromatter/internal/cache"
	"mikromatter/internal/models"
	"mikromatter/internal/repository"
)

const maxContentLen = 6000

type PostService struct {
	postRepo    repository.PostRepository
	hashtagSvc  *HashtagService
	commentRepo repository.CommentRepository

	// broadcast is called after a post is created so connected clients see
	// it immediately. Nil disables realtime delivery (tests, seed tool).
	broadcast func(ctx context.Context, post *models.Post)
}

type CreatePostInput struct {
	UserID   string
	Content  string
	ImageURL string
}

type CreateCommentInput struct {
	UserID  string
	PostID  string
	Content string
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	hashtagSvc *HashtagService,
	broadcast func(ctx context.Context, post *models.Post),
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		hashtagSvc:  hashtagSvc,
		broadcast:   broadcast,
	}
}

// WordCount counts whitespace-separated words. Leading and trailing
// whitespace does not produce empty words.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// CreatePost validates and stores a post, indexes its hashtags, and
// broadcasts the stored view to connected clients.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 6000 characters)")
	}

	post := &models.Post{
		UserID:    in.UserID,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		WordCount: WordCount(in.Content),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.hashtagSvc != nil {
		if err := s.hashtagSvc.IndexPost(ctx, post.ID, post.Content); err != nil {
			return nil, err
		}
	}

	// Re-read so the response carries counts, flags and the author
	created, err := s.postRepo.GetByID(ctx, post.ID, in.UserID)
	if err != nil {
		return nil, err
	}

	if s.broadcast != nil {
		s.broadcast(ctx, created)
	}
	return created, nil
}

func (s *PostService) GetPost(ctx context.Context, id string, currentUserID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID string, limit, offset int, currentUserID string) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int, currentUserID string) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, limit, offset, currentUserID)
}

// DeletePost removes a post after checking ownership.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	// The author's cached stats carry a post count
	cache.InvalidateUserStats(ctx, post.UserID)
	return nil
}

// LikePost records a like. Liking an already-liked post is a no-op and the
// returned post reflects the current state either way.
func (s *PostService) LikePost(ctx context.Context, userID, postID string) (*models.Post, error) {
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID string) (*models.Post, error) {
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) RepostPost(ctx context.Context, userID, postID string) (*models.Post, error) {
	if err := s.postRepo.Repost(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) UnrepostPost(ctx context.Context, userID, postID string) (*models.Post, error) {
	if err := s.postRepo.Unrepost(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// CreateComment validates and stores a comment on an existing post.
func (s *PostService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 6000 characters)")
	}

	// Reject comments on posts that don't exist
	if _, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	comment := &models.Comment{
		UserID:  in.UserID,
		PostID:  in.PostID,
		Content: in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *PostService) ListComments(ctx context.Context, postID string, limit, offset int) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

// DeleteComment removes a comment after checking ownership.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
