// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"gorm.io/gorm"

	"mikromatter/internal/cache"
	"mikromatter/internal/models"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string, currentUserID string) (*models.Post, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int, currentUserID string) ([]*models.Post, error)
	GetByHashtag(ctx context.Context, tag string, limit, offset int, currentUserID string) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int, currentUserID string) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
	IsLiked(ctx context.Context, userID, postID string) (bool, error)
	Repost(ctx context.Context, userID, postID string) error
	Unrepost(ctx context.Context, userID, postID string) error
	IsReposted(ctx context.Context, userID, postID string) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePost(ctx, post.ID)
		cache.InvalidateUserStats(ctx, post.UserID)
	}
	return err
}

// GetByID serves anonymous reads cache-aside; their counts and flags are the
// same for every viewer. Authenticated reads carry per-viewer flags and go
// straight to the database.
func (r *postRepository) GetByID(ctx context.Context, id string, currentUserID string) (*models.Post, error) {
	if currentUserID == "" {
		return cache.Aside(ctx, cache.PostKey(id, ""), cache.PostTTL, func() (*models.Post, error) {
			return r.getByID(ctx, id, "")
		})
	}
	return r.getByID(ctx, id, currentUserID)
}

func (r *postRepository) getByID(ctx context.Context, id string, currentUserID string) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID string, limit, offset int, currentUserID string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetByHashtag(ctx context.Context, tag string, limit, offset int, currentUserID string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
		Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
		Where("hashtags.name = ?", tag).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// List caches anonymous feed pages briefly; writes invalidate every page.
func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Post, error) {
	if currentUserID == "" {
		return cache.Aside(ctx, cache.PostsListKey("", limit, offset), cache.PostListTTL, func() ([]*models.Post, error) {
			return r.list(ctx, limit, offset, "")
		})
	}
	return r.list(ctx, limit, offset, currentUserID)
}

func (r *postRepository) list(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, currentUserID string) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + query + "%"
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("posts.content ILIKE ?", like).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// applyPostDetails adds subqueries to fetch counts and viewer flags in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID string) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"(SELECT COUNT(*) FROM reposts WHERE reposts.post_id = posts.id) as reposts_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count"

	if currentUserID != "" {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as is_liked"+
			", EXISTS(SELECT 1 FROM reposts WHERE reposts.post_id = posts.id AND reposts.user_id = ?) as is_reposted",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery + ", false as is_liked, false as is_reposted")
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, id)
	}
	return err
}

func (r *postRepository) Like(ctx context.Context, userID, postID string) error {
	// INSERT ... ON CONFLICT DO NOTHING makes repeated likes a no-op
	// and avoids duplicate key errors under races
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return result.Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Repost(ctx context.Context, userID, postID string) error {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO reposts (user_id, post_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return result.Error
}

func (r *postRepository) Unrepost(ctx context.Context, userID, postID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Repost{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

func (r *postRepository) IsReposted(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Repost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
