package repository

import (
	"context"

	"gorm.io/gorm"

	"mikromatter/internal/cache"
	"mikromatter/internal/models"
)

// FollowRepository defines the interface for follow graph operations
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID string) error {
	// Repeated follows are a no-op
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (follower_id, following_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID,
	)
	if result.Error == nil {
		cache.InvalidateUserStats(ctx, followerID)
		cache.InvalidateUserStats(ctx, followingID)
	}
	return result.Error
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID string) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
	if err == nil {
		cache.InvalidateUserStats(ctx, followerID)
		cache.InvalidateUserStats(ctx, followingID)
	}
	return err
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
