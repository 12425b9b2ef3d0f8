package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mikromatter/internal/cache"
	"mikromatter/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetWithStats(ctx context.Context, id string, currentUserID string) (*models.UserStats, error)
	UpdateAvatar(ctx context.Context, id string, imageURL string) error
	Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert creates the user or refreshes profile fields on conflict. Identity
// comes from the auth provider, so the first authenticated request creates
// the row and later logins keep it current.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "first_name", "last_name", "profile_image_url", "updated_at",
		}),
	}).Create(user).Error
	if err == nil {
		cache.InvalidateUserStats(ctx, user.ID)
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWithStats returns the user's profile with follower, following and post
// counts plus whether the viewer follows them, all in one query.
func (r *userRepository) GetWithStats(ctx context.Context, id string, currentUserID string) (*models.UserStats, error) {
	selectQuery := "users.*, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) as posts_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) as following_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id) as followers_count"

	db := r.db.WithContext(ctx).Model(&models.User{})
	if currentUserID != "" {
		db = db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM follows WHERE follows.follower_id = ? AND follows.following_id = users.id) as is_following",
			currentUserID)
	} else {
		db = db.Select(selectQuery + ", false as is_following")
	}

	var stats models.UserStats
	if err := db.Where("users.id = ?", id).First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id string, imageURL string) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("profile_image_url", imageURL).Error
	if err == nil {
		cache.InvalidateUserStats(ctx, id)
	}
	return err
}

func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", like, like, like).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}
