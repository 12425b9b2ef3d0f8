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

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// UpsertUser creates or refreshes the user row from auth-provider claims.
// Called on login so the profile stays in sync with the identity provider.
func (s *UserService) UpsertUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return models.NewValidationError("User ID is required")
	}
	return s.userRepo.Upsert(ctx, user)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserStats returns the profile with counts and the viewer's follow flag.
func (s *UserService) GetUserStats(ctx context.Context, id string, currentUserID string) (*models.UserStats, error) {
	return cache.Aside(ctx, cache.UserStatsKey(id, currentUserID), cache.UserTTL, func() (*models.UserStats, error) {
		return s.userRepo.GetWithStats(ctx, id, currentUserID)
	})
}

// Follow makes followerID follow followingID. Following yourself is
// rejected; following someone twice is a no-op.
func (s *UserService) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return models.NewValidationError("You cannot follow yourself")
	}
	// Reject follows of users that don't exist
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", followingID)
		}
		return err
	}
	return s.followRepo.Follow(ctx, followerID, followingID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followingID string) error {
	return s.followRepo.Unfollow(ctx, followerID, followingID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followingID)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}

// UpdateAvatar points the user's profile image at an uploaded object.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return models.NewValidationError("image_url is required")
	}
	return s.userRepo.UpdateAvatar(ctx, userID, imageURL)
}
