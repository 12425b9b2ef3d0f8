package service

import (
	"context"
	"testing"

	"mikromatter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	upsertFn       func(context.Context, *models.User) error
	getByIDFn      func(context.Context, string) (*models.User, error)
	getWithStatsFn func(context.Context, string, string) (*models.UserStats, error)
	updateAvatarFn func(context.Context, string, string) error
	searchFn       func(context.Context, string, int, int) ([]*models.User, error)
}

func (s *userRepoStub) Upsert(ctx context.Context, user *models.User) error {
	return s.upsertFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetWithStats(ctx context.Context, id, currentUserID string) (*models.UserStats, error) {
	return s.getWithStatsFn(ctx, id, currentUserID)
}
func (s *userRepoStub) UpdateAvatar(ctx context.Context, id, imageURL string) error {
	return s.updateAvatarFn(ctx, id, imageURL)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		upsertFn:  func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.User, error) { return &models.User{ID: id}, nil },
		getWithStatsFn: func(_ context.Context, id, _ string) (*models.UserStats, error) {
			return &models.UserStats{User: models.User{ID: id}}, nil
		},
		updateAvatarFn: func(_ context.Context, _, _ string) error { return nil },
		searchFn:       func(_ context.Context, _ string, _, _ int) ([]*models.User, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn      func(context.Context, string, string) error
	unfollowFn    func(context.Context, string, string) error
	isFollowingFn func(context.Context, string, string) (bool, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID string) error {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID string) error {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ string) error { return nil },
		unfollowFn:    func(_ context.Context, _, _ string) error { return nil },
		isFollowingFn: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
	}
}

func TestFollow_RejectsSelfFollow(t *testing.T) {
	svc := NewUserService(noopUserRepo(), noopFollowRepo())
	err := svc.Follow(context.Background(), "u1", "u1")
	assertValidationError(t, err)
}

func TestFollow_RejectsMissingTarget(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, _ string) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewUserService(userRepo, noopFollowRepo())
	err := svc.Follow(context.Background(), "u1", "ghost")
	assertNotFoundError(t, err)
}

func TestFollow_Succeeds(t *testing.T) {
	followRepo := noopFollowRepo()
	var followed bool
	followRepo.followFn = func(_ context.Context, followerID, followingID string) error {
		followed = true
		assert.Equal(t, "u1", followerID)
		assert.Equal(t, "u2", followingID)
		return nil
	}

	svc := NewUserService(noopUserRepo(), followRepo)
	require.NoError(t, svc.Follow(context.Background(), "u1", "u2"))
	assert.True(t, followed)
}

func TestUpsertUser_RequiresID(t *testing.T) {
	svc := NewUserService(noopUserRepo(), noopFollowRepo())
	err := svc.UpsertUser(context.Background(), &models.User{Email: "no-id@example.com"})
	assertValidationError(t, err)
}

func TestSearchUsers_RequiresQuery(t *testing.T) {
	svc := NewUserService(noopUserRepo(), noopFollowRepo())
	_, err := svc.SearchUsers(context.Background(), "  ", 20, 0)
	assertValidationError(t, err)
}

func TestUpdateAvatar_RequiresURL(t *testing.T) {
	svc := NewUserService(noopUserRepo(), noopFollowRepo())
	err := svc.UpdateAvatar(context.Background(), "u1", " ")
	assertValidationError(t, err)
}
