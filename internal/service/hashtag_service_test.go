package service

import (
	"context"
	"testing"

	"mikromatter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashtagRepoStub is a stub for repository.HashtagRepository.
type hashtagRepoStub struct {
	findOrCreateFn func(context.Context, string) (*models.Hashtag, error)
	linkFn         func(context.Context, string, string) error
	getByNameFn    func(context.Context, string) (*models.Hashtag, error)
	trendingFn     func(context.Context, int) ([]models.TrendingHashtag, error)
}

func (s *hashtagRepoStub) FindOrCreate(ctx context.Context, name string) (*models.Hashtag, error) {
	return s.findOrCreateFn(ctx, name)
}
func (s *hashtagRepoStub) Link(ctx context.Context, postID, hashtagID string) error {
	return s.linkFn(ctx, postID, hashtagID)
}
func (s *hashtagRepoStub) GetByName(ctx context.Context, name string) (*models.Hashtag, error) {
	return s.getByNameFn(ctx, name)
}
func (s *hashtagRepoStub) Trending(ctx context.Context, limit int) ([]models.TrendingHashtag, error) {
	return s.trendingFn(ctx, limit)
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "just plain words", nil},
		{"single", "loving #golang today", []string{"golang"}},
		{"punctuation ends tag", "what a ride, #thriller!", []string{"thriller"}},
		{"case folds", "#Fantasy and #fantasy and #FANTASY", []string{"fantasy"}},
		{"first seen order kept", "#beta #alpha #beta", []string{"beta", "alpha"}},
		{"digits and underscores", "#book_club #2024reads", []string{"book_club", "2024reads"}},
		{"bare hash ignored", "a # alone and #real", []string{"real"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.content))
		})
	}
}

func TestIndexPost_LinksEveryTag(t *testing.T) {
	var created, linked []string
	repo := &hashtagRepoStub{
		findOrCreateFn: func(_ context.Context, name string) (*models.Hashtag, error) {
			created = append(created, name)
			return &models.Hashtag{ID: "h-" + name, Name: name}, nil
		},
		linkFn: func(_ context.Context, postID, hashtagID string) error {
			linked = append(linked, postID+"/"+hashtagID)
			return nil
		},
	}
	svc := NewHashtagService(repo, noopPostRepo())

	err := svc.IndexPost(context.Background(), "p1", "reading #fantasy with the #book_club")
	require.NoError(t, err)
	assert.Equal(t, []string{"fantasy", "book_club"}, created)
	assert.Equal(t, []string{"p1/h-fantasy", "p1/h-book_club"}, linked)
}

func TestTrending_DefaultLimit(t *testing.T) {
	var gotLimit int
	repo := &hashtagRepoStub{
		trendingFn: func(_ context.Context, limit int) ([]models.TrendingHashtag, error) {
			gotLimit = limit
			return []models.TrendingHashtag{{Name: "golang", Count: 3}}, nil
		},
	}
	svc := NewHashtagService(repo, noopPostRepo())

	trending, err := svc.Trending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, gotLimit)
	assert.Len(t, trending, 1)

	_, err = svc.Trending(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, gotLimit)
}

func TestPostsByTag_NormalizesName(t *testing.T) {
	postRepo := noopPostRepo()
	var gotTag string
	postRepo.getByHashtagFn = func(_ context.Context, tag string, _, _ int, _ string) ([]*models.Post, error) {
		gotTag = tag
		return nil, nil
	}
	svc := NewHashtagService(&hashtagRepoStub{}, postRepo)

	_, err := svc.PostsByTag(context.Background(), " #Fantasy ", 20, 0, "")
	require.NoError(t, err)
	assert.Equal(t, "fantasy", gotTag)

	_, err = svc.PostsByTag(context.Background(), "  ", 20, 0, "")
	assertValidationError(t, err)
}
