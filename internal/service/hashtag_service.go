// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"context"
	"regexp"
	"strings"

	"mikromatter/internal/cache"
	"mikromatter/internal/models"
	"mikromatter/internal/repository"
)

const defaultTrendingLimit = 10

// hashtagPattern matches a # followed by word characters. Punctuation ends
// the tag, so "#go!" yields "go".
var hashtagPattern = regexp.MustCompile(`#(\w+)`)

type HashtagService struct {
	hashtagRepo repository.HashtagRepository
	postRepo    repository.PostRepository
}

func NewHashtagService(hashtagRepo repository.HashtagRepository, postRepo repository.PostRepository) *HashtagService {
	return &HashtagService{hashtagRepo: hashtagRepo, postRepo: postRepo}
}

// ExtractHashtags returns the lowercased, deduplicated hashtags in content,
// in first-seen order.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// IndexPost extracts hashtags from a post's content and links them to the
// post. Tag rows are created on first use.
func (s *HashtagService) IndexPost(ctx context.Context, postID, content string) error {
	for _, name := range ExtractHashtags(content) {
		tag, err := s.hashtagRepo.FindOrCreate(ctx, name)
		if err != nil {
			return err
		}
		if err := s.hashtagRepo.Link(ctx, postID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

// Trending returns the most-used hashtags. A non-positive limit falls back
// to the default of 10.
func (s *HashtagService) Trending(ctx context.Context, limit int) ([]models.TrendingHashtag, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	return cache.Aside(ctx, cache.TrendingKey(limit), cache.TrendingTTL, func() ([]models.TrendingHashtag, error) {
		return s.hashtagRepo.Trending(ctx, limit)
	})
}

// PostsByTag returns the posts carrying the given hashtag, newest first.
// An unknown tag yields an empty list rather than an error.
func (s *HashtagService) PostsByTag(ctx context.Context, tag string, limit, offset int, currentUserID string) ([]*models.Post, error) {
	tag = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), "#")
	if tag == "" {
		return nil, models.NewValidationError("Hashtag name is required")
	}
	return s.postRepo.GetByHashtag(ctx, tag, limit, offset, currentUserID)
}
