package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mikromatter/internal/cache"
	"mikromatter/internal/models"
	"mikromatter/internal/observability"
)

// HashtagRepository defines the interface for hashtag data operations
type HashtagRepository interface {
	FindOrCreate(ctx context.Context, name string) (*models.Hashtag, error)
	Link(ctx context.Context, postID, hashtagID string) error
	GetByName(ctx context.Context, name string) (*models.Hashtag, error)
	Trending(ctx context.Context, limit int) ([]models.TrendingHashtag, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

// FindOrCreate returns the hashtag row for name, creating it if absent.
// Names are stored lowercase so #Go and #go collapse to one tag.
func (r *hashtagRepository) FindOrCreate(ctx context.Context, name string) (*models.Hashtag, error) {
	name = strings.ToLower(name)

	tag := models.Hashtag{Name: name}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error
	if err != nil {
		return nil, err
	}

	// On conflict the insert returns no row, so re-read to get the existing ID
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Link associates a post with a hashtag. Duplicate links are a no-op.
func (r *hashtagRepository) Link(ctx context.Context, postID, hashtagID string) error {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO post_hashtags (post_id, hashtag_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (post_id, hashtag_id) DO NOTHING`,
		postID, hashtagID,
	)
	if result.Error == nil {
		observability.HashtagsIndexed.Inc()
		cache.Invalidate(ctx, "hashtags:trending:*")
	}
	return result.Error
}

func (r *hashtagRepository) GetByName(ctx context.Context, name string) (*models.Hashtag, error) {
	var tag models.Hashtag
	if err := r.db.WithContext(ctx).
		Where("name = ?", strings.ToLower(name)).
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Trending returns the most-used hashtags ordered by post count. Ties break
// alphabetically so the ordering is stable.
func (r *hashtagRepository) Trending(ctx context.Context, limit int) ([]models.TrendingHashtag, error) {
	var trending []models.TrendingHashtag
	err := r.db.WithContext(ctx).
		Table("hashtags").
		Select("hashtags.name, COUNT(post_hashtags.post_id) as count").
		Joins("LEFT JOIN post_hashtags ON post_hashtags.hashtag_id = hashtags.id").
		Group("hashtags.id, hashtags.name").
		Having("COUNT(post_hashtags.post_id) > 0").
		Order("count DESC, hashtags.name ASC").
		Limit(limit).
		Scan(&trending).Error
	return trending, err
}
