// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mikromatter/internal/models"
	"mikromatter/internal/service"
)

// sample hashtags woven into generated posts so trending has data to chew on
var sampleTags = []string{
	"amreading", "writingcommunity", "indieauthor", "bookclub", "fantasy",
	"scifi", "romance", "poetry", "flashfiction", "worldbuilding",
	"coffee", "mondaymotivation", "tbr", "currentlyreading",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:           gofakeit.Email(),
		FirstName:       gofakeit.FirstName(),
		LastName:        gofakeit.LastName(),
		Bio:             gofakeit.Sentence(10),
		Location:        gofakeit.City(),
		ProfileImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// postContent generates short-form content, sometimes sprinkled with hashtags.
func (f *Factory) postContent() string {
	content := gofakeit.Sentence(f.r.Intn(25) + 3)

	if f.r.Float32() < 0.6 {
		n := f.r.Intn(3) + 1
		tags := make([]string, 0, n)
		for i := 0; i < n; i++ {
			tags = append(tags, "#"+sampleTags[f.r.Intn(len(sampleTags))])
		}
		content = content + " " + strings.Join(tags, " ")
	}
	return content
}

// CreatePost constructs and persists a sample `models.Post` for the given
// user, including its word count and hashtag index rows.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:  user.ID,
		Content: f.postContent(),
	}
	if f.r.Float32() < 0.3 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	post.WordCount = service.WordCount(post.Content)

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	if err := f.indexHashtags(post); err != nil {
		return nil, err
	}
	return post, nil
}

// indexHashtags mirrors what the hashtag service does on post creation so
// seeded posts show up under their tags and in trending.
func (f *Factory) indexHashtags(post *models.Post) error {
	for _, name := range service.ExtractHashtags(post.Content) {
		tag := models.Hashtag{Name: name}
		if err := f.db.Where(models.Hashtag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		link := models.PostHashtag{PostID: post.ID, HashtagID: tag.ID}
		if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:  user.ID,
		PostID:  post.ID,
		Content: gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`. Duplicate pairs are
// skipped, matching the API's idempotent behaviour.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateRepost persists a repost from `user` of `post`.
func (f *Factory) CreateRepost(user *models.User, post *models.Post) error {
	repost := &models.Repost{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(repost).Error
}

// CreateFollow persists a follow edge between two users.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	edge := &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}

// CreateBookclub persists a bookclub with its creator membership, the same
// shape the API produces.
func (f *Factory) CreateBookclub(creator *models.User, overrides ...func(*models.Bookclub)) (*models.Bookclub, error) {
	club := &models.Bookclub{
		Name:          gofakeit.BookTitle() + " Readers",
		Description:   gofakeit.Sentence(12),
		CreatorID:     creator.ID,
		CurrentBook:   gofakeit.BookTitle(),
		CurrentAuthor: gofakeit.Name(),
		AuthorWebsite: gofakeit.URL(),
		BookCoverURL:  fmt.Sprintf("https://picsum.photos/seed/cover-%s/400/600", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(club)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(club).Error; err != nil {
			return err
		}
		member := models.BookclubMember{
			BookclubID: club.ID,
			UserID:     creator.ID,
			Role:       models.BookclubRoleCreator,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return club, nil
}

// AddBookclubMember persists a plain membership row.
func (f *Factory) AddBookclubMember(club *models.Bookclub, user *models.User) error {
	member := &models.BookclubMember{
		BookclubID: club.ID,
		UserID:     user.ID,
		Role:       models.BookclubRoleMember,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(member).Error
}
