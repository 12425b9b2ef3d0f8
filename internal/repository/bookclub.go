package repository

import (
	"context"

	"gorm.io/gorm"

	"mikromatter/internal/cache"
	"mikromatter/internal/models"
)

// BookclubRepository defines the interface for bookclub data operations
type BookclubRepository interface {
	Create(ctx context.Context, club *models.Bookclub) error
	GetByID(ctx context.Context, id string, currentUserID string) (*models.Bookclub, error)
	List(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Bookclub, error)
	GetByUserID(ctx context.Context, userID string, currentUserID string) ([]*models.Bookclub, error)
	Update(ctx context.Context, club *models.Bookclub) error
	Delete(ctx context.Context, id string) error
	Join(ctx context.Context, bookclubID, userID string) error
	Leave(ctx context.Context, bookclubID, userID string) error
	GetMember(ctx context.Context, bookclubID, userID string) (*models.BookclubMember, error)
	ListMembers(ctx context.Context, bookclubID string) ([]*models.BookclubMember, error)
}

type bookclubRepository struct {
	db *gorm.DB
}

// NewBookclubRepository creates a new bookclub repository
func NewBookclubRepository(db *gorm.DB) BookclubRepository {
	return &bookclubRepository{db: db}
}

// Create inserts the club and the creator's membership row in one
// transaction so a club can never exist without its creator as a member.
func (r *bookclubRepository) Create(ctx context.Context, club *models.Bookclub) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(club).Error; err != nil {
			return err
		}
		member := models.BookclubMember{
			BookclubID: club.ID,
			UserID:     club.CreatorID,
			Role:       models.BookclubRoleCreator,
		}
		return tx.Create(&member).Error
	})
}

// GetByID serves anonymous reads cache-aside; authenticated reads carry
// per-viewer membership flags and go straight to the database.
func (r *bookclubRepository) GetByID(ctx context.Context, id string, currentUserID string) (*models.Bookclub, error) {
	if currentUserID == "" {
		return cache.Aside(ctx, cache.BookclubKey(id, ""), cache.BookclubTTL, func() (*models.Bookclub, error) {
			return r.getByID(ctx, id, "")
		})
	}
	return r.getByID(ctx, id, currentUserID)
}

func (r *bookclubRepository) getByID(ctx context.Context, id string, currentUserID string) (*models.Bookclub, error) {
	var club models.Bookclub
	err := r.applyClubDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Creator").
		Where("bookclubs.id = ?", id).
		First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *bookclubRepository) List(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Bookclub, error) {
	var clubs []*models.Bookclub
	err := r.applyClubDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Creator").
		Order("bookclubs.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&clubs).Error
	return clubs, err
}

// GetByUserID lists clubs the user is a member of, newest first.
func (r *bookclubRepository) GetByUserID(ctx context.Context, userID string, currentUserID string) ([]*models.Bookclub, error) {
	var clubs []*models.Bookclub
	err := r.applyClubDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Creator").
		Joins("JOIN bookclub_members ON bookclub_members.bookclub_id = bookclubs.id").
		Where("bookclub_members.user_id = ?", userID).
		Order("bookclubs.created_at DESC").
		Find(&clubs).Error
	return clubs, err
}

// applyClubDetails adds the member count and viewer flags in a single query.
func (r *bookclubRepository) applyClubDetails(db *gorm.DB, currentUserID string) *gorm.DB {
	selectQuery := "bookclubs.*, " +
		"(SELECT COUNT(*) FROM bookclub_members WHERE bookclub_members.bookclub_id = bookclubs.id) as member_count"

	if currentUserID != "" {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM bookclub_members WHERE bookclub_members.bookclub_id = bookclubs.id AND bookclub_members.user_id = ?) as is_member"+
			", bookclubs.creator_id = ? as is_creator",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery + ", false as is_member, false as is_creator")
}

func (r *bookclubRepository) Update(ctx context.Context, club *models.Bookclub) error {
	err := r.db.WithContext(ctx).
		Model(&models.Bookclub{}).
		Where("id = ?", club.ID).
		Updates(map[string]interface{}{
			"name":           club.Name,
			"description":    club.Description,
			"current_book":   club.CurrentBook,
			"current_author": club.CurrentAuthor,
			"author_website": club.AuthorWebsite,
			"book_cover_url": club.BookCoverURL,
		}).Error
	if err == nil {
		cache.InvalidateBookclub(ctx, club.ID)
	}
	return err
}

func (r *bookclubRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Bookclub{}).Error
	if err == nil {
		cache.InvalidateBookclub(ctx, id)
	}
	return err
}

func (r *bookclubRepository) Join(ctx context.Context, bookclubID, userID string) error {
	// Joining twice is a no-op; the creator's row was written at creation
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO bookclub_members (bookclub_id, user_id, role, joined_at)
		 VALUES (?, ?, 'member', NOW())
		 ON CONFLICT (bookclub_id, user_id) DO NOTHING`,
		bookclubID, userID,
	)
	if result.Error == nil {
		cache.InvalidateBookclub(ctx, bookclubID)
	}
	return result.Error
}

func (r *bookclubRepository) Leave(ctx context.Context, bookclubID, userID string) error {
	err := r.db.WithContext(ctx).
		Where("bookclub_id = ? AND user_id = ?", bookclubID, userID).
		Delete(&models.BookclubMember{}).Error
	if err == nil {
		cache.InvalidateBookclub(ctx, bookclubID)
	}
	return err
}

func (r *bookclubRepository) GetMember(ctx context.Context, bookclubID, userID string) (*models.BookclubMember, error) {
	var member models.BookclubMember
	if err := r.db.WithContext(ctx).
		Where("bookclub_id = ? AND user_id = ?", bookclubID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *bookclubRepository) ListMembers(ctx context.Context, bookclubID string) ([]*models.BookclubMember, error) {
	var members []*models.BookclubMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("bookclub_id = ?", bookclubID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
