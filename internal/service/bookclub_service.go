package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"mikromatter/internal/models"
	"mikromatter/internal/repository"
)

const (
	maxClubNameLen   = 100
	maxBookTitleLen  = 200
	maxAuthorNameLen = 100
)

type BookclubService struct {
	bookclubRepo repository.BookclubRepository
}

type CreateBookclubInput struct {
	CreatorID     string
	Name          string
	Description   string
	CurrentBook   string
	CurrentAuthor string
	AuthorWebsite string
	BookCoverURL  string
}

type UpdateBookclubInput struct {
	UserID        string
	BookclubID    string
	Name          string
	Description   string
	CurrentBook   string
	CurrentAuthor string
	AuthorWebsite string
	BookCoverURL  string
}

func NewBookclubService(bookclubRepo repository.BookclubRepository) *BookclubService {
	return &BookclubService{bookclubRepo: bookclubRepo}
}

// CreateBookclub validates and stores a club. The creator becomes a member
// with the creator role in the same transaction as the club row.
func (s *BookclubService) CreateBookclub(ctx context.Context, in CreateBookclubInput) (*models.Bookclub, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(in.Name) > maxClubNameLen {
		return nil, models.NewValidationError("Name too long (max 100 characters)")
	}
	if strings.TrimSpace(in.CurrentBook) == "" {
		return nil, models.NewValidationError("Current book is required")
	}
	if len(in.CurrentBook) > maxBookTitleLen {
		return nil, models.NewValidationError("Current book too long (max 200 characters)")
	}
	if len(in.CurrentAuthor) > maxAuthorNameLen {
		return nil, models.NewValidationError("Current author too long (max 100 characters)")
	}

	club := &models.Bookclub{
		Name:          in.Name,
		Description:   in.Description,
		CreatorID:     in.CreatorID,
		CurrentBook:   in.CurrentBook,
		CurrentAuthor: in.CurrentAuthor,
		AuthorWebsite: in.AuthorWebsite,
		BookCoverURL:  in.BookCoverURL,
	}
	if err := s.bookclubRepo.Create(ctx, club); err != nil {
		return nil, err
	}
	return s.bookclubRepo.GetByID(ctx, club.ID, in.CreatorID)
}

func (s *BookclubService) GetBookclub(ctx context.Context, id string, currentUserID string) (*models.Bookclub, error) {
	return s.bookclubRepo.GetByID(ctx, id, currentUserID)
}

func (s *BookclubService) ListBookclubs(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Bookclub, error) {
	return s.bookclubRepo.List(ctx, limit, offset, currentUserID)
}

func (s *BookclubService) GetUserBookclubs(ctx context.Context, userID string, currentUserID string) ([]*models.Bookclub, error) {
	return s.bookclubRepo.GetByUserID(ctx, userID, currentUserID)
}

// UpdateBookclub lets the creator change the club profile and current book.
func (s *BookclubService) UpdateBookclub(ctx context.Context, in UpdateBookclubInput) (*models.Bookclub, error) {
	club, err := s.bookclubRepo.GetByID(ctx, in.BookclubID, in.UserID)
	if err != nil {
		return nil, err
	}
	if club.CreatorID != in.UserID {
		return nil, models.NewForbiddenError("Only the creator can update a bookclub")
	}

	if in.Name != "" {
		if len(in.Name) > maxClubNameLen {
			return nil, models.NewValidationError("Name too long (max 100 characters)")
		}
		club.Name = in.Name
	}
	if in.Description != "" {
		club.Description = in.Description
	}
	if in.CurrentBook != "" {
		club.CurrentBook = in.CurrentBook
	}
	if in.CurrentAuthor != "" {
		club.CurrentAuthor = in.CurrentAuthor
	}
	if in.AuthorWebsite != "" {
		club.AuthorWebsite = in.AuthorWebsite
	}
	if in.BookCoverURL != "" {
		club.BookCoverURL = in.BookCoverURL
	}

	if err := s.bookclubRepo.Update(ctx, club); err != nil {
		return nil, err
	}
	return s.bookclubRepo.GetByID(ctx, in.BookclubID, in.UserID)
}

// JoinBookclub adds the user as a member. Joining twice is a no-op.
func (s *BookclubService) JoinBookclub(ctx context.Context, bookclubID, userID string) error {
	if _, err := s.bookclubRepo.GetByID(ctx, bookclubID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Bookclub", bookclubID)
		}
		return err
	}
	return s.bookclubRepo.Join(ctx, bookclubID, userID)
}

// LeaveBookclub removes the user's membership. The creator cannot leave;
// they delete the club instead.
func (s *BookclubService) LeaveBookclub(ctx context.Context, bookclubID, userID string) error {
	club, err := s.bookclubRepo.GetByID(ctx, bookclubID, userID)
	if err != nil {
		return err
	}
	if club.CreatorID == userID {
		return models.NewForbiddenError("The creator cannot leave their own bookclub")
	}
	return s.bookclubRepo.Leave(ctx, bookclubID, userID)
}

// DeleteBookclub removes the club and, via cascade, its memberships.
func (s *BookclubService) DeleteBookclub(ctx context.Context, bookclubID, userID string) error {
	club, err := s.bookclubRepo.GetByID(ctx, bookclubID, userID)
	if err != nil {
		return err
	}
	if club.CreatorID != userID {
		return models.NewForbiddenError("Only the creator can delete a bookclub")
	}
	return s.bookclubRepo.Delete(ctx, bookclubID)
}

func (s *BookclubService) ListMembers(ctx context.Context, bookclubID string) ([]*models.BookclubMember, error) {
	return s.bookclubRepo.ListMembers(ctx, bookclubID)
}
