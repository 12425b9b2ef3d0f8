package repository

import (
	"context"
	"regexp"
	"testing"

	"mikromatter/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_Upsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		ID:        "u1",
		Email:     "maya@example.com",
		FirstName: "Maya",
		LastName:  "Lin",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Upsert(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        string
		mockBehavior  func()
		expectedEmail string
		expectedError bool
	}{
		{
			name:   "Found",
			userID: "u1",
			mockBehavior: func() {
				mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
					WithArgs("u1", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
						AddRow("u1", "maya@example.com"))
			},
			expectedEmail: "maya@example.com",
		},
		{
			name:   "Not Found",
			userID: "missing",
			mockBehavior: func() {
				mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
					WithArgs("missing", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEmail, user.Email)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetWithStats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT users\.\*, (.+) FROM "users" WHERE users\.id = \$2`).
		WithArgs("viewer", "u1", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "posts_count", "following_count", "followers_count", "is_following",
		}).AddRow("u1", "maya@example.com", 12, 3, 7, true))

	stats, err := repo.GetWithStats(ctx, "u1", "viewer")
	assert.NoError(t, err)
	assert.Equal(t, 12, stats.PostsCount)
	assert.Equal(t, 3, stats.FollowingCount)
	assert.Equal(t, 7, stats.FollowersCount)
	assert.True(t, stats.IsFollowing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetWithStats_Anonymous(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Without a viewer, is_following is selected as a constant false
	mock.ExpectQuery(`SELECT users\.\*, (.+)false as is_following FROM "users" WHERE users\.id = \$1`).
		WithArgs("u1", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "posts_count", "following_count", "followers_count", "is_following",
		}).AddRow("u1", 0, 0, 0, false))

	stats, err := repo.GetWithStats(ctx, "u1", "")
	assert.NoError(t, err)
	assert.False(t, stats.IsFollowing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateAvatar(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateAvatar(ctx, "u1", "/media/avatars/u1.webp")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Search(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE first_name ILIKE \$1 OR last_name ILIKE \$2 OR email ILIKE \$3`).
		WithArgs("%maya%", "%maya%", "%maya%", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).
			AddRow("u1", "Maya").
			AddRow("u2", "Mayank"))

	users, err := repo.Search(ctx, "maya", 20, 0)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
