package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestFollowRepository_Follow_Idempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO follows`)).
		WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO follows`)).
		WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Follow(ctx, "u1", "u2"))
	assert.NoError(t, repo.Follow(ctx, "u1", "u2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Unfollow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows"`)).
		WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Unfollow(ctx, "u1", "u2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_IsFollowing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows"`)).
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	following, err := repo.IsFollowing(ctx, "u1", "u2")
	assert.NoError(t, err)
	assert.False(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}
