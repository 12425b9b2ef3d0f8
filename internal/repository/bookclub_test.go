package repository

import (
	"context"
	"regexp"
	"testing"

	"mikromatter/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestBookclubRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	club := &models.Bookclub{
		Name:          "Slow Burn Society",
		Description:   "Monthly indie romance picks",
		CreatorID:     "u1",
		CurrentBook:   "The Ember Year",
		CurrentAuthor: "R. Vale",
	}

	// Club insert and creator membership commit together
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookclubs"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookclub_members"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(ctx, club)
	assert.NoError(t, err)
	assert.NotEmpty(t, club.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookclubRepository_Create_RollsBackOnMembershipFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	club := &models.Bookclub{
		Name:        "Broken Club",
		Description: "x",
		CreatorID:   "u1",
		CurrentBook: "b",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookclubs"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookclub_members"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(ctx, club)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookclubRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT bookclubs\.\*, (.+) FROM "bookclubs" WHERE bookclubs\.id = \$3`).
		WithArgs("u2", "u2", "b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "creator_id", "member_count", "is_member", "is_creator",
		}).AddRow("b1", "Slow Burn Society", "u1", 14, true, false))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

	club, err := repo.GetByID(ctx, "b1", "u2")
	assert.NoError(t, err)
	assert.Equal(t, 14, club.MemberCount)
	assert.True(t, club.IsMember)
	assert.False(t, club.IsCreator)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookclubRepository_Join_Idempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookclub_members`)).
		WithArgs("b1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookclub_members`)).
		WithArgs("b1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Join(ctx, "b1", "u2"))
	assert.NoError(t, repo.Join(ctx, "b1", "u2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookclubRepository_Leave(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "bookclub_members"`)).
		WithArgs("b1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Leave(ctx, "b1", "u2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookclubRepository_GetMember(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT (.+) FROM "bookclub_members" WHERE bookclub_id = \$1 AND user_id = \$2`).
		WithArgs("b1", "u1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"bookclub_id", "user_id", "role"}).
			AddRow("b1", "u1", "creator"))

	member, err := repo.GetMember(ctx, "b1", "u1")
	assert.NoError(t, err)
	assert.Equal(t, models.BookclubRoleCreator, member.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
