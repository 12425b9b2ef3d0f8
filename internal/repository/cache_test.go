package repository

import (
	"context"
	"regexp"
	"testing"

	"mikromatter/internal/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withCacheRedis points the shared cache client at a throwaway redis for the
// duration of the test.
func withCacheRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache.Client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = cache.Client.Close()
		cache.Client = nil
	})
	return mr
}

func TestPostRepository_GetByID_AnonymousServedFromCache(t *testing.T) {
	mr := withCacheRedis(t)
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT posts\.\*, (.+) FROM "posts" WHERE posts\.id = \$1`).
		WithArgs("p1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "likes_count"}).
			AddRow("p1", "u1", "hello #golang", 4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

	first, err := repo.GetByID(ctx, "p1", "")
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostKey("p1", "")))

	// Second read is served from redis; no further SQL was expected
	second, err := repo.GetByID(ctx, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.LikesCount, second.LikesCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID_ViewerReadsSkipCache(t *testing.T) {
	mr := withCacheRedis(t)
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT posts\.\*, (.+) FROM "posts" WHERE posts\.id = \$3`).
			WithArgs("u2", "u2", "p1", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "is_liked"}).
				AddRow("p1", "u1", "hello", true))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	}

	for i := 0; i < 2; i++ {
		post, err := repo.GetByID(ctx, "p1", "u2")
		require.NoError(t, err)
		assert.True(t, post.IsLiked)
	}
	assert.False(t, mr.Exists(cache.PostKey("p1", "u2")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_AnonymousServedFromCache(t *testing.T) {
	mr := withCacheRedis(t)
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT posts\.\*, (.+) FROM "posts" ORDER BY posts\.created_at DESC`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content"}).
			AddRow("p1", "u1", "first").
			AddRow("p2", "u1", "second"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

	first, err := repo.List(ctx, 20, 0, "")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, mr.Exists(cache.PostsListKey("", 20, 0)))

	second, err := repo.List(ctx, 20, 0, "")
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Like_EvictsCachedViews(t *testing.T) {
	mr := withCacheRedis(t)
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT posts\.\*, (.+) FROM "posts" WHERE posts\.id = \$1`).
		WithArgs("p1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content"}).
			AddRow("p1", "u1", "hello"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

	_, err := repo.GetByID(ctx, "p1", "")
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PostKey("p1", "")))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes`)).
		WithArgs("u2", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Like(ctx, "u2", "p1"))
	assert.False(t, mr.Exists(cache.PostKey("p1", "")), "like drops the cached post")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookclubRepository_GetByID_AnonymousServedFromCache(t *testing.T) {
	mr := withCacheRedis(t)
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT bookclubs\.\*, (.+) FROM "bookclubs" WHERE bookclubs\.id = \$1`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "creator_id", "member_count"}).
			AddRow("b1", "Slow Burn Society", "u1", 14))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

	first, err := repo.GetByID(ctx, "b1", "")
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.BookclubKey("b1", "")))

	second, err := repo.GetByID(ctx, "b1", "")
	require.NoError(t, err)
	assert.Equal(t, first.MemberCount, second.MemberCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookclubRepository_Join_EvictsCachedViews(t *testing.T) {
	mr := withCacheRedis(t)
	db, mock := setupMockDB(t)
	repo := NewBookclubRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT bookclubs\.\*, (.+) FROM "bookclubs" WHERE bookclubs\.id = \$1`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "creator_id", "member_count"}).
			AddRow("b1", "Slow Burn Society", "u1", 14))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

	_, err := repo.GetByID(ctx, "b1", "")
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.BookclubKey("b1", "")))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookclub_members`)).
		WithArgs("b1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Join(ctx, "b1", "u2"))
	assert.False(t, mr.Exists(cache.BookclubKey("b1", "")), "join drops the cached club")
	assert.NoError(t, mock.ExpectationsWereMet())
}
