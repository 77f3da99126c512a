package forum

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
)

func setupForumTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	posts := `
CREATE TABLE IF NOT EXISTS community_posts (
  id TEXT PRIMARY KEY,
  author_id TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  reply_count INTEGER NOT NULL DEFAULT 0,
  score INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	replies := `
CREATE TABLE IF NOT EXISTS community_replies (
  id TEXT PRIMARY KEY,
  post_id TEXT NOT NULL,
  author_id TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	votes := `
CREATE TABLE IF NOT EXISTS community_votes (
  id TEXT PRIMARY KEY,
  post_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  value INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, post_id)
);`
	for _, ddl := range []string{posts, replies, votes} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedPost(t *testing.T, db *gorm.DB, createdAt time.Time) *models.CommunityPost {
	t.Helper()
	post := &models.CommunityPost{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "thread",
		Body:      "body",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestRepository_ListPostsPagination(t *testing.T) {
	db := setupForumTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	oldest := seedPost(t, db, base.Add(-2*time.Hour))
	middle := seedPost(t, db, base.Add(-time.Hour))
	newest := seedPost(t, db, base)

	rows, next, err := repo.ListPosts(ctx, 2, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	require.NotNil(t, next)

	rows, next, err = repo.ListPosts(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Nil(t, next)
}

func TestRepository_UpsertVoteReplacesValue(t *testing.T) {
	db := setupForumTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	post := seedPost(t, db, time.Now().UTC())
	userID := uuid.New()

	require.NoError(t, repo.UpsertVote(ctx, &models.CommunityVote{
		ID:     uuid.New(),
		PostID: post.ID,
		UserID: userID,
		Value:  1,
	}))
	require.NoError(t, repo.UpsertVote(ctx, &models.CommunityVote{
		ID:     uuid.New(),
		PostID: post.ID,
		UserID: userID,
		Value:  -1,
	}))

	vote, err := repo.FindVote(ctx, post.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, -1, vote.Value)

	var count int64
	require.NoError(t, db.Model(&models.CommunityVote{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_AdjustScore(t *testing.T) {
	db := setupForumTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	post := seedPost(t, db, time.Now().UTC())

	require.NoError(t, repo.AdjustScore(ctx, post.ID, 1))
	require.NoError(t, repo.AdjustScore(ctx, post.ID, -2))
	require.NoError(t, repo.AdjustScore(ctx, post.ID, 0))

	reloaded, err := repo.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, reloaded.Score)
}

func TestRepository_RepliesBumpCount(t *testing.T) {
	db := setupForumTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	post := seedPost(t, db, time.Now().UTC())

	reply := &models.CommunityReply{
		ID:       uuid.New(),
		PostID:   post.ID,
		AuthorID: uuid.New(),
		Body:     "first reply",
	}
	require.NoError(t, repo.CreateReply(ctx, reply))
	require.NoError(t, repo.IncrementReplyCount(ctx, post.ID))

	replies, err := repo.ListReplies(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 1)

	reloaded, err := repo.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.ReplyCount)
}

func TestRepository_DeletePostCascades(t *testing.T) {
	db := setupForumTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	post := seedPost(t, db, time.Now().UTC())
	require.NoError(t, repo.CreateReply(ctx, &models.CommunityReply{
		ID:       uuid.New(),
		PostID:   post.ID,
		AuthorID: uuid.New(),
		Body:     "reply",
	}))
	require.NoError(t, repo.UpsertVote(ctx, &models.CommunityVote{
		ID:     uuid.New(),
		PostID: post.ID,
		UserID: uuid.New(),
		Value:  1,
	}))

	require.NoError(t, repo.DeletePost(ctx, post.ID))

	_, err := repo.FindPost(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var replyCount, voteCount int64
	require.NoError(t, db.Model(&models.CommunityReply{}).Where("post_id = ?", post.ID).Count(&replyCount).Error)
	require.NoError(t, db.Model(&models.CommunityVote{}).Where("post_id = ?", post.ID).Count(&voteCount).Error)
	assert.Zero(t, replyCount)
	assert.Zero(t, voteCount)
}
