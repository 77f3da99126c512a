package notifications

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
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  link TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeBookUpdate,
		Title:     "book reviewed",
		Message:   "your book moved",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestRepository_ListPagination(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	oldest := seedNotification(t, db, userID, base.Add(-2*time.Hour))
	middle := seedNotification(t, db, userID, base.Add(-time.Hour))
	newest := seedNotification(t, db, userID, base)

	rows, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	require.NotNil(t, next)

	rows, next, err = repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Nil(t, next)
}
