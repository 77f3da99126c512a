package plans

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

func setupPlansTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS review_plans (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  book_id TEXT UNIQUE,
  plan_name TEXT NOT NULL,
  plan_type TEXT NOT NULL,
  price_paid NUMERIC NOT NULL,
  total_reviews INTEGER NOT NULL,
  used_reviews INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  payment_ref TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  description TEXT NOT NULL,
  genre TEXT NOT NULL,
  language TEXT NOT NULL,
  asin TEXT NOT NULL,
  explicit_content INTEGER NOT NULL DEFAULT 0,
  manuscript_key TEXT NOT NULL,
  cover_key TEXT NOT NULL,
  manuscript_url TEXT NOT NULL,
  cover_url TEXT NOT NULL,
  approval_status TEXT NOT NULL DEFAULT 'under_review',
  admin_feedback TEXT,
  upload_status TEXT NOT NULL DEFAULT 'uploaded',
  uploaded_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedOwnedBook(t *testing.T, db *gorm.DB, ownerID uuid.UUID, status enums.ApprovalStatus) *models.Book {
	t.Helper()
	book := &models.Book{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          "a title",
		Author:         "an author",
		Description:    "a description",
		Genre:          enums.GenreFiction,
		Language:       enums.LanguageEnglish,
		ASIN:           "B012345678",
		ManuscriptKey:  "manuscripts/key",
		CoverKey:       "covers/key",
		ManuscriptURL:  "https://storage/manuscripts/key",
		CoverURL:       "https://storage/covers/key",
		ApprovalStatus: status,
		UploadStatus:   enums.UploadStatusUploaded,
		UploadedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func seedPlan(t *testing.T, db *gorm.DB, ownerID uuid.UUID, total, used int) *models.ReviewPlan {
	t.Helper()
	plan := &models.ReviewPlan{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		PlanName:     "starter plan",
		PlanType:     enums.PlanTypeStarter,
		PricePaid:    decimal.NewFromInt(49),
		TotalReviews: total,
		UsedReviews:  used,
		Status:       enums.PlanStatusActive,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func TestRepository_AttachOnce(t *testing.T) {
	db := setupPlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	bookID := uuid.New()
	plan := seedPlan(t, db, ownerID, 10, 0)

	affected, err := repo.Attach(ctx, plan.ID, ownerID, bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Second attach must not move the binding.
	affected, err = repo.Attach(ctx, plan.ID, ownerID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	reloaded, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.BookID)
	assert.Equal(t, bookID, *reloaded.BookID)
}

func TestRepository_AttachWrongOwner(t *testing.T) {
	db := setupPlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	plan := seedPlan(t, db, uuid.New(), 10, 0)

	affected, err := repo.Attach(ctx, plan.ID, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRepository_ConsumeReviewGuard(t *testing.T) {
	db := setupPlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	plan := seedPlan(t, db, uuid.New(), 2, 1)

	affected, err := repo.ConsumeReview(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Quota is exhausted now; no further increments.
	affected, err = repo.ConsumeReview(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	reloaded, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.UsedReviews)
}

func TestRepository_CompleteOnlyWhenExhausted(t *testing.T) {
	db := setupPlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	fresh := seedPlan(t, db, uuid.New(), 5, 0)
	exhausted := seedPlan(t, db, uuid.New(), 5, 5)

	affected, err := repo.Complete(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = repo.Complete(ctx, exhausted.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.FindByID(ctx, exhausted.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PlanStatusCompleted, reloaded.Status)
}

func TestRepository_AttachableSets(t *testing.T) {
	db := setupPlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()

	free := seedPlan(t, db, ownerID, 10, 0)
	attached := seedPlan(t, db, ownerID, 10, 0)
	cancelled := seedPlan(t, db, ownerID, 10, 0)
	require.NoError(t, db.Model(cancelled).UpdateColumn("status", enums.PlanStatusCancelled).Error)
	seedPlan(t, db, uuid.New(), 10, 0)

	approvedFree := seedOwnedBook(t, db, ownerID, enums.ApprovalStatusApproved)
	approvedBound := seedOwnedBook(t, db, ownerID, enums.ApprovalStatusApproved)
	seedOwnedBook(t, db, ownerID, enums.ApprovalStatusRejected)
	seedOwnedBook(t, db, ownerID, enums.ApprovalStatusUnderReview)
	seedOwnedBook(t, db, uuid.New(), enums.ApprovalStatusApproved)

	affected, err := repo.Attach(ctx, attached.ID, ownerID, approvedBound.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	unattached, err := repo.ListUnattached(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, unattached, 1)
	assert.Equal(t, free.ID, unattached[0].ID)

	books, err := repo.ListAttachableBooks(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, approvedFree.ID, books[0].ID)
}

func TestRepository_ListByOwner(t *testing.T) {
	db := setupPlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	seedPlan(t, db, ownerID, 10, 0)
	seedPlan(t, db, ownerID, 25, 0)
	seedPlan(t, db, uuid.New(), 10, 0)

	rows, err := repo.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, ownerID, row.OwnerID)
	}
}
