package books

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/config"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
	"github.com/reviewpromax/reviewpromax-backend/pkg/pagination"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

type fakeBookRepo struct {
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.Book, error)
	findCalls  int
}

func (f *fakeBookRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeBookRepo) Create(ctx context.Context, book *models.Book) error { return nil }

func (f *fakeBookRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	f.findCalls++
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBookRepo) List(ctx context.Context, params ListQuery) ([]models.Book, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeBookRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	return 0, nil
}

func (f *fakeBookRepo) DecideStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, feedback *string) (int64, error) {
	return 0, nil
}

func (f *fakeBookRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeBookRepo) ArchiveApprovedByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeBookRepo) ListRemovableByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Book, error) {
	return nil, nil
}

func (f *fakeBookRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error { return nil }

type fakeObjectStore struct{}

func (fakeObjectStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	return "https://storage/" + bucket + "/" + key, nil
}

func (fakeObjectStore) PresignedDownloadURL(ctx context.Context, bucket, key string) (string, error) {
	return "https://storage/" + bucket + "/" + key + "?signed", nil
}

func (fakeObjectStore) Delete(ctx context.Context, bucket, key string) error { return nil }

func (fakeObjectStore) ManuscriptsBucket() string { return "manuscripts" }

func (fakeObjectStore) CoversBucket() string { return "covers" }

type fakeEmitter struct{}

func (fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return nil
}

func newTestBooksService(t *testing.T, repo Repository) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		DB:     &db.Client{},
		Repo:   repo,
		Store:  fakeObjectStore{},
		Outbox: fakeEmitter{},
		Logger: logg,
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func adminCaller() types.Caller {
	return types.Caller{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func customerCaller() types.Caller {
	return types.Caller{UserID: uuid.New(), Role: enums.UserRoleCustomer}
}

func validSubmitParams() SubmitParams {
	return SubmitParams{
		Title:       "A Title",
		Author:      "An Author",
		Description: strings.Repeat("d", 60),
		Genre:       enums.GenreFiction,
		Language:    enums.LanguageEnglish,
		ASIN:        "B012345678",
		Manuscript:  FileUpload{Filename: "book.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
		Cover:       FileUpload{Filename: "cover.jpg", ContentType: "image/jpeg", Data: []byte("jpg")},
	}
}

func TestService_SubmitRejectsShortDescription(t *testing.T) {
	svc := newTestBooksService(t, &fakeBookRepo{})

	params := validSubmitParams()
	params.Description = strings.Repeat("d", 59)

	_, err := svc.Submit(context.Background(), customerCaller(), params)
	if err == nil {
		t.Fatal("expected validation error for a 59 character description")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "at least 60 characters") {
		t.Fatalf("expected the message to name the minimum length, got %q", err.Error())
	}
}

func TestService_DescriptionLengthCountsCharacters(t *testing.T) {
	uploads := config.UploadConfig{}

	short := validSubmitParams()
	short.Description = strings.Repeat("é", 59)
	if err := validateSubmit(&short, uploads); err == nil {
		t.Fatal("59 multibyte characters should fail the minimum length")
	}

	exact := validSubmitParams()
	exact.Description = strings.Repeat("é", 60)
	if err := validateSubmit(&exact, uploads); err != nil {
		t.Fatalf("60 multibyte characters should pass, got %v", err)
	}
}

func TestService_ReviewRejectionRequiresFeedback(t *testing.T) {
	repo := &fakeBookRepo{}
	svc := newTestBooksService(t, repo)

	_, err := svc.Review(context.Background(), adminCaller(), ReviewParams{
		BookID: uuid.New(),
		Status: enums.ApprovalStatusRejected,
		// Whitespace-only feedback must not count.
		Feedback: "   ",
	})
	if err == nil {
		t.Fatal("expected validation error for empty rejection feedback")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.findCalls != 0 {
		t.Fatalf("review should fail before touching the repository, got %d lookups", repo.findCalls)
	}
}

func TestService_ReviewDecisionMustBeApprovedOrRejected(t *testing.T) {
	svc := newTestBooksService(t, &fakeBookRepo{})

	_, err := svc.Review(context.Background(), adminCaller(), ReviewParams{
		BookID: uuid.New(),
		Status: enums.ApprovalStatusArchived,
	})
	if err == nil {
		t.Fatal("expected validation error for a non-decision status")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_ReviewOnlyMovesBooksUnderReview(t *testing.T) {
	for _, status := range []enums.ApprovalStatus{
		enums.ApprovalStatusApproved,
		enums.ApprovalStatusRejected,
		enums.ApprovalStatusArchived,
	} {
		repo := &fakeBookRepo{
			findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Book, error) {
				return &models.Book{ID: id, OwnerID: uuid.New(), ApprovalStatus: status}, nil
			},
		}
		svc := newTestBooksService(t, repo)

		_, err := svc.Review(context.Background(), adminCaller(), ReviewParams{
			BookID:   uuid.New(),
			Status:   enums.ApprovalStatusApproved,
			Feedback: "looks fine",
		})
		if err == nil {
			t.Fatalf("expected state conflict reviewing a %s book", status)
		}
		if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for %s, got %v", status, err)
		}
	}
}

func TestService_ReviewRequiresAdmin(t *testing.T) {
	svc := newTestBooksService(t, &fakeBookRepo{})

	_, err := svc.Review(context.Background(), customerCaller(), ReviewParams{
		BookID: uuid.New(),
		Status: enums.ApprovalStatusApproved,
	})
	if err == nil {
		t.Fatal("expected forbidden error for non-admin caller")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
