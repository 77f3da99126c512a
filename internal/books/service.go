package books

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/config"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox/payloads"
	"github.com/reviewpromax/reviewpromax-backend/pkg/pagination"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

const minDescriptionLen = 60

var manuscriptContentTypes = map[string]string{
	"application/pdf":      ".pdf",
	"application/epub+zip": ".epub",
}

var coverContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Service defines the book submission and moderation operations.
type Service interface {
	Submit(ctx context.Context, caller types.Caller, params SubmitParams) (*BookDTO, error)
	List(ctx context.Context, caller types.Caller, params ListParams) (*ListResult, error)
	ListAll(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, caller types.Caller, bookID uuid.UUID) (*BookDTO, error)
	Update(ctx context.Context, caller types.Caller, bookID uuid.UUID, params UpdateParams) (*BookDTO, error)
	Delete(ctx context.Context, caller types.Caller, bookID uuid.UUID) error
	Downloads(ctx context.Context, caller types.Caller, bookID uuid.UUID) (*DownloadURLs, error)
	Review(ctx context.Context, caller types.Caller, params ReviewParams) (*BookDTO, error)
}

type objectStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	PresignedDownloadURL(ctx context.Context, bucket, key string) (string, error)
	Delete(ctx context.Context, bucket, key string) error
	ManuscriptsBucket() string
	CoversBucket() string
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db      *db.Client
	repo    Repository
	store   objectStore
	outbox  eventEmitter
	uploads config.UploadConfig
	storage config.StorageConfig
	logg    *logger.Logger
}

// ServiceParams bundles the dependencies required to build a books service.
type ServiceParams struct {
	DB      *db.Client
	Repo    Repository
	Store   objectStore
	Outbox  eventEmitter
	Uploads config.UploadConfig
	Storage config.StorageConfig
	Logger  *logger.Logger
}

// NewService wires the book submission/moderation dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("books repository is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:      params.DB,
		repo:    params.Repo,
		store:   params.Store,
		outbox:  params.Outbox,
		uploads: params.Uploads,
		storage: params.Storage,
		logg:    params.Logger,
	}, nil
}

func (s *service) Submit(ctx context.Context, caller types.Caller, params SubmitParams) (*BookDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validateSubmit(&params, s.uploads); err != nil {
		return nil, err
	}

	bookID := uuid.New()
	manuscriptKey := bookID.String() + "/manuscript" + manuscriptContentTypes[params.Manuscript.ContentType]
	coverKey := bookID.String() + "/cover" + coverContentTypes[params.Cover.ContentType]

	manuscriptURL, err := s.store.Upload(ctx, s.store.ManuscriptsBucket(), manuscriptKey, params.Manuscript.Data, params.Manuscript.ContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload manuscript")
	}
	coverURL, err := s.store.Upload(ctx, s.store.CoversBucket(), coverKey, params.Cover.Data, params.Cover.ContentType)
	if err != nil {
		s.cleanupObject(ctx, s.store.ManuscriptsBucket(), manuscriptKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload cover")
	}

	book := &models.Book{
		ID:              bookID,
		OwnerID:         caller.UserID,
		Title:           strings.TrimSpace(params.Title),
		Author:          strings.TrimSpace(params.Author),
		Description:     strings.TrimSpace(params.Description),
		Genre:           params.Genre,
		Language:        params.Language,
		ASIN:            NormalizeASIN(params.ASIN),
		ExplicitContent: params.ExplicitContent,
		ManuscriptKey:   manuscriptKey,
		CoverKey:        coverKey,
		ManuscriptURL:   manuscriptURL,
		CoverURL:        coverURL,
		ApprovalStatus:  enums.ApprovalStatusUnderReview,
		UploadStatus:    enums.UploadStatusUploaded,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, book); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create book")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookSubmitted,
			AggregateType: enums.AggregateBook,
			AggregateID:   book.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.BookSubmittedEvent{
				BookID:  book.ID,
				OwnerID: caller.UserID,
				Title:   book.Title,
			},
		})
	})
	if err != nil {
		// The row never landed, so the uploaded objects are orphans.
		s.cleanupObject(ctx, s.store.ManuscriptsBucket(), manuscriptKey)
		s.cleanupObject(ctx, s.store.CoversBucket(), coverKey)
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"book_id": book.ID.String()})
	s.logg.Info(logCtx, "book submitted for review")
	return FromModel(book), nil
}

func (s *service) List(ctx context.Context, caller types.Caller, params ListParams) (*ListResult, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	ownerID := caller.UserID
	return s.list(ctx, ListQuery{OwnerID: &ownerID, Status: params.Status, Limit: params.Limit}, params.Cursor)
}

// ListAll is the admin moderation queue, unscoped by owner.
func (s *service) ListAll(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, ListQuery{Status: params.Status, Limit: params.Limit}, params.Cursor)
}

func (s *service) list(ctx context.Context, query ListQuery, cursor string) (*ListResult, error) {
	if query.Status != nil && !query.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid approval status")
	}
	if cursor != "" {
		parsed, err := pagination.ParseCursor(cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = parsed
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}

	items := make([]BookDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, caller types.Caller, bookID uuid.UUID) (*BookDTO, error) {
	book, err := s.authorizedBook(ctx, caller, bookID)
	if err != nil {
		return nil, err
	}
	return FromModel(book), nil
}

func (s *service) Update(ctx context.Context, caller types.Caller, bookID uuid.UUID, params UpdateParams) (*BookDTO, error) {
	book, err := s.authorizedBook(ctx, caller, bookID)
	if err != nil {
		return nil, err
	}
	if book.ApprovalStatus == enums.ApprovalStatusApproved || book.ApprovalStatus == enums.ApprovalStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "approved books cannot be edited")
	}

	fields := map[string]any{}
	if params.Title != nil {
		if strings.TrimSpace(*params.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		fields["title"] = strings.TrimSpace(*params.Title)
	}
	if params.Author != nil {
		if strings.TrimSpace(*params.Author) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "author cannot be empty")
		}
		fields["author"] = strings.TrimSpace(*params.Author)
	}
	if params.Description != nil {
		desc := strings.TrimSpace(*params.Description)
		if utf8.RuneCountInString(desc) < minDescriptionLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("description must be at least %d characters", minDescriptionLen))
		}
		fields["description"] = desc
	}
	if params.Genre != nil {
		if !params.Genre.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid genre")
		}
		fields["genre"] = *params.Genre
	}
	if params.Language != nil {
		if !params.Language.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid language")
		}
		fields["language"] = *params.Language
	}
	if params.ASIN != nil {
		if !ValidASIN(*params.ASIN) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asin")
		}
		fields["asin"] = NormalizeASIN(*params.ASIN)
	}
	if params.ExplicitContent != nil {
		fields["explicit_content"] = *params.ExplicitContent
	}
	if len(fields) == 0 {
		return FromModel(book), nil
	}

	// Editing a rejected book re-enters the moderation queue.
	if book.ApprovalStatus == enums.ApprovalStatusRejected {
		fields["approval_status"] = enums.ApprovalStatusUnderReview
		fields["admin_feedback"] = nil
	}

	if _, err := s.repo.UpdateFields(ctx, book.ID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update book")
	}

	updated, err := s.repo.FindByID(ctx, book.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload book")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, caller types.Caller, bookID uuid.UUID) error {
	book, err := s.authorizedBook(ctx, caller, bookID)
	if err != nil {
		return err
	}
	if book.ApprovalStatus == enums.ApprovalStatusApproved || book.ApprovalStatus == enums.ApprovalStatusArchived {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "approved books cannot be deleted")
	}

	if err := s.repo.Delete(ctx, book.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete book")
	}

	s.cleanupObject(ctx, s.store.ManuscriptsBucket(), book.ManuscriptKey)
	s.cleanupObject(ctx, s.store.CoversBucket(), book.CoverKey)
	return nil
}

func (s *service) Downloads(ctx context.Context, caller types.Caller, bookID uuid.UUID) (*DownloadURLs, error) {
	book, err := s.authorizedBook(ctx, caller, bookID)
	if err != nil {
		return nil, err
	}

	manuscriptURL, err := s.store.PresignedDownloadURL(ctx, s.store.ManuscriptsBucket(), book.ManuscriptKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign manuscript url")
	}
	coverURL, err := s.store.PresignedDownloadURL(ctx, s.store.CoversBucket(), book.CoverKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign cover url")
	}
	return &DownloadURLs{
		ManuscriptURL: manuscriptURL,
		CoverURL:      coverURL,
		ExpiresIn:     s.storage.DownloadURLExpiry.String(),
	}, nil
}

func (s *service) Review(ctx context.Context, caller types.Caller, params ReviewParams) (*BookDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if params.Status != enums.ApprovalStatusApproved && params.Status != enums.ApprovalStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}
	feedback := strings.TrimSpace(params.Feedback)
	if params.Status == enums.ApprovalStatusRejected && feedback == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection requires feedback")
	}

	book, err := s.repo.FindByID(ctx, params.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	if book.ApprovalStatus != enums.ApprovalStatusUnderReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "book is not under review")
	}

	var feedbackPtr *string
	if feedback != "" {
		feedbackPtr = &feedback
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).DecideStatus(ctx, book.ID, params.Status, feedbackPtr)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decide book")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "book is not under review")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookStatusChanged,
			AggregateType: enums.AggregateBook,
			AggregateID:   book.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.BookStatusChangedEvent{
				BookID:   book.ID,
				OwnerID:  book.OwnerID,
				Title:    book.Title,
				Status:   params.Status,
				Feedback: feedback,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	book.ApprovalStatus = params.Status
	book.AdminFeedback = feedbackPtr
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"book_id": book.ID.String(),
		"status":  params.Status.String(),
	})
	s.logg.Info(logCtx, "book review decision recorded")
	return FromModel(book), nil
}

func (s *service) authorizedBook(ctx context.Context, caller types.Caller, bookID uuid.UUID) (*models.Book, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	book, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	if book.OwnerID != caller.UserID && !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return book, nil
}

func (s *service) cleanupObject(ctx context.Context, bucket, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, bucket, key); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"bucket": bucket, "key": key})
		s.logg.Error(logCtx, "failed to remove storage object", err)
	}
}

func validateSubmit(params *SubmitParams, uploads config.UploadConfig) error {
	if strings.TrimSpace(params.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(params.Author) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "author is required")
	}
	// Counted in characters to line up with the char_length check on the table.
	if utf8.RuneCountInString(strings.TrimSpace(params.Description)) < minDescriptionLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("description must be at least %d characters", minDescriptionLen))
	}
	if !params.Genre.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid genre")
	}
	if !params.Language.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid language")
	}
	if !ValidASIN(params.ASIN) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid asin")
	}
	if err := validateFile(params.Manuscript, manuscriptContentTypes, uploads.MaxManuscriptMB, "manuscript"); err != nil {
		return err
	}
	return validateFile(params.Cover, coverContentTypes, uploads.MaxCoverMB, "cover")
}

func validateFile(file FileUpload, allowed map[string]string, maxMB int, label string) error {
	if len(file.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, label+" file is required")
	}
	if _, ok := allowed[file.ContentType]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported "+label+" content type").
			WithDetails(map[string]any{"content_type": file.ContentType})
	}
	if maxMB > 0 && len(file.Data) > maxMB*1024*1024 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s exceeds the %d MB limit", label, maxMB))
	}
	if ext := strings.ToLower(path.Ext(file.Filename)); ext == ".exe" || ext == ".sh" {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported "+label+" file extension")
	}
	return nil
}
