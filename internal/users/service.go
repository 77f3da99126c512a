package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/internal/books"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox/payloads"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

// Service defines profile access and the account ban flow.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	BanUser(ctx context.Context, caller types.Caller, userID uuid.UUID) (*BanResult, error)
}

// BanResult summarizes the cascade applied when an account is banned.
type BanResult struct {
	UserID        uuid.UUID `json:"user_id"`
	BooksArchived int       `json:"books_archived"`
	BooksDeleted  int       `json:"books_deleted"`
	BannedAt      time.Time `json:"banned_at"`
}

type objectStore interface {
	Delete(ctx context.Context, bucket, key string) error
	ManuscriptsBucket() string
	CoversBucket() string
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db     *db.Client
	store  objectStore
	outbox eventEmitter
	logg   *logger.Logger
}

// ServiceParams bundles the dependencies for the users service.
type ServiceParams struct {
	DB     *db.Client
	Store  objectStore
	Outbox eventEmitter
	Logger *logger.Logger
}

// NewService wires the users service dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
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
		db:     params.DB,
		store:  params.Store,
		outbox: params.Outbox,
		logg:   params.Logger,
	}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := NewRepository(s.db.DB()).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

// BanUser deactivates the account and applies the content cascade in one
// transaction: approved books flip to archived so existing review plans keep
// their history, everything still in moderation is removed outright. Storage
// objects for removed books are deleted only after the transaction commits.
func (s *service) BanUser(ctx context.Context, caller types.Caller, userID uuid.UUID) (*BanResult, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if caller.UserID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admins cannot ban themselves")
	}

	now := time.Now().UTC()
	var (
		result  BanResult
		removed []models.Book
	)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := NewRepository(tx)
		bookRepo := books.NewRepository(tx)

		target, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		if target.Role == enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot be banned")
		}

		affected, err := userRepo.Ban(ctx, userID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ban user")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "user is already banned")
		}
		if err := userRepo.MarkCustomerBanned(ctx, userID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark customer banned")
		}

		archived, err := bookRepo.ArchiveApprovedByOwner(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "archive approved books")
		}

		removed, err = bookRepo.ListRemovableByOwner(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list removable books")
		}
		ids := make([]uuid.UUID, 0, len(removed))
		for _, b := range removed {
			ids = append(ids, b.ID)
		}
		if err := bookRepo.DeleteByIDs(ctx, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pending books")
		}

		result = BanResult{
			UserID:        userID,
			BooksArchived: int(archived),
			BooksDeleted:  len(removed),
			BannedAt:      now,
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserBanned,
			AggregateType: enums.AggregateUser,
			AggregateID:   userID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.UserBannedEvent{
				UserID:        userID,
				BooksArchived: result.BooksArchived,
				BooksDeleted:  result.BooksDeleted,
				BannedAt:      now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	// Best-effort object cleanup; the rows are already gone.
	for _, b := range removed {
		s.cleanupObject(ctx, s.store.ManuscriptsBucket(), b.ManuscriptKey)
		s.cleanupObject(ctx, s.store.CoversBucket(), b.CoverKey)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":        userID.String(),
		"books_archived": result.BooksArchived,
		"books_deleted":  result.BooksDeleted,
	})
	s.logg.Info(logCtx, "user banned")
	return &result, nil
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
