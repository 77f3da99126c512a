package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/pagination"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

const maxPostTitleLength = 200

// Service covers the community forum operations.
type Service interface {
	CreatePost(ctx context.Context, caller types.Caller, params CreatePostParams) (*PostDTO, error)
	ListPosts(ctx context.Context, params ListPostsParams) (*ListPostsResult, error)
	GetThread(ctx context.Context, postID uuid.UUID) (*ThreadDTO, error)
	Reply(ctx context.Context, caller types.Caller, postID uuid.UUID, body string) (*ReplyDTO, error)
	Vote(ctx context.Context, caller types.Caller, postID uuid.UUID, value int) (*PostDTO, error)
	DeletePost(ctx context.Context, caller types.Caller, postID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build a forum service.
type ServiceParams struct {
	DB     *db.Client
	Repo   Repository
	Logger *logger.Logger
}

type service struct {
	db   *db.Client
	repo Repository
	logg *logger.Logger
}

// NewService validates dependencies and constructs the forum service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("forum repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{db: params.DB, repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) CreatePost(ctx context.Context, caller types.Caller, params CreatePostParams) (*PostDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	title := strings.TrimSpace(params.Title)
	body := strings.TrimSpace(params.Body)
	if title == "" || body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and body are required")
	}
	if len(title) > maxPostTitleLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is too long").
			WithDetails(map[string]any{"max_length": maxPostTitleLength})
	}

	post := &models.CommunityPost{
		ID:       uuid.New(),
		AuthorID: caller.UserID,
		Title:    title,
		Body:     body,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create post")
	}
	return postFromModel(post), nil
}

func (s *service) ListPosts(ctx context.Context, params ListPostsParams) (*ListPostsResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, next, err := s.repo.ListPosts(ctx, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list posts")
	}

	result := &ListPostsResult{Posts: make([]PostDTO, 0, len(rows))}
	for i := range rows {
		result.Posts = append(result.Posts, *postFromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) GetThread(ctx context.Context, postID uuid.UUID) (*ThreadDTO, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	replies, err := s.repo.ListReplies(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list replies")
	}

	thread := &ThreadDTO{Post: postFromModel(post), Replies: make([]ReplyDTO, 0, len(replies))}
	for i := range replies {
		thread.Replies = append(thread.Replies, *replyFromModel(&replies[i]))
	}
	return thread, nil
}

func (s *service) Reply(ctx context.Context, caller types.Caller, postID uuid.UUID, body string) (*ReplyDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reply body is required")
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	reply := &models.CommunityReply{
		ID:       uuid.New(),
		PostID:   postID,
		AuthorID: caller.UserID,
		Body:     body,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateReply(ctx, reply); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reply")
		}
		if err := repo.IncrementReplyCount(ctx, postID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bump reply count")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replyFromModel(reply), nil
}

// Vote records a +1/-1 vote. Re-voting replaces the previous value and the
// post score moves by the difference.
func (s *service) Vote(ctx context.Context, caller types.Caller, postID uuid.UUID, value int) (*PostDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if value != 1 && value != -1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vote value must be 1 or -1")
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		previous := 0
		existing, err := repo.FindVote(ctx, postID, caller.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vote")
		}
		if existing != nil {
			previous = existing.Value
		}

		vote := &models.CommunityVote{
			PostID: postID,
			UserID: caller.UserID,
			Value:  value,
		}
		if err := repo.UpsertVote(ctx, vote); err != nil {
			if db.IsUniqueViolation(err, "idx_vote_user_post") {
				return pkgerrors.New(pkgerrors.CodeConflict, "vote was recorded concurrently")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record vote")
		}
		if err := repo.AdjustScore(ctx, postID, value-previous); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust score")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return postFromModel(post), nil
}

func (s *service) DeletePost(ctx context.Context, caller types.Caller, postID uuid.UUID) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != caller.UserID && !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "post belongs to another user")
	}
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete post")
	}
	s.logg.Info(s.logg.WithField(ctx, "post_id", postID.String()), "forum post deleted")
	return nil
}

func (s *service) findPost(ctx context.Context, postID uuid.UUID) (*models.CommunityPost, error) {
	post, err := s.repo.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	return post, nil
}
