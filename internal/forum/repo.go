package forum

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the community forum.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePost(ctx context.Context, post *models.CommunityPost) error
	FindPost(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error)
	ListPosts(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.CommunityPost, *pagination.Cursor, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	CreateReply(ctx context.Context, reply *models.CommunityReply) error
	ListReplies(ctx context.Context, postID uuid.UUID) ([]models.CommunityReply, error)
	IncrementReplyCount(ctx context.Context, postID uuid.UUID) error
	FindVote(ctx context.Context, postID, userID uuid.UUID) (*models.CommunityVote, error)
	UpsertVote(ctx context.Context, vote *models.CommunityVote) error
	AdjustScore(ctx context.Context, postID uuid.UUID, delta int) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a forum repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repositoryImpl) FindPost(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	var post models.CommunityPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repositoryImpl) ListPosts(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.CommunityPost, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Model(&models.CommunityPost{})
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.CommunityPost
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) DeletePost(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.CommunityVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.CommunityReply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CommunityPost{}, "id = ?", id).Error
	})
}

func (r *repositoryImpl) CreateReply(ctx context.Context, reply *models.CommunityReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *repositoryImpl) ListReplies(ctx context.Context, postID uuid.UUID) ([]models.CommunityReply, error) {
	var rows []models.CommunityReply
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) IncrementReplyCount(ctx context.Context, postID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
}

func (r *repositoryImpl) FindVote(ctx context.Context, postID, userID uuid.UUID) (*models.CommunityVote, error) {
	var vote models.CommunityVote
	err := r.db.WithContext(ctx).
		First(&vote, "post_id = ? AND user_id = ?", postID, userID).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// UpsertVote writes the vote, replacing the value on conflict with the
// per-user unique index.
func (r *repositoryImpl) UpsertVote(ctx context.Context, vote *models.CommunityVote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]any{"value": vote.Value}),
		}).
		Create(vote).Error
}

func (r *repositoryImpl) AdjustScore(ctx context.Context, postID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("score", gorm.Expr("score + ?", delta)).Error
}
