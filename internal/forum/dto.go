package forum

import (
	"time"

	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
)

// PostDTO is the transport shape for a forum thread.
type PostDTO struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ReplyCount int       `json:"reply_count"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

func postFromModel(p *models.CommunityPost) *PostDTO {
	return &PostDTO{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		Title:      p.Title,
		Body:       p.Body,
		ReplyCount: p.ReplyCount,
		Score:      p.Score,
		CreatedAt:  p.CreatedAt,
	}
}

// ReplyDTO is the transport shape for a thread reply.
type ReplyDTO struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func replyFromModel(r *models.CommunityReply) *ReplyDTO {
	return &ReplyDTO{
		ID:        r.ID,
		PostID:    r.PostID,
		AuthorID:  r.AuthorID,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
	}
}

// ThreadDTO bundles a post with its replies.
type ThreadDTO struct {
	Post    *PostDTO   `json:"post"`
	Replies []ReplyDTO `json:"replies"`
}

// CreatePostParams is the input for opening a thread.
type CreatePostParams struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required"`
}

// ListPostsParams pages through threads, newest first.
type ListPostsParams struct {
	Limit  int
	Cursor string
}

// ListPostsResult carries one page of threads and the next cursor.
type ListPostsResult struct {
	Posts      []PostDTO `json:"posts"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
