package books

import (
	"time"

	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// BookDTO is the transport shape for a book.
type BookDTO struct {
	ID              uuid.UUID            `json:"id"`
	OwnerID         uuid.UUID            `json:"owner_id"`
	Title           string               `json:"title"`
	Author          string               `json:"author"`
	Description     string               `json:"description"`
	Genre           enums.Genre          `json:"genre"`
	Language        enums.Language       `json:"language"`
	ASIN            string               `json:"asin"`
	ExplicitContent bool                 `json:"explicit_content"`
	CoverURL        string               `json:"cover_url"`
	ApprovalStatus  enums.ApprovalStatus `json:"approval_status"`
	AdminFeedback   *string              `json:"admin_feedback,omitempty"`
	UploadedAt      time.Time            `json:"uploaded_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// FromModel converts a persisted book to its transport shape.
func FromModel(b *models.Book) *BookDTO {
	if b == nil {
		return nil
	}
	return &BookDTO{
		ID:              b.ID,
		OwnerID:         b.OwnerID,
		Title:           b.Title,
		Author:          b.Author,
		Description:     b.Description,
		Genre:           b.Genre,
		Language:        b.Language,
		ASIN:            b.ASIN,
		ExplicitContent: b.ExplicitContent,
		CoverURL:        b.CoverURL,
		ApprovalStatus:  b.ApprovalStatus,
		AdminFeedback:   b.AdminFeedback,
		UploadedAt:      b.UploadedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// FileUpload carries one uploaded file through the submission flow.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitParams is the validated input for a book submission.
type SubmitParams struct {
	OwnerID         uuid.UUID
	Title           string
	Author          string
	Description     string
	Genre           enums.Genre
	Language        enums.Language
	ASIN            string
	ExplicitContent bool
	Manuscript      FileUpload
	Cover           FileUpload
}

// UpdateParams carries the owner-editable metadata fields.
type UpdateParams struct {
	Title           *string
	Author          *string
	Description     *string
	Genre           *enums.Genre
	Language        *enums.Language
	ASIN            *string
	ExplicitContent *bool
}

// ReviewParams is an admin decision on a submitted book.
type ReviewParams struct {
	BookID   uuid.UUID
	Status   enums.ApprovalStatus
	Feedback string
}

// DownloadURLs bundles short-lived links to the stored files.
type DownloadURLs struct {
	ManuscriptURL string `json:"manuscript_url"`
	CoverURL      string `json:"cover_url"`
	ExpiresIn     string `json:"expires_in"`
}

// ListParams configures pagination and filtering for book listings.
type ListParams struct {
	Status *enums.ApprovalStatus
	Limit  int
	Cursor string
}

// ListResult wraps returned books and the cursor for the next page.
type ListResult struct {
	Items  []BookDTO `json:"items"`
	Cursor string    `json:"cursor"`
}
