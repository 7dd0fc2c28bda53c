package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Caption     string    `json:"caption"`
	ContentText string    `json:"content_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Joined fields
	AuthorUsername    string `json:"author_username,omitempty"`
	AuthorDisplayName string `json:"author_display_name,omitempty"`
}

// ReadMark records that a profile acknowledged a post. Rows are pruned in the
// same transaction as the unfollow or deletion that invalidates them.
type ReadMark struct {
	ProfileID uuid.UUID `json:"profile_id"`
	PostID    uuid.UUID `json:"post_id"`
	MarkedAt  time.Time `json:"marked_at"`
}
