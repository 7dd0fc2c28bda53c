package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a user's in-app identity. Exactly one exists per user account:
// both rows are written in the same transaction at registration and removed
// in the same transaction at account deletion.
type Profile struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	// Joined fields
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Follow is a directed edge: the follower wants the followed profile's posts
// in their feed. Self-edges are rejected before the write and by a schema
// CHECK constraint.
type Follow struct {
	FollowerID uuid.UUID `json:"follower_id"`
	FollowedID uuid.UUID `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfileStats is the aggregate shown on a profile page.
type ProfileStats struct {
	ProfileID     uuid.UUID `json:"profile_id"`
	PostCount     int       `json:"post_count"`
	FollowerCount int       `json:"follower_count"`
}
