package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/domain"
)

type UserRepository interface {
	// CreateWithProfile inserts the user and its profile in one transaction.
	CreateWithProfile(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Delete removes the account owning the given profile, the profile, its
	// posts, every follow edge touching the profile and every read mark
	// referencing it or its posts, all in one transaction.
	Delete(ctx context.Context, profileID uuid.UUID) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	Follow(ctx context.Context, followerID, followedID uuid.UUID) error
	// Unfollow removes the edge and, in the same transaction, every read mark
	// of the follower on posts authored by the unfollowed profile. Removing
	// an absent edge is not an error.
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	ListFollowing(ctx context.Context, followerID uuid.UUID) ([]domain.Profile, error)
	// ToggleRead adds the mark if absent, removes it if present. Returns
	// whether the post is marked read afterwards.
	ToggleRead(ctx context.Context, profileID, postID uuid.UUID) (bool, error)
	ListRead(ctx context.Context, profileID uuid.UUID) ([]domain.Post, error)
	Stats(ctx context.Context, profileID uuid.UUID) (*domain.ProfileStats, error)
	ListFollowerEmails(ctx context.Context, profileID uuid.UUID) ([]string, error)
	ListFollowerIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	// Delete removes the post and its read marks in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context, limit, offset int) ([]domain.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Post, error)
}
