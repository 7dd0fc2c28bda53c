package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/cache"
	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

var (
	ErrSelfFollow      = errors.New("cannot follow yourself")
	ErrProfileNotFound = errors.New("profile not found")
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	statsCache  *cache.Cache
}

func NewProfileService(profileRepo repository.ProfileRepository, postRepo repository.PostRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
	}
}

// SetStatsCache sets the memcached-backed stats cache (optional dependency).
func (s *ProfileService) SetStatsCache(c *cache.Cache) {
	s.statsCache = c
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Follow adds the directed edge follower→target. The self-follow check runs
// before any write; the schema's CHECK constraint backs it up so a concurrent
// writer cannot persist a self-edge either. Following an already-followed
// profile is a no-op.
func (s *ProfileService) Follow(ctx context.Context, followerID, targetID uuid.UUID) error {
	if followerID == targetID {
		return ErrSelfFollow
	}

	target, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrProfileNotFound
	}

	if err := s.profileRepo.Follow(ctx, followerID, targetID); err != nil {
		return err
	}

	s.statsCache.InvalidateStats(targetID)
	return nil
}

// Unfollow removes the edge follower→target. Removing an absent edge is a
// no-op. The follower's read marks on the target's posts are pruned in the
// same repository transaction as the edge removal; re-following later does
// not bring them back.
func (s *ProfileService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	if err := s.profileRepo.Unfollow(ctx, followerID, targetID); err != nil {
		return err
	}

	s.statsCache.InvalidateStats(targetID)
	return nil
}

func (s *ProfileService) IsFollowing(ctx context.Context, followerID, targetID uuid.UUID) (bool, error) {
	return s.profileRepo.IsFollowing(ctx, followerID, targetID)
}

// ListFollowing returns the followed profiles ordered by username, so
// repeated listings paginate reproducibly.
func (s *ProfileService) ListFollowing(ctx context.Context, profileID uuid.UUID) ([]domain.Profile, error) {
	profiles, err := s.profileRepo.ListFollowing(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return profiles, nil
}

// MarkRead toggles the read mark: marking an already-read post un-reads it.
// The post's author does not have to be followed at mark time.
func (s *ProfileService) MarkRead(ctx context.Context, profileID, postID uuid.UUID) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, ErrPostNotFound
	}

	return s.profileRepo.ToggleRead(ctx, profileID, postID)
}

func (s *ProfileService) ReadPosts(ctx context.Context, profileID uuid.UUID) ([]domain.Post, error) {
	posts, err := s.profileRepo.ListRead(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

func (s *ProfileService) Stats(ctx context.Context, profileID uuid.UUID) (*domain.ProfileStats, error) {
	if stats, ok := s.statsCache.GetStats(profileID); ok {
		return stats, nil
	}

	stats, err := s.profileRepo.Stats(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.statsCache.SetStats(stats)
	return stats, nil
}
