package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

var ErrViewerRequired = errors.New("an authenticated viewer is required for this feed")

// FeedScope selects which authors contribute to a feed.
type FeedScope string

const (
	// ScopeAll is the public feed over every post in the system.
	ScopeAll FeedScope = "all"
	// ScopeFollowed restricts the feed to authors the viewer follows.
	ScopeFollowed FeedScope = "followed"
)

type FeedService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	pageSize    int
}

func NewFeedService(postRepo repository.PostRepository, profileRepo repository.ProfileRepository, pageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &FeedService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		pageSize:    pageSize,
	}
}

func (s *FeedService) PageSize() int {
	return s.pageSize
}

// Compose returns one page of the requested feed, newest first with post ID
// as the tie-break, so pages are stable across repeated reads. viewer may be
// nil only for ScopeAll.
func (s *FeedService) Compose(ctx context.Context, viewer *uuid.UUID, scope FeedScope, page int) (*PostListResponse, error) {
	if page < 1 {
		page = 1
	}
	limit, offset := s.pageSize+1, (page-1)*s.pageSize

	var posts []domain.Post
	var err error

	switch scope {
	case ScopeAll:
		posts, err = s.postRepo.ListAll(ctx, limit, offset)
	case ScopeFollowed:
		if viewer == nil {
			return nil, ErrViewerRequired
		}
		var following []domain.Profile
		following, err = s.profileRepo.ListFollowing(ctx, *viewer)
		if err != nil {
			return nil, err
		}
		authorIDs := make([]uuid.UUID, 0, len(following))
		for _, p := range following {
			authorIDs = append(authorIDs, p.ID)
		}
		posts, err = s.postRepo.ListByAuthors(ctx, authorIDs, limit, offset)
	default:
		return nil, errors.New("unknown feed scope: " + string(scope))
	}
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > s.pageSize
	if hasMore {
		posts = posts[:s.pageSize]
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return &PostListResponse{Posts: posts, Page: page, HasMore: hasMore}, nil
}
