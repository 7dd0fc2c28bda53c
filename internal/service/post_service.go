package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/cache"
	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("only the author can perform this action")
	ErrCaptionRequired = errors.New("caption is required")
	ErrCaptionTooLong  = errors.New("caption must not exceed 128 characters")
	ErrContentRequired = errors.New("content must not be empty")
)

// Notifier pushes real-time events to connected followers.
type Notifier interface {
	NotifyNewPost(post *domain.Post, followerIDs []uuid.UUID)
	NotifyDeletedPost(postID uuid.UUID)
}

// Dispatcher queues outbound email notifications. Enqueueing must not block
// and delivery failures must never surface to the caller.
type Dispatcher interface {
	EnqueueNewPost(post *domain.Post, recipients []string)
}

type PostService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	notifier    Notifier
	dispatcher  Dispatcher
	statsCache  *cache.Cache
}

func NewPostService(postRepo repository.PostRepository, profileRepo repository.ProfileRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *PostService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetDispatcher sets the email fan-out dispatcher (optional dependency).
func (s *PostService) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// SetStatsCache sets the memcached-backed stats cache (optional dependency).
func (s *PostService) SetStatsCache(c *cache.Cache) {
	s.statsCache = c
}

type PostInput struct {
	Caption     string `json:"caption"`
	ContentText string `json:"content_text"`
}

type PostListResponse struct {
	Posts   []domain.Post `json:"posts"`
	Page    int           `json:"page"`
	HasMore bool          `json:"has_more"`
}

// Create stores a new post. The author is always the acting profile; any
// author value a caller smuggles into the payload is ignored. The follower
// set is enumerated before returning, delivery itself happens off the
// request path.
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input PostInput) (*domain.Post, error) {
	if err := validatePost(input); err != nil {
		return nil, err
	}

	author, err := s.profileRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrProfileNotFound
	}

	now := time.Now()
	post := &domain.Post{
		ID:                uuid.New(),
		AuthorID:          authorID,
		Caption:           input.Caption,
		ContentText:       input.ContentText,
		CreatedAt:         now,
		UpdatedAt:         now,
		AuthorUsername:    author.Username,
		AuthorDisplayName: author.DisplayName,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.statsCache.InvalidateStats(authorID)
	s.fanOut(ctx, post)

	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, actingID, postID uuid.UUID, input PostInput) (*domain.Post, error) {
	if err := validatePost(input); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != actingID {
		return nil, ErrNotPostOwner
	}

	post.Caption = input.Caption
	post.ContentText = input.ContentText
	post.UpdatedAt = time.Now()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, actingID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != actingID {
		return ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.statsCache.InvalidateStats(actingID)
	if s.notifier != nil {
		s.notifier.NotifyDeletedPost(postID)
	}
	return nil
}

// ListByProfile returns one page of a profile's posts, newest first. A
// nonexistent profile is an error rather than an empty page.
func (s *PostService) ListByProfile(ctx context.Context, profileID uuid.UUID, page, pageSize int) (*PostListResponse, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if page < 1 {
		page = 1
	}

	posts, err := s.postRepo.ListByAuthor(ctx, profileID, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > pageSize
	if hasMore {
		posts = posts[:pageSize]
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return &PostListResponse{Posts: posts, Page: page, HasMore: hasMore}, nil
}

// fanOut enumerates the current followers and hands them to the async
// boundaries. Enumeration problems are logged and swallowed: the post is
// already created and notification failures must not undo that.
func (s *PostService) fanOut(ctx context.Context, post *domain.Post) {
	if s.dispatcher != nil {
		emails, err := s.profileRepo.ListFollowerEmails(ctx, post.AuthorID)
		if err != nil {
			zap.L().Error("enumerating follower emails", zap.Error(err), zap.String("post_id", post.ID.String()))
		} else if len(emails) > 0 {
			s.dispatcher.EnqueueNewPost(post, emails)
		}
	}

	if s.notifier != nil {
		ids, err := s.profileRepo.ListFollowerIDs(ctx, post.AuthorID)
		if err != nil {
			zap.L().Error("enumerating follower ids", zap.Error(err), zap.String("post_id", post.ID.String()))
		} else if len(ids) > 0 {
			s.notifier.NotifyNewPost(post, ids)
		}
	}
}

func validatePost(input PostInput) error {
	if input.Caption == "" {
		return ErrCaptionRequired
	}
	if utf8.RuneCountInString(input.Caption) > 128 {
		return ErrCaptionTooLong
	}
	if input.ContentText == "" {
		return ErrContentRequired
	}
	return nil
}
