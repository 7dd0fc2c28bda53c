package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDispatcher struct {
	mu         sync.Mutex
	recipients []string
	posts      []uuid.UUID
	authors    []string
}

func (d *captureDispatcher) EnqueueNewPost(post *domain.Post, recipients []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recipients = append(d.recipients, recipients...)
	d.posts = append(d.posts, post.ID)
	d.authors = append(d.authors, post.AuthorUsername)
}

type captureNotifier struct {
	mu        sync.Mutex
	newPosts  []uuid.UUID
	followers [][]uuid.UUID
	deleted   []uuid.UUID
}

func (n *captureNotifier) NotifyNewPost(post *domain.Post, followerIDs []uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newPosts = append(n.newPosts, post.ID)
	n.followers = append(n.followers, followerIDs)
}

func (n *captureNotifier) NotifyDeletedPost(postID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, postID)
}

func newPostService(s *memStore) *PostService {
	return NewPostService(&fakePostRepo{s: s}, &fakeProfileRepo{s: s})
}

func TestCreatePostForcesAuthor(t *testing.T) {
	s := newMemStore()
	svc := newPostService(s)

	alice := s.seedProfile("alice")

	post, err := svc.Create(context.Background(), alice, PostInput{
		Caption:     "first",
		ContentText: "hello world",
	})
	require.NoError(t, err)
	assert.Equal(t, alice, post.AuthorID)
	assert.False(t, post.CreatedAt.IsZero())

	stored, err := svc.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, stored.AuthorID)
}

func TestCreatePostValidation(t *testing.T) {
	s := newMemStore()
	svc := newPostService(s)
	ctx := context.Background()

	alice := s.seedProfile("alice")

	_, err := svc.Create(ctx, alice, PostInput{ContentText: "body"})
	require.ErrorIs(t, err, ErrCaptionRequired)

	_, err = svc.Create(ctx, alice, PostInput{Caption: strings.Repeat("x", 129), ContentText: "body"})
	require.ErrorIs(t, err, ErrCaptionTooLong)

	_, err = svc.Create(ctx, alice, PostInput{Caption: "ok"})
	require.ErrorIs(t, err, ErrContentRequired)
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	s := newMemStore()
	svc := newPostService(s)
	ctx := context.Background()

	alice := s.seedProfile("alice")
	bob := s.seedProfile("bob")

	post, err := svc.Create(ctx, alice, PostInput{Caption: "mine", ContentText: "body"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, post.ID, PostInput{Caption: "stolen", ContentText: "body"})
	require.ErrorIs(t, err, ErrNotPostOwner)

	err = svc.Delete(ctx, bob, post.ID)
	require.ErrorIs(t, err, ErrNotPostOwner)

	updated, err := svc.Update(ctx, alice, post.ID, PostInput{Caption: "edited", ContentText: "new body"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Caption)

	require.NoError(t, svc.Delete(ctx, alice, post.ID))

	_, err = svc.Get(ctx, post.ID)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdateMissingPost(t *testing.T) {
	s := newMemStore()
	svc := newPostService(s)

	alice := s.seedProfile("alice")

	_, err := svc.Update(context.Background(), alice, uuid.New(), PostInput{Caption: "c", ContentText: "b"})
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePostPrunesReadMarks(t *testing.T) {
	s := newMemStore()
	postSvc := newPostService(s)
	profileSvc := newProfileService(s)
	ctx := context.Background()

	alice := s.seedProfile("alice")
	bob := s.seedProfile("bob")

	require.NoError(t, profileSvc.Follow(ctx, alice, bob))

	post, err := postSvc.Create(ctx, bob, PostInput{Caption: "gone soon", ContentText: "body"})
	require.NoError(t, err)

	_, err = profileSvc.MarkRead(ctx, alice, post.ID)
	require.NoError(t, err)

	require.NoError(t, postSvc.Delete(ctx, bob, post.ID))

	posts, err := profileSvc.ReadPosts(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreatePostFansOutToCurrentFollowers(t *testing.T) {
	s := newMemStore()
	svc := newPostService(s)
	profileSvc := newProfileService(s)
	ctx := context.Background()

	dispatcher := &captureDispatcher{}
	notifier := &captureNotifier{}
	svc.SetDispatcher(dispatcher)
	svc.SetNotifier(notifier)

	alice := s.seedProfile("alice")
	bob := s.seedProfile("bob")
	carol := s.seedProfile("carol")

	require.NoError(t, profileSvc.Follow(ctx, alice, bob))
	require.NoError(t, profileSvc.Follow(ctx, carol, bob))

	post, err := svc.Create(ctx, bob, PostInput{Caption: "news", ContentText: "body"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alice@example.com", "carol@example.com"}, dispatcher.recipients)
	require.Len(t, notifier.newPosts, 1)
	assert.Equal(t, post.ID, notifier.newPosts[0])
	assert.ElementsMatch(t, []uuid.UUID{alice, carol}, notifier.followers[0])

	// The dispatched post carries the author's identity for the message body.
	require.Len(t, dispatcher.authors, 1)
	assert.Equal(t, "bob", dispatcher.authors[0])
	assert.Equal(t, "bob", post.AuthorUsername)
}

func TestCreatePostWithoutFollowersDispatchesNothing(t *testing.T) {
	s := newMemStore()
	svc := newPostService(s)

	dispatcher := &captureDispatcher{}
	svc.SetDispatcher(dispatcher)

	bob := s.seedProfile("bob")

	_, err := svc.Create(context.Background(), bob, PostInput{Caption: "quiet", ContentText: "body"})
	require.NoError(t, err)
	assert.Empty(t, dispatcher.recipients)
}

func TestListByProfile(t *testing.T) {
	s := newMemStore()
	svc := newPostService(s)
	ctx := context.Background()

	alice := s.seedProfile("alice")
	base := time.Now()
	for i := 0; i < 3; i++ {
		s.seedPost(alice, "post", base.Add(time.Duration(i)*time.Minute))
	}

	_, err := svc.ListByProfile(ctx, uuid.New(), 1, 10)
	require.ErrorIs(t, err, ErrProfileNotFound)

	resp, err := svc.ListByProfile(ctx, alice, 1, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Posts, 2)
	assert.True(t, resp.HasMore)

	resp, err = svc.ListByProfile(ctx, alice, 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Posts, 1)
	assert.False(t, resp.HasMore)
}
