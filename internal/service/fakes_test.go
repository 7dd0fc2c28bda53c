package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/domain"
)

// memStore is a single in-memory backing store shared by the fake
// repositories, so cross-entity effects (read-state pruning, deletion
// cascades) behave like the transactional SQL implementations.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]domain.User
	profiles map[uuid.UUID]domain.Profile
	follows  map[[2]uuid.UUID]time.Time
	posts    map[uuid.UUID]domain.Post
	read     map[[2]uuid.UUID]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]domain.User),
		profiles: make(map[uuid.UUID]domain.Profile),
		follows:  make(map[[2]uuid.UUID]time.Time),
		posts:    make(map[uuid.UUID]domain.Post),
		read:     make(map[[2]uuid.UUID]time.Time),
	}
}

func (s *memStore) seedProfile(username string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	user := domain.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		ProfileID:   uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users[user.ID] = user
	s.profiles[user.ProfileID] = domain.Profile{ID: user.ProfileID, UserID: user.ID}
	return user.ProfileID
}

func (s *memStore) seedPost(authorID uuid.UUID, caption string, createdAt time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := domain.Post{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Caption:     caption,
		ContentText: caption + " body",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	s.posts[post.ID] = post
	return post.ID
}

func (s *memStore) profileView(id uuid.UUID) *domain.Profile {
	p, ok := s.profiles[id]
	if !ok {
		return nil
	}
	u := s.users[p.UserID]
	p.Username = u.Username
	p.DisplayName = u.DisplayName
	p.Email = u.Email
	return &p
}

func (s *memStore) postView(id uuid.UUID) *domain.Post {
	p, ok := s.posts[id]
	if !ok {
		return nil
	}
	if author, ok := s.profiles[p.AuthorID]; ok {
		u := s.users[author.UserID]
		p.AuthorUsername = u.Username
		p.AuthorDisplayName = u.DisplayName
	}
	return &p
}

// sortPostsDesc orders like the SQL feeds: created_at desc, id desc.
func sortPostsDesc(posts []domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return bytes.Compare(posts[i].ID[:], posts[j].ID[:]) > 0
	})
}

func paginate(posts []domain.Post, limit, offset int) []domain.Post {
	if offset >= len(posts) {
		return nil
	}
	posts = posts[offset:]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

type fakeUserRepo struct {
	s *memStore
}

func (r *fakeUserRepo) CreateWithProfile(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	r.s.profiles[user.ProfileID] = domain.Profile{ID: user.ProfileID, UserID: user.ID}
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, profileID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	profile, ok := r.s.profiles[profileID]
	if !ok {
		return nil
	}

	for key := range r.s.read {
		post, exists := r.s.posts[key[1]]
		if key[0] == profileID || (exists && post.AuthorID == profileID) {
			delete(r.s.read, key)
		}
	}
	for edge := range r.s.follows {
		if edge[0] == profileID || edge[1] == profileID {
			delete(r.s.follows, edge)
		}
	}
	for id, post := range r.s.posts {
		if post.AuthorID == profileID {
			delete(r.s.posts, id)
		}
	}
	delete(r.s.profiles, profileID)
	delete(r.s.users, profile.UserID)
	return nil
}

type fakeProfileRepo struct {
	s *memStore
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.profileView(id), nil
}

func (r *fakeProfileRepo) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	edge := [2]uuid.UUID{followerID, followedID}
	if _, ok := r.s.follows[edge]; !ok {
		r.s.follows[edge] = time.Now()
	}
	return nil
}

func (r *fakeProfileRepo) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.follows, [2]uuid.UUID{followerID, followedID})
	for key := range r.s.read {
		if key[0] != followerID {
			continue
		}
		if post, ok := r.s.posts[key[1]]; ok && post.AuthorID == followedID {
			delete(r.s.read, key)
		}
	}
	return nil
}

func (r *fakeProfileRepo) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.follows[[2]uuid.UUID{followerID, followedID}]
	return ok, nil
}

func (r *fakeProfileRepo) ListFollowing(ctx context.Context, followerID uuid.UUID) ([]domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var profiles []domain.Profile
	for edge := range r.s.follows {
		if edge[0] == followerID {
			if p := r.s.profileView(edge[1]); p != nil {
				profiles = append(profiles, *p)
			}
		}
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Username < profiles[j].Username
	})
	return profiles, nil
}

func (r *fakeProfileRepo) ToggleRead(ctx context.Context, profileID, postID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]uuid.UUID{profileID, postID}
	if _, ok := r.s.read[key]; ok {
		delete(r.s.read, key)
		return false, nil
	}
	r.s.read[key] = time.Now()
	return true, nil
}

func (r *fakeProfileRepo) ListRead(ctx context.Context, profileID uuid.UUID) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var posts []domain.Post
	for key := range r.s.read {
		if key[0] == profileID {
			if p := r.s.postView(key[1]); p != nil {
				posts = append(posts, *p)
			}
		}
	}
	sortPostsDesc(posts)
	return posts, nil
}

func (r *fakeProfileRepo) Stats(ctx context.Context, profileID uuid.UUID) (*domain.ProfileStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := domain.ProfileStats{ProfileID: profileID}
	for _, post := range r.s.posts {
		if post.AuthorID == profileID {
			stats.PostCount++
		}
	}
	for edge := range r.s.follows {
		if edge[1] == profileID {
			stats.FollowerCount++
		}
	}
	return &stats, nil
}

func (r *fakeProfileRepo) ListFollowerEmails(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var emails []string
	for edge := range r.s.follows {
		if edge[1] == profileID {
			if p := r.s.profileView(edge[0]); p != nil {
				emails = append(emails, p.Email)
			}
		}
	}
	sort.Strings(emails)
	return emails, nil
}

func (r *fakeProfileRepo) ListFollowerIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []uuid.UUID
	for edge := range r.s.follows {
		if edge[1] == profileID {
			ids = append(ids, edge[0])
		}
	}
	return ids, nil
}

type fakePostRepo struct {
	s *memStore
}

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.postView(id), nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.posts[post.ID]
	if !ok {
		return nil
	}
	stored.Caption = post.Caption
	stored.ContentText = post.ContentText
	stored.UpdatedAt = post.UpdatedAt
	r.s.posts[post.ID] = stored
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.posts, id)
	for key := range r.s.read {
		if key[1] == id {
			delete(r.s.read, key)
		}
	}
	return nil
}

func (r *fakePostRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var posts []domain.Post
	for id := range r.s.posts {
		posts = append(posts, *r.s.postView(id))
	}
	sortPostsDesc(posts)
	return paginate(posts, limit, offset), nil
}

func (r *fakePostRepo) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	allowed := make(map[uuid.UUID]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}

	var posts []domain.Post
	for id, post := range r.s.posts {
		if allowed[post.AuthorID] {
			posts = append(posts, *r.s.postView(id))
		}
	}
	sortPostsDesc(posts)
	return paginate(posts, limit, offset), nil
}

func (r *fakePostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Post, error) {
	return r.ListByAuthors(ctx, []uuid.UUID{authorID}, limit, offset)
}
