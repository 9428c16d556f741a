package repository

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"sociomate/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store. Each method holds the lock for its
// whole body, which gives the same per-document atomicity MongoDB offers.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
	posts map[primitive.ObjectID]*models.Post
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[primitive.ObjectID]*models.User),
		posts: make(map[primitive.ObjectID]*models.Post),
		now:   time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) InsertPost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := s.posts[p.ID]; ok {
		return Conflict("post %s already exists", p.ID.Hex())
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

func (s *MemoryStore) FindPost(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

func (s *MemoryStore) PopulatedPost(_ context.Context, id primitive.ObjectID) (*models.PopulatedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.populate(p), nil
}

func (s *MemoryStore) ListPosts(_ context.Context, author *primitive.ObjectID) ([]*models.PopulatedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if author == nil || p.User == *author {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, func(a, b *models.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})

	out := make([]*models.PopulatedPost, 0, len(matched))
	for _, p := range matched {
		out = append(out, s.populate(p))
	}
	return out, nil
}

func (s *MemoryStore) ToggleLike(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, ErrNotFound
	}
	liked := !p.LikedBy(userID)
	if liked {
		p.Likes = append(p.Likes, userID)
	} else {
		p.Likes = models.RemoveID(p.Likes, userID)
	}
	p.UpdatedAt = s.now()
	return liked, nil
}

func (s *MemoryStore) PushComment(_ context.Context, postID primitive.ObjectID, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.Comments = append(p.Comments, c)
	p.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) PullComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.Comments = slices.DeleteFunc(p.Comments, func(c models.Comment) bool { return c.ID == commentID })
	p.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) InsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return Conflict("User already exists")
		}
		if existing.Username == u.Username {
			return Conflict("Username already taken")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *MemoryStore) FindUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Username != "" && upd.Username != u.Username {
		for otherID, other := range s.users {
			if otherID != id && other.Username == upd.Username {
				return nil, Conflict("Username already taken")
			}
		}
		u.Username = upd.Username
	}
	if upd.Bio != "" {
		u.Bio = upd.Bio
	}
	if upd.ProfilePicture != "" {
		u.ProfilePicture = upd.ProfilePicture
	}
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

func (s *MemoryStore) Profile(_ context.Context, id primitive.ObjectID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Profile{
		User:      *cloneUser(u),
		Followers: s.summaries(u.Followers),
		Following: s.summaries(u.Following),
	}, nil
}

func (s *MemoryStore) SetFollow(_ context.Context, follower, target primitive.ObjectID, follow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.users[follower]
	if !ok {
		return ErrNotFound
	}
	t, ok := s.users[target]
	if !ok {
		return ErrNotFound
	}

	now := s.now()
	if follow {
		if !models.ContainsID(f.Following, target) {
			f.Following = append(f.Following, target)
		}
		if !models.ContainsID(t.Followers, follower) {
			t.Followers = append(t.Followers, follower)
		}
	} else {
		f.Following = models.RemoveID(f.Following, target)
		t.Followers = models.RemoveID(t.Followers, follower)
	}
	f.UpdatedAt, t.UpdatedAt = now, now
	return nil
}

// populate must be called with s.mu held.
func (s *MemoryStore) populate(p *models.Post) *models.PopulatedPost {
	authors := make(map[primitive.ObjectID]*models.UserSummary)
	resolve := func(id primitive.ObjectID) {
		if _, done := authors[id]; done {
			return
		}
		if u, ok := s.users[id]; ok {
			authors[id] = u.Summary()
		}
	}
	resolve(p.User)
	for _, c := range p.Comments {
		resolve(c.User)
	}
	return models.Populate(clonePost(p), authors)
}

// summaries must be called with s.mu held.
func (s *MemoryStore) summaries(ids []primitive.ObjectID) []models.UserSummary {
	docs := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			docs = append(docs, *u.Summary())
		}
	}
	return orderSummaries(ids, docs)
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = slices.Clone(p.Likes)
	cp.Comments = slices.Clone(p.Comments)
	return &cp
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Followers = slices.Clone(u.Followers)
	cp.Following = slices.Clone(u.Following)
	return &cp
}
