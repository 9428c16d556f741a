package client

import (
	"context"

	"sociomate/logging"
	"sociomate/views"
)

// PostsAPI is the part of Client the post screens use.
type PostsAPI interface {
	Posts(ctx context.Context) ([]views.Post, error)
	UserPosts(ctx context.Context, userID string) ([]views.Post, error)
	CreatePost(ctx context.Context, content string, image *File) (*views.Post, error)
	ToggleLike(ctx context.Context, postID string) (*views.Post, error)
	AddComment(ctx context.Context, postID, content string) (*views.Post, error)
	DeleteComment(ctx context.Context, postID, commentID string) (*views.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

// UsersAPI is the part of Client the profile screen uses.
type UsersAPI interface {
	Profile(ctx context.Context, userID string) (*views.User, error)
	UpdateProfile(ctx context.Context, upd ProfileUpdate) (*views.User, error)
	ToggleFollow(ctx context.Context, userID string) (*views.User, error)
}

// Feed mirrors a post list: the global feed, or one author's posts when
// UserID is set. A failed call leaves Posts as it was.
type Feed struct {
	api    PostsAPI
	UserID string
	Posts  []views.Post
}

func NewFeed(api PostsAPI) *Feed {
	return &Feed{api: api}
}

func NewUserFeed(api PostsAPI, userID string) *Feed {
	return &Feed{api: api, UserID: userID}
}

func (f *Feed) Refresh(ctx context.Context) error {
	var (
		posts []views.Post
		err   error
	)
	if f.UserID == "" {
		posts, err = f.api.Posts(ctx)
	} else {
		posts, err = f.api.UserPosts(ctx, f.UserID)
	}
	if err != nil {
		return failed(ctx, "fetch posts", err)
	}
	f.Posts = posts
	return nil
}

// Create prepends the new post.
func (f *Feed) Create(ctx context.Context, content string, image *File) (*views.Post, error) {
	p, err := f.api.CreatePost(ctx, content, image)
	if err != nil {
		return nil, failed(ctx, "create post", err)
	}
	f.Posts = append([]views.Post{*p}, f.Posts...)
	return p, nil
}

func (f *Feed) Like(ctx context.Context, postID string) error {
	p, err := f.api.ToggleLike(ctx, postID)
	if err != nil {
		return failed(ctx, "like post", err)
	}
	f.merge(*p)
	return nil
}

func (f *Feed) Comment(ctx context.Context, postID, content string) error {
	p, err := f.api.AddComment(ctx, postID, content)
	if err != nil {
		return failed(ctx, "comment", err)
	}
	f.merge(*p)
	return nil
}

func (f *Feed) Uncomment(ctx context.Context, postID, commentID string) error {
	p, err := f.api.DeleteComment(ctx, postID, commentID)
	if err != nil {
		return failed(ctx, "delete comment", err)
	}
	f.merge(*p)
	return nil
}

// Delete drops the post locally and then refetches the list.
func (f *Feed) Delete(ctx context.Context, postID string) error {
	if err := f.api.DeletePost(ctx, postID); err != nil {
		return failed(ctx, "delete post", err)
	}
	kept := f.Posts[:0]
	for _, p := range f.Posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	f.Posts = kept
	return f.Refresh(ctx)
}

func (f *Feed) merge(p views.Post) {
	for i := range f.Posts {
		if f.Posts[i].ID == p.ID {
			f.Posts[i] = p
			return
		}
	}
}

// ProfileScreen mirrors one user's profile and posts.
type ProfileScreen struct {
	users   UsersAPI
	state   *State
	UserID  string
	Profile *views.User
	Posts   *Feed
}

// NewProfileScreen shows userID. state, when set, is refreshed after the
// signed-in user edits their own profile.
func NewProfileScreen(users UsersAPI, posts PostsAPI, state *State, userID string) *ProfileScreen {
	return &ProfileScreen{users: users, state: state, UserID: userID, Posts: NewUserFeed(posts, userID)}
}

func (s *ProfileScreen) Load(ctx context.Context) error {
	p, err := s.users.Profile(ctx, s.UserID)
	if err != nil {
		return failed(ctx, "fetch profile", err)
	}
	s.Profile = p
	return s.Posts.Refresh(ctx)
}

// IsFollowedBy reports whether userID is among the profile's followers.
func (s *ProfileScreen) IsFollowedBy(userID string) bool {
	if s.Profile == nil {
		return false
	}
	for _, f := range s.Profile.Followers {
		if f.ID == userID {
			return true
		}
	}
	return false
}

func (s *ProfileScreen) ToggleFollow(ctx context.Context) error {
	p, err := s.users.ToggleFollow(ctx, s.UserID)
	if err != nil {
		return failed(ctx, "follow", err)
	}
	s.Profile = p
	return nil
}

func (s *ProfileScreen) Update(ctx context.Context, upd ProfileUpdate) error {
	p, err := s.users.UpdateProfile(ctx, upd)
	if err != nil {
		return failed(ctx, "update profile", err)
	}
	if p.ID == s.UserID {
		s.Profile = p
	}
	if s.state != nil {
		return s.state.UpdateUser(ctx, p)
	}
	return nil
}

func failed(ctx context.Context, op string, err error) error {
	logging.Ctx(ctx).Error().Err(err).Str("op", op).Msg("request failed")
	return err
}
