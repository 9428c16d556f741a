package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sociomate/auth"
	"sociomate/metrics"
	"sociomate/models"
	"sociomate/repository"
	"sociomate/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterInput struct {
	Username string `validate:"required,min=3,max=30"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Session is a user together with a freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

type UsersOptions struct {
	// RejectSelfFollow turns a follow of oneself into a ValidationError.
	// Off by default, which keeps self-follow allowed.
	RejectSelfFollow bool
}

type Users struct {
	store   repository.UserStore
	uploads storage.Store
	tokens  *auth.Tokens
	opts    UsersOptions
	now     func() time.Time
}

func NewUsers(store repository.UserStore, uploads storage.Store, tokens *auth.Tokens, opts UsersOptions) *Users {
	return &Users{store: store, uploads: uploads, tokens: tokens, opts: opts, now: time.Now}
}

// Register creates an account and signs the user in.
func (s *Users) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, structError(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login checks credentials by email.
func (s *Users) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, repository.Invalid("email", "Email and password are required")
	}

	u, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, repository.Unauthorized("Invalid email or password")
	}
	return s.session(u)
}

func (s *Users) session(u *models.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token}, nil
}

// Profile returns a user with followers and following resolved.
func (s *Users) Profile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	p, err := s.store.Profile(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return p, nil
}

// UpdateProfile replaces each of username, bio and picture only when a new
// non-empty value is supplied. A replaced picture is removed best-effort.
func (s *Users) UpdateProfile(ctx context.Context, actor primitive.ObjectID, username, bio string, picture *Upload) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if username != "" {
		if err := validate.Var(username, "min=3,max=30"); err != nil {
			return nil, repository.Invalid("username", "username must be between 3 and 30 characters")
		}
	}

	current, err := s.store.FindUser(ctx, actor)
	if err != nil {
		return nil, notFound(err, "User")
	}

	ref, err := saveUpload(ctx, s.uploads, picture)
	if err != nil {
		return nil, err
	}

	upd := models.UserUpdate{Username: username, Bio: bio, ProfilePicture: ref}
	if !upd.Empty() {
		if _, err := s.store.UpdateUser(ctx, actor, upd); err != nil {
			discard(ctx, s.uploads, ref)
			return nil, notFound(err, "User")
		}
		if ref != "" && current.ProfilePicture != "" && current.ProfilePicture != ref {
			discard(ctx, s.uploads, current.ProfilePicture)
		}
	}
	return s.Profile(ctx, actor)
}

// ToggleFollow flips the follow edge actor -> target on both documents and
// returns the target's profile.
func (s *Users) ToggleFollow(ctx context.Context, target, actor primitive.ObjectID) (*models.Profile, error) {
	if s.opts.RejectSelfFollow && target == actor {
		return nil, repository.Invalid("id", "You cannot follow yourself")
	}

	me, err := s.store.FindUser(ctx, actor)
	if err != nil {
		return nil, notFound(err, "User")
	}
	if _, err := s.store.FindUser(ctx, target); err != nil {
		return nil, notFound(err, "User")
	}

	follow := !me.IsFollowing(target)
	if err := s.store.SetFollow(ctx, actor, target, follow); err != nil {
		return nil, notFound(err, "User")
	}
	metrics.FollowToggles.WithLabelValues(metrics.Action(follow, "follow", "unfollow")).Inc()

	return s.Profile(ctx, target)
}
