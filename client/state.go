package client

import (
	"context"
	"sync"

	"sociomate/views"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Account is the signed-in user as the client keeps it.
type Account struct {
	ID             string `json:"_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type Session struct {
	User  Account `json:"user"`
	Token string  `json:"token"`
}

// State is the client's application state. Every change is written through
// to the Store.
type State struct {
	mu      sync.Mutex
	store   Store
	render  views.Renderer
	session *Session
	theme   Theme
}

// NewState binds state to store. origin turns relative picture paths into
// absolute URLs.
func NewState(store Store, origin string) *State {
	return &State{store: store, render: views.NewRenderer(origin), theme: ThemeLight}
}

// Load restores the last saved state.
func (s *State) Load(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = snap.Session
	if s.session != nil {
		s.session.User.ProfilePicture = s.absolute(s.session.User.ProfilePicture)
	}
	s.theme = ThemeLight
	if snap.Theme == ThemeDark {
		s.theme = ThemeDark
	}
	return nil
}

// SignIn stores the user and token returned by login or register.
func (s *State) SignIn(ctx context.Context, u *views.AuthUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &Session{
		User: Account{
			ID:             u.ID,
			Username:       u.Username,
			Email:          u.Email,
			Bio:            u.Bio,
			ProfilePicture: s.absolute(deref(u.ProfilePicture)),
		},
		Token: u.Token,
	}
	return s.save(ctx)
}

// UpdateUser refreshes the signed-in user from a profile response. The
// token is kept.
func (s *State) UpdateUser(ctx context.Context, u *views.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.User.ID != u.ID {
		return nil
	}
	s.session.User = Account{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: s.absolute(deref(u.ProfilePicture)),
	}
	return s.save(ctx)
}

func (s *State) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return s.save(ctx)
}

func (s *State) ToggleTheme(ctx context.Context) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	return s.theme, s.save(ctx)
}

// Session returns a copy of the current session, or nil when signed out.
func (s *State) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *State) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *State) save(ctx context.Context) error {
	return s.store.Save(ctx, Snapshot{Session: s.session, Theme: s.theme})
}

func (s *State) absolute(path string) string {
	return deref(s.render.URL(path))
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
