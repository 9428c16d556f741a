// Package views turns populated models into the JSON shapes the client
// consumes. It is the only place stored upload paths become absolute URLs.
package views

import (
	"strings"
	"time"

	"sociomate/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserSummary struct {
	ID             string  `json:"_id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profilePicture"`
}

type Comment struct {
	ID        string       `json:"_id"`
	User      *UserSummary `json:"user"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Post struct {
	ID        string       `json:"_id"`
	User      *UserSummary `json:"user"`
	Content   string       `json:"content"`
	Image     *string      `json:"image"`
	Likes     []string     `json:"likes"`
	Comments  []Comment    `json:"comments"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type User struct {
	ID             string        `json:"_id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	Bio            string        `json:"bio"`
	ProfilePicture *string       `json:"profilePicture"`
	Followers      []UserSummary `json:"followers"`
	Following      []UserSummary `json:"following"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// AuthUser is the register/login response: the user's own record with
// plain id lists and the bearer token.
type AuthUser struct {
	ID             string    `json:"_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	ProfilePicture *string   `json:"profilePicture"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
	Token          string    `json:"token"`
}

// Renderer prefixes relative upload paths with Origin.
type Renderer struct {
	Origin string
}

func NewRenderer(origin string) Renderer {
	return Renderer{Origin: strings.TrimRight(origin, "/")}
}

// URL rewrites a stored path to an absolute URL. Values that already start
// with "http" are returned unchanged; an empty path renders as null.
func (r Renderer) URL(path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http") {
		return &path
	}
	abs := r.Origin + path
	return &abs
}

func (r Renderer) Summary(s *models.UserSummary) *UserSummary {
	if s == nil {
		return nil
	}
	return &UserSummary{ID: s.ID.Hex(), Username: s.Username, ProfilePicture: r.URL(s.ProfilePicture)}
}

func (r Renderer) Post(p *models.PopulatedPost) Post {
	out := Post{
		ID:        p.ID.Hex(),
		User:      r.Summary(p.User),
		Content:   p.Content,
		Image:     r.URL(p.Image),
		Likes:     hexes(p.Likes),
		Comments:  make([]Comment, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, c := range p.Comments {
		out.Comments = append(out.Comments, Comment{
			ID:        c.ID.Hex(),
			User:      r.Summary(c.User),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func (r Renderer) Posts(posts []*models.PopulatedPost) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, r.Post(p))
	}
	return out
}

func (r Renderer) Profile(p *models.Profile) User {
	return User{
		ID:             p.User.ID.Hex(),
		Username:       p.User.Username,
		Email:          p.User.Email,
		Bio:            p.User.Bio,
		ProfilePicture: r.URL(p.User.ProfilePicture),
		Followers:      r.summaries(p.Followers),
		Following:      r.summaries(p.Following),
		CreatedAt:      p.User.CreatedAt,
	}
}

func (r Renderer) Auth(u *models.User, token string) AuthUser {
	return AuthUser{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: r.URL(u.ProfilePicture),
		Followers:      hexes(u.Followers),
		Following:      hexes(u.Following),
		CreatedAt:      u.CreatedAt,
		Token:          token,
	}
}

func (r Renderer) summaries(in []models.UserSummary) []UserSummary {
	out := make([]UserSummary, 0, len(in))
	for i := range in {
		out = append(out, *r.Summary(&in[i]))
	}
	return out
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
