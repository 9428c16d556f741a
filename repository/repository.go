// Package repository translates post and user operations into document
// reads, writes and populate projections. Two backends implement the same
// interfaces: MongoDB for deployments and an in-memory store for tests and
// local development.
package repository

import (
	"context"

	"sociomate/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UsersCollection = "users"
	PostsCollection = "posts"
)

// PostStore is the persistence surface for posts and their embedded
// comments. Methods addressing a single missing post return ErrNotFound.
type PostStore interface {
	InsertPost(ctx context.Context, p *models.Post) error
	FindPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	PopulatedPost(ctx context.Context, id primitive.ObjectID) (*models.PopulatedPost, error)
	// ListPosts returns posts newest first; a nil author lists every post.
	ListPosts(ctx context.Context, author *primitive.ObjectID) ([]*models.PopulatedPost, error)
	// ToggleLike removes userID from the likes when present and appends it
	// otherwise, in one single-document write. It reports whether the post
	// is liked by userID afterwards.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	PushComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) error
	PullComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
}

// UserStore is the persistence surface for users and the follow graph.
type UserStore interface {
	// InsertUser returns ErrConflict when the email or username is taken.
	InsertUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUser applies the non-empty fields of upd and returns the stored
	// result. ErrConflict when the new username is taken.
	UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	Profile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	// SetFollow adds (follow=true) or removes the edge follower -> target.
	// It writes follower.following and then target.followers as two
	// separate single-document updates.
	SetFollow(ctx context.Context, follower, target primitive.ObjectID, follow bool) error
}

// Store bundles both surfaces of one backend.
type Store interface {
	PostStore
	UserStore
}

// orderSummaries returns the summaries for ids in ids order, skipping ids
// with no matching document.
func orderSummaries(ids []primitive.ObjectID, docs []models.UserSummary) []models.UserSummary {
	byID := make(map[primitive.ObjectID]models.UserSummary, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
