package service

import (
	"context"
	"time"

	"sociomate/logging"
	"sociomate/metrics"
	"sociomate/models"
	"sociomate/repository"
	"sociomate/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Posts struct {
	store   repository.PostStore
	uploads storage.Store
	now     func() time.Time
}

func NewPosts(store repository.PostStore, uploads storage.Store) *Posts {
	return &Posts{store: store, uploads: uploads, now: time.Now}
}

// Create validates content, stores the optional image and inserts the post
// with empty likes and comments.
func (s *Posts) Create(ctx context.Context, author primitive.ObjectID, content string, image *Upload) (*models.PopulatedPost, error) {
	if err := checkText("content", "Content", content, models.MaxPostLength); err != nil {
		return nil, err
	}

	ref, err := saveUpload(ctx, s.uploads, image)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		User:      author,
		Content:   content,
		Image:     ref,
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertPost(ctx, post); err != nil {
		discard(ctx, s.uploads, ref)
		return nil, err
	}
	metrics.PostsCreated.Inc()

	return s.populated(ctx, post.ID)
}

// List returns every post, newest first.
func (s *Posts) List(ctx context.Context) ([]*models.PopulatedPost, error) {
	return s.store.ListPosts(ctx, nil)
}

// ListByUser returns one author's posts, newest first.
func (s *Posts) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.PopulatedPost, error) {
	return s.store.ListPosts(ctx, &userID)
}

// ToggleLike flips actor's presence in the post's likes.
func (s *Posts) ToggleLike(ctx context.Context, postID, actor primitive.ObjectID) (*models.PopulatedPost, error) {
	liked, err := s.store.ToggleLike(ctx, postID, actor)
	if err != nil {
		return nil, notFound(err, "Post")
	}
	metrics.LikeToggles.WithLabelValues(metrics.Action(liked, "like", "unlike")).Inc()

	return s.populated(ctx, postID)
}

// AddComment appends a comment by author to the post.
func (s *Posts) AddComment(ctx context.Context, postID, author primitive.ObjectID, content string) (*models.PopulatedPost, error) {
	if err := checkText("content", "Comment", content, models.MaxCommentLength); err != nil {
		return nil, err
	}

	c := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      author,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.store.PushComment(ctx, postID, c); err != nil {
		return nil, notFound(err, "Post")
	}
	return s.populated(ctx, postID)
}

// Delete removes a post owned by actor, then its image on a best-effort
// basis.
func (s *Posts) Delete(ctx context.Context, postID, actor primitive.ObjectID) error {
	post, err := s.store.FindPost(ctx, postID)
	if err != nil {
		return notFound(err, "Post")
	}
	if post.User != actor {
		return repository.Forbidden("User not authorized")
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		return notFound(err, "Post")
	}
	logging.Ctx(ctx).Info().Str("post", postID.Hex()).Msg("post deleted")

	discard(ctx, s.uploads, post.Image)
	return nil
}

// DeleteComment removes a comment when actor owns the post or wrote the
// comment.
func (s *Posts) DeleteComment(ctx context.Context, postID, commentID, actor primitive.ObjectID) (*models.PopulatedPost, error) {
	post, err := s.store.FindPost(ctx, postID)
	if err != nil {
		return nil, notFound(err, "Post")
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, repository.NotFound("Comment not found")
	}
	if post.User != actor && comment.User != actor {
		return nil, repository.Forbidden("User not authorized")
	}

	if err := s.store.PullComment(ctx, postID, commentID); err != nil {
		return nil, notFound(err, "Post")
	}
	return s.populated(ctx, postID)
}

func (s *Posts) populated(ctx context.Context, id primitive.ObjectID) (*models.PopulatedPost, error) {
	p, err := s.store.PopulatedPost(ctx, id)
	if err != nil {
		return nil, notFound(err, "Post")
	}
	return p, nil
}
