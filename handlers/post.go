package handlers

import (
	"net/http"

	"sociomate/middleware"
	"sociomate/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentRequest struct {
	Content string `json:"content" form:"content"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	image, err := middleware.FormImage(c, "image")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.Posts.Create(ctx, me, c.PostForm("content"), image)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.Render.Post(p))
}

func (h *Handler) GetPosts(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	posts, err := h.Posts.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Render.Posts(posts))
}

// GetUserPosts answers an unknown or malformed user id with an empty list.
func (h *Handler) GetUserPosts(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusOK, h.Render.Posts(nil))
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	posts, err := h.Posts.ListByUser(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Render.Posts(posts))
}

func (h *Handler) LikePost(c *gin.Context) {
	h.withPost(c, func(c *gin.Context, postID, me primitive.ObjectID) (*models.PopulatedPost, error) {
		ctx, cancel := h.ctx(c)
		defer cancel()
		return h.Posts.ToggleLike(ctx, postID, me)
	})
}

func (h *Handler) CommentOnPost(c *gin.Context) {
	h.withPost(c, func(c *gin.Context, postID, me primitive.ObjectID) (*models.PopulatedPost, error) {
		// an unreadable body leaves Content empty, which fails validation
		var req CommentRequest
		_ = c.ShouldBind(&req)

		ctx, cancel := h.ctx(c)
		defer cancel()
		return h.Posts.AddComment(ctx, postID, me, req.Content)
	})
}

func (h *Handler) DeleteComment(c *gin.Context) {
	h.withPost(c, func(c *gin.Context, postID, me primitive.ObjectID) (*models.PopulatedPost, error) {
		commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
		if err != nil {
			commentID = primitive.NilObjectID
		}

		ctx, cancel := h.ctx(c)
		defer cancel()
		return h.Posts.DeleteComment(ctx, postID, commentID, me)
	})
}

func (h *Handler) DeletePost(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	postID, ok := objectID(c, "id", "Post")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Posts.Delete(ctx, postID, me); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post removed"})
}

// withPost resolves the caller and the :id post before running fn, then
// renders the post fn returns.
func (h *Handler) withPost(c *gin.Context, fn func(*gin.Context, primitive.ObjectID, primitive.ObjectID) (*models.PopulatedPost, error)) {
	me, ok := actor(c)
	if !ok {
		return
	}
	postID, ok := objectID(c, "id", "Post")
	if !ok {
		return
	}

	p, err := fn(c, postID, me)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Render.Post(p))
}
