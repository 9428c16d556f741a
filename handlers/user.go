package handlers

import (
	"net/http"

	"sociomate/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := objectID(c, "id", "User")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.Users.Profile(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Render.Profile(p))
}

// UpdateProfile takes multipart username, bio and profilePicture. Empty
// fields leave the stored value alone.
func (h *Handler) UpdateProfile(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	picture, err := middleware.FormImage(c, "profilePicture")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.Users.UpdateProfile(ctx, me, c.PostForm("username"), c.PostForm("bio"), picture)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Render.Profile(p))
}

func (h *Handler) FollowUser(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	target, ok := objectID(c, "id", "User")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.Users.ToggleFollow(ctx, target, me)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Render.Profile(p))
}
