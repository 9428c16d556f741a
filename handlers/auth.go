package handlers

import (
	"net/http"

	"sociomate/repository"
	"sociomate/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, repository.Invalid("body", "Invalid request body"))
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.Users.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.Render.Auth(s.User, s.Token))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, repository.Invalid("email", "Email and password are required"))
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Render.Auth(s.User, s.Token))
}
