package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sociomate/logging"
	"sociomate/middleware"
	"sociomate/repository"
	"sociomate/service"
	"sociomate/views"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler groups the HTTP endpoints and their dependencies.
type Handler struct {
	Posts   *service.Posts
	Users   *service.Users
	Render  views.Renderer
	Timeout time.Duration
}

func New(posts *service.Posts, users *service.Users, render views.Renderer, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{Posts: posts, Users: users, Render: render, Timeout: timeout}
}

// ctx bounds a store call by the request context and the handler timeout.
func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.Timeout)
}

// fail writes err as {"message": ...} with the status its kind maps to.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"message": err.Error()})
}

func statusOf(err error) int {
	switch {
	case repository.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// objectID parses a path parameter. Malformed ids are reported as missing
// resources.
func objectID(c *gin.Context, param, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		fail(c, repository.NotFound("%s not found", what))
		return primitive.NilObjectID, false
	}
	return id, true
}

func actor(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.Actor(c)
	if !ok {
		fail(c, repository.Unauthorized("Not authorized"))
	}
	return id, ok
}

// Health is the liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "SocioMate API is running",
		"time":    time.Now().Unix(),
	})
}
