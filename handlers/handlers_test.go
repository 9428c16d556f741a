package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"sociomate/repository"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{repository.Invalid("content", "Content is required"), http.StatusBadRequest},
		{repository.NotFound("Post not found"), http.StatusNotFound},
		{fmt.Errorf("lookup: %w", repository.NotFound("User not found")), http.StatusNotFound},
		{repository.Forbidden("User not authorized"), http.StatusForbidden},
		{repository.Conflict("User already exists"), http.StatusConflict},
		{repository.Unauthorized("Invalid email or password"), http.StatusUnauthorized},
		{fmt.Errorf("find: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}
