// Package service implements the post and user operations on top of a
// repository backend and an upload store.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"sociomate/logging"
	"sociomate/metrics"
	"sociomate/repository"
	"sociomate/storage"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Upload is an image attached to a create or update request.
type Upload struct {
	Filename string
	Body     io.Reader
}

// checkText enforces a required, length-bounded text field. Whitespace-only
// input counts as empty.
func checkText(field, label, value string, maxLen int) error {
	if err := validate.Var(strings.TrimSpace(value), "required"); err != nil {
		return repository.Invalid(field, "%s is required", label)
	}
	if err := validate.Var(value, fmt.Sprintf("max=%d", maxLen)); err != nil {
		return repository.Invalid(field, "%s must be at most %d characters", label, maxLen)
	}
	return nil
}

// structError converts the first validator failure into a ValidationError.
func structError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return repository.Invalid(field, "%s is required", field)
	case "email":
		return repository.Invalid(field, "%s must be a valid email address", field)
	case "min":
		return repository.Invalid(field, "%s must be at least %s characters", field, fe.Param())
	case "max":
		return repository.Invalid(field, "%s must be at most %s characters", field, fe.Param())
	default:
		return repository.Invalid(field, "%s is invalid", field)
	}
}

// notFound attaches a user-facing message to a bare ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return repository.NotFound("%s not found", what)
	}
	return err
}

// saveUpload stores u, if any, and returns the reference to persist.
func saveUpload(ctx context.Context, uploads storage.Store, u *Upload) (string, error) {
	if u == nil {
		return "", nil
	}
	ref, err := uploads.Save(ctx, u.Filename, u.Body)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return ref, nil
}

// discard removes ref without failing the caller. Failures are logged.
func discard(ctx context.Context, uploads storage.Store, ref string) {
	if ref == "" {
		return
	}
	if err := uploads.Delete(ctx, ref); err != nil {
		metrics.CleanupFailures.Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("ref", ref).Msg("could not remove uploaded file")
	}
}
