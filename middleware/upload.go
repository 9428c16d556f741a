package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"sociomate/repository"
	"sociomate/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// LimitBody caps the request body at max bytes.
func LimitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

// FormImage reads an optional image from the multipart field. A missing
// field yields nil. The content type is sniffed from the bytes, never
// trusted from the client.
func FormImage(c *gin.Context, field string) (*service.Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, repository.Invalid(field, "File too large")
	}
	if err != nil {
		return nil, repository.Invalid(field, "Invalid upload")
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, repository.Invalid(field, "Uploaded file is empty")
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, repository.Invalid(field, "Only image files are allowed")
	}

	name := header.Filename
	if !strings.Contains(name, ".") {
		name += mt.Extension()
	}
	return &service.Upload{Filename: name, Body: bytes.NewReader(data)}, nil
}
