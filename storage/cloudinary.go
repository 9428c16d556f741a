package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// uploadAPI is the part of cloudinary's uploader.API this store uses.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Cloudinary stores uploads in a Cloudinary folder and persists the
// absolute secure URL.
type Cloudinary struct {
	api    uploadAPI
	folder string
}

// NewCloudinary builds a store from a cloudinary:// URL.
func NewCloudinary(cloudinaryURL, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{api: &cld.Upload, folder: folder}, nil
}

func (c *Cloudinary) Save(ctx context.Context, _ string, r io.Reader) (string, error) {
	res, err := c.api.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       uuid.NewString(),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, ref string) error {
	id, ok := publicIDFromURL(ref)
	if !ok {
		return fmt.Errorf("%s: %w", ref, ErrNotManaged)
	}
	res, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return errors.New("cloudinary destroy: " + res.Error.Message)
	}
	if res.Result != "ok" {
		return fmt.Errorf("cloudinary destroy %s: %s", id, res.Result)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+/`)

// publicIDFromURL extracts "folder/name" from
// https://res.cloudinary.com/<cloud>/image/upload/v123/folder/name.png.
func publicIDFromURL(ref string) (string, bool) {
	_, rest, ok := strings.Cut(ref, "/upload/")
	if !ok || rest == "" {
		return "", false
	}
	rest = versionSegment.ReplaceAllString(rest, "")
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	return rest, rest != ""
}
