// Package storage keeps uploaded images. Stored references are either a
// relative path under PublicPrefix (local disk) or an absolute URL
// (Cloudinary); the views layer turns relative ones into absolute URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL prefix local uploads are served under.
const PublicPrefix = "/uploads/"

var ErrNotManaged = errors.New("path is not managed by this store")

// Store saves uploads and removes them again.
type Store interface {
	// Save writes r and returns the reference to persist on the document.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	// Delete removes a reference previously returned by Save.
	Delete(ctx context.Context, ref string) error
}

// Local stores files in a directory served statically under PublicPrefix.
type Local struct {
	Dir string
}

// NewLocal creates dir if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir}, nil
}

func (l *Local) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	f, err := os.OpenFile(filepath.Join(l.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return PublicPrefix + name, nil
}

func (l *Local) Delete(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return fmt.Errorf("%s: %w", ref, ErrNotManaged)
	}
	name := path.Base(ref)
	if name == "." || name == "/" || name == ".." {
		return fmt.Errorf("%s: %w", ref, ErrNotManaged)
	}
	return os.Remove(filepath.Join(l.Dir, name))
}
