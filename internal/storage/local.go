// Package storage keeps uploaded product images on the local filesystem.
// Uploads land in a temp directory first and are promoted into products/<id>/ once the
// product row exists.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

// URLPrefix is the public path the upload root is served under.
const URLPrefix = "/uploads"

var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("image must be 5MB or smaller")
)

// Upload is a validated file waiting in the temp area.
type Upload struct {
	path string
	name string
}

// Store is the blob storage used by the product service.
type Store interface {
	SaveTemp(fh *multipart.FileHeader) (*Upload, error)
	Promote(u *Upload, productID uuid.UUID) (string, error)
	Discard(u *Upload)
	Delete(productID uuid.UUID, url string) error
	PurgeProduct(productID uuid.UUID) error
}

// Local is a Store rooted at a directory.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	for _, dir := range []string{filepath.Join(root, "tmp"), filepath.Join(root, "products")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &Local{root: root}, nil
}

// Root returns the directory served under URLPrefix.
func (l *Local) Root() string {
	return l.root
}

// SaveTemp validates the header and copies the file into the temp area.
func (l *Local) SaveTemp(fh *multipart.FileHeader) (*Upload, error) {
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return nil, ErrNotImage
	}
	if fh.Size > MaxImageSize {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(l.root, "tmp", name)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, MaxImageSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if n > MaxImageSize {
		os.Remove(path)
		return nil, ErrTooLarge
	}

	return &Upload{path: path, name: name}, nil
}

// Promote moves the upload into the product's directory and returns its public URL.
func (l *Local) Promote(u *Upload, productID uuid.UUID) (string, error) {
	dir := filepath.Join(l.root, "products", productID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create product dir: %w", err)
	}
	if err := os.Rename(u.path, filepath.Join(dir, u.name)); err != nil {
		return "", fmt.Errorf("move upload: %w", err)
	}
	return URLPrefix + "/products/" + productID.String() + "/" + u.name, nil
}

// Discard removes a temp upload that will not be promoted.
func (l *Local) Discard(u *Upload) {
	if u != nil {
		os.Remove(u.path)
	}
}

// Delete removes an image promoted for productID. External URLs, paths outside the product's
// directory and missing files are ignored.
func (l *Local) Delete(productID uuid.UUID, url string) error {
	path, ok := l.resolve(url)
	if !ok {
		return nil
	}
	dir := filepath.Join(l.root, "products", productID.String()) + string(filepath.Separator)
	if !strings.HasPrefix(path, dir) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// PurgeProduct removes the product's whole image directory.
func (l *Local) PurgeProduct(productID uuid.UUID) error {
	if err := os.RemoveAll(filepath.Join(l.root, "products", productID.String())); err != nil {
		return fmt.Errorf("purge product images: %w", err)
	}
	return nil
}

// resolve maps a public URL to a path inside the upload root.
func (l *Local) resolve(url string) (string, bool) {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok {
		return "", false
	}
	path := filepath.Join(l.root, filepath.FromSlash(rel))
	root := filepath.Clean(l.root) + string(filepath.Separator)
	if !strings.HasPrefix(path, root) {
		return "", false
	}
	return path, true
}
