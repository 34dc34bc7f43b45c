// Package imagestore saves uploaded profile images under the configured
// upload directory with generated names, so user-chosen filenames never
// touch the filesystem.
package imagestore

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadBytes caps profile image uploads.
const MaxUploadBytes = 5 << 20 // 5 MiB

var (
	ErrUnsupportedType = errors.New("image must be a .jpg, .jpeg, .png, or .gif file")
	ErrTooLarge        = errors.New("image exceeds the upload size limit")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Store writes files into a single directory on local disk.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Save streams the uploaded file to disk under a uuid filename (original
// extension preserved, lowercased) and returns the stored filename.
// Files over MaxUploadBytes are rejected with ErrTooLarge, never stored
// truncated.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Read one byte past the cap so an oversized upload is detectable
	// instead of silently cut off.
	n, err := io.Copy(dst, io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	if n > MaxUploadBytes {
		_ = os.Remove(dst.Name())
		return "", ErrTooLarge
	}
	return name, nil
}

// Remove deletes a stored image by filename. Missing files are not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	// Stored names are uuid+ext; reject anything that could traverse.
	if strings.ContainsAny(name, "/\\") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Dir returns the directory images are stored in (served under /images/).
func (s *Store) Dir() string {
	return s.dir
}
