package posters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which stored posters are served.
const PublicPrefix = "/uploads/posters/"

var (
	ErrUnsupportedType  = errors.New("invalid file type, only JPEG, PNG and GIF are allowed")
	ErrTooLarge         = errors.New("file too large")
	ErrInvalidReference = errors.New("invalid poster reference")
)

var allowedTypes = []struct {
	mime string
	ext  string
}{
	{"image/jpeg", ".jpg"},
	{"image/png", ".png"},
	{"image/gif", ".gif"},
}

// Store keeps poster images on the local filesystem below root/uploads/posters.
type Store struct {
	root    string
	dir     string
	maxSize int64
}

func New(root string, maxSize int64) (*Store, error) {
	dir := filepath.Join(root, filepath.FromSlash(strings.Trim(PublicPrefix, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create poster dir: %w", err)
	}
	return &Store{root: root, dir: dir, maxSize: maxSize}, nil
}

// Root is the directory that mirrors the public URL space.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save validates the image by content and writes it under a fresh name.
// It returns the public reference of the stored file.
func (s *Store) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read poster: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}
	ext, ok := detectExtension(data)
	if !ok {
		return "", ErrUnsupportedType
	}
	name := "poster-" + uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create poster file: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write poster file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close poster file: %w", err)
	}
	return PublicPrefix + name, nil
}

// Remove deletes the file behind ref. A file that is already gone is not an error.
func (s *Store) Remove(ref string) error {
	p, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path resolves a public reference to a filesystem path inside the poster directory.
func (s *Store) Path(ref string) (string, error) {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return "", ErrInvalidReference
	}
	name := strings.TrimPrefix(ref, PublicPrefix)
	if name == "" || name != path.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidReference
	}
	return filepath.Join(s.dir, name), nil
}

func detectExtension(data []byte) (string, bool) {
	mtype := mimetype.Detect(data)
	for _, t := range allowedTypes {
		if mtype.Is(t.mime) {
			return t.ext, true
		}
	}
	return "", false
}
