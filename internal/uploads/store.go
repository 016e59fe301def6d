// Package uploads writes multipart file uploads to a local directory under
// generated names.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/crmdesk/internal/repository"
)

var (
	ErrTooLarge        = fmt.Errorf("upload %w: file too large", repository.ErrInvalidInput)
	ErrUnsupportedType = fmt.Errorf("upload %w: unsupported file type", repository.ErrInvalidInput)
	ErrInvalidName     = fmt.Errorf("upload %w: invalid file name", repository.ErrInvalidInput)
	ErrNoFile          = fmt.Errorf("upload %w: no file", repository.ErrInvalidInput)
)

// ImageExtensions are accepted for jump images.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// AttachmentExtensions are accepted for interaction attachments.
var AttachmentExtensions = []string{".pdf", ".txt", ".csv", ".doc", ".docx", ".xls", ".xlsx", ".png", ".jpg", ".jpeg", ".gif", ".webp"}

// Store saves files under Dir.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// MaxSize is the per-file size limit in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save copies the uploaded file to <uuid><ext> and returns the generated name.
// The extension must be in allowed.
func (s *Store) Save(header *multipart.FileHeader, allowed []string) (string, error) {
	if header == nil {
		return "", ErrNoFile
	}
	if header.Size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, header.Size, s.maxSize)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExt(ext, allowed) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.write(src, ext)
}

func (s *Store) write(src io.Reader, ext string) (string, error) {
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	// One byte past the limit tells an oversize stream apart from an exact fit.
	n, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxSize {
		err = fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, s.maxSize)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// Path resolves a stored file name, rejecting anything that could escape Dir.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes a stored file. Missing files are ignored.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func allowedExt(ext string, allowed []string) bool {
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
