// Package uploads stores submitted files on local disk.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"confhub/internal/core/apperror"
)

// Categories used as sub-directories.
const (
	CategoryPaymentProofs  = "payment-proofs"
	CategoryPassportPhotos = "passport-photos"
	CategoryAbstracts      = "abstracts"
)

// URLPrefix starts every stored path.
const URLPrefix = "uploads"

const maxNameLength = 100

// AllowedExtensions are the accepted file types.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png"}

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes files under root as <root>/<category>/<unixmillis>-<name>.
type Store struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, maxBytes int64) *Store {
	return &Store{
		root:     dir,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// SanitizeName keeps letters, digits, dot, dash and underscore, replaces other runs with "_"
// and truncates to 100 characters.
func SanitizeName(name string) string {
	name = unsafeRun.ReplaceAllString(filepath.Base(name), "_")
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

// Check validates extension and size without writing anything.
func (s *Store) Check(field string, fh *multipart.FileHeader) error {
	if fh == nil {
		return apperror.NewRequiredField(field)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperror.NewFieldError("unsupported file type", field, "must be one of pdf, doc, docx, jpg, jpeg, png")
	}
	if fh.Size > s.maxBytes {
		return apperror.NewFieldError("file too large", field, "must be at most "+strconv.FormatInt(s.maxBytes, 10)+" bytes")
	}
	return nil
}

// Save validates and writes fh, returning its stored path "uploads/<category>/<file>".
func (s *Store) Save(category, field string, fh *multipart.FileHeader) (string, error) {
	if err := s.Check(field, fh); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + SanitizeName(fh.Filename)
	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	// one byte over the limit is enough to detect a lying Size header
	n, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxBytes {
		err = apperror.NewFieldError("file too large", field, "must be at most "+strconv.FormatInt(s.maxBytes, 10)+" bytes")
	}
	if err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		return "", err
	}

	return path.Join(URLPrefix, category, name), nil
}

// resolve maps a stored path onto the disk, rejecting anything outside the root.
func (s *Store) resolve(stored string) (string, error) {
	clean := path.Clean("/" + stored)
	rel, ok := strings.CutPrefix(clean, "/"+URLPrefix+"/")
	if !ok || rel == "" {
		return "", apperror.NewValidation("invalid file path")
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Open opens a stored file. A missing file is a not-found error.
func (s *Store) Open(stored string) (io.ReadCloser, error) {
	p, err := s.resolve(stored)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NewNotFound("file", stored)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Store) Remove(stored string) error {
	p, err := s.resolve(stored)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Ready verifies the root exists and accepts new files.
func (s *Store) Ready() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create upload root: %w", err)
	}
	f, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("upload root not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
