package blob

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/openfleet/fleetgate/internal/common/errorx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowed image extensions, lowercase
var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Store writes uploaded photos under a per-tenant folder on the local
// filesystem. Stored names are random so uploads never collide and the
// client-supplied name never reaches the disk.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates a blob store rooted at dir.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &Store{root: dir, logger: logger.Named("blob")}, nil
}

// Save stores one uploaded file under the tenant folder and returns the
// path relative to the store root. Files without an allowed image
// extension are rejected.
func (s *Store) Save(folder string, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", errorx.Validation("unsupported file type")
	}

	dir := filepath.Join(s.root, filepath.Base(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errorx.Storage("failed to create tenant folder", err)
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", errorx.Storage("failed to read upload", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", errorx.Storage("failed to create file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", errorx.Storage("failed to write file", err)
	}

	rel := filepath.ToSlash(filepath.Join(filepath.Base(folder), name))
	s.logger.Debug("stored blob", zap.String("path", rel), zap.Int64("size", fh.Size))
	return rel, nil
}

// SaveAll stores a batch of uploads and returns their relative paths. The
// whole batch is rejected when any file has a disallowed type; files
// already written are removed.
func (s *Store) SaveAll(folder string, fhs []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		p, err := s.Save(folder, fh)
		if err != nil {
			for _, done := range paths {
				s.Remove(done)
			}
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Remove deletes a stored blob by its relative path. Unknown paths are
// ignored.
func (s *Store) Remove(rel string) error {
	clean := filepath.Clean(rel)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return errorx.Validation("invalid blob path")
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return errorx.Storage("failed to remove file", err)
	}
	return nil
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}
