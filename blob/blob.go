// Package blob stores the workflow's binary artifacts (uploaded
// templates, generated documents, submitted PDFs, approved signed PDFs
// and signature images) as files under a single data root, one
// subdirectory per artifact kind.
//
// Files are written atomically (write .tmp then rename) so a reader never
// observes a partial artifact.
package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fillmate/fillmate/idgen"
)

// Kind names an artifact subdirectory.
type Kind string

const (
	KindTemplate  Kind = "templates"
	KindGenerated Kind = "generated"
	KindSubmitted Kind = "submitted"
	KindApproved  Kind = "approved"
	KindSignature Kind = "signatures"
)

// ErrNotFound is returned by Read for paths with no stored artifact.
var ErrNotFound = errors.New("blob: not found")

// Store is a filesystem-backed artifact store rooted at a data directory.
type Store struct {
	root  string
	newID idgen.Generator
}

// NewStore creates a Store rooted at dir. Subdirectories are created on
// first write.
func NewStore(dir string) *Store {
	return &Store{root: dir, newID: idgen.Default}
}

// Save writes data under the given kind and returns the artifact's
// store-relative path, e.g. "templates/0192..-notice.docx". The stored
// name carries a fresh ID so distinct uploads of the same filename never
// collide.
func (s *Store) Save(kind Kind, name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blob: mkdir %s: %w", dir, err)
	}

	filename := s.newID() + "-" + sanitize(name)
	target := filepath.Join(dir, filename)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write tmp: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("blob: rename: %w", err)
	}

	return filepath.Join(string(kind), filename), nil
}

// Read returns the artifact at a store-relative path produced by Save.
func (s *Store) Read(relPath string) ([]byte, error) {
	clean := filepath.Clean(relPath)
	if clean == "" || clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("%w: invalid path %q", ErrNotFound, relPath)
	}
	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		return nil, fmt.Errorf("blob: read %s: %w", relPath, err)
	}
	return data, nil
}

// sanitize reduces an upload filename to a safe basename.
func sanitize(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		out = "artifact"
	}
	return out
}
