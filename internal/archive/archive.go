// Package archive stores the raw HTML of visited pages on disk.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes one file per visited page named <prefix><seq>.html.
type Store struct {
	dir    string
	prefix string
}

// NewStore creates a Store that writes into dir.
func NewStore(dir, prefix string) *Store {
	return &Store{dir: dir, prefix: prefix}
}

// Path returns the file path used for page seq.
func (s *Store) Path(seq int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d.html", s.prefix, seq))
}

// Save writes body as page seq, replacing any existing file, and returns
// the file path.
func (s *Store) Save(seq int, body []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := s.Path(seq)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write page file: %w", err)
	}
	return path, nil
}
