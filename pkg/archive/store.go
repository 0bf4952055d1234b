package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Extension is appended to the name of every backup file.
const Extension = ".zst"

// Store keeps backups below a directory, mirroring the relative paths of the
// files they were taken from.
type Store struct {
	dir  string
	opts []Option
}

// NewStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string, opts ...Option) *Store {
	return &Store{dir: dir, opts: opts}
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns where the backup for rel is kept.
func (s *Store) Path(rel string) (string, error) {
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("archive: %q is not a relative path inside the store", rel)
	}
	return filepath.Join(s.dir, rel+Extension), nil
}

// Save backs up data as rel, replacing an older backup, and returns the
// backup path.
func (s *Store) Save(rel string, data []byte) (string, error) {
	path, err := s.Path(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, filepath.ToSlash(rel), data, s.opts...); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads the backup of rel.
func (s *Store) Load(rel string) (*Backup, error) {
	path, err := s.Path(rel)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Restore writes the backed up bytes of rel to dst.
func (s *Store) Restore(rel, dst string) error {
	b, err := s.Load(rel)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b.Data, 0644)
}
