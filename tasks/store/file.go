package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
)

// Compile-time check to ensure FileResultStore implements ResultStore
var _ ResultStore = (*FileResultStore)(nil)

// FileResultStore persists results on the local filesystem, one JSON file per
// (identity, fingerprint) pair under root/<identity>/<fingerprint>.json.
// Distinct argument combinations therefore never collide.
type FileResultStore struct {
	root string
}

// NewFileResultStore creates a file-backed result store rooted at the given
// directory. The directory is created lazily on first save.
func NewFileResultStore(root string) *FileResultStore {
	return &FileResultStore{root: root}
}

// Load retrieves an entry. A missing file, unreadable bytes, or a fingerprint
// that doesn't match the file's claimed one all read as a miss.
func (s *FileResultStore) Load(_ context.Context, identity string, fp fingerprint.Fingerprint) (*Entry, error) {
	data, err := os.ReadFile(s.entryPath(identity, fp))
	if err != nil {
		return nil, nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, nil
	}
	if entry.Fingerprint != fp {
		return nil, nil
	}

	return &entry, nil
}

// Save writes the entry to a temporary file and renames it into place, so a
// crash mid-write leaves either the old entry or none at all.
func (s *FileResultStore) Save(_ context.Context, identity string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("result entry is nil")
	}

	dir := s.identityDir(identity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling result entry: %w", err)
	}

	return writeFileAtomic(s.entryPath(identity, entry.Fingerprint), data, 0o644)
}

// Purge removes the identity's whole cache namespace.
func (s *FileResultStore) Purge(_ context.Context, identity string) error {
	return os.RemoveAll(s.identityDir(identity))
}

func (s *FileResultStore) identityDir(identity string) string {
	return filepath.Join(s.root, sanitizeIdentity(identity))
}

func (s *FileResultStore) entryPath(identity string, fp fingerprint.Fingerprint) string {
	return filepath.Join(s.identityDir(identity), string(fp)+".json")
}

// sanitizeIdentity keeps identity-derived directory names from escaping the
// root or colliding with path syntax.
func sanitizeIdentity(identity string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_", "..", "_")
	cleaned := replacer.Replace(identity)
	if cleaned == "" {
		cleaned = "_"
	}
	return cleaned
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
