package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const generatedDir = "generated"

// Store is a local-disk content store rooted at a single directory.
// Concurrent writers are safe because every stored file gets a unique
// name; there is no locking.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(abs, generatedDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &Store{root: abs}, nil
}

func (s *Store) Root() string {
	return s.root
}

// SaveUpload persists an accepted original photo and returns the stored
// filename. Names are collision-resistant: timestamp plus a random
// suffix, keeping the original extension.
func (s *Store) SaveUpload(originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("file-%d-%s%s", time.Now().UnixMilli(), shortID(), ext)

	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return name, nil
}

// SaveGenerated persists a downloaded generated image under the
// generated/ subdirectory and returns its name relative to the root.
func (s *Store) SaveGenerated(uploadID int64, data []byte) (string, error) {
	name := fmt.Sprintf("%d_%d_%s.png", uploadID, time.Now().UnixMilli(), shortID())
	rel := filepath.Join(generatedDir, name)

	if err := os.WriteFile(filepath.Join(s.root, rel), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write generated image: %w", err)
	}

	return rel, nil
}

// PurgeGenerated removes previously generated images for the given
// upload. Used only when the retention policy is purge-previous.
func (s *Store) PurgeGenerated(uploadID int64) error {
	entries, err := os.ReadDir(filepath.Join(s.root, generatedDir))
	if err != nil {
		return fmt.Errorf("failed to read generated dir: %w", err)
	}

	prefix := fmt.Sprintf("%d_", uploadID)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, generatedDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// Resolve maps a request path relative to the root to an absolute file
// path, rejecting anything that escapes the root.
func (s *Store) Resolve(relPath string) (string, error) {
	cleaned := filepath.Clean("/" + relPath)
	abs := filepath.Join(s.root, cleaned)

	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes upload root: %s", relPath)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("not a file: %s", relPath)
	}

	return abs, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
}
