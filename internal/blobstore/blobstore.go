// Package blobstore owns the physical files backing log records. Files are
// keyed by filename in a single flat directory so they stay inspectable and
// removable out-of-band; the metadata table remains the authority on what
// should exist.
package blobstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const tempDirName = ".tmp"

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob filename")
)

// Store writes, reads and removes blobs. All methods are safe for concurrent
// use; operations on the same filename are serialized so a remove never
// observes a half-written file.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(root string) (*Store, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	return &Store{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Write stores content under name atomically: the bytes land in a temp file
// first and become visible only through the final rename. A reused filename is
// overwritten, last write wins.
func (s *Store) Write(name string, content []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	tempPath := filepath.Join(s.root, tempDirName, uuid.NewString())
	if err := os.WriteFile(tempPath, content, 0o644); err != nil {
		return fmt.Errorf("writing blob %q: %w", name, err)
	}

	if err := os.Rename(tempPath, filepath.Join(s.root, name)); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("committing blob %q: %w", name, err)
	}
	return nil
}

func (s *Store) Read(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("reading blob %q: %w", name, err)
	}
	return data, nil
}

func (s *Store) Exists(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	_, err := os.Stat(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the blob. A missing blob is not an error; remove is
// idempotent.
func (s *Store) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(filepath.Join(s.root, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing blob %q: %w", name, err)
	}
	return nil
}

func (s *Store) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// ValidateName rejects names that would escape the blob directory or collide
// with the temp area. Callers that persist metadata before writing the blob
// check here first so a bad name fails before anything lands in the database.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty filename: %w", ErrInvalidKey)
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("null byte in filename: %w", ErrInvalidKey)
	}
	if filepath.IsAbs(name) || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("path separators are not allowed in %q: %w", name, ErrInvalidKey)
	}
	if name == tempDirName {
		return fmt.Errorf("reserved filename %q: %w", name, ErrInvalidKey)
	}
	return nil
}
