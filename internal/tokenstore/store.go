// Package tokenstore persists the single session token of the portal.
package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// TokenKey is the fixed key the session token is stored under.
const TokenKey = "spark_auth_token"

// Store holds at most one session token.
type Store interface {
	// Get returns the stored token and whether one is present.
	Get() (string, bool)
	// Set replaces the stored token verbatim.
	Set(token string) error
	// Remove deletes the stored token. Removing an absent token is not an error.
	Remove() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// FileStore keeps the token in a file named TokenKey inside a state directory.
// The file content is the raw token string, nothing else.
type FileStore struct {
	baseDir string
}

// DefaultDir returns ~/.sparkrunner.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sparkrunner"), nil
}

// NewFileStore creates a file backed store.
// If baseDir is empty, uses ~/.sparkrunner/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("token store initialized")

	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the location of the token file.
func (s *FileStore) Path() string {
	return filepath.Join(s.baseDir, TokenKey)
}

func (s *FileStore) Get() (string, bool) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", s.Path()).Msg("failed to read token")
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// Set writes the token atomically.
func (s *FileStore) Set(token string) error {
	path := s.Path()
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save token: %w", err)
	}

	log.Debug().Str("path", path).Msg("token stored")

	return nil
}

func (s *FileStore) Remove() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	log.Debug().Str("path", s.Path()).Msg("token removed")

	return nil
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
