package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/attaboy/strokecheck/internal/domain"
)

// ErrCorruptStore is returned by Update when the credentials file exists
// but cannot be decoded.
var ErrCorruptStore = errors.New("credential store is corrupt")

// FileCredentialStore keeps credentials in a single JSON object file of
// the form {"alice": {"password": "..."}}. Writes go through a temp file
// and rename, so readers never observe a partial file.
type FileCredentialStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileCredentialStore creates a store backed by path.
func NewFileCredentialStore(path string, logger *slog.Logger) *FileCredentialStore {
	return &FileCredentialStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileCredentialStore) Path() string { return s.path }

// Init creates an empty store file if none exists.
func (s *FileCredentialStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	return s.write(domain.Credentials{})
}

// Load reads the store. An unreadable or corrupt file is logged and
// treated as empty.
func (s *FileCredentialStore) Load(ctx context.Context) (domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.read()
	if err != nil {
		s.logger.WarnContext(ctx, "credential store unreadable, treating as empty",
			"path", s.path, "error", err)
		return domain.Credentials{}, nil
	}
	return creds, nil
}

// Save replaces the file contents with creds.
func (s *FileCredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(creds)
}

// Update holds the store lock across read, fn and write. Unlike Load it
// refuses to proceed over a corrupt file.
func (s *FileCredentialStore) Update(ctx context.Context, fn func(creds domain.Credentials) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(creds); err != nil {
		return err
	}
	return s.write(creds)
}

// Ping checks that the store directory is accessible.
func (s *FileCredentialStore) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// read returns an empty mapping for a missing file.
func (s *FileCredentialStore) read() (domain.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	creds := domain.Credentials{}
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	if creds == nil {
		// file contained JSON null
		creds = domain.Credentials{}
	}
	return creds, nil
}

func (s *FileCredentialStore) write(creds domain.Credentials) error {
	if creds == nil {
		creds = domain.Credentials{}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(creds); err != nil {
		tmp.Close()
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
