// Package session persists the CLI's current login as a single JSON blob on
// disk. The blob is a cache, never the source of truth: every command
// revalidates it against the server and clears it when rejected.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/statementkit/statementkit/internal/client/api"
)

// ErrNoSession means no login is cached locally.
var ErrNoSession = errors.New("not logged in")

type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	Account      api.Account `json:"account"`
}

type Store struct {
	path string
}

// NewStore places the blob under ~/.statementkit/session.json.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error resolving home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ".statementkit", "session.json")), nil
}

func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt blob is treated as no session at all.
		return nil, ErrNoSession
	}
	return &session, nil
}

func (s *Store) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
