// Package session persists the logged-in backend session between CLI
// invocations and knows the ~/.chattrix directory layout.
package session

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// State is the locally persisted login session. The secret is the backend's
// session token; it is attached to every authenticated request.
type State struct {
	UserID    string `toml:"user_id"`
	SessionID string `toml:"session_id"`
	Secret    string `toml:"secret"`
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted session, or nil when nobody is logged in.
func (s *Store) Load() (*State, error) {
	var st State
	if _, err := toml.DecodeFile(s.path, &st); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if st.Secret == "" {
		return nil, nil
	}
	return &st, nil
}

// Save writes the session with private permissions.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(st)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Clear removes the persisted session. Missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
