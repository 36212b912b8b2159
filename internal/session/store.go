// ABOUTME: File-backed session store in the user's XDG config directory
// ABOUTME: Persists token and role together with a single atomic rename

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const fileName = "session.json"

// Store persists a Session between runs
type Store struct {
	dir string
}

type persisted struct {
	Token string `json:"token,omitempty"`
	Role  string `json:"role,omitempty"`
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the default config directory under XDG_CONFIG_HOME
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "booking")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "booking")
}

// Path returns the session file location
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Save writes token and role in one step. The file is written to a temp
// name and renamed so a failed write never leaves half a session behind.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(persisted{Token: sess.Token, Role: sess.Role.String()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}

	slog.Debug("Session saved", "path", s.Path(), "role", sess.Role.String())
	return nil
}

// Load reads the persisted session. A missing or unreadable file yields an
// empty session; an unrecognized role is dropped rather than reported.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		// Corrupt file, treat as logged out
		slog.Warn("Ignoring unreadable session file", "path", s.Path(), "error", err)
		return Session{}, nil
	}

	role, ok := ParseRole(p.Role)
	if !ok && p.Role != "" {
		slog.Debug("Ignoring unrecognized role", "role", p.Role)
	}
	return Session{Token: p.Token, Role: role}, nil
}

// Clear removes all persisted session fields
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
