// Package auth handles login against the backend and caches the current
// user locally, so the TUI can expose the caller identity synchronously.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotLoggedIn means no cached user exists. The conversation layer treats
// this as a precondition failure.
var ErrNotLoggedIn = errors.New("auth: not logged in")

// User is the authenticated caller.
type User struct {
	ID       int    `json:"id"`
	Login    string `json:"login"`
	IsActive bool   `json:"isActive"`
}

// LoginResponse is the backend's answer to a login attempt.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// Store authenticates and caches the current user in a config file.
type Store struct {
	baseURL    string
	path       string
	httpClient *http.Client

	current *User
}

// NewStore creates an auth store. path is the credentials cache file; empty
// means the default location under the user config dir.
func NewStore(baseURL, path string) (*Store, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "pubgpt", "user.json")
	}

	s := &Store{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		path:       path,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	s.load()
	return s, nil
}

// Current returns the cached user.
func (s *Store) Current() (*User, error) {
	if s.current == nil {
		return nil, ErrNotLoggedIn
	}
	return s.current, nil
}

// CurrentUserID implements conversation.Identity.
func (s *Store) CurrentUserID() (int, error) {
	u, err := s.Current()
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Login authenticates against the backend and caches the user on success.
func (s *Store) Login(ctx context.Context, login, password string) (*User, error) {
	body, err := json.Marshal(map[string]string{"login": login, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !loginResp.Success || loginResp.User == nil {
		return nil, fmt.Errorf("auth: %s", loginResp.Message)
	}

	s.current = loginResp.User
	if err := s.save(); err != nil {
		return nil, err
	}
	return s.current, nil
}

// Logout drops the cached user.
func (s *Store) Logout() error {
	s.current = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SetStatic caches a user id without talking to the backend, for the
// --user-id flag and the mock backend.
func (s *Store) SetStatic(id int) {
	s.current = &User{ID: id, Login: fmt.Sprintf("user-%d", id), IsActive: true}
}

func (s *Store) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == 0 {
		return
	}
	s.current = &u
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}
