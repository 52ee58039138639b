// Package session tracks who is using the device: a role flag and an email,
// both persisted so that a restart resumes the same session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

var (
	// ErrInvalidLogin is returned by Login for an unknown role or a
	// malformed email.
	ErrInvalidLogin = errors.New("invalid login")
	// ErrNotLoggedIn is returned by Require when no role is set.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrForbidden is returned by Require when the current role differs.
	ErrForbidden = errors.New("forbidden for current role")
)

// Store is the subset of *store.Store the session needs.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Apply(ctx context.Context, label string, writes ...store.Write) error
}

// Identity is the current role and email. The zero value means no one is
// logged in.
type Identity struct {
	Role  model.Role `json:"role"`
	Email string     `json:"email"`
}

// LoggedIn reports whether a role is set.
func (id Identity) LoggedIn() bool {
	return id.Role != model.RoleNone
}

// Session holds the in-memory identity and mirrors it to storage.
type Session struct {
	mu  sync.Mutex
	st  Store
	log *slog.Logger
	cur Identity
}

// New creates a session with no role. Call Restore to resume a persisted
// one.
func New(st Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{st: st, log: logger}
}

// Login sets the role and email and persists both in one batch.
func (s *Session) Login(ctx context.Context, role model.Role, email string) (Identity, error) {
	if role != model.RoleAdmin && role != model.RoleStudent {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidLogin, role)
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Identity{}, fmt.Errorf("%w: email %q: %v", ErrInvalidLogin, email, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.st.Apply(ctx, "login",
		store.Set(model.KeyUserEmail, email),
		store.Set(model.KeyUserRole, string(role)),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("login: %w", err)
	}

	s.cur = Identity{Role: role, Email: email}
	s.log.Info("logged in", "role", role, "email", email)
	return s.cur, nil
}

// Logout clears the in-memory identity and removes both persisted keys in
// one batch. Logging out with no session is allowed.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.st.Apply(ctx, "logout",
		store.Delete(model.KeyUserEmail),
		store.Delete(model.KeyUserRole),
	)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	prev := s.cur
	s.cur = Identity{}
	s.log.Info("logged out", "role", prev.Role)
	return nil
}

// Current returns the in-memory identity. It is the zero Identity until
// Login or Restore.
func (s *Session) Current() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Restore loads the persisted role and email into memory. A missing or
// unrecognised role leaves the session logged out.
func (s *Session) Restore(ctx context.Context) (Identity, error) {
	var roleStr, email string
	if _, err := s.st.Get(ctx, model.KeyUserRole, &roleStr); err != nil {
		return Identity{}, fmt.Errorf("restore session: %w", err)
	}
	if _, err := s.st.Get(ctx, model.KeyUserEmail, &email); err != nil {
		return Identity{}, fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Identity{}
	if roleStr == "" {
		return s.cur, nil
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		s.log.Warn("ignoring persisted role", "role", roleStr, "error", err)
		return s.cur, nil
	}
	s.cur = Identity{Role: role, Email: email}
	s.log.Debug("session restored", "role", role, "email", email)
	return s.cur, nil
}

// Require checks that the current role is role.
func (s *Session) Require(role model.Role) error {
	cur := s.Current()
	if !cur.LoggedIn() {
		return ErrNotLoggedIn
	}
	if cur.Role != role {
		return fmt.Errorf("%w: %s required, logged in as %s", ErrForbidden, role, cur.Role)
	}
	return nil
}
