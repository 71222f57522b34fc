// Package session holds the current authenticated identity. It is the
// single source of truth consumed by every API call that needs a bearer
// token, persisted through the storage layer so a restart picks it back up.
package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/storage"
	"github.com/d60-Lab/social-client/pkg/logger"
)

const (
	keyUser    = "user"
	keyToken   = "token"
	keyNewUser = "new_user"
)

// Store keeps the active session in memory and mirrors it to durable
// storage. Exactly one identity is active at a time; Login replaces any
// previous one unconditionally.
type Store struct {
	mu        sync.RWMutex
	current   *model.Session
	kv        storage.Store
	now       func() time.Time
	listeners []func()
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Initialize rehydrates the session from storage. A stored token whose exp
// claim has passed clears the stored state and leaves the session empty.
// The expiry decode is unverified and purely a UX check; the server remains
// the only authority on token validity.
func (s *Store) Initialize() error {
	raw, err := s.kv.Get(keyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// corrupt stored state, start clean
		s.clearStorage()
		return nil
	}
	if tok, err := s.kv.Get(keyToken); err == nil {
		sess.Token = tok
	}

	if sess.Token == "" || s.tokenExpired(sess.Token) {
		logger.Info("stored session expired, clearing", zap.String("user", sess.UserID))
		s.clearStorage()
		return nil
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.notify()
	return nil
}

// Login replaces the current session and persists it.
func (s *Store) Login(sess model.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.kv.Set(keyUser, string(payload)); err != nil {
		return err
	}
	if err := s.kv.Set(keyToken, sess.Token); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.notify()
	return nil
}

// Logout clears the session and its persisted state.
func (s *Store) Logout() {
	s.clearStorage()
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.notify()
}

// Current returns the active session, or nil when unauthenticated.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Authenticated reports whether a session is active. Queries gated on
// authentication use this as their enabled predicate.
func (s *Store) Authenticated() bool { return s.Current() != nil }

// MarkNewUser records the one-shot post-signup flag.
func (s *Store) MarkNewUser() {
	if err := s.kv.Set(keyNewUser, "1"); err != nil {
		logger.Warn("persisting new-user flag", zap.Error(err))
	}
}

// ConsumeNewUser reports and clears the one-shot flag. The second call
// always returns false.
func (s *Store) ConsumeNewUser() bool {
	if _, err := s.kv.Get(keyNewUser); err != nil {
		return false
	}
	_ = s.kv.Delete(keyNewUser)
	return true
}

// OnChange registers fn to run after every login/logout transition.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), len(s.listeners))
	copy(fns, s.listeners)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) clearStorage() {
	_ = s.kv.Delete(keyUser)
	_ = s.kv.Delete(keyToken)
}

// tokenExpired decodes the exp claim without signature verification; the
// client has no signing secret and does not need one for this check.
func (s *Store) tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// not a JWT; let the server decide
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}
