package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// 32 bytes of entropy, hex encoded to 64 characters
	tokenBytes = 32

	// attempts before giving up on a colliding token
	maxTokenAttempts = 3
)

// an authenticated login held in memory until it expires or is deleted
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type entry struct {
	session Session
	timer   *time.Timer
}

// owns the table of live sessions. a restart drops every session
type Store struct {
	sessions map[string]*entry
	mu       sync.RWMutex
	now      func() time.Time
	newToken func() (string, error)
}

type Option func(*Store)

// overrides the clock used for createdAt/expiresAt and validity checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// overrides the token generator
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		s.newToken = gen
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		now:      time.Now,
		newToken: GenerateToken,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// returns a new random session token
func GenerateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}

// creates a session for username that expires after maxAge and returns its token
func (s *Store) CreateSession(username string, maxAge time.Duration) (string, error) {
	if username == "" {
		return "", ErrEmptyUsername
	}

	if maxAge <= 0 {
		return "", ErrInvalidMaxAge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var token string

	for attempt := 0; ; attempt++ {
		if attempt == maxTokenAttempts {
			return "", ErrTokenExhausted
		}

		candidate, err := s.newToken()
		if err != nil {
			return "", err
		}

		if _, taken := s.sessions[candidate]; !taken {
			token = candidate
			break
		}
	}

	now := s.now()
	e := &entry{
		session: Session{
			Token:     token,
			Username:  username,
			CreatedAt: now,
			ExpiresAt: now.Add(maxAge),
		},
	}

	e.timer = time.AfterFunc(maxAge, func() {
		s.DeleteSession(token)
	})

	s.sessions[token] = e

	return token, nil
}

// reports whether token names a live, unexpired session
func (s *Store) IsValid(token string) bool {
	_, ok := s.Get(token)
	return ok
}

// returns the username bound to a valid token
func (s *Store) Username(token string) (string, bool) {
	session, ok := s.Get(token)
	if !ok {
		return "", false
	}

	return session.Username, true
}

// returns a copy of the session for a valid token
func (s *Store) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	s.mu.RLock()
	e, exists := s.sessions[token]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	// the timer may not have fired yet
	if !s.now().Before(e.session.ExpiresAt) {
		return nil, false
	}

	session := e.session
	return &session, true
}

// removes a session immediately. unknown tokens are ignored
func (s *Store) DeleteSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.sessions[token]
	if !exists {
		return
	}

	e.timer.Stop()
	delete(s.sessions, token)
}

// returns the number of sessions in the table, expired or not
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// stops every pending expiry timer and empties the table
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, e := range s.sessions {
		e.timer.Stop()
		delete(s.sessions, token)
	}
}
