package yandex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Session lazily builds and validates one Client per token.
//
// The zero value is not usable; create sessions with NewSession.
type Session struct {
	token string
	opts  []Option

	group singleflight.Group

	mu     sync.RWMutex
	client *Client
}

// NewSession creates a session for token. No network call is made.
func NewSession(token string, opts ...Option) *Session {
	return &Session{token: strings.TrimSpace(token), opts: opts}
}

// Token returns the token the session was created with.
func (s *Session) Token() string {
	return s.token
}

// Client returns the validated client, validating the token on first use.
//
// Concurrent first calls share a single validation. When validation fails
// nothing is stored, so the next call tries again.
func (s *Session) Client(ctx context.Context) (*Client, error) {
	s.mu.RLock()
	c := s.client
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	if s.token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrAuth)
	}

	v, err, _ := s.group.Do("client", func() (any, error) {
		s.mu.RLock()
		existing := s.client
		s.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		client := NewClient(s.token, s.opts...)
		account, err := client.AccountStatus(ctx)
		if err != nil {
			return nil, err
		}
		client.logger.Info("authenticated", zap.String("login", account.Login))

		s.mu.Lock()
		s.client = client
		s.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}
