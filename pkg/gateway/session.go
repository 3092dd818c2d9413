package gateway

import (
	"context"
	"sync/atomic"
	"time"

	"tokenshield/pkg/auth"
)

// Session holds the client callers should currently use and swaps it when
// the credential changes. Requests already issued keep the client, and so
// the credential, they started with.
type Session struct {
	current atomic.Pointer[sessionState]
	now     func() time.Time
}

// sessionState pairs a client with the expiry of the token it carries so
// both change in one swap.
type sessionState struct {
	client  *Client
	expires int64
}

func newSessionState(c *Client) *sessionState {
	st := &sessionState{client: c}
	if c.token != "" {
		if t, err := auth.TokenExpiry(c.token); err == nil {
			st.expires = t.Unix()
		}
	}
	return st
}

// NewSession starts a session around c.
func NewSession(c *Client) *Session {
	s := &Session{now: time.Now}
	s.current.Store(newSessionState(c))
	return s
}

// Client returns the current client.
func (s *Session) Client() *Client { return s.current.Load().client }

// SetCredentials makes subsequent requests carry token. Concurrent callers
// race; the last writer wins.
func (s *Session) SetCredentials(token string) {
	for {
		old := s.current.Load()
		if s.current.CompareAndSwap(old, newSessionState(old.client.WithCredentials(token))) {
			return
		}
	}
}

// ClearCredentials drops the credential.
func (s *Session) ClearCredentials() { s.SetCredentials("") }

// Authenticated reports whether the current client carries a credential
// that has not passed its known expiry.
func (s *Session) Authenticated() bool {
	st := s.current.Load()
	if !st.client.Authenticated() {
		return false
	}
	return st.expires == 0 || s.now().Unix() < st.expires
}

// ExpiresAt returns the credential expiry, or the zero time when unknown.
func (s *Session) ExpiresAt() time.Time {
	exp := s.current.Load().expires
	if exp == 0 {
		return time.Time{}
	}
	return time.Unix(exp, 0)
}

// Login signs a login payload with signer, posts it and adopts the returned
// token.
func (s *Session) Login(ctx context.Context, signer auth.Signer) (*auth.LoginResult, error) {
	req, err := auth.NewLoginRequest(signer, s.now())
	if err != nil {
		return nil, err
	}
	res, err := s.Client().Login(ctx, req)
	if err != nil {
		return nil, err
	}
	s.SetCredentials(res.Token)
	return res, nil
}
