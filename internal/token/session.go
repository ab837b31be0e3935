package token

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefeed/backend/internal/model"
	"github.com/pulsefeed/backend/internal/store"
)

const (
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength   = 64
)

// Session implements the stateful design: the token is a random string with
// no embedded meaning, and a Session record in the store is the only proof
// it was ever issued. Sessions expire after ttl.
type Session struct {
	store store.Store
	ttl   time.Duration
}

func NewSession(s store.Store, ttl time.Duration) *Session {
	return &Session{store: s, ttl: ttl}
}

func (s *Session) Issue(ctx context.Context, accountID uuid.UUID) (string, error) {
	tok, err := randomToken(tokenLength)
	if err != nil {
		return "", err
	}

	session := &model.Session{
		ID:        uuid.New(),
		AccountID: accountID,
		Token:     tok,
		ExpiresAt: time.Now().Add(s.ttl).Unix(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *Session) Resolve(ctx context.Context, tok string) (uuid.UUID, error) {
	session, err := s.store.GetSessionByToken(ctx, tok)
	if err != nil {
		return uuid.Nil, err
	}
	if session == nil || time.Now().Unix() >= session.ExpiresAt {
		return uuid.Nil, ErrInvalidToken
	}
	return session.AccountID, nil
}

func randomToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(out), nil
}
