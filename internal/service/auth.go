package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefeed/backend/internal/model"
	"github.com/pulsefeed/backend/internal/password"
	"github.com/pulsefeed/backend/internal/store"
	"github.com/pulsefeed/backend/internal/token"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 8
	maxPasswordLength = 128
	maxPostLength     = 500
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUsernameTaken = errors.New("username taken")
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike, so callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)

// Auth owns the account lifecycle: registration, login and activity
// stamping. Tokens come from the configured issuer; which design is active
// (signed claims or stored sessions) is invisible here.
type Auth struct {
	store  store.Store
	hasher password.Hasher
	issuer token.Issuer
}

func NewAuth(s store.Store, h password.Hasher, i token.Issuer) *Auth {
	return &Auth{store: s, hasher: h, issuer: i}
}

func (a *Auth) Register(ctx context.Context, username, plaintext string) (*model.Account, error) {
	if err := validateCredentials(username, plaintext); err != nil {
		return nil, err
	}

	existing, err := a.store.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	digest, err := a.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	account := &model.Account{
		ID:             uuid.New(),
		Username:       username,
		PasswordDigest: digest,
		CreatedAt:      now,
		LastActiveAt:   now,
	}

	if err := a.store.CreateAccount(ctx, account); err != nil {
		// The store catches the race where two registrations pass the
		// lookup above with the same username.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return account, nil
}

// Login verifies the credential pair and returns a bearer token for the
// account.
func (a *Auth) Login(ctx context.Context, username, plaintext string) (string, error) {
	account, err := a.VerifyLogin(ctx, username, plaintext)
	if err != nil {
		return "", err
	}
	return a.issuer.Issue(ctx, account.ID)
}

func (a *Auth) VerifyLogin(ctx context.Context, username, plaintext string) (*model.Account, error) {
	account, err := a.store.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil || !a.hasher.Verify(plaintext, account.PasswordDigest) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func validateCredentials(username, plaintext string) error {
	if len(strings.TrimSpace(username)) < minUsernameLength || len(username) > maxUsernameLength {
		return ErrInvalidInput
	}
	if len(plaintext) < minPasswordLength || len(plaintext) > maxPasswordLength {
		return ErrInvalidInput
	}
	return nil
}
