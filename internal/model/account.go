package model

import "github.com/google/uuid"

// Account is the persisted identity record. PasswordDigest is the salted
// one-way hash produced by internal/password; the plaintext is never stored.
type Account struct {
	ID             uuid.UUID
	Username       string
	PasswordDigest string
	CreatedAt      int64
	LastActiveAt   int64
}

// Profile is the externally visible view of an account.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	CreatedAt    int64     `json:"createdAt"`
	LastActiveAt int64     `json:"lastActiveAt"`
}

func (a *Account) Profile() Profile {
	return Profile{
		ID:           a.ID,
		Username:     a.Username,
		CreatedAt:    a.CreatedAt,
		LastActiveAt: a.LastActiveAt,
	}
}
