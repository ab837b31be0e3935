package model

import "github.com/google/uuid"

// Session binds an opaque bearer token to an account (stateful token design).
// ExpiresAt is Unix seconds; an expired session no longer authenticates.
type Session struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Token     string
	ExpiresAt int64
}
