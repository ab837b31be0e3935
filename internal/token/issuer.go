// Package token issues and resolves bearer credentials. Two designs sit
// behind one contract: signed stateless claims (JWT) and opaque persisted
// sessions. Callers never learn which one is active.
package token

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidToken covers every resolution failure: absent, malformed,
// expired, or signed with the wrong secret. The cause is not surfaced.
var ErrInvalidToken = errors.New("invalid token")

type Issuer interface {
	Issue(ctx context.Context, accountID uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}
