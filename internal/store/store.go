// Package store is the storage boundary for accounts, sessions and posts.
// Backend errors never cross it: failures collapse to ErrDuplicate or
// ErrUnavailable, and lookup misses return (nil, nil).
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pulsefeed/backend/internal/model"
)

var (
	// ErrDuplicate means a creation violated a uniqueness constraint
	// (username already registered).
	ErrDuplicate = errors.New("duplicate")
	// ErrUnavailable means the backend could not complete the operation.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is implemented by every backend. Get* methods return (nil, nil)
// when the record is absent.
//
// ListPostsByAuthor returns posts newest first; offset and limit apply
// after ordering, and an out-of-range offset yields an empty slice.
type Store interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error

	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByToken(ctx context.Context, token string) (*model.Session, error)

	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]model.Post, error)

	Ping(ctx context.Context) error
	Close() error
}

// pageBounds clamps an offset/limit window to a collection of n elements
// already sorted newest first. Returned as [start, end) indexes.
func pageBounds(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= n {
		return 0, 0
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
