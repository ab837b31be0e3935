package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefeed/backend/internal/model"
	"github.com/pulsefeed/backend/internal/store"
	"github.com/pulsefeed/backend/internal/token"
)

// Gateway resolves an inbound bearer token to an Actor. A token that
// resolves but points at a vanished account is treated the same as an
// invalid token.
type Gateway struct {
	store  store.Store
	issuer token.Issuer
}

func NewGateway(s store.Store, i token.Issuer) *Gateway {
	return &Gateway{store: s, issuer: i}
}

func (g *Gateway) Authenticate(ctx context.Context, bearer string) (*Actor, error) {
	accountID, err := g.issuer.Resolve(ctx, bearer)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return nil, err
		}
		return nil, token.ErrInvalidToken
	}

	account, err := g.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, token.ErrInvalidToken
	}

	return &Actor{store: g.store, account: account}, nil
}

// Actor is the authorized-operation surface for one resolved account. It
// lives for a single request: an identifier plus a store handle, nothing
// shared or long-lived.
type Actor struct {
	store   store.Store
	account *model.Account
}

func (a *Actor) ID() uuid.UUID {
	return a.account.ID
}

func (a *Actor) Self() model.Profile {
	return a.account.Profile()
}

// CreatePost stamps activity before persisting, so lastActiveAt always
// reflects the latest authenticated write.
func (a *Actor) CreatePost(ctx context.Context, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxPostLength {
		return nil, ErrInvalidInput
	}

	if err := a.touchActivity(ctx); err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        uuid.New(),
		AuthorID:  a.account.ID,
		Text:      text,
		CreatedAt: time.Now().Unix(),
	}
	if err := a.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (a *Actor) ListPosts(ctx context.Context, offset, limit int) ([]model.Post, error) {
	return a.store.ListPostsByAuthor(ctx, a.account.ID, offset, limit)
}

// GetPost resolves a single post; posts by other authors read as not found.
func (a *Actor) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := a.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || post.AuthorID != a.account.ID {
		return nil, ErrNotFound
	}
	return post, nil
}

func (a *Actor) touchActivity(ctx context.Context) error {
	a.account.LastActiveAt = time.Now().Unix()
	return a.store.UpdateAccount(ctx, a.account)
}
