package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pulsefeed/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(username string) *model.Account {
	return &model.Account{
		ID:             uuid.New(),
		Username:       username,
		PasswordDigest: "salt&digest",
		CreatedAt:      100,
		LastActiveAt:   100,
	}
}

func TestMemoryAccountUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateAccount(ctx, newAccount("alice")))

	err := m.CreateAccount(ctx, newAccount("alice"))
	assert.ErrorIs(t, err, ErrDuplicate)

	// Case-sensitive exact match: "Alice" is a different username.
	require.NoError(t, m.CreateAccount(ctx, newAccount("Alice")))
}

func TestMemoryAccountLookups(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	account := newAccount("alice")
	require.NoError(t, m.CreateAccount(ctx, account))

	byName, err := m.GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, account.ID, byName.ID)

	byID, err := m.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)

	// Absent is not an error.
	missing, err := m.GetAccountByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = m.GetAccountByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryUpdateAccount(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	account := newAccount("alice")
	require.NoError(t, m.CreateAccount(ctx, account))

	account.LastActiveAt = 500
	require.NoError(t, m.UpdateAccount(ctx, account))

	got, err := m.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(500), got.LastActiveAt)
}

func TestMemorySessions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	session := &model.Session{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Token:     "tok-1",
		ExpiresAt: 9999,
	}
	require.NoError(t, m.CreateSession(ctx, session))

	got, err := m.GetSessionByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.AccountID, got.AccountID)

	missing, err := m.GetSessionByToken(ctx, "tok-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryListPostsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	author := uuid.New()
	other := uuid.New()

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, m.CreatePost(ctx, &model.Post{
			ID:        uuid.New(),
			AuthorID:  author,
			Text:      fmt.Sprintf("post %d", i),
			CreatedAt: int64(i),
		}))
	}
	require.NoError(t, m.CreatePost(ctx, &model.Post{
		ID:       uuid.New(),
		AuthorID: other,
		Text:     "someone else",
	}))

	posts, err := m.ListPostsByAuthor(ctx, author, 0, n)
	require.NoError(t, err)
	require.Len(t, posts, n)
	for i, post := range posts {
		assert.Equal(t, fmt.Sprintf("post %d", n-1-i), post.Text)
		assert.Equal(t, author, post.AuthorID)
	}
}

func TestMemoryListPostsPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	author := uuid.New()

	const n = 7
	for i := 0; i < n; i++ {
		require.NoError(t, m.CreatePost(ctx, &model.Post{
			ID:       uuid.New(),
			AuthorID: author,
			Text:     fmt.Sprintf("post %d", i),
		}))
	}

	// Out-of-range offset and zero limit yield empty, never an error.
	posts, err := m.ListPostsByAuthor(ctx, author, n, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)

	posts, err = m.ListPostsByAuthor(ctx, author, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)

	// Concatenated windows reconstruct the full descending order.
	var all []model.Post
	for offset := 0; offset < n; offset += 3 {
		page, err := m.ListPostsByAuthor(ctx, author, offset, 3)
		require.NoError(t, err)
		all = append(all, page...)
	}
	require.Len(t, all, n)
	seen := map[string]bool{}
	for i, post := range all {
		assert.Equal(t, fmt.Sprintf("post %d", n-1-i), post.Text)
		assert.False(t, seen[post.ID.String()])
		seen[post.ID.String()] = true
	}
}

func TestMemoryGetPostByID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	post := &model.Post{ID: uuid.New(), AuthorID: uuid.New(), Text: "hello"}
	require.NoError(t, m.CreatePost(ctx, post))

	got, err := m.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Text)

	missing, err := m.GetPostByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
