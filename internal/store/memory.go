package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pulsefeed/backend/internal/model"
)

// Memory is the ephemeral backend: nothing survives a restart. Each
// collection has its own lock so unrelated operations (one account's post
// against another's login) do not serialize.
type Memory struct {
	accountMu sync.RWMutex
	accounts  []model.Account

	sessionMu sync.RWMutex
	sessions  []model.Session

	postMu sync.RWMutex
	posts  []model.Post
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateAccount(_ context.Context, account *model.Account) error {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	for i := range m.accounts {
		if m.accounts[i].Username == account.Username {
			return ErrDuplicate
		}
	}
	m.accounts = append(m.accounts, *account)
	return nil
}

func (m *Memory) GetAccountByUsername(_ context.Context, username string) (*model.Account, error) {
	m.accountMu.RLock()
	defer m.accountMu.RUnlock()

	for i := range m.accounts {
		if m.accounts[i].Username == username {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetAccountByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	m.accountMu.RLock()
	defer m.accountMu.RUnlock()

	for i := range m.accounts {
		if m.accounts[i].ID == id {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

func (m *Memory) UpdateAccount(_ context.Context, account *model.Account) error {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	for i := range m.accounts {
		if m.accounts[i].ID == account.ID {
			m.accounts[i] = *account
			return nil
		}
	}
	return nil
}

func (m *Memory) CreateSession(_ context.Context, session *model.Session) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	m.sessions = append(m.sessions, *session)
	return nil
}

func (m *Memory) GetSessionByToken(_ context.Context, token string) (*model.Session, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	for i := range m.sessions {
		if m.sessions[i].Token == token {
			session := m.sessions[i]
			return &session, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreatePost(_ context.Context, post *model.Post) error {
	m.postMu.Lock()
	defer m.postMu.Unlock()

	m.posts = append(m.posts, *post)
	return nil
}

func (m *Memory) GetPostByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	m.postMu.RLock()
	defer m.postMu.RUnlock()

	for i := range m.posts {
		if m.posts[i].ID == id {
			post := m.posts[i]
			return &post, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListPostsByAuthor(_ context.Context, authorID uuid.UUID, offset, limit int) ([]model.Post, error) {
	m.postMu.RLock()
	defer m.postMu.RUnlock()

	// Insertion order is creation order; walk backwards for newest first.
	var mine []model.Post
	for i := len(m.posts) - 1; i >= 0; i-- {
		if m.posts[i].AuthorID == authorID {
			mine = append(mine, m.posts[i])
		}
	}

	start, end := pageBounds(len(mine), offset, limit)
	page := make([]model.Post, end-start)
	copy(page, mine[start:end])
	return page, nil
}

func (m *Memory) Ping(_ context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
