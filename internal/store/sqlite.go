package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pulsefeed/backend/internal/model"
)

// SQLite is the embedded durable backend: a single-writer file database
// that survives restarts without an external server.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file with WAL mode and
// foreign keys enabled.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Single-writer engine; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_digest TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_active_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			author_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts(author_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) CreateAccount(ctx context.Context, account *model.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, password_digest, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?)
	`, account.ID.String(), account.Username, account.PasswordDigest, account.CreatedAt, account.LastActiveAt)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_digest, created_at, last_active_at
		FROM accounts
		WHERE username = ?
	`, username)
	return scanAccount(row)
}

func (s *SQLite) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_digest, created_at, last_active_at
		FROM accounts
		WHERE id = ?
	`, id.String())
	return scanAccount(row)
}

func (s *SQLite) UpdateAccount(ctx context.Context, account *model.Account) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET username = ?, password_digest = ?, last_active_at = ?
		WHERE id = ?
	`, account.Username, account.PasswordDigest, account.LastActiveAt, account.ID.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, account_id, token, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.ID.String(), session.AccountID.String(), session.Token, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) GetSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	var (
		session   model.Session
		id        string
		accountID string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, token, expires_at
		FROM sessions
		WHERE token = ?
	`, token).Scan(&id, &accountID, &session.Token, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if session.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if session.AccountID, err = uuid.Parse(accountID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &session, nil
}

func (s *SQLite) CreatePost(ctx context.Context, post *model.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, text, created_at)
		VALUES (?, ?, ?, ?)
	`, post.ID.String(), post.AuthorID.String(), post.Text, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) GetPostByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, text, created_at
		FROM posts
		WHERE id = ?
	`, id.String())
	return scanPost(row)
}

func (s *SQLite) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]model.Post, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []model.Post{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, text, created_at
		FROM posts
		WHERE author_id = ?
		ORDER BY seq DESC
		LIMIT ? OFFSET ?
	`, authorID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var (
			post   model.Post
			id     string
			author string
		)
		if err := rows.Scan(&id, &author, &post.Text, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if post.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if post.AuthorID, err = uuid.Parse(author); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return posts, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		account model.Account
		id      string
	)
	err := row.Scan(&id, &account.Username, &account.PasswordDigest, &account.CreatedAt, &account.LastActiveAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if account.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &account, nil
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		post   model.Post
		id     string
		author string
	)
	err := row.Scan(&id, &author, &post.Text, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if post.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if post.AuthorID, err = uuid.Parse(author); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &post, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
