package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulsefeed/backend/internal/model"
)

// Per-operation bound on storage latency; a blocked backend surfaces as
// ErrUnavailable instead of hanging the request.
const pgOpTimeout = 5 * time.Second

// Postgres is the server-backed durable store.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_digest TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			last_active_at BIGINT NOT NULL
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			expires_at BIGINT NOT NULL
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS posts (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			author_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)
		`,
		`CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts(author_id)`,
	}

	for _, query := range queries {
		if _, err := p.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) CreateAccount(ctx context.Context, account *model.Account) error {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO accounts (id, username, password_digest, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID.String(), account.Username, account.PasswordDigest, account.CreatedAt, account.LastActiveAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	row := p.pool.QueryRow(ctx, `
		SELECT id, username, password_digest, created_at, last_active_at
		FROM accounts
		WHERE username = $1
	`, username)
	return scanPgAccount(row)
}

func (p *Postgres) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	row := p.pool.QueryRow(ctx, `
		SELECT id, username, password_digest, created_at, last_active_at
		FROM accounts
		WHERE id = $1
	`, id.String())
	return scanPgAccount(row)
}

func (p *Postgres) UpdateAccount(ctx context.Context, account *model.Account) error {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		UPDATE accounts
		SET username = $1, password_digest = $2, last_active_at = $3
		WHERE id = $4
	`, account.Username, account.PasswordDigest, account.LastActiveAt, account.ID.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) CreateSession(ctx context.Context, session *model.Session) error {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO sessions (id, account_id, token, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.ID.String(), session.AccountID.String(), session.Token, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) GetSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	var (
		session   model.Session
		id        string
		accountID string
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, account_id, token, expires_at
		FROM sessions
		WHERE token = $1
	`, token).Scan(&id, &accountID, &session.Token, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) CreatePost(ctx context.Context, post *model.Post) error {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO posts (id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4)
	`, post.ID.String(), post.AuthorID.String(), post.Text, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) GetPostByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	row := p.pool.QueryRow(ctx, `
		SELECT id, author_id, text, created_at
		FROM posts
		WHERE id = $1
	`, id.String())
	return scanPgPost(row)
}

func (p *Postgres) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []model.Post{}, nil
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, author_id, text, created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3
	`, authorID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPgPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return posts, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanPgAccount(row pgx.Row) (*model.Account, error) {
	var (
		account model.Account
		id      string
	)
	err := row.Scan(&id, &account.Username, &account.PasswordDigest, &account.CreatedAt, &account.LastActiveAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if account.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &account, nil
}

func scanPgPost(row pgx.Row) (*model.Post, error) {
	var (
		post   model.Post
		id     string
		author string
	)
	err := row.Scan(&id, &author, &post.Text, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
