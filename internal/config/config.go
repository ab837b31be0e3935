package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Store  StoreConfig
}

type ServerConfig struct {
	Port string
}

type AuthConfig struct {
	// JWTSecret is the symmetric signing secret for the stateless token
	// design. Provisioned out of band; never logged or persisted.
	JWTSecret      string
	TokenMode      string
	AccessTTL      string
	SessionTTL     string
	PasswordScheme string
}

type StoreConfig struct {
	Backend    string
	SQLitePath string
	Postgres   PostgresConfig
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port: getenv("PORT", "8080"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			TokenMode:      getenv("TOKEN_MODE", "jwt"),
			AccessTTL:      getenv("JWT_ACCESS_TTL", "24h"),
			SessionTTL:     getenv("SESSION_TTL", "720h"),
			PasswordScheme: getenv("PASSWORD_SCHEME", "sha256"),
		},
		Store: StoreConfig{
			Backend:    getenv("STORE_BACKEND", "memory"),
			SQLitePath: getenv("SQLITE_PATH", "pulsefeed.db"),
			Postgres: PostgresConfig{
				DatabaseURL: os.Getenv("DATABASE_URL"),
				Host:        getenv("PGHOST", "localhost"),
				Port:        getenv("PGPORT", "5432"),
				User:        os.Getenv("PGUSER"),
				Password:    os.Getenv("PGPASSWORD"),
				Database:    os.Getenv("PGDATABASE"),
				SSLMode:     getenv("PGSSLMODE", "disable"),
			},
		},
	}
}

// URL builds a postgres DSN from DATABASE_URL or the PG* variables.
func (c PostgresConfig) URL() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}

	if c.User == "" || c.Database == "" {
		return "", fmt.Errorf("missing required env: DATABASE_URL or PGUSER/PGDATABASE")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Database,
	}
	if c.Password == "" {
		u.User = url.User(c.User)
	} else {
		u.User = url.UserPassword(c.User, c.Password)
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
