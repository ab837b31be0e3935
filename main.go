package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/pulsefeed/backend/internal/config"
	"github.com/pulsefeed/backend/internal/handler"
	"github.com/pulsefeed/backend/internal/password"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/store"
	"github.com/pulsefeed/backend/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	hasher, err := newHasher(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to configure password hasher: %v", err)
	}

	issuer, err := newIssuer(cfg.Auth, st)
	if err != nil {
		log.Fatalf("failed to configure token issuer: %v", err)
	}

	authService := service.NewAuth(st, hasher, issuer)
	gateway := service.NewGateway(st, issuer)

	router := handler.NewRouter(st, authService, gateway)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return store.OpenSQLite(cfg.SQLitePath)
	case "postgres":
		dsn, err := cfg.Postgres.URL()
		if err != nil {
			return nil, err
		}
		return store.OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}
}

func newHasher(cfg config.AuthConfig) (password.Hasher, error) {
	switch cfg.PasswordScheme {
	case "sha256":
		return password.NewSaltedSHA256(), nil
	case "bcrypt":
		return password.NewBcrypt(), nil
	default:
		return nil, fmt.Errorf("unknown PASSWORD_SCHEME %q", cfg.PasswordScheme)
	}
}

func newIssuer(cfg config.AuthConfig, st store.Store) (token.Issuer, error) {
	switch cfg.TokenMode {
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required in jwt token mode")
		}
		ttl, err := time.ParseDuration(cfg.AccessTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_ACCESS_TTL: %w", err)
		}
		return token.NewJWT([]byte(cfg.JWTSecret), ttl), nil
	case "session":
		ttl, err := time.ParseDuration(cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		return token.NewSession(st, ttl), nil
	default:
		return nil, fmt.Errorf("unknown TOKEN_MODE %q", cfg.TokenMode)
	}
}
