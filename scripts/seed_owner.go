// seed_owner creates or resets the account used to sign in to the API.
//
//	OWNER_EMAIL=me@example.com OWNER_PASSWORD=secret go run ./scripts
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/pkg/auth"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)

	email := strings.ToLower(strings.TrimSpace(os.Getenv("OWNER_EMAIL")))
	password := os.Getenv("OWNER_PASSWORD")
	if email == "" || password == "" {
		appLogger.Fatal("OWNER_EMAIL and OWNER_PASSWORD must be set", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		appLogger.Fatal("cannot hash password", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DB.DSN)
	if err != nil {
		appLogger.Fatal("cannot connect DB", err)
	}
	defer pool.Close()

	query := `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = $3
	`
	if _, err := pool.Exec(context.Background(), query, uuid.New(), email, hash); err != nil {
		appLogger.Fatal("cannot add user", err)
	}

	appLogger.Info("Owner added or updated", zap.String("email", email))
}
