package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quillhq/quill/internal/config"
)

func Connect(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	pool, err := pgxpool.New(context.Background(), dsn)

	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL UNIQUE REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS follows (
	follower_id UUID NOT NULL REFERENCES profiles(id),
	followed_id UUID NOT NULL REFERENCES profiles(id),
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (follower_id, followed_id),
	CHECK (follower_id <> followed_id)
);

CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY,
	author_id UUID NOT NULL REFERENCES profiles(id),
	caption VARCHAR(128) NOT NULL,
	content_text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS posts_author_idx ON posts(author_id);
CREATE INDEX IF NOT EXISTS posts_created_idx ON posts(created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS posts_read (
	profile_id UUID NOT NULL REFERENCES profiles(id),
	post_id UUID NOT NULL REFERENCES posts(id),
	marked_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (profile_id, post_id)
);
`
