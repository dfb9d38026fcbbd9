package kvstore

import (
    "context"
    "database/sql"
    "errors"

    _ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres backs the store with a single client_state table. Used by fleet
// deployments where agent state must survive host reimaging.
type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    _, err = db.Exec(`CREATE TABLE IF NOT EXISTS client_state (
        key   text PRIMARY KEY,
        value text NOT NULL
    )`)
    if err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

func (s *Postgres) Get(ctx context.Context, key string) (string, error) {
    var v string
    err := s.db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key=$1`, key).Scan(&v)
    if errors.Is(err, sql.ErrNoRows) {
        return "", ErrNotFound
    }
    return v, err
}

func (s *Postgres) Set(ctx context.Context, key, value string) error {
    _, err := s.db.ExecContext(ctx, `INSERT INTO client_state (key, value) VALUES ($1,$2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value`, key, value)
    return err
}

func (s *Postgres) Remove(ctx context.Context, key string) error {
    _, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key=$1`, key)
    return err
}

func (s *Postgres) Close() error { return s.db.Close() }
