package kvstore

import (
    "context"
    "errors"
    "os"
    "strings"
)

// Reserved keys used by the client core. No other component may touch the
// offline queue entry; it is owned by the offline package.
const (
    KeyToken             = "@token"
    KeyUser              = "@user"
    KeyVehiclePreference = "@vehicle_preference"
    KeyOfflineQueue      = "@offline_queue"
)

var ErrNotFound = errors.New("not found")

// Store is the persistent key-value capability used for credentials, the
// cached user and the offline queue snapshot.
type Store interface {
    Get(ctx context.Context, key string) (string, error)
    Set(ctx context.Context, key, value string) error
    Remove(ctx context.Context, key string) error
    Close() error
}

// Open selects a backend from the environment: DATABASE_URL wins, then
// REDIS_URL, then STATE_FILE, falling back to in-memory.
func Open() (Store, error) {
    if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
        return NewPostgres(dsn)
    }
    if url := strings.TrimSpace(os.Getenv("REDIS_URL")); url != "" {
        return NewRedis(url)
    }
    if path := strings.TrimSpace(os.Getenv("STATE_FILE")); path != "" {
        return NewFile(path)
    }
    return NewMemory(), nil
}
