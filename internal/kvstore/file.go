package kvstore

import (
    "context"
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "sync"
)

// File persists entries as one JSON object, rewritten on every mutation.
// Good enough for the handful of small values the client keeps.
type File struct {
    mu   sync.Mutex
    path string
    m    map[string]string
}

func NewFile(path string) (*File, error) {
    f := &File{path: path, m: map[string]string{}}
    data, err := os.ReadFile(path)
    if err != nil {
        if errors.Is(err, fs.ErrNotExist) {
            return f, nil
        }
        return nil, err
    }
    // Corrupt state files start over empty rather than failing the process.
    if err := json.Unmarshal(data, &f.m); err != nil {
        f.m = map[string]string{}
    }
    return f, nil
}

func (s *File) Get(ctx context.Context, key string) (string, error) {
    s.mu.Lock(); defer s.mu.Unlock()
    v, ok := s.m[key]
    if !ok { return "", ErrNotFound }
    return v, nil
}

func (s *File) Set(ctx context.Context, key, value string) error {
    s.mu.Lock(); defer s.mu.Unlock()
    s.m[key] = value
    return s.flush()
}

func (s *File) Remove(ctx context.Context, key string) error {
    s.mu.Lock(); defer s.mu.Unlock()
    delete(s.m, key)
    return s.flush()
}

func (s *File) Close() error { return nil }

// flush writes to a temp file then renames, so a crash mid-write never
// leaves a truncated state file behind. Caller holds the lock.
func (s *File) flush() error {
    data, err := json.Marshal(s.m)
    if err != nil { return err }
    tmp := s.path + ".tmp"
    if err := os.WriteFile(tmp, data, 0o600); err != nil {
        return err
    }
    return os.Rename(tmp, s.path)
}
