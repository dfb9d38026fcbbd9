package kvstore

import (
    "context"
    "errors"
    "os"
    "path/filepath"
    "testing"
)

func TestMemoryRoundTrip(t *testing.T) {
    s := NewMemory()
    ctx := context.Background()
    if _, err := s.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
        t.Fatalf("missing key: got %v", err)
    }
    if err := s.Set(ctx, KeyToken, "tok"); err != nil {
        t.Fatalf("set: %v", err)
    }
    v, err := s.Get(ctx, KeyToken)
    if err != nil || v != "tok" {
        t.Fatalf("get: %v %q", err, v)
    }
    if err := s.Remove(ctx, KeyToken); err != nil {
        t.Fatalf("remove: %v", err)
    }
    if _, err := s.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
        t.Fatalf("removed key still present")
    }
}

func TestFilePersistsAcrossReopen(t *testing.T) {
    path := filepath.Join(t.TempDir(), "state.json")
    ctx := context.Background()

    s, err := NewFile(path)
    if err != nil {
        t.Fatalf("open: %v", err)
    }
    if err := s.Set(ctx, KeyUser, `{"id":"u1"}`); err != nil {
        t.Fatalf("set: %v", err)
    }

    s2, err := NewFile(path)
    if err != nil {
        t.Fatalf("reopen: %v", err)
    }
    v, err := s2.Get(ctx, KeyUser)
    if err != nil || v != `{"id":"u1"}` {
        t.Fatalf("reloaded: %v %q", err, v)
    }

    if err := s2.Remove(ctx, KeyUser); err != nil {
        t.Fatalf("remove: %v", err)
    }
    s3, _ := NewFile(path)
    if _, err := s3.Get(ctx, KeyUser); !errors.Is(err, ErrNotFound) {
        t.Fatalf("removal not persisted")
    }
}

func TestFileCorruptStartsEmpty(t *testing.T) {
    path := filepath.Join(t.TempDir(), "state.json")
    if err := os.WriteFile(path, []byte("@@garbage@@"), 0o600); err != nil {
        t.Fatalf("seed: %v", err)
    }
    s, err := NewFile(path)
    if err != nil {
        t.Fatalf("open corrupt: %v", err)
    }
    if _, err := s.Get(context.Background(), KeyToken); !errors.Is(err, ErrNotFound) {
        t.Fatalf("corrupt file should read as empty")
    }
}
