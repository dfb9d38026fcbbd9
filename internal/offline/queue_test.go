package offline

import (
    "context"
    "encoding/json"
    "errors"
    "sync"
    "testing"

    "initinere/internal/kvstore"
    "initinere/internal/model"
)

// failStore wraps a memory store and fails selected mutations.
type failStore struct {
    *kvstore.Memory
    mu        sync.Mutex
    failSet   bool
    failGet   bool
    setCalls  int
}

func (s *failStore) Set(ctx context.Context, key, value string) error {
    s.mu.Lock()
    s.setCalls++
    fail := s.failSet
    s.mu.Unlock()
    if fail {
        return errors.New("disk full")
    }
    return s.Memory.Set(ctx, key, value)
}

func (s *failStore) Get(ctx context.Context, key string) (string, error) {
    s.mu.Lock()
    fail := s.failGet
    s.mu.Unlock()
    if fail {
        return "", errors.New("io error")
    }
    return s.Memory.Get(ctx, key)
}

func alwaysOnline(context.Context) bool  { return true }
func alwaysOffline(context.Context) bool { return false }

func samplePayload(tripID string) map[string]any {
    return map[string]any{
        "tripId": tripID,
        "sample": map[string]any{"latitude": 1.0, "longitude": 2.0},
    }
}

func TestEnqueueStatusOrder(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    q.Initialize(context.Background())

    for _, id := range []string{"T1", "T2", "T3"} {
        q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload(id))
    }
    size, ops := q.Status()
    if size != 3 || len(ops) != 3 {
        t.Fatalf("queue size: got %d/%d, want 3", size, len(ops))
    }
    for i, want := range []string{"T1", "T2", "T3"} {
        if got := ops[i].Payload["tripId"]; got != want {
            t.Fatalf("order[%d]: got %v, want %s", i, got, want)
        }
    }
    // ids must be unique and ascending
    if !(ops[0].ID < ops[1].ID && ops[1].ID < ops[2].ID) {
        t.Fatalf("ids not monotonic: %s %s %s", ops[0].ID, ops[1].ID, ops[2].ID)
    }
}

func TestStatusIsDetachedCopy(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("T1"))

    _, ops := q.Status()
    ops[0].Payload["tripId"] = "HACKED"
    ops[0].RetryCount = 99

    _, again := q.Status()
    if again[0].Payload["tripId"] != "T1" || again[0].RetryCount != 0 {
        t.Fatalf("internal state mutated through status copy: %+v", again[0])
    }
}

func TestDrainEmptyIsNoop(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    res := q.Drain(context.Background())
    if res.Processed != 0 || len(res.Results) != 0 {
        t.Fatalf("empty drain: got %+v", res)
    }
}

func TestDrainDeliversFIFO(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    var delivered []string
    q.Handle(model.OpTripLocationUpdate, func(ctx context.Context, op model.QueuedOperation) error {
        delivered = append(delivered, op.Payload["tripId"].(string))
        return nil
    })
    for _, id := range []string{"A", "B", "C"} {
        q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload(id))
    }
    res := q.Drain(context.Background())
    if res.Processed != 3 {
        t.Fatalf("processed: got %d, want 3", res.Processed)
    }
    if len(delivered) != 3 || delivered[0] != "A" || delivered[1] != "B" || delivered[2] != "C" {
        t.Fatalf("delivery order: %v", delivered)
    }
    if size, _ := q.Status(); size != 0 {
        t.Fatalf("queue not empty after drain: %d", size)
    }
}

func TestRetryBound(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    q.Handle(model.OpTripLocationUpdate, func(ctx context.Context, op model.QueuedOperation) error {
        return errors.New("server sad")
    })
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("T1"))

    // Two failed drains leave the operation in place with a bumped count.
    for want := 1; want <= 2; want++ {
        res := q.Drain(context.Background())
        if res.Processed != 0 {
            t.Fatalf("drain %d: unexpectedly terminal: %+v", want, res)
        }
        size, ops := q.Status()
        if size != 1 || ops[0].RetryCount != want {
            t.Fatalf("after drain %d: size=%d retries=%d", want, size, ops[0].RetryCount)
        }
    }

    // Third failure exhausts the bound: dropped and reported.
    res := q.Drain(context.Background())
    if res.Processed != 1 || len(res.Results) != 1 {
        t.Fatalf("exhaustion drain: %+v", res)
    }
    if res.Results[0].Success || res.Results[0].Error == "" {
        t.Fatalf("expected failure result, got %+v", res.Results[0])
    }
    if size, _ := q.Status(); size != 0 {
        t.Fatalf("exhausted op still queued")
    }
}

func TestRetryPreservesPosition(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    q.Handle(model.OpTripLocationUpdate, func(ctx context.Context, op model.QueuedOperation) error {
        if op.Payload["tripId"] == "FLAKY" {
            return errors.New("nope")
        }
        return nil
    })
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("FLAKY"))
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("OK"))

    q.Drain(context.Background())
    size, ops := q.Status()
    if size != 1 || ops[0].Payload["tripId"] != "FLAKY" {
        t.Fatalf("expected only FLAKY pending, got %+v", ops)
    }
    if ops[0].RetryCount != 1 {
        t.Fatalf("retry count: got %d", ops[0].RetryCount)
    }
}

func TestUnknownKindAgesOut(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    q.Enqueue(context.Background(), "SOMETHING_ELSE", map[string]any{"x": 1.0})

    q.Drain(context.Background())
    q.Drain(context.Background())
    res := q.Drain(context.Background())
    if res.Processed != 1 || res.Results[0].Success {
        t.Fatalf("unknown kind should drop at the bound: %+v", res)
    }
    if size, _ := q.Status(); size != 0 {
        t.Fatalf("unknown-kind op stuck in queue")
    }
}

func TestPersistRoundTrip(t *testing.T) {
    store := kvstore.NewMemory()
    q := New(store, alwaysOnline)
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("T1"))
    _, before := q.Status()

    // A fresh queue over the same store must see the identical sequence.
    q2 := New(store, alwaysOnline)
    st := q2.Initialize(context.Background())
    if st.QueueSize != 1 {
        t.Fatalf("reloaded size: got %d", st.QueueSize)
    }
    _, after := q2.Status()
    b, _ := json.Marshal(before)
    a, _ := json.Marshal(after)
    if string(a) != string(b) {
        t.Fatalf("round trip mismatch:\n before=%s\n after=%s", b, a)
    }
}

func TestInitializeCorruptSnapshot(t *testing.T) {
    store := kvstore.NewMemory()
    _ = store.Set(context.Background(), kvstore.KeyOfflineQueue, "{not json")
    q := New(store, alwaysOnline)
    st := q.Initialize(context.Background())
    if st.QueueSize != 0 {
        t.Fatalf("corrupt snapshot should load empty, got %d", st.QueueSize)
    }
}

func TestSyncWhenOffline(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOffline)
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("T1"))
    if _, err := q.SyncWhenOnline(context.Background()); err == nil {
        t.Fatalf("expected offline error")
    }
    if size, _ := q.Status(); size != 1 {
        t.Fatalf("offline sync must not touch the queue")
    }
}

func TestClearRemovesSnapshot(t *testing.T) {
    store := kvstore.NewMemory()
    q := New(store, alwaysOnline)
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("T1"))
    q.Clear(context.Background())
    if size, _ := q.Status(); size != 0 {
        t.Fatalf("clear left operations behind")
    }
    if _, err := store.Get(context.Background(), kvstore.KeyOfflineQueue); !errors.Is(err, kvstore.ErrNotFound) {
        t.Fatalf("persisted snapshot survived clear: %v", err)
    }
}

func TestStoreFailuresDegradeSilently(t *testing.T) {
    fs := &failStore{Memory: kvstore.NewMemory(), failSet: true}
    q := New(fs, alwaysOnline)
    size := q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("T1"))
    if size != 1 {
        t.Fatalf("enqueue must proceed in memory despite store error, got size %d", size)
    }

    fs2 := &failStore{Memory: kvstore.NewMemory(), failGet: true}
    q2 := New(fs2, alwaysOnline)
    st := q2.Initialize(context.Background())
    if st.QueueSize != 0 {
        t.Fatalf("unreadable store should load empty")
    }
}

func TestEnqueuedDuringDrainWaitsForNextPass(t *testing.T) {
    q := New(kvstore.NewMemory(), alwaysOnline)
    var calls int
    q.Handle(model.OpTripLocationUpdate, func(ctx context.Context, op model.QueuedOperation) error {
        calls++
        if op.Payload["tripId"] == "FIRST" {
            // Re-enqueue from inside the handler; the snapshot bound must
            // keep this pass from chasing it.
            q.Enqueue(ctx, model.OpTripLocationUpdate, samplePayload("SECOND"))
        }
        return nil
    })
    q.Enqueue(context.Background(), model.OpTripLocationUpdate, samplePayload("FIRST"))

    q.Drain(context.Background())
    if calls != 1 {
        t.Fatalf("drain chased mid-pass enqueue: %d calls", calls)
    }
    if size, _ := q.Status(); size != 1 {
        t.Fatalf("mid-pass enqueue lost")
    }

    q.Drain(context.Background())
    if size, _ := q.Status(); size != 0 {
        t.Fatalf("second pass should deliver the deferred op")
    }
}
