package offline

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "strconv"
    "sync"
    "time"

    "github.com/google/uuid"

    "initinere/internal/kvstore"
    "initinere/internal/metrics"
    "initinere/internal/model"
)

// DefaultMaxRetries is how many failed replay attempts an operation gets
// before it is dropped and reported.
const DefaultMaxRetries = 3

var (
    errNoConnection = errors.New("no network connection")
    errUnknownKind  = errors.New("unknown operation kind")
)

// Handler replays one queued operation against the transport. A nil error
// means delivered; anything else counts as a failed attempt.
type Handler func(ctx context.Context, op model.QueuedOperation) error

// OpResult reports the terminal outcome of one operation during a drain:
// delivered, or dropped after exhausting its retries.
type OpResult struct {
    ID      string `json:"id"`
    Success bool   `json:"success"`
    Error   string `json:"error,omitempty"`
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
    Processed int        `json:"processed"`
    Results   []OpResult `json:"results,omitempty"`
}

// InitStatus is returned by Initialize.
type InitStatus struct {
    IsConnected bool `json:"isConnected"`
    QueueSize   int  `json:"queueSize"`
}

// Queue is the durable FIFO of operations that failed synchronous delivery.
// It is the sole owner of the persisted snapshot under its reserved store
// key; the whole sequence is re-serialized on every mutation.
type Queue struct {
    store      kvstore.Store
    online     func(context.Context) bool
    maxRetries int

    mu       sync.Mutex
    ops      []model.QueuedOperation
    handlers map[string]Handler
    lastID   int64
    draining bool
}

// New builds a queue. online is the connectivity probe consulted before a
// drain; nil means always connected.
func New(store kvstore.Store, online func(context.Context) bool) *Queue {
    if online == nil {
        online = func(context.Context) bool { return true }
    }
    return &Queue{
        store:      store,
        online:     online,
        maxRetries: DefaultMaxRetries,
        handlers:   map[string]Handler{},
    }
}

// SetMaxRetries overrides the retry bound. Values below 1 are ignored.
func (q *Queue) SetMaxRetries(n int) {
    if n >= 1 {
        q.maxRetries = n
    }
}

// Handle registers the dispatcher for an operation kind.
func (q *Queue) Handle(kind string, h Handler) {
    q.mu.Lock()
    q.handlers[kind] = h
    q.mu.Unlock()
}

// Initialize loads the persisted snapshot and probes connectivity. Corrupt
// or unreadable persisted data is treated as an empty queue, never an error.
func (q *Queue) Initialize(ctx context.Context) InitStatus {
    raw, err := q.store.Get(ctx, kvstore.KeyOfflineQueue)
    q.mu.Lock()
    q.ops = nil
    if err == nil && raw != "" {
        var ops []model.QueuedOperation
        if uerr := json.Unmarshal([]byte(raw), &ops); uerr == nil {
            q.ops = ops
        } else {
            log.Printf("offline: persisted queue corrupt, starting empty: %v", uerr)
        }
    } else if err != nil && err != kvstore.ErrNotFound {
        log.Printf("offline: load queue: %v", err)
    }
    size := len(q.ops)
    q.mu.Unlock()
    metrics.QueueDepth.Set(float64(size))
    return InitStatus{IsConnected: q.online(ctx), QueueSize: size}
}

// Enqueue appends an operation and persists the full sequence. The id is
// time-based and unique within the process; the idempotency key rides along
// on every replay.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload map[string]any) int {
    now := time.Now()
    q.mu.Lock()
    id := now.UnixNano()
    if id <= q.lastID {
        id = q.lastID + 1
    }
    q.lastID = id
    op := model.QueuedOperation{
        ID:             strconv.FormatInt(id, 10),
        Kind:           kind,
        Payload:        payload,
        IdempotencyKey: uuid.NewString(),
        EnqueuedAt:     now.UTC(),
        RetryCount:     0,
    }
    q.ops = append(q.ops, op)
    size := len(q.ops)
    q.persistLocked(ctx)
    q.mu.Unlock()
    metrics.QueueDepth.Set(float64(size))
    metrics.QueueEnqueued.Inc()
    return size
}

// Drain attempts delivery of every operation present when the pass starts;
// operations enqueued mid-pass wait for the next one. FIFO order is kept
// across retries. Failed operations stay in place until the retry bound,
// then are removed and reported. The updated sequence is persisted once at
// the end of the pass.
func (q *Queue) Drain(ctx context.Context) DrainResult {
    if !q.online(ctx) {
        return DrainResult{}
    }
    q.mu.Lock()
    if q.draining || len(q.ops) == 0 {
        q.mu.Unlock()
        return DrainResult{}
    }
    q.draining = true
    snapshot := make([]model.QueuedOperation, len(q.ops))
    copy(snapshot, q.ops)
    q.mu.Unlock()

    var results []OpResult
    for _, op := range snapshot {
        q.mu.Lock()
        h := q.handlers[op.Kind]
        q.mu.Unlock()

        var err error
        if h == nil {
            // Unknown kinds burn an attempt like any failure so they age
            // out at the bound instead of sticking in the queue forever.
            log.Printf("offline: unknown operation kind %q (id=%s)", op.Kind, op.ID)
            err = errUnknownKind
        } else {
            err = h(ctx, op)
        }

        if err == nil {
            q.remove(op.ID)
            results = append(results, OpResult{ID: op.ID, Success: true})
            metrics.QueueDelivered.Inc()
            continue
        }
        retries := q.bumpRetry(op.ID)
        if retries >= q.maxRetries {
            q.remove(op.ID)
            results = append(results, OpResult{ID: op.ID, Success: false, Error: err.Error()})
            metrics.QueueDropped.Inc()
            log.Printf("offline: dropping %s after %d attempts: %v", op.ID, retries, err)
        } else {
            metrics.QueueRetried.Inc()
        }
    }

    q.mu.Lock()
    q.persistLocked(ctx)
    size := len(q.ops)
    q.draining = false
    q.mu.Unlock()
    metrics.QueueDepth.Set(float64(size))
    return DrainResult{Processed: len(results), Results: results}
}

// SyncWhenOnline drains if connected, otherwise reports the missing link.
func (q *Queue) SyncWhenOnline(ctx context.Context) (DrainResult, error) {
    if !q.online(ctx) {
        return DrainResult{}, errNoConnection
    }
    return q.Drain(ctx), nil
}

// Status returns the queue size and a detached copy of the pending
// operations; callers may mutate the copy freely.
func (q *Queue) Status() (int, []model.QueuedOperation) {
    q.mu.Lock()
    raw, _ := json.Marshal(q.ops)
    size := len(q.ops)
    q.mu.Unlock()
    var ops []model.QueuedOperation
    _ = json.Unmarshal(raw, &ops)
    return size, ops
}

// Clear empties the queue and removes the persisted snapshot. Store errors
// are logged, not surfaced; the in-memory queue is empty regardless.
func (q *Queue) Clear(ctx context.Context) {
    q.mu.Lock()
    q.ops = nil
    q.mu.Unlock()
    if err := q.store.Remove(ctx, kvstore.KeyOfflineQueue); err != nil {
        log.Printf("offline: clear persisted queue: %v", err)
    }
    metrics.QueueDepth.Set(0)
}

func (q *Queue) remove(id string) {
    q.mu.Lock()
    kept := q.ops[:0]
    for _, op := range q.ops {
        if op.ID != id {
            kept = append(kept, op)
        }
    }
    q.ops = kept
    q.mu.Unlock()
}

func (q *Queue) bumpRetry(id string) int {
    q.mu.Lock()
    defer q.mu.Unlock()
    for i := range q.ops {
        if q.ops[i].ID == id {
            q.ops[i].RetryCount++
            return q.ops[i].RetryCount
        }
    }
    return q.maxRetries
}

// persistLocked mirrors the full sequence to the store. Caller holds q.mu.
// Persistence failures degrade to in-memory-only operation.
func (q *Queue) persistLocked(ctx context.Context) {
    raw, err := json.Marshal(q.ops)
    if err != nil {
        log.Printf("offline: marshal queue: %v", err)
        return
    }
    if err := q.store.Set(ctx, kvstore.KeyOfflineQueue, string(raw)); err != nil {
        log.Printf("offline: persist queue: %v", err)
    }
}
