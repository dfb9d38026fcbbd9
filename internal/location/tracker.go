package location

import (
    "context"
    "sync"
    "time"

    "initinere/internal/model"
)

// Tracker bridges raw provider fixes to normalized samples for at most one
// logical trip at a time. Starting a new session tears down the previous
// subscription first, and fixes still in flight from a cancelled subscription
// are discarded by generation check.
type Tracker struct {
    provider Provider

    mu  sync.Mutex
    gen uint64
    sub Subscription

    // deliver serializes callback invocations so fix N+1 is never handled
    // before the handler for fix N returns.
    deliver sync.Mutex
}

func NewTracker(p Provider) *Tracker {
    return &Tracker{provider: p}
}

// GetCurrentLocation acquires a single high-accuracy fix, prompting for
// permission first when needed.
func (t *Tracker) GetCurrentLocation(ctx context.Context) (model.LocationSample, error) {
    if err := t.provider.RequestForeground(ctx); err != nil {
        return model.LocationSample{}, err
    }
    fix, err := t.provider.CurrentFix(ctx, FixRequest{
        Accuracy:     AccuracyHigh,
        Timeout:      FixTimeout,
        MaxCachedAge: MaxCachedFixAge,
    })
    if err != nil {
        return model.LocationSample{}, err
    }
    return normalize(fix), nil
}

// StartTracking subscribes to continuous updates and invokes callback once
// per qualifying fix. An already-active session is stopped first, so at most
// one subscription is ever live.
func (t *Tracker) StartTracking(ctx context.Context, callback func(model.LocationSample), opts SubscribeOptions) error {
    if err := t.provider.RequestForeground(ctx); err != nil {
        return err
    }
    if err := t.provider.RequestBackground(ctx); err != nil {
        return err
    }
    if opts.MinInterval <= 0 {
        opts.MinInterval = DefaultMinInterval
    }
    if opts.MinDistanceM <= 0 {
        opts.MinDistanceM = DefaultMinDistanceM
    }
    if opts.Accuracy == AccuracyBalanced {
        opts.Accuracy = AccuracyHigh
    }

    t.StopTracking()

    t.mu.Lock()
    t.gen++
    gen := t.gen
    t.mu.Unlock()

    sub, err := t.provider.Subscribe(opts, func(fix Fix) {
        t.deliver.Lock()
        defer t.deliver.Unlock()
        t.mu.Lock()
        live := t.gen == gen
        t.mu.Unlock()
        if !live {
            return
        }
        callback(normalize(fix))
    })
    if err != nil {
        return err
    }

    t.mu.Lock()
    t.sub = sub
    t.mu.Unlock()
    return nil
}

// StopTracking cancels the active subscription. Calling it when inactive is
// a no-op. After it returns, no further callbacks are delivered for the old
// subscription even if a fix was already in flight.
func (t *Tracker) StopTracking() {
    t.mu.Lock()
    sub := t.sub
    t.sub = nil
    t.gen++
    t.mu.Unlock()
    if sub != nil {
        sub.Cancel()
    }
    // Wait out any in-flight delivery so callers observe a quiesced session.
    t.deliver.Lock()
    t.deliver.Unlock()
}

// Active reports whether a subscription is currently live.
func (t *Tracker) Active() bool {
    t.mu.Lock(); defer t.mu.Unlock()
    return t.sub != nil
}

func normalize(fix Fix) model.LocationSample {
    ts := fix.TS
    if ts.IsZero() {
        ts = time.Now().UTC()
    }
    return model.LocationSample{
        Latitude:   fix.Lat,
        Longitude:  fix.Lng,
        Altitude:   fix.Altitude,
        Accuracy:   fix.Accuracy,
        SpeedMps:   fix.SpeedMps,
        CapturedAt: ts,
    }
}
