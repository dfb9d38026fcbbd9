package location

import (
    "context"
    "sync"
    "time"
)

// SimProvider replays a fixed route at a configurable cadence. Used by the
// agent's demo mode and by tests; it never prompts for permissions.
type SimProvider struct {
    Route    []Fix
    Interval time.Duration

    // DenyForeground/DenyBackground simulate a refused permission prompt.
    DenyForeground bool
    DenyBackground bool
}

func (p *SimProvider) RequestForeground(ctx context.Context) error {
    if p.DenyForeground {
        return ErrPermissionDenied
    }
    return nil
}

func (p *SimProvider) RequestBackground(ctx context.Context) error {
    if p.DenyBackground {
        return ErrPermissionDenied
    }
    return nil
}

func (p *SimProvider) CurrentFix(ctx context.Context, req FixRequest) (Fix, error) {
    if len(p.Route) == 0 {
        return Fix{TS: time.Now().UTC()}, nil
    }
    fix := p.Route[0]
    if fix.TS.IsZero() {
        fix.TS = time.Now().UTC()
    }
    return fix, nil
}

type simSub struct {
    stop chan struct{}
    once sync.Once
}

func (s *simSub) Cancel() { s.once.Do(func() { close(s.stop) }) }

func (p *SimProvider) Subscribe(opts SubscribeOptions, onFix func(Fix)) (Subscription, error) {
    interval := p.Interval
    if interval <= 0 {
        interval = opts.MinInterval
    }
    sub := &simSub{stop: make(chan struct{})}
    go func() {
        ticker := time.NewTicker(interval)
        defer ticker.Stop()
        i := 0
        for {
            select {
            case <-sub.stop:
                return
            case <-ticker.C:
                if len(p.Route) == 0 {
                    continue
                }
                fix := p.Route[i%len(p.Route)]
                if fix.TS.IsZero() {
                    fix.TS = time.Now().UTC()
                }
                i++
                onFix(fix)
            }
        }
    }()
    return sub, nil
}
