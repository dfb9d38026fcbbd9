package location

import (
    "context"
    "errors"
    "time"
)

// Accuracy hint passed to the provider.
type Accuracy int

const (
    AccuracyBalanced Accuracy = iota
    AccuracyHigh
)

// Defaults mirror the tracking profile used by the mobile app.
const (
    DefaultMinInterval  = 10 * time.Second
    DefaultMinDistanceM = 50.0
    FixTimeout          = 15 * time.Second
    MaxCachedFixAge     = 10 * time.Second
)

// ErrPermissionDenied is returned when the user refuses location access.
// Never retried automatically; the caller decides whether to re-prompt.
var ErrPermissionDenied = errors.New("location permission denied")

// Fix is one raw position reading from the provider.
type Fix struct {
    Lat      float64
    Lng      float64
    Altitude *float64
    Accuracy *float64
    SpeedMps *float64
    TS       time.Time
}

// FixRequest bounds a single-fix acquisition.
type FixRequest struct {
    Accuracy     Accuracy
    Timeout      time.Duration
    MaxCachedAge time.Duration
}

// SubscribeOptions tune a continuous subscription.
type SubscribeOptions struct {
    Accuracy     Accuracy
    MinInterval  time.Duration
    MinDistanceM float64
}

// Subscription is a cancellable handle to a continuous fix stream.
type Subscription interface {
    Cancel()
}

// Provider is the platform location capability. Implementations must stop
// invoking onFix after Cancel returns, but the tracker tolerates, and
// discards, late deliveries anyway.
type Provider interface {
    RequestForeground(ctx context.Context) error
    RequestBackground(ctx context.Context) error
    CurrentFix(ctx context.Context, req FixRequest) (Fix, error)
    Subscribe(opts SubscribeOptions, onFix func(Fix)) (Subscription, error)
}
