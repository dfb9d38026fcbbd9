package location

import (
    "context"
    "errors"
    "testing"

    "initinere/internal/model"
)

func TestSimProviderDeniedForeground(t *testing.T) {
    tr := NewTracker(&SimProvider{DenyForeground: true})
    if _, err := tr.GetCurrentLocation(context.Background()); !errors.Is(err, ErrPermissionDenied) {
        t.Fatalf("want permission error, got %v", err)
    }
    err := tr.StartTracking(context.Background(), func(model.LocationSample) {}, SubscribeOptions{})
    if !errors.Is(err, ErrPermissionDenied) {
        t.Fatalf("want permission error, got %v", err)
    }
}

func TestSimProviderDeniedBackground(t *testing.T) {
    p := &SimProvider{DenyBackground: true}
    tr := NewTracker(p)

    // A single fix only needs foreground access.
    if _, err := tr.GetCurrentLocation(context.Background()); err != nil {
        t.Fatalf("current fix: %v", err)
    }

    err := tr.StartTracking(context.Background(), func(model.LocationSample) {}, SubscribeOptions{})
    if !errors.Is(err, ErrPermissionDenied) {
        t.Fatalf("want permission error, got %v", err)
    }
    if tr.Active() {
        t.Fatalf("denied start left a subscription")
    }
}
