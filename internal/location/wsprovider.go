package location

import (
    "context"
    "log"
    "sync"
    "time"

    "github.com/gorilla/websocket"
)

// WSProvider reads fixes from a WebSocket feed, e.g. a phone-side bridge or
// a gpsd websocket shim publishing JSON position messages. Distance/interval
// thinning happens client-side since the feed has no notion of either.
type WSProvider struct {
    URL string
}

type wsFix struct {
    Lat      float64  `json:"latitude"`
    Lng      float64  `json:"longitude"`
    Altitude *float64 `json:"altitude,omitempty"`
    Accuracy *float64 `json:"accuracy,omitempty"`
    SpeedMps *float64 `json:"speed,omitempty"`
    TS       string   `json:"timestamp,omitempty"`
}

// Feeds are headless hardware bridges; there is no permission prompt to raise.
func (p *WSProvider) RequestForeground(ctx context.Context) error { return nil }
func (p *WSProvider) RequestBackground(ctx context.Context) error { return nil }

// CurrentFix dials the feed and waits for the first message within the
// request timeout.
func (p *WSProvider) CurrentFix(ctx context.Context, req FixRequest) (Fix, error) {
    timeout := req.Timeout
    if timeout <= 0 {
        timeout = FixTimeout
    }
    ctx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()
    conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.URL, nil)
    if err != nil {
        return Fix{}, err
    }
    defer func() { _ = conn.Close() }()
    _ = conn.SetReadDeadline(time.Now().Add(timeout))
    var msg wsFix
    if err := conn.ReadJSON(&msg); err != nil {
        return Fix{}, err
    }
    return msg.fix(), nil
}

type wsSub struct {
    conn *websocket.Conn
    stop chan struct{}
    once sync.Once
}

func (s *wsSub) Cancel() {
    s.once.Do(func() {
        close(s.stop)
        _ = s.conn.Close()
    })
}

// Subscribe dials the feed and forwards every message that clears the
// interval/distance thresholds.
func (p *WSProvider) Subscribe(opts SubscribeOptions, onFix func(Fix)) (Subscription, error) {
    conn, _, err := websocket.DefaultDialer.Dial(p.URL, nil)
    if err != nil {
        return nil, err
    }
    sub := &wsSub{conn: conn, stop: make(chan struct{})}
    go func() {
        var last *Fix
        var lastAt time.Time
        for {
            var msg wsFix
            if err := conn.ReadJSON(&msg); err != nil {
                select {
                case <-sub.stop:
                default:
                    log.Printf("location: ws feed closed: %v", err)
                }
                return
            }
            fix := msg.fix()
            if last != nil {
                if opts.MinInterval > 0 && time.Since(lastAt) < opts.MinInterval {
                    continue
                }
                if opts.MinDistanceM > 0 &&
                    HaversineKm(last.Lat, last.Lng, fix.Lat, fix.Lng)*1000 < opts.MinDistanceM {
                    continue
                }
            }
            f := fix
            last = &f
            lastAt = time.Now()
            onFix(fix)
        }
    }()
    return sub, nil
}

func (m wsFix) fix() Fix {
    ts := time.Now().UTC()
    if m.TS != "" {
        if parsed, err := time.Parse(time.RFC3339, m.TS); err == nil {
            ts = parsed
        }
    }
    return Fix{Lat: m.Lat, Lng: m.Lng, Altitude: m.Altitude, Accuracy: m.Accuracy, SpeedMps: m.SpeedMps, TS: ts}
}
