package main

import (
    "context"
    "flag"
    "log"
    "net/http"
    "os"
    "time"

    "initinere/internal/agent"
    "initinere/internal/config"
    "initinere/internal/kvstore"
    "initinere/internal/location"
    "initinere/internal/offline"
    "initinere/internal/session"
    "initinere/internal/transport"
    "initinere/internal/trip"
)

func main() {
    cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to YAML config")
    flag.Parse()

    cfg, err := config.Load(*cfgPath)
    if err != nil {
        log.Fatalf("failed to load config: %v", err)
    }

    store, err := kvstore.Open()
    if err != nil {
        log.Fatalf("failed to open state store: %v", err)
    }
    defer func() { _ = store.Close() }()

    api := transport.NewClient(cfg.APIBaseURL)
    if cfg.DeviceSecret != "" {
        api.SetDeviceSecret(cfg.DeviceSecret)
    }

    sess := session.NewManager(store, api)
    sess.Restore(context.Background())
    log.Printf("session restored: %s", sess.State())

    if !sess.IsAuthenticated() {
        email, password := os.Getenv("AGENT_EMAIL"), os.Getenv("AGENT_PASSWORD")
        if email != "" && password != "" {
            if err := sess.Login(context.Background(), email, password); err != nil {
                log.Printf("login failed: %v", err)
            } else {
                log.Printf("signed in as %s", email)
            }
        }
    }

    queue := offline.New(store, api.Ping)
    if cfg.MaxRetries > 0 {
        queue.SetMaxRetries(cfg.MaxRetries)
    }
    st := queue.Initialize(context.Background())
    log.Printf("offline queue loaded: %d pending, connected=%v", st.QueueSize, st.IsConnected)

    tracker := location.NewTracker(newProvider(cfg.Provider))
    ctl := trip.NewController(api, tracker, queue)

    srv := agent.NewServer(sess, ctl, queue)
    srv.Tracking = location.SubscribeOptions{
        MinInterval:  time.Duration(cfg.Tracking.MinIntervalMs) * time.Millisecond,
        MinDistanceM: cfg.Tracking.MinDistanceM,
    }
    ctl.OnSample = srv.Broker.Publish

    // Drain loop: replay queued operations whenever connectivity allows.
    stop := make(chan struct{})
    go func() {
        ticker := time.NewTicker(cfg.DrainInterval())
        defer ticker.Stop()
        for {
            select {
            case <-stop:
                return
            case <-ticker.C:
                res, err := queue.SyncWhenOnline(context.Background())
                if err != nil {
                    continue
                }
                if res.Processed > 0 {
                    log.Printf("drained %d queued operations", res.Processed)
                }
            }
        }
    }()
    defer close(stop)

    httpSrv := &http.Server{
        Addr:              cfg.ListenAddr,
        Handler:           logMiddleware(srv.Routes()),
        ReadHeaderTimeout: 5 * time.Second,
    }
    log.Printf("agent listening on %s", cfg.ListenAddr)
    if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatalf("server error: %v", err)
    }
}

func newProvider(cfg config.ProviderConfig) location.Provider {
    if cfg.Kind == "ws" && cfg.FeedURL != "" {
        return &location.WSProvider{URL: cfg.FeedURL}
    }
    interval := time.Duration(cfg.SimIntervalMs) * time.Millisecond
    // Default demo route: a short loop so tracking has something to chew on.
    return &location.SimProvider{
        Interval: interval,
        Route: []location.Fix{
            {Lat: 4.6097, Lng: -74.0817},
            {Lat: 4.6105, Lng: -74.0808},
            {Lat: 4.6113, Lng: -74.0799},
            {Lat: 4.6121, Lng: -74.0790},
        },
    }
}

func logMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        next.ServeHTTP(w, r)
        dur := time.Since(start)
        log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
    })
}
