package agent

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/http"

    "github.com/prometheus/client_golang/prometheus/promhttp"

    "initinere/internal/buildinfo"
    "initinere/internal/location"
    "initinere/internal/metrics"
    "initinere/internal/model"
    "initinere/internal/offline"
    "initinere/internal/session"
    "initinere/internal/trip"
)

// Server exposes local diagnostics for the tracking agent: health, queue
// state, the active trip, a live SSE sample stream, and Prometheus metrics.
// It binds to loopback; it is not a product API.
type Server struct {
    Session    *session.Manager
    Controller *trip.Controller
    Queue      *offline.Queue
    Broker     *Broker

    // Tracking is passed to every started trip's subscription. Zero fields
    // fall back to the tracker defaults.
    Tracking location.SubscribeOptions
}

func NewServer(sess *session.Manager, ctl *trip.Controller, q *offline.Queue) *Server {
    metrics.RegisterDefault()
    return &Server{Session: sess, Controller: ctl, Queue: q, Broker: NewBroker()}
}

// Routes returns the diagnostics mux.
func (s *Server) Routes() *http.ServeMux {
    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", s.HealthHandler)
    mux.HandleFunc("/readyz", s.ReadyHandler)
    mux.HandleFunc("/v1/status", s.StatusHandler)
    mux.HandleFunc("/v1/queue", s.QueueHandler)
    mux.HandleFunc("/v1/queue/drain", s.DrainHandler)
    mux.HandleFunc("/v1/stream", s.StreamHandler)
    mux.HandleFunc("/v1/trips/start", s.TripStartHandler)
    mux.HandleFunc("/v1/trips/complete", s.TripCompleteHandler)
    mux.HandleFunc("/v1/sos", s.SOSHandler)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
    return mux
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]any{"status": "ready", "session": s.Session.State().String()})
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
    size, _ := s.Queue.Status()
    writeJSON(w, 200, map[string]any{
        "session":   s.Session.State().String(),
        "trip":      s.Controller.Status(),
        "queueSize": size,
    })
}

// QueueHandler returns the pending operations snapshot.
func (s *Server) QueueHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
        return
    }
    size, ops := s.Queue.Status()
    writeJSON(w, 200, map[string]any{"queueSize": size, "operations": ops})
}

// DrainHandler triggers one drain pass out of schedule.
func (s *Server) DrainHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
        return
    }
    res, err := s.Queue.SyncWhenOnline(r.Context())
    if err != nil {
        writeProblem(w, http.StatusServiceUnavailable, "offline", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, 200, res)
}

// TripStartHandler starts a trip and the tracking session.
func (s *Server) TripStartHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
        return
    }
    if !s.Session.IsAuthenticated() {
        writeProblem(w, http.StatusUnauthorized, "not signed in", "", r.URL.Path)
        return
    }
    var in model.TripCreate
    if r.Body != nil {
        _ = json.NewDecoder(r.Body).Decode(&in)
    }
    created, err := s.Controller.StartTrip(r.Context(), in, s.Tracking)
    if err != nil {
        status := http.StatusBadGateway
        if errors.Is(err, trip.ErrTripActive) {
            status = http.StatusConflict
        } else if errors.Is(err, location.ErrPermissionDenied) {
            status = http.StatusForbidden
        }
        writeProblem(w, status, "start trip failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusCreated, created)
}

// TripCompleteHandler closes the active trip.
func (s *Server) TripCompleteHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
        return
    }
    done, err := s.Controller.CompleteTrip(r.Context())
    if err != nil {
        status := http.StatusBadGateway
        if errors.Is(err, trip.ErrNoActiveTrip) {
            status = http.StatusConflict
        }
        writeProblem(w, status, "complete trip failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, 200, done)
}

// SOSHandler raises an emergency report.
func (s *Server) SOSHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
        return
    }
    var in struct {
        Message string `json:"message"`
    }
    if r.Body != nil {
        _ = json.NewDecoder(r.Body).Decode(&in)
    }
    em, err := s.Controller.SOS(r.Context(), in.Message)
    if err != nil {
        writeProblem(w, http.StatusBadGateway, "sos failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusCreated, em)
}

// StreamHandler streams accepted samples as server-sent events.
func (s *Server) StreamHandler(w http.ResponseWriter, r *http.Request) {
    flusher, ok := w.(http.Flusher)
    if !ok {
        writeProblem(w, http.StatusInternalServerError, "streaming unsupported", "", r.URL.Path)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.WriteHeader(200)

    ch := s.Broker.Subscribe()
    defer s.Broker.Unsubscribe(ch)

    for {
        select {
        case <-r.Context().Done():
            return
        case sample, open := <-ch:
            if !open {
                return
            }
            data, _ := json.Marshal(sample)
            fmt.Fprintf(w, "event: sample\ndata: %s\n\n", data)
            flusher.Flush()
        }
    }
}
