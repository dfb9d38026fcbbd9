package trip

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"
    "golang.org/x/time/rate"

    "initinere/internal/location"
    "initinere/internal/metrics"
    "initinere/internal/model"
    "initinere/internal/offline"
    "initinere/internal/transport"
)

var (
    ErrTripActive   = errors.New("a trip is already in progress")
    ErrNoActiveTrip = errors.New("no trip in progress")
)

// Controller drives one trip at a time: start it on the server, feed tracked
// samples through the transport, fall back to the offline queue when a live
// update cannot be delivered, and accumulate distance along the way.
type Controller struct {
    api     *transport.Client
    tracker *location.Tracker
    queue   *offline.Queue
    limiter *rate.Limiter

    // OnSample, when set, observes every accepted sample (the agent feeds
    // its SSE stream with it). Must not block.
    OnSample func(model.LocationSample)

    mu         sync.Mutex
    trip       *model.Trip
    last       *model.LocationSample
    distanceKm float64
}

// NewController wires the replay handler for queued location updates into
// the queue's dispatch table.
func NewController(api *transport.Client, tracker *location.Tracker, queue *offline.Queue) *Controller {
    c := &Controller{
        api:     api,
        tracker: tracker,
        queue:   queue,
        // Live updates are capped at one per second with a small burst;
        // anything above that is deferred through the queue.
        limiter: rate.NewLimiter(rate.Every(time.Second), 3),
    }
    queue.Handle(model.OpTripLocationUpdate, c.replayLocationUpdate)
    return c
}

// StartTrip creates the trip on the server from the current fix and starts
// the tracking session. At most one trip may be in progress.
func (c *Controller) StartTrip(ctx context.Context, in model.TripCreate, opts location.SubscribeOptions) (model.Trip, error) {
    c.mu.Lock()
    if c.trip != nil {
        c.mu.Unlock()
        return model.Trip{}, ErrTripActive
    }
    c.mu.Unlock()

    start, err := c.tracker.GetCurrentLocation(ctx)
    if err != nil {
        return model.Trip{}, err
    }
    in.StartLat = start.Latitude
    in.StartLng = start.Longitude

    created, err := c.api.CreateTrip(ctx, in)
    if err != nil {
        return model.Trip{}, err
    }

    c.mu.Lock()
    c.trip = &created
    c.last = &start
    c.distanceKm = 0
    c.mu.Unlock()

    if err := c.tracker.StartTracking(ctx, c.handleSample, opts); err != nil {
        c.mu.Lock()
        c.trip = nil
        c.last = nil
        c.mu.Unlock()
        return model.Trip{}, err
    }
    return created, nil
}

// handleSample runs serialized by the tracker, one fix at a time.
func (c *Controller) handleSample(sample model.LocationSample) {
    c.mu.Lock()
    trip := c.trip
    if trip == nil {
        c.mu.Unlock()
        return
    }
    if c.last != nil {
        c.distanceKm += location.HaversineKm(c.last.Latitude, c.last.Longitude, sample.Latitude, sample.Longitude)
    }
    s := sample
    c.last = &s
    tripID := trip.ID
    c.mu.Unlock()

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    if !c.limiter.Allow() {
        // Over the live-update budget; defer through the queue instead of
        // hammering the API.
        c.enqueueSample(ctx, tripID, sample)
        return
    }
    start := time.Now()
    err := c.api.UpdateTripLocation(ctx, tripID, sample, "")
    metrics.UpdateLatency.Observe(float64(time.Since(start).Milliseconds()))
    if err != nil {
        log.Printf("trip: live update failed, queueing: %v", err)
        c.enqueueSample(ctx, tripID, sample)
        return
    }
    metrics.Samples.WithLabelValues("delivered").Inc()
    if c.OnSample != nil {
        c.OnSample(sample)
    }
}

func (c *Controller) enqueueSample(ctx context.Context, tripID string, sample model.LocationSample) {
    raw, err := json.Marshal(sample)
    if err != nil {
        metrics.Samples.WithLabelValues("dropped").Inc()
        return
    }
    var payload map[string]any
    _ = json.Unmarshal(raw, &payload)
    c.queue.Enqueue(ctx, model.OpTripLocationUpdate, map[string]any{
        "tripId": tripID,
        "sample": payload,
    })
    metrics.Samples.WithLabelValues("queued").Inc()
    if c.OnSample != nil {
        c.OnSample(sample)
    }
}

// replayLocationUpdate is the queue dispatcher for TRIP_LOCATION_UPDATE.
func (c *Controller) replayLocationUpdate(ctx context.Context, op model.QueuedOperation) error {
    tripID, _ := op.Payload["tripId"].(string)
    if tripID == "" {
        return errors.New("payload missing tripId")
    }
    raw, err := json.Marshal(op.Payload["sample"])
    if err != nil {
        return err
    }
    var sample model.LocationSample
    if err := json.Unmarshal(raw, &sample); err != nil {
        return err
    }
    return c.api.UpdateTripLocation(ctx, tripID, sample, op.IdempotencyKey)
}

// CompleteTrip stops tracking and closes the trip at the last known
// position, then drains whatever the trip left behind in the queue.
func (c *Controller) CompleteTrip(ctx context.Context) (model.Trip, error) {
    c.mu.Lock()
    trip := c.trip
    last := c.last
    c.mu.Unlock()
    if trip == nil {
        return model.Trip{}, ErrNoActiveTrip
    }

    c.tracker.StopTracking()

    endLat, endLng := 0.0, 0.0
    if last != nil {
        endLat, endLng = last.Latitude, last.Longitude
    }
    done, err := c.api.CompleteTrip(ctx, trip.ID, endLat, endLng)
    if err != nil {
        return model.Trip{}, err
    }

    c.mu.Lock()
    c.trip = nil
    c.last = nil
    c.mu.Unlock()

    if _, err := c.queue.SyncWhenOnline(ctx); err != nil {
        log.Printf("trip: post-trip sync skipped: %v", err)
    }
    return done, nil
}

// SOS flags the active trip as an emergency and files an emergency report
// with the freshest position available. The report carries a client
// reference so a duplicate submission can be collapsed server-side.
func (c *Controller) SOS(ctx context.Context, message string) (model.Emergency, error) {
    c.mu.Lock()
    trip := c.trip
    last := c.last
    c.mu.Unlock()

    var tripID string
    if trip != nil {
        tripID = trip.ID
        if err := c.api.SetTripEmergency(ctx, tripID); err != nil {
            log.Printf("trip: flag emergency: %v", err)
        }
    }
    loc := last
    if fresh, err := c.tracker.GetCurrentLocation(ctx); err == nil {
        loc = &fresh
    }
    return c.api.ReportEmergency(ctx, model.EmergencyReport{
        TripID:    tripID,
        Kind:      "sos",
        Message:   message,
        Location:  loc,
        ClientRef: uuid.NewString(),
    })
}

// Status is a point-in-time view of the controller.
type Status struct {
    Trip       *model.Trip          `json:"trip,omitempty"`
    DistanceKm float64              `json:"distanceKm"`
    Tracking   bool                 `json:"tracking"`
    LastSample *model.LocationSample `json:"lastSample,omitempty"`
}

func (c *Controller) Status() Status {
    c.mu.Lock(); defer c.mu.Unlock()
    st := Status{DistanceKm: c.distanceKm, Tracking: c.tracker.Active()}
    if c.trip != nil {
        t := *c.trip
        st.Trip = &t
    }
    if c.last != nil {
        s := *c.last
        st.LastSample = &s
    }
    return st
}
