package transport

import (
    "context"
    "fmt"
    "net/url"
    "strconv"

    "initinere/internal/model"
)

func (c *Client) CreateTrip(ctx context.Context, in model.TripCreate) (model.Trip, error) {
    var out model.Trip
    err := c.do(ctx, "POST", "/trips", in, &out, nil)
    return out, err
}

// ListTrips returns the user's trip history, newest first. status filters by
// trip status when non-empty; limit <= 0 keeps the server default.
func (c *Client) ListTrips(ctx context.Context, status string, limit int) ([]model.Trip, error) {
    q := url.Values{}
    if status != "" {
        q.Set("status_filter", status)
    }
    if limit > 0 {
        q.Set("limit", strconv.Itoa(limit))
    }
    path := "/trips"
    if len(q) > 0 {
        path += "?" + q.Encode()
    }
    var out []model.Trip
    err := c.do(ctx, "GET", path, nil, &out, nil)
    return out, err
}

func (c *Client) ActiveTrip(ctx context.Context) (model.Trip, error) {
    var out model.Trip
    err := c.do(ctx, "GET", "/trips/active", nil, &out, nil)
    return out, err
}

func (c *Client) GetTrip(ctx context.Context, id string) (model.Trip, error) {
    var out model.Trip
    err := c.do(ctx, "GET", "/trips/"+id, nil, &out, nil)
    return out, err
}

// UpdateTripLocation posts one sample against the trip. idempotencyKey may be
// empty for live updates; queued replays always carry one.
func (c *Client) UpdateTripLocation(ctx context.Context, tripID string, sample model.LocationSample, idempotencyKey string) error {
    var opts *callOpts
    if idempotencyKey != "" {
        opts = &callOpts{idempotencyKey: idempotencyKey}
    }
    return c.do(ctx, "POST", "/trips/"+tripID+"/location", sample, nil, opts)
}

func (c *Client) CompleteTrip(ctx context.Context, tripID string, endLat, endLng float64) (model.Trip, error) {
    var out model.Trip
    path := fmt.Sprintf("/trips/%s/complete?end_latitude=%g&end_longitude=%g", tripID, endLat, endLng)
    err := c.do(ctx, "PUT", path, nil, &out, nil)
    return out, err
}

func (c *Client) SetTripEmergency(ctx context.Context, tripID string) error {
    return c.do(ctx, "PUT", "/trips/"+tripID+"/emergency", nil, nil, nil)
}
