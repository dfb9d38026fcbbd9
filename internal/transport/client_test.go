package transport

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "initinere/internal/model"
    "initinere/internal/signing"
)

func TestBearerAndContentTypeHeaders(t *testing.T) {
    var gotAuth, gotType string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotAuth = r.Header.Get("Authorization")
        gotType = r.Header.Get("Content-Type")
        _ = json.NewEncoder(w).Encode(model.User{ID: "u1"})
    }))
    defer srv.Close()

    c := NewClient(srv.URL)
    c.SetAuthToken("tok-1")
    if _, err := c.Me(context.Background()); err != nil {
        t.Fatalf("me: %v", err)
    }
    if gotAuth != "Bearer tok-1" || gotType != "application/json" {
        t.Fatalf("headers: auth=%q type=%q", gotAuth, gotType)
    }

    c.ClearAuthToken()
    _, _ = c.Me(context.Background())
    if gotAuth != "" {
        t.Fatalf("cleared token still sent: %q", gotAuth)
    }
}

func TestAPIErrorCarriesDetail(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(409)
        _ = json.NewEncoder(w).Encode(map[string]string{"detail": "trip already active"})
    }))
    defer srv.Close()

    c := NewClient(srv.URL)
    _, err := c.CreateTrip(context.Background(), model.TripCreate{})
    var apiErr *APIError
    if !errors.As(err, &apiErr) {
        t.Fatalf("want APIError, got %v", err)
    }
    if apiErr.StatusCode != 409 || apiErr.Detail != "trip already active" || apiErr.IsNetwork() {
        t.Fatalf("bad error: %+v", apiErr)
    }
}

func TestNetworkErrorHasNoStatus(t *testing.T) {
    c := NewClient("http://127.0.0.1:1")
    _, err := c.Me(context.Background())
    var apiErr *APIError
    if !errors.As(err, &apiErr) || !apiErr.IsNetwork() {
        t.Fatalf("want network APIError, got %v", err)
    }
}

func TestIdempotencyKeyHeader(t *testing.T) {
    var gotKey string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotKey = r.Header.Get("X-Idempotency-Key")
        w.WriteHeader(200)
    }))
    defer srv.Close()

    c := NewClient(srv.URL)
    err := c.UpdateTripLocation(context.Background(), "T1", model.LocationSample{Latitude: 1, Longitude: 2}, "key-abc")
    if err != nil {
        t.Fatalf("update: %v", err)
    }
    if gotKey != "key-abc" {
        t.Fatalf("idempotency key: got %q", gotKey)
    }

    // Live updates without a key must not send the header.
    _ = c.UpdateTripLocation(context.Background(), "T1", model.LocationSample{}, "")
    if gotKey != "" {
        t.Fatalf("unexpected idempotency key on live update: %q", gotKey)
    }
}

func TestListTripsQueryParams(t *testing.T) {
    var gotQuery string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotQuery = r.URL.RawQuery
        _ = json.NewEncoder(w).Encode([]model.Trip{{ID: "T1"}, {ID: "T2"}})
    }))
    defer srv.Close()

    c := NewClient(srv.URL)
    trips, err := c.ListTrips(context.Background(), model.TripCompleted, 5)
    if err != nil || len(trips) != 2 {
        t.Fatalf("list: %v %+v", err, trips)
    }
    if gotQuery != "limit=5&status_filter=completed" {
        t.Fatalf("query: %q", gotQuery)
    }

    // No filter, no query string.
    _, _ = c.ListTrips(context.Background(), "", 0)
    if gotQuery != "" {
        t.Fatalf("unexpected query: %q", gotQuery)
    }
}

func TestVehiclePreferenceQueryEscaped(t *testing.T) {
    var gotType string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotType = r.URL.Query().Get("vehicle_type")
        w.WriteHeader(200)
    }))
    defer srv.Close()

    c := NewClient(srv.URL)
    if err := c.UpdateVehiclePreference(context.Background(), "moto & carro"); err != nil {
        t.Fatalf("update: %v", err)
    }
    if gotType != "moto & carro" {
        t.Fatalf("vehicle type mangled: %q", gotType)
    }
}

func TestDashboardSummaries(t *testing.T) {
    mux := http.NewServeMux()
    mux.HandleFunc("/dashboard/weekly-stats", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode([]model.DayStats{
            {Day: "Dom", Trips: 2, DistanceKm: 12.5},
            {Day: "Lun"},
        })
    })
    mux.HandleFunc("/dashboard/monthly-summary", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(model.MonthlySummary{TotalTrips: 4, CompletedTrips: 3, CompletionRate: 75})
    })
    srv := httptest.NewServer(mux)
    defer srv.Close()

    c := NewClient(srv.URL)
    week, err := c.WeeklyStats(context.Background())
    if err != nil || len(week) != 2 || week[0].Trips != 2 {
        t.Fatalf("weekly: %v %+v", err, week)
    }
    month, err := c.MonthlySummary(context.Background())
    if err != nil || month.CompletionRate != 75 {
        t.Fatalf("monthly: %v %+v", err, month)
    }
}

func TestEmergencySignature(t *testing.T) {
    var gotSig string
    var gotBody []byte
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotSig = r.Header.Get("X-Signature")
        gotBody, _ = io.ReadAll(r.Body)
        w.WriteHeader(201)
        _ = json.NewEncoder(w).Encode(model.Emergency{ID: "e1", Status: "open"})
    }))
    defer srv.Close()

    c := NewClient(srv.URL)
    c.SetDeviceSecret("device-secret")
    em, err := c.ReportEmergency(context.Background(), model.EmergencyReport{Kind: "sos", Message: "help"})
    if err != nil || em.ID != "e1" {
        t.Fatalf("report: %v %+v", err, em)
    }
    if gotSig == "" || !signing.VerifyHMAC("device-secret", gotBody, gotSig) {
        t.Fatalf("signature missing or invalid: %q", gotSig)
    }
}
