package model

import "time"

// Core domain types shared by the client packages.

// User is the account record returned by the API.
type User struct {
    ID                string `json:"id"`
    FullName          string `json:"full_name"`
    Email             string `json:"email"`
    Phone             string `json:"phone,omitempty"`
    EmergencyContact  string `json:"emergency_contact,omitempty"`
    EmergencyPhone    string `json:"emergency_phone,omitempty"`
    VehiclePreference string `json:"vehicle_preference,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

// Registration carries the fields sent to /auth/register.
type Registration struct {
    FullName         string `json:"full_name"`
    Email            string `json:"email"`
    Password         string `json:"password"`
    Phone            string `json:"phone,omitempty"`
    EmergencyContact string `json:"emergency_contact,omitempty"`
    EmergencyPhone   string `json:"emergency_phone,omitempty"`
}

// AuthResponse is the success payload of login/register.
type AuthResponse struct {
    AccessToken string `json:"access_token"`
    User        User   `json:"user"`
}

// LocationSample is one normalized GPS fix. Immutable once created.
type LocationSample struct {
    Latitude   float64   `json:"latitude"`
    Longitude  float64   `json:"longitude"`
    Altitude   *float64  `json:"altitude,omitempty"`
    Accuracy   *float64  `json:"accuracy,omitempty"`
    SpeedMps   *float64  `json:"speed,omitempty"`
    CapturedAt time.Time `json:"timestamp"`
}

// Trip statuses as reported by the API.
const (
    TripNotStarted = "not_started"
    TripInProgress = "in_progress"
    TripCompleted  = "completed"
    TripEmergency  = "emergency"
    TripCancelled  = "cancelled"
)

// TripCreate is the request body for starting a trip.
type TripCreate struct {
    VehicleID     string  `json:"vehicle_id,omitempty"`
    VehicleType   string  `json:"vehicle_type,omitempty"`
    SafetyCheckID string  `json:"safety_check_id,omitempty"`
    Origin        string  `json:"origin,omitempty"`
    Destination   string  `json:"destination,omitempty"`
    StartLat      float64 `json:"start_latitude"`
    StartLng      float64 `json:"start_longitude"`
}

// Trip is the trip record returned by the API.
type Trip struct {
    ID          string     `json:"id"`
    UserID      string     `json:"user_id"`
    VehicleID   string     `json:"vehicle_id,omitempty"`
    Status      string     `json:"status"`
    Origin      string     `json:"origin,omitempty"`
    Destination string     `json:"destination,omitempty"`
    DistanceKm  float64    `json:"distance_km,omitempty"`
    StartedAt   time.Time  `json:"started_at"`
    CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Vehicle is a registered vehicle.
type Vehicle struct {
    ID     string `json:"id"`
    Type   string `json:"vehicle_type"`
    Plate  string `json:"plate,omitempty"`
    Model  string `json:"model,omitempty"`
    Active bool   `json:"is_active"`
}

// SafetyCheckItem is one checklist entry of a pre-trip inspection.
type SafetyCheckItem struct {
    ID      string `json:"id"`
    Name    string `json:"name"`
    Checked bool   `json:"checked"`
}

// SafetyCheck is a pre-trip inspection record.
type SafetyCheck struct {
    ID        string            `json:"id"`
    VehicleID string            `json:"vehicle_id,omitempty"`
    Items     []SafetyCheckItem `json:"items"`
    Approved  bool              `json:"approved"`
    CreatedAt time.Time         `json:"created_at"`
}

// EmergencyReport is the body of POST /emergencies.
type EmergencyReport struct {
    TripID    string          `json:"trip_id,omitempty"`
    Kind      string          `json:"kind,omitempty"`
    Message   string          `json:"message,omitempty"`
    Location  *LocationSample `json:"location,omitempty"`
    ClientRef string          `json:"client_ref,omitempty"`
}

// Emergency is an emergency record returned by the API.
type Emergency struct {
    ID         string     `json:"id"`
    TripID     string     `json:"trip_id,omitempty"`
    Status     string     `json:"status"`
    CreatedAt  time.Time  `json:"created_at"`
    ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// EmergencyContact is a public emergency phone number.
type EmergencyContact struct {
    ID    string `json:"id"`
    Name  string `json:"name"`
    Phone string `json:"phone"`
}

// Operation kinds understood by the offline queue dispatcher.
const (
    OpTripLocationUpdate = "TRIP_LOCATION_UPDATE"
)

// QueuedOperation is a pending retryable side effect owned by the offline
// queue. IdempotencyKey is client-generated and sent on every replay so the
// server can deduplicate a success whose response was lost in transit.
type QueuedOperation struct {
    ID             string         `json:"id"`
    Kind           string         `json:"kind"`
    Payload        map[string]any `json:"payload"`
    IdempotencyKey string         `json:"idempotencyKey"`
    EnqueuedAt     time.Time      `json:"enqueuedAt"`
    RetryCount     int            `json:"retryCount"`
}

// DashboardStats is the aggregate returned by GET /dashboard.
type DashboardStats struct {
    TotalTrips      int     `json:"total_trips"`
    TotalDistanceKm float64 `json:"total_distance_km"`
    ActiveTrips     int     `json:"active_trips"`
    Emergencies     int     `json:"emergencies"`
}

// DayStats is one row of GET /dashboard/weekly-stats, Sunday first.
type DayStats struct {
    Day             string  `json:"day"`
    Trips           int     `json:"trips"`
    DistanceKm      float64 `json:"distance_km"`
    DurationMinutes float64 `json:"duration_minutes"`
}

// MonthlySummary aggregates the current calendar month.
type MonthlySummary struct {
    TotalTrips     int     `json:"total_trips"`
    CompletedTrips int     `json:"completed_trips"`
    TotalDistance  float64 `json:"total_distance"`
    TotalDuration  float64 `json:"total_duration"`
    Emergencies    int     `json:"emergencies"`
    CompletionRate float64 `json:"completion_rate"`
}
