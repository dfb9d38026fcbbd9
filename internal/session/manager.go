package session

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "sync"

    "initinere/internal/kvstore"
    "initinere/internal/model"
    "initinere/internal/transport"
)

// State of the authenticated-session lifecycle.
type State int

const (
    Uninitialized State = iota
    Restoring
    Authenticated
    Anonymous
)

func (s State) String() string {
    switch s {
    case Restoring:
        return "restoring"
    case Authenticated:
        return "authenticated"
    case Anonymous:
        return "anonymous"
    }
    return "uninitialized"
}

// Fallback messages when the server gives no detail.
const (
    genericLoginError    = "could not sign in"
    genericRegisterError = "could not register"
)

// Manager owns the auth token and current user. It is the sole writer of the
// transport's bearer token; token and user are always set or cleared together.
type Manager struct {
    store kvstore.Store
    api   *transport.Client

    mu    sync.Mutex
    state State
    token string
    user  *model.User
}

func NewManager(store kvstore.Store, api *transport.Client) *Manager {
    return &Manager{store: store, api: api, state: Uninitialized}
}

// Restore loads credentials from the store. Both token and a well-formed user
// must be present to come up authenticated; anything else (including store
// errors) leaves the session anonymous. Never returns an error to the caller.
func (m *Manager) Restore(ctx context.Context) {
    m.mu.Lock()
    m.state = Restoring
    m.mu.Unlock()

    token, errT := m.store.Get(ctx, kvstore.KeyToken)
    rawUser, errU := m.store.Get(ctx, kvstore.KeyUser)
    if errT != nil || errU != nil || token == "" {
        if errT != nil && !errors.Is(errT, kvstore.ErrNotFound) {
            log.Printf("session: restore token: %v", errT)
        }
        m.setAnonymous()
        return
    }
    var u model.User
    if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
        log.Printf("session: cached user malformed, starting anonymous: %v", err)
        m.setAnonymous()
        return
    }

    m.mu.Lock()
    m.token = token
    m.user = &u
    m.state = Authenticated
    m.mu.Unlock()
    m.api.SetAuthToken(token)
}

// Login authenticates against the API. On failure the session is untouched
// and the returned error message is what should be shown to the user.
func (m *Manager) Login(ctx context.Context, email, password string) error {
    resp, err := m.api.Login(ctx, email, password)
    if err != nil {
        return userFacing(err, genericLoginError)
    }
    m.adopt(ctx, resp)
    return nil
}

// Register creates an account and signs in with the returned token.
func (m *Manager) Register(ctx context.Context, reg model.Registration) error {
    resp, err := m.api.Register(ctx, reg)
    if err != nil {
        return userFacing(err, genericRegisterError)
    }
    m.adopt(ctx, resp)
    return nil
}

// adopt persists and installs a fresh token+user pair.
func (m *Manager) adopt(ctx context.Context, resp model.AuthResponse) {
    if err := m.store.Set(ctx, kvstore.KeyToken, resp.AccessToken); err != nil {
        log.Printf("session: persist token: %v", err)
    }
    if raw, err := json.Marshal(resp.User); err == nil {
        if err := m.store.Set(ctx, kvstore.KeyUser, string(raw)); err != nil {
            log.Printf("session: persist user: %v", err)
        }
    }
    u := resp.User
    m.mu.Lock()
    m.token = resp.AccessToken
    m.user = &u
    m.state = Authenticated
    m.mu.Unlock()
    m.api.SetAuthToken(resp.AccessToken)
}

// Logout clears the session. Store removal is best effort; in-memory state
// always reaches anonymous.
func (m *Manager) Logout(ctx context.Context) {
    if err := m.store.Remove(ctx, kvstore.KeyToken); err != nil {
        log.Printf("session: remove token: %v", err)
    }
    if err := m.store.Remove(ctx, kvstore.KeyUser); err != nil {
        log.Printf("session: remove user: %v", err)
    }
    m.setAnonymous()
}

// RefreshUser re-fetches /users/me. A failure (including 401) returns nil
// and leaves the session as it was, so a transient server hiccup never kicks
// the user out mid-trip.
func (m *Manager) RefreshUser(ctx context.Context) *model.User {
    u, err := m.api.Me(ctx)
    if err != nil {
        log.Printf("session: refresh user: %v", err)
        return nil
    }
    if raw, err := json.Marshal(u); err == nil {
        if err := m.store.Set(ctx, kvstore.KeyUser, string(raw)); err != nil {
            log.Printf("session: persist user: %v", err)
        }
    }
    m.mu.Lock()
    m.user = &u
    m.mu.Unlock()
    return &u
}

// SetVehiclePreference records the preferred vehicle type on the server and
// caches it locally for offline starts.
func (m *Manager) SetVehiclePreference(ctx context.Context, vehicleType string) error {
    if err := m.api.UpdateVehiclePreference(ctx, vehicleType); err != nil {
        return err
    }
    if err := m.store.Set(ctx, kvstore.KeyVehiclePreference, vehicleType); err != nil {
        log.Printf("session: persist vehicle preference: %v", err)
    }
    m.mu.Lock()
    if m.user != nil {
        m.user.VehiclePreference = vehicleType
    }
    m.mu.Unlock()
    return nil
}

func (m *Manager) setAnonymous() {
    m.mu.Lock()
    m.token = ""
    m.user = nil
    m.state = Anonymous
    m.mu.Unlock()
    m.api.ClearAuthToken()
}

func (m *Manager) State() State {
    m.mu.Lock(); defer m.mu.Unlock()
    return m.state
}

func (m *Manager) IsAuthenticated() bool { return m.State() == Authenticated }

// User returns a copy of the current user, or nil when anonymous.
func (m *Manager) User() *model.User {
    m.mu.Lock(); defer m.mu.Unlock()
    if m.user == nil {
        return nil
    }
    u := *m.user
    return &u
}

// userFacing maps a transport error to the message shown to the user: the
// server's detail when present, else the generic fallback.
func userFacing(err error, fallback string) error {
    var apiErr *transport.APIError
    if errors.As(err, &apiErr) && apiErr.Detail != "" && !apiErr.IsNetwork() {
        return errors.New(apiErr.Detail)
    }
    return errors.New(fallback)
}
