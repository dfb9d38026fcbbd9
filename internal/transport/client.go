package transport

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"
    "sync"
    "time"

    "initinere/internal/signing"
)

// APIError carries the HTTP status and the server's detail message for a
// failed call. StatusCode 0 means the request never reached the server.
type APIError struct {
    StatusCode int
    Detail     string
}

func (e *APIError) Error() string {
    if e.StatusCode == 0 {
        if e.Detail != "" { return "network error: " + e.Detail }
        return "network error"
    }
    if e.Detail != "" {
        return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
    }
    return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsNetwork reports whether the error is a transport-level failure rather
// than an API rejection.
func (e *APIError) IsNetwork() bool { return e.StatusCode == 0 }

// Client talks to the InItinere REST API. The bearer token is written only
// by the session manager; everything else holds a read-only handle.
type Client struct {
    base   string
    http   *http.Client
    secret string

    mu    sync.RWMutex
    token string
}

func NewClient(baseURL string) *Client {
    return &Client{
        base: strings.TrimRight(baseURL, "/"),
        http: &http.Client{Timeout: 30 * time.Second},
    }
}

// SetDeviceSecret enables HMAC signing of emergency report bodies.
func (c *Client) SetDeviceSecret(secret string) { c.secret = secret }

// SetAuthToken installs the bearer token attached to subsequent calls.
// Owned by the session manager.
func (c *Client) SetAuthToken(token string) {
    c.mu.Lock()
    c.token = token
    c.mu.Unlock()
}

// ClearAuthToken drops the bearer token.
func (c *Client) ClearAuthToken() { c.SetAuthToken("") }

// AuthToken returns the currently configured bearer token, if any.
func (c *Client) AuthToken() string {
    c.mu.RLock(); defer c.mu.RUnlock()
    return c.token
}

// Ping probes the API root with a short deadline. Used as the connectivity
// check before draining the offline queue.
func (c *Client) Ping(ctx context.Context) bool {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
    if err != nil { return false }
    resp, err := c.http.Do(req)
    if err != nil { return false }
    _ = resp.Body.Close()
    return resp.StatusCode < 500
}

type callOpts struct {
    idempotencyKey string
    sign           bool
}

// do performs one JSON round trip. out may be nil when the caller only cares
// about the status code.
func (c *Client) do(ctx context.Context, method, path string, in, out any, opts *callOpts) error {
    var body io.Reader
    var raw []byte
    if in != nil {
        b, err := json.Marshal(in)
        if err != nil { return &APIError{Detail: err.Error()} }
        raw = b
        body = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
    if err != nil { return &APIError{Detail: err.Error()} }
    req.Header.Set("Content-Type", "application/json")
    if tok := c.AuthToken(); tok != "" {
        req.Header.Set("Authorization", "Bearer "+tok)
    }
    if opts != nil {
        if opts.idempotencyKey != "" {
            req.Header.Set("X-Idempotency-Key", opts.idempotencyKey)
        }
        if opts.sign && c.secret != "" && raw != nil {
            req.Header.Set("X-Signature", signing.SignHMAC(c.secret, raw))
        }
    }
    resp, err := c.http.Do(req)
    if err != nil {
        return &APIError{Detail: err.Error()}
    }
    defer func() { _ = resp.Body.Close() }()
    data, _ := io.ReadAll(resp.Body)
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return &APIError{StatusCode: resp.StatusCode, Detail: extractDetail(data)}
    }
    if out != nil && len(data) > 0 {
        if err := json.Unmarshal(data, out); err != nil {
            return &APIError{StatusCode: resp.StatusCode, Detail: "malformed response: " + err.Error()}
        }
    }
    return nil
}

// extractDetail pulls FastAPI-style {"detail": "..."} out of an error body.
func extractDetail(body []byte) string {
    var e struct {
        Detail string `json:"detail"`
    }
    if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
        return e.Detail
    }
    return ""
}
