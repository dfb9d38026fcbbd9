package agent

import (
    "encoding/json"
    "net/http"
)

// Problem is an RFC7807 problem details body used for diagnostics errors.
type Problem struct {
    Type   string `json:"type"`
    Title  string `json:"title"`
    Status int    `json:"status"`
    Detail string `json:"detail,omitempty"`
    Path   string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, path string) {
    writeJSON(w, status, Problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Path: path})
}
