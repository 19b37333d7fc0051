// Package dashboard provides a minimal web status page for an in-flight
// harness run.
package dashboard

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

// Status is the current state of a run, refreshed by the caller as the
// orchestrator and validator make progress.
type Status struct {
	RunID          string `json:"run_id"`
	PeerCount      int    `json:"peer_count"`
	OverlayKind    string `json:"overlay_kind"`
	Phase          string `json:"phase"` // "sampling", "planning", "building", "transferring", "validating", "done"
	ConfirmedCount int    `json:"confirmed_count"`
	ValidatedEdges int    `json:"validated_edges"`
	FailedEdges    int    `json:"failed_edges"`
	Elapsed        string `json:"elapsed"`
	Err            string `json:"error,omitempty"`
}

// StatusProvider returns the current status snapshot.
type StatusProvider func() Status

// Dashboard serves a single run's status as both an HTML page and a JSON
// API.
type Dashboard struct {
	template  *template.Template
	getStatus StatusProvider
	startTime time.Time
}

// New creates a Dashboard backed by the given status provider.
func New(statusProvider StatusProvider) *Dashboard {
	return &Dashboard{
		template:  template.Must(template.New("dashboard").Parse(pageTemplate)),
		getStatus: statusProvider,
		startTime: time.Now(),
	}
}

// Handler returns the HTTP handler serving "/" (HTML) and "/api/status"
// (JSON), wrapped with a restrictive CSP.
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handlePage)
	mux.HandleFunc("/api/status", d.handleAPIStatus)
	return securityHeadersMiddleware(mux)
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'; script-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

type pageData struct {
	Status
	Nonce string
}

func (d *Dashboard) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	status := d.getStatus()
	status.Elapsed = time.Since(d.startTime).Round(time.Second).String()

	nonce := generateNonce()
	w.Header().Set("Content-Security-Policy",
		fmt.Sprintf("default-src 'self'; style-src 'unsafe-inline'; script-src 'nonce-%s'; frame-ancestors 'none'", nonce))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := d.template.Execute(w, pageData{Status: status, Nonce: nonce}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (d *Dashboard) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	status := d.getStatus()
	status.Elapsed = time.Since(d.startTime).Round(time.Second).String()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}

func generateNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head><title>lecturebench run {{.RunID}}</title></head>
<body>
  <h1>Run {{.RunID}}</h1>
  <p>Phase: {{.Phase}} ({{.Elapsed}} elapsed)</p>
  <p>Peers: {{.PeerCount}} ({{.OverlayKind}})</p>
  <p>Confirmed: {{.ConfirmedCount}}</p>
  <p>Validated edges: {{.ValidatedEdges}}, failed: {{.FailedEdges}}</p>
  {{if .Err}}<p style="color:red">Error: {{.Err}}</p>{{end}}
</body>
</html>
`
