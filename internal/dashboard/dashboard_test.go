package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStatus() Status {
	return Status{
		RunID:          "run-1",
		PeerCount:      5,
		OverlayKind:    "star",
		Phase:          "transferring",
		ConfirmedCount: 3,
	}
}

func TestHandlePageServesHTML(t *testing.T) {
	d := New(testStatus)
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "run-1")
	require.Contains(t, rec.Body.String(), "transferring")
}

func TestHandlePageNotFoundForOtherPaths(t *testing.T) {
	d := New(testStatus)
	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, req)
	require.Equal(t, 404, rec.Code)
}

func TestHandleAPIStatusServesJSON(t *testing.T) {
	d := New(testStatus)
	req := httptest.NewRequest("GET", "/api/status", nil)
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var got Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "run-1", got.RunID)
	require.Equal(t, 5, got.PeerCount)
}

func TestSecurityHeadersPresent(t *testing.T) {
	d := New(testStatus)
	req := httptest.NewRequest("GET", "/api/status", nil)
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, req)

	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
