package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestModeString(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeOnline, "online"},
		{ModeOffline, "offline"},
		{Mode(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.expected {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.expected)
		}
	}
}

func TestNewMonitorDefaults(t *testing.T) {
	logger := zap.NewNop()
	m := NewMonitor(nil, logger)

	if m.checkInterval != 2*time.Second {
		t.Errorf("expected default checkInterval 2s, got %v", m.checkInterval)
	}
	if m.checkTimeout != 2*time.Second {
		t.Errorf("expected default checkTimeout 2s, got %v", m.checkTimeout)
	}
	if m.GetMode() != ModeOffline {
		t.Errorf("expected default mode ModeOffline, got %v", m.GetMode())
	}
}

func TestCheckConnectivityOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := zap.NewNop()
	m := NewMonitor(&Config{
		CheckURL:     server.URL,
		CheckTimeout: 5 * time.Second,
	}, logger)

	ctx := context.Background()
	mode := m.checkConnectivity(ctx)
	if mode != ModeOnline {
		t.Errorf("expected ModeOnline when server is reachable, got %v", mode)
	}
}

func TestCheckConnectivityOffline(t *testing.T) {
	logger := zap.NewNop()
	m := NewMonitor(&Config{
		CheckURL:     "http://localhost:1",
		CheckTimeout: 1 * time.Second,
	}, logger)

	ctx := context.Background()
	mode := m.checkConnectivity(ctx)
	if mode != ModeOffline {
		t.Errorf("expected ModeOffline when server is unreachable, got %v", mode)
	}
}

func TestForceMode(t *testing.T) {
	logger := zap.NewNop()
	var oldMode, newMode Mode
	modeChanged := false

	m := NewMonitor(&Config{
		OnModeChange: func(old, new Mode) {
			oldMode = old
			newMode = new
			modeChanged = true
		},
	}, logger)

	m.ForceMode(ModeOnline)

	if !modeChanged {
		t.Error("expected OnModeChange to be called")
	}
	if oldMode != ModeOffline {
		t.Errorf("expected old mode ModeOffline, got %v", oldMode)
	}
	if newMode != ModeOnline {
		t.Errorf("expected new mode ModeOnline, got %v", newMode)
	}
	if m.GetMode() != ModeOnline {
		t.Errorf("expected current mode ModeOnline, got %v", m.GetMode())
	}
}

func TestModeChangeCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	logger := zap.NewNop()
	modeChanges := make([]Mode, 0)

	m := NewMonitor(&Config{
		CheckURL:     server.URL,
		CheckTimeout: 1 * time.Second,
		OnModeChange: func(old, new Mode) {
			modeChanges = append(modeChanges, new)
		},
	}, logger)

	ctx := context.Background()

	m.checkAndUpdate(ctx)
	if m.GetMode() != ModeOnline {
		t.Errorf("expected ModeOnline initially, got %v", m.GetMode())
	}

	server.Close()

	m.checkAndUpdate(ctx)
	if m.GetMode() != ModeOffline {
		t.Errorf("expected ModeOffline after server close, got %v", m.GetMode())
	}

	if len(modeChanges) != 2 {
		t.Errorf("expected 2 mode changes, got %d", len(modeChanges))
	}
}

func TestWaitUntilOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMonitor(&Config{CheckURL: server.URL, CheckInterval: 10 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.WaitUntilOnline(ctx); err != nil {
		t.Fatalf("expected WaitUntilOnline to succeed, got %v", err)
	}
}
