package fabric

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clintcan/lecturebench/internal/ratelimit"
)

// LocalRuntime is the reference Runtime used for local runs and tests: it
// doesn't create network namespaces, it just hands out an in-process
// Endpoint handle per name. A real Runtime implementation would shell out
// to the container/namespace system.
type LocalRuntime struct {
	mu        sync.Mutex
	endpoints map[string]Endpoint
}

// NewLocalRuntime builds an empty LocalRuntime.
func NewLocalRuntime() *LocalRuntime {
	return &LocalRuntime{endpoints: make(map[string]Endpoint)}
}

func (r *LocalRuntime) CreateEndpoint(ctx context.Context, spec EndpointSpec) (Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep := Endpoint{Name: spec.Name, IP: spec.Node.MgmtIP4}
	r.endpoints[spec.Name] = ep
	return ep, nil
}

func (r *LocalRuntime) Teardown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = make(map[string]Endpoint)
	return nil
}

// RateLimitShaper is the reference ShapingDriver, built on
// internal/ratelimit (golang.org/x/time/rate token buckets) plus an
// injected sleep standing in for netem's latency discipline. It never
// touches a real interface; transfer code that wants shaping applied
// fetches the per-edge Limiter/latency pair through Shaper.
type RateLimitShaper struct {
	mu      sync.Mutex
	limits  map[string]*ratelimit.Limiter
	latency map[string]time.Duration
	ready   map[string]bool
}

// NewRateLimitShaper builds an empty RateLimitShaper.
func NewRateLimitShaper() *RateLimitShaper {
	return &RateLimitShaper{
		limits:  make(map[string]*ratelimit.Limiter),
		latency: make(map[string]time.Duration),
		ready:   make(map[string]bool),
	}
}

func (s *RateLimitShaper) Apply(ctx context.Context, ep Endpoint, rules []ShapingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rule := range rules {
		key := shapingKey(ep.Name, rule.TargetIP)
		s.limits[key] = ratelimit.New(int64(rule.BandwidthKbit) * 1000 / 8)
		s.latency[key] = time.Duration(rule.LatencyMS * float64(time.Millisecond))
	}
	s.ready[ep.Name] = true
	return nil
}

func (s *RateLimitShaper) AwaitComplete(ctx context.Context, ep Endpoint) error {
	for {
		s.mu.Lock()
		ready := s.ready[ep.Name]
		s.mu.Unlock()
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// ForEdge returns the limiter and injected latency configured for a
// sender/targetIP pair, for the reference transfer driver to apply.
func (s *RateLimitShaper) ForEdge(senderName, targetIP string) (*ratelimit.Limiter, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := shapingKey(senderName, targetIP)
	l, ok := s.limits[key]
	if !ok {
		return nil, 0, false
	}
	return l, s.latency[key], true
}

func shapingKey(senderName, targetIP string) string {
	return fmt.Sprintf("%s->%s", senderName, targetIP)
}
