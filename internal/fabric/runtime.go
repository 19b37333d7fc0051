package fabric

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// EndpointSpec is what the Runtime collaborator needs to materialize one
// endpoint.
type EndpointSpec struct {
	Name string
	Node Node
}

// Endpoint is a live, running endpoint handle.
type Endpoint struct {
	Name string
	IP   string
}

// ShapingRule is one per-edge traffic-control rule the ShapingDriver must
// apply to the sending side of a link (spec.md §4.3's shaping script
// contract).
type ShapingRule struct {
	Iface         string
	TargetIP      string
	LatencyMS     float64
	LossPercent   float64
	BandwidthKbit int
}

// Runtime is the out-of-scope container-runtime collaborator: it provides
// isolated network namespaces and command execution.
type Runtime interface {
	CreateEndpoint(ctx context.Context, spec EndpointSpec) (Endpoint, error)
	Teardown(ctx context.Context) error
}

// ShapingDriver is the out-of-scope traffic-control collaborator.
type ShapingDriver interface {
	Apply(ctx context.Context, ep Endpoint, rules []ShapingRule) error
	AwaitComplete(ctx context.Context, ep Endpoint) error
}

// Builder drives a Topology through a Runtime and a ShapingDriver,
// reporting once every endpoint acknowledges shaping completion. Its own
// responsibility ends there; validating that the shaping is faithful to
// the plan is the Validator's job.
type Builder struct {
	Runtime Runtime
	Shaper  ShapingDriver
}

// Realize creates every endpoint, applies its shaping rules, and waits for
// every endpoint's shaping-complete acknowledgement. A partial failure
// aggregates every endpoint that never acked via hashicorp/go-multierror,
// rather than stopping at the first.
func (b *Builder) Realize(ctx context.Context, topo *Topology, rulesByEndpoint map[string][]ShapingRule) ([]Endpoint, error) {
	endpoints := make([]Endpoint, 0, len(topo.Topo.Nodes))
	for name, node := range topo.Topo.Nodes {
		ep, err := b.Runtime.CreateEndpoint(ctx, EndpointSpec{Name: name, Node: node})
		if err != nil {
			return nil, fmt.Errorf("fabric: create endpoint %s: %w", name, err)
		}
		endpoints = append(endpoints, ep)
	}

	var mu sync.Mutex
	var errs *multierror.Error
	var wg sync.WaitGroup
	for _, ep := range endpoints {
		ep := ep
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Shaper.Apply(ctx, ep, rulesByEndpoint[ep.Name]); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("endpoint %s: apply shaping: %w", ep.Name, err))
				mu.Unlock()
				return
			}
			if err := b.Shaper.AwaitComplete(ctx, ep); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("endpoint %s: await shaping complete: %w", ep.Name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if errs.ErrorOrNil() != nil {
		return endpoints, errs.ErrorOrNil()
	}
	return endpoints, nil
}

// Teardown releases every resource the Runtime acquired.
func (b *Builder) Teardown(ctx context.Context) error {
	return b.Runtime.Teardown(ctx)
}
