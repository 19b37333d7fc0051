package planner

import (
	"encoding/json"
	"fmt"
)

// allocatedEdgeWire mirrors the external artifact schema (spec.md §6):
// latency and loss travel as decimal strings rather than JSON numbers, to
// match the source format's fixed-precision US-locale rendering exactly.
type allocatedEdgeWire struct {
	SourceName string `json:"sourceName"`
	TargetName string `json:"targetName"`
	Bandwidth  int    `json:"bandwidth"`
	Latency    string `json:"latency"`
	Loss       string `json:"loss"`
}

// MarshalJSON renders an AllocatedEdge as the Planner -> Fabric Builder /
// Validator wire artifact: latency as a 2-decimal string, loss as a
// 4-decimal string, both US-locale (dot decimal separator).
func (a AllocatedEdge) MarshalJSON() ([]byte, error) {
	return json.Marshal(allocatedEdgeWire{
		SourceName: a.Source,
		TargetName: a.Target,
		Bandwidth:  a.AllocatedBandwidth,
		Latency:    fmt.Sprintf("%.2f", a.Latency),
		Loss:       fmt.Sprintf("%.4f", a.Loss),
	})
}

// UnmarshalJSON parses the wire artifact back into an AllocatedEdge, the
// Validator's read side of the same schema.
func (a *AllocatedEdge) UnmarshalJSON(data []byte) error {
	var wire allocatedEdgeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var latency, loss float64
	if _, err := fmt.Sscanf(wire.Latency, "%f", &latency); err != nil {
		return fmt.Errorf("planner: malformed latency %q: %w", wire.Latency, err)
	}
	if _, err := fmt.Sscanf(wire.Loss, "%f", &loss); err != nil {
		return fmt.Errorf("planner: malformed loss %q: %w", wire.Loss, err)
	}
	a.Source = wire.SourceName
	a.Target = wire.TargetName
	a.AllocatedBandwidth = wire.Bandwidth
	a.Latency = latency
	a.Loss = loss
	return nil
}
