// Package adapter defines the record-bus adapter boundary.
//
// Adapters publish diagnostic record envelopes to downstream systems.
// The dispatch pipeline owns adapter lifecycle; users provide
// configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/pithecene-io/flare/types"
	"github.com/pithecene-io/flare/wire"
)

// RecordEnvelope is the payload published for one diagnostic record.
// It is the JSON projection of a wire.RecordFrame plus dispatch
// metadata for bus consumers.
type RecordEnvelope struct {
	ContractVersion string           `json:"contract_version"`
	Kind            string           `json:"kind"` // failure, message, report
	Source          string           `json:"source"`
	Timestamp       string           `json:"timestamp"` // ISO 8601
	Event           types.EStruct    `json:"event"`
	Parameters      []wire.SpecWire  `json:"parameters"`
	Trace           []wire.TraceWire `json:"trace,omitempty"`
}

// NewEnvelope builds the publishable envelope from an encoded frame.
// The frame already excludes local-only parameters.
func NewEnvelope(frame *wire.RecordFrame, source string, now time.Time) *RecordEnvelope {
	return &RecordEnvelope{
		ContractVersion: frame.Version,
		Kind:            frame.Kind,
		Source:          source,
		Timestamp:       now.UTC().Format(time.RFC3339),
		Event:           frame.Event,
		Parameters:      frame.Specs,
		Trace:           frame.Trace,
	}
}

// Adapter publishes record envelopes to a downstream system.
// Implementations must be safe for reuse across records within one
// pipeline instance.
type Adapter interface {
	// Publish sends a record envelope to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, envelope *RecordEnvelope) error

	// Close releases adapter resources.
	Close() error
}
