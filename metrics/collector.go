// Package metrics provides dispatch metrics collection.
//
// The Collector accumulates counters while a reporter dispatches
// diagnostic records. It is a leaf package with no internal
// dependencies; record kinds arrive as plain strings to keep it that way.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of dispatch metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Published counts successfully dispatched records by kind.
	Published map[string]int64
	// Logged counts records handled in log-only mode by kind. These
	// never left the process and are kept apart from Published.
	Logged map[string]int64
	// PublishFailures counts adapter publish failures by kind.
	PublishFailures map[string]int64
	// DecodeErrors counts frame decode failures observed while reading
	// record streams.
	DecodeErrors int64

	// Dimensions (informational, set at construction)
	Source  string
	Adapter string
}

// Collector accumulates metrics for one reporter instance.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	published       map[string]int64
	logged          map[string]int64
	publishFailures map[string]int64
	decodeErrors    int64

	source      string
	adapterName string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(source, adapterName string) *Collector {
	return &Collector{
		published:       make(map[string]int64),
		logged:          make(map[string]int64),
		publishFailures: make(map[string]int64),
		source:          source,
		adapterName:     adapterName,
	}
}

// IncPublished records a successful dispatch of the given record kind.
func (c *Collector) IncPublished(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.published[kind]++
	c.mu.Unlock()
}

// IncLogged records a log-only dispatch of the given record kind.
func (c *Collector) IncLogged(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.logged[kind]++
	c.mu.Unlock()
}

// IncPublishFailure records a failed dispatch of the given record kind.
func (c *Collector) IncPublishFailure(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.publishFailures[kind]++
	c.mu.Unlock()
}

// IncDecodeError records a frame decode failure.
func (c *Collector) IncDecodeError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors++
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	published := make(map[string]int64, len(c.published))
	for k, v := range c.published {
		published[k] = v
	}
	logged := make(map[string]int64, len(c.logged))
	for k, v := range c.logged {
		logged[k] = v
	}
	failures := make(map[string]int64, len(c.publishFailures))
	for k, v := range c.publishFailures {
		failures[k] = v
	}

	return Snapshot{
		Published:       published,
		Logged:          logged,
		PublishFailures: failures,
		DecodeErrors:    c.decodeErrors,
		Source:          c.source,
		Adapter:         c.adapterName,
	}
}
