// Package reader provides the read-side data access layer for the flare CLI.
//
// It decodes record frame streams into flat view structs that the render
// and tui packages can display without touching wire or types internals.
package reader

// RecordView is a display-ready projection of one diagnostic record.
type RecordView struct {
	Kind       string           `json:"kind"`
	Protocol   string           `json:"protocol"`
	Identifier string           `json:"identifier"`
	Code       int              `json:"code"`
	Symbol     string           `json:"symbol"`
	Abstract   string           `json:"abstract"`
	Parameters []ParamView      `json:"parameters,omitempty"`
	Trace      []TraceFrameView `json:"trace,omitempty"`
}

// ParamView is one classified parameter of a record.
type ParamView struct {
	Key   string `json:"key"`
	Form  string `json:"form"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// TraceFrameView summarizes one frame of a record's causal trace,
// ordered from the initiating event to the most recent.
type TraceFrameView struct {
	Protocol   string `json:"protocol"`
	Identifier string `json:"identifier"`
	Symbol     string `json:"symbol"`
	Parameters int    `json:"parameters"`
}

// StreamStats aggregates a whole record stream.
type StreamStats struct {
	Records      int            `json:"records"`
	ByKind       map[string]int `json:"by_kind"`
	ByProtocol   map[string]int `json:"by_protocol"`
	DecodeErrors int            `json:"decode_errors"`
}

// RecordSummary is one row in the inspect table view.
type RecordSummary struct {
	Kind       string `json:"kind"`
	Protocol   string `json:"protocol"`
	Identifier string `json:"identifier"`
	Symbol     string `json:"symbol"`
	Parameters int    `json:"parameters"`
	TraceDepth int    `json:"trace_depth"`
}

// Summary flattens a view into its table row.
func (v RecordView) Summary() RecordSummary {
	return RecordSummary{
		Kind:       v.Kind,
		Protocol:   v.Protocol,
		Identifier: v.Identifier,
		Symbol:     v.Symbol,
		Parameters: len(v.Parameters),
		TraceDepth: len(v.Trace),
	}
}
