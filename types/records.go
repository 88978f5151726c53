package types

// Frame is one context frame of a causal trace: an event snapshot and
// the parameters relevant at that point.
type Frame struct {
	Event      EStruct
	Parameters *Parameters
}

// Trace is an ordered sequence of context frames identifying the exact
// position of a producer at the moment a record was assembled — most
// commonly an operation stack at the moment of failure.
//
// The order is significant and is the producer's convention (outermost
// to innermost, or chronological); the structure itself enforces
// nothing and validates nothing. Currently this is essentially an
// envelope around the route; it exists for interface purposes.
type Trace struct {
	route []Frame
}

// TraceFromFrames wraps the given frame sequence verbatim.
func TraceFromFrames(frames []Frame) Trace {
	return Trace{route: frames}
}

// TraceFromNothing creates a trace with no route points.
func TraceFromNothing() Trace {
	return Trace{}
}

// Route returns the underlying frame sequence. Callers must treat it as
// read-only.
func (t Trace) Route() []Frame {
	return t.route
}

// Record is the read-only view shared by the three record variants.
// Collaborators (loggers, transports, serializers) consume records
// through this interface but construct them only through the variant
// constructors. The variants remain distinct types on purpose: the
// initial recipient of a record should be expecting a particular kind,
// and downstream pipelines should not process them interchangeably.
type Record interface {
	// Event identifies what happened.
	Event() EStruct
	// Parameters carries the contextual values attached to the event.
	Parameters() *Parameters
	// Context is the causal trace leading to the record.
	Context() Trace
}

// Failure references the event detailing the error that caused an
// identified operation to fail. Its parameters should be restricted to
// those that help illuminate the production of the error.
type Failure struct {
	event  EStruct
	params *Parameters
	trace  Trace
}

// NewFailure creates a failure from an optional trace (nil is replaced
// by an empty trace), the error event, and classified parameter pairs.
// The signature is identical to NewMessage and NewReport so one piece
// of assembly code can build any variant.
func NewFailure(trace *Trace, event EStruct, pairs ...Pair) (*Failure, error) {
	t, params, err := recordParts(trace, pairs)
	if err != nil {
		return nil, err
	}
	return &Failure{event: event, params: params, trace: t}, nil
}

// Event returns the identification of the failure's cause.
func (f *Failure) Event() EStruct { return f.event }

// Parameters returns the values involved in producing the failure.
func (f *Failure) Parameters() *Parameters { return f.params }

// Context returns the causal trace of the failure.
func (f *Failure) Context() Trace { return f.trace }

// Message is an informational event associated with an origin context
// and additional parameters.
type Message struct {
	event  EStruct
	params *Parameters
	trace  Trace
}

// NewMessage creates a message from an optional trace (nil is replaced
// by an empty trace), the identifying event, and classified parameter
// pairs.
func NewMessage(trace *Trace, event EStruct, pairs ...Pair) (*Message, error) {
	t, params, err := recordParts(trace, pairs)
	if err != nil {
		return nil, err
	}
	return &Message{event: event, params: params, trace: t}, nil
}

// Event returns the identification of the message.
func (m *Message) Event() EStruct { return m.event }

// Parameters returns the message parameters.
func (m *Message) Parameters() *Parameters { return m.params }

// Context returns the origin context of the message.
func (m *Message) Context() Trace { return m.trace }

// Report references the event detailing a generated report. The
// report's contents reside in its parameters.
type Report struct {
	event  EStruct
	params *Parameters
	trace  Trace
}

// NewReport creates a report from an optional trace (nil is replaced by
// an empty trace), the identifying event, and classified parameter
// pairs.
func NewReport(trace *Trace, event EStruct, pairs ...Pair) (*Report, error) {
	t, params, err := recordParts(trace, pairs)
	if err != nil {
		return nil, err
	}
	return &Report{event: event, params: params, trace: t}, nil
}

// Event returns the identification of the report.
func (r *Report) Event() EStruct { return r.event }

// Parameters returns the report contents.
func (r *Report) Parameters() *Parameters { return r.params }

// Context returns the origin context of the report.
func (r *Report) Context() Trace { return r.trace }

// FailureFromParts assembles a failure from already-built parts.
// This is the deserialization path: the parameter store is adopted
// as-is, with no classification. The record takes ownership of params.
func FailureFromParts(trace Trace, event EStruct, params *Parameters) *Failure {
	return &Failure{event: event, params: params, trace: trace}
}

// MessageFromParts assembles a message from already-built parts.
// See FailureFromParts.
func MessageFromParts(trace Trace, event EStruct, params *Parameters) *Message {
	return &Message{event: event, params: params, trace: trace}
}

// ReportFromParts assembles a report from already-built parts.
// See FailureFromParts.
func ReportFromParts(trace Trace, event EStruct, params *Parameters) *Report {
	return &Report{event: event, params: params, trace: trace}
}

// recordParts normalizes the shared constructor inputs: a nil trace
// becomes the empty trace, and the pairs are classified into a fresh
// parameter store owned by the record.
func recordParts(trace *Trace, pairs []Pair) (Trace, *Parameters, error) {
	t := TraceFromNothing()
	if trace != nil {
		t = *trace
	}
	params, err := ParametersFromPairs(pairs)
	if err != nil {
		return Trace{}, nil, err
	}
	return t, params, nil
}

// Interface conformance for the three variants.
var (
	_ Record = (*Failure)(nil)
	_ Record = (*Message)(nil)
	_ Record = (*Report)(nil)
)
