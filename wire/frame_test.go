package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/pithecene-io/flare/types"
)

func mustFailure(t *testing.T, trace *types.Trace, event types.EStruct, pairs ...types.Pair) *types.Failure {
	t.Helper()
	f, err := types.NewFailure(trace, event, pairs...)
	if err != nil {
		t.Fatalf("NewFailure failed: %v", err)
	}
	return f
}

func TestRecordFrame_FailureRoundTrip(t *testing.T) {
	event := types.EStructFromArguments("posix.errno", "111", 111, "ECONNREFUSED", "Connection refused")
	f := mustFailure(t, nil, event,
		types.Pair{Key: "host", Value: "db-1"},
		types.Pair{Key: "port", Value: 5432},
		types.Pair{Key: "retriable", Value: true},
		types.Pair{Key: "attempts", Value: []any{1, 2, 3}},
		types.Pair{Key: "tags", Value: types.NewSet("net", "db")},
	)
	f.Parameters().SetRepresentation("timestamp", "when", "2026-08-23T10:00:00Z")
	f.Parameters().SetRepresentationSequence("frame", "stack", []string{"main", "dial"})

	var buf bytes.Buffer
	if err := NewFrameEncoder(&buf).WriteRecordFrame(EncodeFailure(f)); err != nil {
		t.Fatalf("WriteRecordFrame failed: %v", err)
	}

	payload, err := NewFrameDecoder(&buf).ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	frame, err := DecodeRecordFrame(payload)
	if err != nil {
		t.Fatalf("DecodeRecordFrame failed: %v", err)
	}

	if frame.Kind != KindFailure {
		t.Errorf("Kind = %q, want %q", frame.Kind, KindFailure)
	}
	if frame.Version != types.WireVersion {
		t.Errorf("Version = %q, want %q", frame.Version, types.WireVersion)
	}
	if frame.Event != event {
		t.Errorf("Event = %+v, want %+v", frame.Event, event)
	}

	rec, err := frame.Record()
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	decoded, ok := rec.(*types.Failure)
	if !ok {
		t.Fatalf("Record() = %T, want *types.Failure", rec)
	}
	if !decoded.Parameters().Equal(f.Parameters()) {
		t.Error("decoded parameters differ from the originals")
	}
}

func TestRecordFrame_TraceCarried(t *testing.T) {
	op, err := types.ParametersFromPairs([]types.Pair{{Key: "op", Value: "connect"}})
	if err != nil {
		t.Fatalf("ParametersFromPairs failed: %v", err)
	}
	trace := types.TraceFromFrames([]types.Frame{
		{Event: types.EStructFromProtocol("app.op"), Parameters: op},
		{Event: types.EStructFromProtocol("app.inner"), Parameters: types.NewParameters()},
	})

	m, err := types.NewMessage(&trace, types.EStructFromProtocol("app.msg"), types.Pair{Key: "note", Value: "hello"})
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	frame := EncodeMessage(m)
	rec, err := roundTrip(frame)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	route := rec.Context().Route()
	if len(route) != 2 {
		t.Fatalf("decoded route has %d frames, want 2", len(route))
	}
	if route[0].Event.Protocol != "app.op" || route[1].Event.Protocol != "app.inner" {
		t.Error("trace frame order not preserved across the wire")
	}
	if !route[0].Parameters.Equal(op) {
		t.Error("trace frame parameters differ from the originals")
	}
}

func TestRecordFrame_ExcludedNeverTransmitted(t *testing.T) {
	r, err := types.NewReport(nil, types.EStructFromProtocol("app.report"), types.Pair{Key: "total", Value: 7})
	if err != nil {
		t.Fatalf("NewReport failed: %v", err)
	}
	r.Parameters().SetExcluded("session", "local-only-handle")

	frame := EncodeReport(r)
	for _, s := range frame.Specs {
		if s.Key == "session" {
			t.Fatal("excluded parameter was placed on the wire")
		}
	}
	if len(frame.Specs) != 1 {
		t.Errorf("frame carries %d specs, want 1", len(frame.Specs))
	}
}

func TestRecordFrame_KindsDecodeToDistinctTypes(t *testing.T) {
	event := types.EStructFromProtocol("app.event")

	f, _ := types.NewFailure(nil, event)
	m, _ := types.NewMessage(nil, event)
	r, _ := types.NewReport(nil, event)

	tests := []struct {
		name  string
		frame *RecordFrame
		want  string
	}{
		{"failure", EncodeFailure(f), "*types.Failure"},
		{"message", EncodeMessage(m), "*types.Message"},
		{"report", EncodeReport(r), "*types.Report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := roundTrip(tt.frame)
			if err != nil {
				t.Fatalf("round trip failed: %v", err)
			}
			if got := reflect.TypeOf(rec).String(); got != tt.want {
				t.Errorf("decoded type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecordFrame_UnknownKind(t *testing.T) {
	frame := &RecordFrame{Kind: "audit", Version: types.WireVersion}
	if _, err := frame.Record(); err == nil {
		t.Fatal("Record() accepted an unknown kind")
	}
}

func TestFrameDecoder_TruncatedPayloadIsFatal(t *testing.T) {
	var buf bytes.Buffer
	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], 64)
	buf.Write(lengthBuf[:])
	buf.WriteString("short")

	_, err := NewFrameDecoder(&buf).ReadFrame()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("ReadFrame error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorPartial || !frameErr.IsFatal() {
		t.Errorf("Kind = %v, IsFatal = %v, want partial/fatal", frameErr.Kind, frameErr.IsFatal())
	}
	if !IsFatalFrameError(err) {
		t.Error("IsFatalFrameError = false, want true")
	}
}

func TestFrameDecoder_OversizedFrameIsFatal(t *testing.T) {
	var buf bytes.Buffer
	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], MaxPayloadSize+1)
	buf.Write(lengthBuf[:])

	_, err := NewFrameDecoder(&buf).ReadFrame()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("ReadFrame error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorTooLarge || !frameErr.IsFatal() {
		t.Errorf("Kind = %v, IsFatal = %v, want too-large/fatal", frameErr.Kind, frameErr.IsFatal())
	}
}

func TestFrameDecoder_CleanEOF(t *testing.T) {
	if _, err := NewFrameDecoder(bytes.NewReader(nil)).ReadFrame(); err != io.EOF {
		t.Errorf("ReadFrame on empty stream = %v, want io.EOF", err)
	}
}

func TestFrameDecoder_MultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	enc := NewFrameEncoder(&buf)

	for _, proto := range []string{"app.a", "app.b", "app.c"} {
		m, err := types.NewMessage(nil, types.EStructFromProtocol(proto))
		if err != nil {
			t.Fatalf("NewMessage failed: %v", err)
		}
		if err := enc.WriteRecordFrame(EncodeMessage(m)); err != nil {
			t.Fatalf("WriteRecordFrame failed: %v", err)
		}
	}

	dec := NewFrameDecoder(&buf)
	var protocols []string
	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrame failed: %v", err)
		}
		frame, err := DecodeRecordFrame(payload)
		if err != nil {
			t.Fatalf("DecodeRecordFrame failed: %v", err)
		}
		protocols = append(protocols, frame.Event.Protocol)
	}

	if !reflect.DeepEqual(protocols, []string{"app.a", "app.b", "app.c"}) {
		t.Errorf("decoded protocols = %v, want stream order", protocols)
	}
}

func TestRecordFrame_NestedParameters(t *testing.T) {
	inner, err := types.ParametersFromPairs([]types.Pair{{Key: "depth", Value: 2}})
	if err != nil {
		t.Fatalf("ParametersFromPairs failed: %v", err)
	}

	f := mustFailure(t, nil, types.EStructFromProtocol("app.fail"),
		types.Pair{Key: "nested", Value: inner})

	rec, err := roundTrip(EncodeFailure(f))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	v, err := rec.Parameters().Get("nested")
	if err != nil {
		t.Fatalf("Get(nested) failed: %v", err)
	}
	got, ok := v.(*types.Parameters)
	if !ok {
		t.Fatalf("nested value decoded as %T, want *types.Parameters", v)
	}
	if !got.Equal(inner) {
		t.Error("nested store differs after round trip")
	}
}

func TestRecordFrame_ConcreteSequenceRoundTrip(t *testing.T) {
	f := mustFailure(t, nil, types.EStructFromProtocol("app.retry"),
		types.Pair{Key: "attempts", Value: []int{1, 2, 3}},
		types.Pair{Key: "hosts", Value: []string{"db-1", "db-2"}})

	rec, err := roundTrip(EncodeFailure(f))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	// msgpack hands sequences back as []any; the stores must still
	// compare equal to the concretely typed originals.
	if !rec.Parameters().Equal(f.Parameters()) {
		t.Error("decoded parameters differ from the concretely typed originals")
	}

	v, err := rec.Parameters().Get("attempts")
	if err != nil {
		t.Fatalf("Get(attempts) failed: %v", err)
	}
	seq, ok := v.([]any)
	if !ok {
		t.Fatalf("attempts decoded as %T, want []any", v)
	}
	if len(seq) != 3 {
		t.Errorf("attempts has %d elements, want 3", len(seq))
	}
}

// roundTrip encodes the frame through the stream codec and rebuilds the
// typed record.
func roundTrip(frame *RecordFrame) (types.Record, error) {
	var buf bytes.Buffer
	if err := NewFrameEncoder(&buf).WriteRecordFrame(frame); err != nil {
		return nil, err
	}
	payload, err := NewFrameDecoder(&buf).ReadFrame()
	if err != nil {
		return nil, err
	}
	decoded, err := DecodeRecordFrame(payload)
	if err != nil {
		return nil, err
	}
	return decoded.Record()
}
