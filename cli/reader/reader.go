package reader

import (
	"fmt"
	"io"
	"os"

	"github.com/pithecene-io/flare/iox"
	"github.com/pithecene-io/flare/wire"
)

// ReadFile decodes every record frame in the named file.
func ReadFile(path string) ([]RecordView, *StreamStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("record stream not found: %s", path)
		}
		return nil, nil, fmt.Errorf("cannot open record stream %q: %w", path, err)
	}
	defer iox.DiscardClose(f)

	return ReadStream(f)
}

// ReadStream decodes record frames from r until clean EOF.
//
// Frames whose payload fails to decode are counted in
// StreamStats.DecodeErrors and skipped; framing errors are fatal because
// a truncated or oversized frame poisons everything after it.
func ReadStream(r io.Reader) ([]RecordView, *StreamStats, error) {
	dec := wire.NewFrameDecoder(r)
	stats := &StreamStats{
		ByKind:     make(map[string]int),
		ByProtocol: make(map[string]int),
	}

	var views []RecordView
	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read frame %d: %w", stats.Records+stats.DecodeErrors+1, err)
		}

		frame, err := wire.DecodeRecordFrame(payload)
		if err != nil {
			stats.DecodeErrors++
			continue
		}
		switch frame.Kind {
		case wire.KindFailure, wire.KindMessage, wire.KindReport:
		default:
			stats.DecodeErrors++
			continue
		}

		views = append(views, viewOf(frame))
		stats.Records++
		stats.ByKind[frame.Kind]++
		stats.ByProtocol[frame.Event.Protocol]++
	}

	return views, stats, nil
}

func viewOf(frame *wire.RecordFrame) RecordView {
	params := make([]ParamView, 0, len(frame.Specs))
	for _, s := range frame.Specs {
		params = append(params, ParamView{
			Key:   s.Key,
			Form:  s.Form,
			Type:  s.Type,
			Value: s.Value,
		})
	}

	trace := make([]TraceFrameView, 0, len(frame.Trace))
	for _, tw := range frame.Trace {
		trace = append(trace, TraceFrameView{
			Protocol:   tw.Event.Protocol,
			Identifier: tw.Event.Identifier,
			Symbol:     tw.Event.Symbol,
			Parameters: len(tw.Specs),
		})
	}

	return RecordView{
		Kind:       frame.Kind,
		Protocol:   frame.Event.Protocol,
		Identifier: frame.Event.Identifier,
		Code:       frame.Event.Code,
		Symbol:     frame.Event.Symbol,
		Abstract:   frame.Event.Abstract,
		Parameters: params,
		Trace:      trace,
	}
}
