// Package report implements the dispatch pipeline that carries
// assembled diagnostic records to downstream systems.
//
// The three record variants keep three distinct entry points on
// purpose: a Failure, a Message, and a Report signal different things
// to their consumers and must not be funneled through one public path.
package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/flare/adapter"
	"github.com/pithecene-io/flare/log"
	"github.com/pithecene-io/flare/metrics"
	"github.com/pithecene-io/flare/types"
	"github.com/pithecene-io/flare/wire"
)

// Reporter dispatches diagnostic records: it encodes each record,
// publishes the envelope through the configured adapter, and logs the
// dispatch. A Reporter with a nil adapter runs in log-only mode.
type Reporter struct {
	source    string
	adapter   adapter.Adapter
	logger    *log.Logger
	collector *metrics.Collector
	now       func() time.Time
}

// New creates a reporter for the named source. The adapter may be nil
// for log-only operation; the collector may be nil to disable counting.
func New(source string, a adapter.Adapter, logger *log.Logger, collector *metrics.Collector) *Reporter {
	return &Reporter{
		source:    source,
		adapter:   a,
		logger:    logger,
		collector: collector,
		now:       time.Now,
	}
}

// Failure dispatches a failure record.
func (r *Reporter) Failure(ctx context.Context, f *types.Failure) error {
	return r.dispatch(ctx, wire.EncodeFailure(f), f, zapcore.ErrorLevel)
}

// Message dispatches a message record.
func (r *Reporter) Message(ctx context.Context, m *types.Message) error {
	return r.dispatch(ctx, wire.EncodeMessage(m), m, zapcore.InfoLevel)
}

// Report dispatches a report record.
func (r *Reporter) Report(ctx context.Context, rep *types.Report) error {
	return r.dispatch(ctx, wire.EncodeReport(rep), rep, zapcore.InfoLevel)
}

// Close releases the underlying adapter.
func (r *Reporter) Close() error {
	if r.adapter == nil {
		return nil
	}
	return r.adapter.Close()
}

func (r *Reporter) dispatch(ctx context.Context, frame *wire.RecordFrame, rec types.Record, level zapcore.Level) error {
	if r.logger != nil {
		r.logger.Record(level, "record dispatched", rec)
	}

	if r.adapter == nil {
		r.collector.IncLogged(frame.Kind)
		return nil
	}

	envelope := adapter.NewEnvelope(frame, r.source, r.now())
	if err := r.adapter.Publish(ctx, envelope); err != nil {
		r.collector.IncPublishFailure(frame.Kind)
		if r.logger != nil {
			r.logger.Error("record publish failed", map[string]any{
				"kind":     frame.Kind,
				"protocol": frame.Event.Protocol,
				"error":    err.Error(),
			})
		}
		return fmt.Errorf("publish %s record: %w", frame.Kind, err)
	}

	r.collector.IncPublished(frame.Kind)
	return nil
}

// Stats returns the dispatch metrics snapshot.
func (r *Reporter) Stats() metrics.Snapshot {
	return r.collector.Snapshot()
}
