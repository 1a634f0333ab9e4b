package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jproyo/payment-settle-accounts/engine"
	"github.com/jproyo/payment-settle-accounts/ledger"
	"github.com/jproyo/payment-settle-accounts/log"
)

// Source yields decoded transactions in arrival order.
type Source interface {
	// Next returns the next decoded transaction. It returns io.EOF once the
	// stream is exhausted; any other error halts the run before the record
	// reaches the engine.
	Next() (ledger.Transaction, error)

	// Close releases whatever backs the source.
	Close() error
}

// Sink serializes the final account summaries after the run completed.
type Sink interface {
	Write(summaries []ledger.TransactionResultSummary) error
}

var (
	// ErrNilSource is returned when a pipeline is built without a source.
	ErrNilSource = errors.New("pipeline: source is required")
	// ErrNilEngine is returned when a pipeline is built without an engine.
	ErrNilEngine = errors.New("pipeline: engine is required")
	// ErrNilSink is returned when a pipeline is built without a sink.
	ErrNilSink = errors.New("pipeline: sink is required")
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEngine replaces the engine. NewCSVPipeline uses it to swap the default
// in-memory engine for an alternative implementation.
func WithEngine(eng engine.Engine) Option {
	return func(p *Pipeline) {
		if eng != nil {
			p.engine = eng
		}
	}
}

// Pipeline drives one settlement run from source to sink.
type Pipeline struct {
	source Source
	engine engine.Engine
	sink   Sink
	logger log.Logger
}

// New assembles a pipeline from explicit parts.
func New(source Source, eng engine.Engine, sink Sink, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{source: source, engine: eng, sink: sink, logger: log.NewNop()}

	for _, opt := range opts {
		opt(p)
	}

	if p.source == nil {
		return nil, ErrNilSource
	}

	if p.engine == nil {
		return nil, ErrNilEngine
	}

	if p.sink == nil {
		return nil, ErrNilSink
	}

	return p, nil
}

// NewCSVPipeline assembles the standard run: a CSV source over the file at
// path, an in-memory engine, and a CSV sink writing to out.
func NewCSVPipeline(path string, out io.Writer, opts ...Option) (*Pipeline, error) {
	source, err := NewCSVFileSource(path)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{source: source, sink: NewCSVSink(out), logger: log.NewNop()}

	for _, opt := range opts {
		opt(p)
	}

	if p.engine == nil {
		p.engine = engine.NewMemoryEngine(engine.WithLogger(p.logger))
	}

	return p, nil
}

// Run drains the source through the engine and, once the stream is
// exhausted, writes the snapshot through the sink. The first error halts the
// run with no output produced; the engine does not skip offending records.
func (p *Pipeline) Run(ctx context.Context) error {
	defer func() {
		if err := p.source.Close(); err != nil {
			p.logger.Log(ctx, log.LevelWarn, "failed to close source", log.Err(err))
		}
	}()

	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx, err := p.source.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		if err := p.engine.Process(ctx, tx); err != nil {
			return fmt.Errorf("process record %d: %w", processed+1, err)
		}

		processed++
	}

	p.logger.Log(ctx, log.LevelDebug, "input stream exhausted", log.Int("records", processed))

	return p.sink.Write(p.engine.Snapshot())
}
