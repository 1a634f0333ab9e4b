package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jproyo/payment-settle-accounts/engine"
	"github.com/jproyo/payment-settle-accounts/ledger"
)

func runPipeline(t *testing.T, input string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	p, err := New(NewCSVSource(strings.NewReader(input)), engine.NewMemoryEngine(), NewCSVSink(&buf))
	require.NoError(t, err)

	runErr := p.Run(context.Background())

	return buf.String(), runErr
}

// ---------------------------------------------------------------------------
// Run -- end to end
// ---------------------------------------------------------------------------

func TestPipelineRun(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"type,client,tx,amount",
		"deposit,1,1,1.0",
		"deposit,2,2,2.0",
		"deposit,1,3,2.0",
		"withdrawal,1,4,1.5",
		"dispute,1,1,",
		"resolve,1,1,",
		"deposit,3,5,10",
		"dispute,3,5,",
		"chargeback,3,5,",
		"deposit,5,9,3.0",
		"dispute,5,9,",
	}, "\n")

	output, err := runPipeline(t, input)
	require.NoError(t, err)

	expected := "client,available,held,total,locked\n" +
		"1,1.5,0,1.5,false\n" +
		"2,2,0,2,false\n" +
		"3,0,0,0,true\n" +
		"5,0,3,3,false\n"
	assert.Equal(t, expected, output)
}

func TestPipelineRunEmptyStream(t *testing.T) {
	t.Parallel()

	output, err := runPipeline(t, "")
	require.NoError(t, err)

	assert.Equal(t, "client,available,held,total,locked\n", output)
}

func TestPipelineRunHaltsOnDomainError(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"type,client,tx,amount",
		"deposit,1,1,5",
		"withdrawal,1,2,9",
		"deposit,1,3,100",
	}, "\n")

	output, err := runPipeline(t, input)
	require.Error(t, err)

	var domainErr ledger.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, ledger.ErrorInsufficientFunds, domainErr.Code)
	assert.Contains(t, err.Error(), "process record 2")

	assert.Empty(t, output, "a failed run must produce no output")
}

func TestPipelineRunHaltsOnParseError(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"type,client,tx,amount",
		"deposit,abc,1,5",
	}, "\n")

	output, err := runPipeline(t, input)
	require.Error(t, err)

	var domainErr ledger.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, ledger.ErrorParse, domainErr.Code)

	assert.Empty(t, output)
}

func TestPipelineRunCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer

	p, err := New(NewCSVSource(strings.NewReader("type,client,tx,amount\ndeposit,1,1,5")), engine.NewMemoryEngine(), NewCSVSink(&buf))
	require.NoError(t, err)

	require.ErrorIs(t, p.Run(ctx), context.Canceled)
	assert.Empty(t, buf.String())
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewValidation(t *testing.T) {
	source := NewCSVSource(strings.NewReader(""))
	eng := engine.NewMemoryEngine()
	sink := NewCSVSink(&bytes.Buffer{})

	tests := []struct {
		name     string
		source   Source
		engine   engine.Engine
		sink     Sink
		expected error
	}{
		{name: "nil source", engine: eng, sink: sink, expected: ErrNilSource},
		{name: "nil engine", source: source, sink: sink, expected: ErrNilEngine},
		{name: "nil sink", source: source, engine: eng, expected: ErrNilSink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.source, tt.engine, tt.sink)
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestNewCSVPipeline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte("type,client,tx,amount\ndeposit,7,1,2.5\n"), 0o600))

	var buf bytes.Buffer

	p, err := NewCSVPipeline(path, &buf)
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, "client,available,held,total,locked\n7,2.5,0,2.5,false\n", buf.String())
}

func TestNewCSVPipelineMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewCSVPipeline(filepath.Join(t.TempDir(), "missing.csv"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input file")
}

type countingEngine struct {
	processed int
}

func (e *countingEngine) Process(_ context.Context, _ ledger.Transaction) error {
	e.processed++
	return nil
}

func (e *countingEngine) Snapshot() []ledger.TransactionResultSummary {
	return nil
}

func TestWithEngineOverridesDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte("type,client,tx,amount\ndeposit,1,1,5\ndeposit,1,2,5\n"), 0o600))

	var buf bytes.Buffer

	eng := &countingEngine{}

	p, err := NewCSVPipeline(path, &buf, WithEngine(eng))
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 2, eng.processed)
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

type closeFailSource struct{}

func (closeFailSource) Next() (ledger.Transaction, error) { return ledger.Transaction{}, io.EOF }
func (closeFailSource) Close() error                      { return errors.New("close failed") }

func TestRunSurvivesCloseFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p, err := New(closeFailSource{}, engine.NewMemoryEngine(), NewCSVSink(&buf))
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}
