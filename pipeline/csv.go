package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jproyo/payment-settle-accounts/ledger"
)

// Input column names. Positions are resolved from the header row, not assumed.
const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

// CSVSource decodes transactions from CSV input with a type,client,tx,amount
// header. Fields are trimmed of surrounding whitespace; rows may omit the
// amount column entirely for the referential types.
type CSVSource struct {
	reader  *csv.Reader
	closer  io.Closer
	columns map[string]int
	line    int
}

// Compile-time assertion: *CSVSource implements Source.
var _ Source = (*CSVSource)(nil)

// NewCSVSource reads transactions from r.
func NewCSVSource(r io.Reader) *CSVSource {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	return &CSVSource{reader: reader}
}

// NewCSVFileSource reads transactions from the file at path. Close releases
// the file.
func NewCSVFileSource(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}

	source := NewCSVSource(f)
	source.closer = f

	return source, nil
}

// Next returns the next decoded transaction, io.EOF at end of stream, or a
// parse error that halts the run.
func (s *CSVSource) Next() (ledger.Transaction, error) {
	if s.columns == nil {
		if err := s.readHeader(); err != nil {
			return ledger.Transaction{}, err
		}
	}

	row, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ledger.Transaction{}, io.EOF
		}

		return ledger.Transaction{}, ledger.NewDomainError(ledger.ErrorParse, "", err.Error())
	}

	s.line++

	return s.decode(row)
}

// Close releases the underlying file when the source owns one.
func (s *CSVSource) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

func (s *CSVSource) readHeader() error {
	header, err := s.reader.Read()
	if err != nil {
		// An empty input has no transactions to settle.
		if errors.Is(err, io.EOF) {
			return io.EOF
		}

		return ledger.NewDomainError(ledger.ErrorParse, "", "read header: "+err.Error())
	}

	s.line = 1

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{columnType, columnClient, columnTx} {
		if _, ok := columns[required]; !ok {
			return ledger.NewDomainError(ledger.ErrorParse, required, "missing required column "+required)
		}
	}

	s.columns = columns

	return nil
}

func (s *CSVSource) decode(row []string) (ledger.Transaction, error) {
	rawType, ok := s.field(row, columnType)
	if !ok || rawType == "" {
		return ledger.Transaction{}, s.parseError(columnType, "row is missing the transaction type")
	}

	txType, err := ledger.ParseTransactionType(rawType)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("line %d: %w", s.line, err)
	}

	rawClient, ok := s.field(row, columnClient)
	if !ok || rawClient == "" {
		return ledger.Transaction{}, s.parseError(columnClient, "row is missing the client id")
	}

	client, err := strconv.ParseUint(rawClient, 10, 16)
	if err != nil {
		return ledger.Transaction{}, s.parseError(columnClient, fmt.Sprintf("invalid client id %q", rawClient))
	}

	rawTx, ok := s.field(row, columnTx)
	if !ok || rawTx == "" {
		return ledger.Transaction{}, s.parseError(columnTx, "row is missing the transaction id")
	}

	txID, err := strconv.ParseUint(rawTx, 10, 32)
	if err != nil {
		return ledger.Transaction{}, s.parseError(columnTx, fmt.Sprintf("invalid transaction id %q", rawTx))
	}

	var amount *decimal.Decimal

	if rawAmount, ok := s.field(row, columnAmount); ok && rawAmount != "" {
		value, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return ledger.Transaction{}, s.parseError(columnAmount, fmt.Sprintf("invalid amount %q", rawAmount))
		}

		amount = &value
	}

	tx, err := ledger.NewTransaction(txType, ledger.ClientID(client), ledger.TxID(txID), amount)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("line %d: %w", s.line, err)
	}

	return tx, nil
}

// field returns the trimmed value of the named column, or false when the row
// is too short to carry it.
func (s *CSVSource) field(row []string, column string) (string, bool) {
	idx, ok := s.columns[column]
	if !ok || idx >= len(row) {
		return "", false
	}

	return strings.TrimSpace(row[idx]), true
}

func (s *CSVSource) parseError(field, message string) error {
	return ledger.NewDomainError(ledger.ErrorParse, field, fmt.Sprintf("line %d: %s", s.line, message))
}

// CSVSink writes the snapshot as CSV with a client,available,held,total,locked
// header. Decimal fields are rounded to four places using banker's rounding.
type CSVSink struct {
	writer io.Writer
}

// Compile-time assertion: *CSVSink implements Sink.
var _ Sink = (*CSVSink)(nil)

// NewCSVSink writes the final summaries to w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{writer: w}
}

// Write serializes one row per summary in the order given.
func (s *CSVSink) Write(summaries []ledger.TransactionResultSummary) error {
	w := csv.NewWriter(s.writer)

	if err := w.Write([]string{columnClient, "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, summary := range summaries {
		rounded := summary.Rounded()

		row := []string{
			strconv.FormatUint(uint64(rounded.Client), 10),
			rounded.Available.String(),
			rounded.Held.String(),
			rounded.Total.String(),
			strconv.FormatBool(rounded.Locked),
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("write summary for client %d: %w", summary.Client, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summaries: %w", err)
	}

	return nil
}
