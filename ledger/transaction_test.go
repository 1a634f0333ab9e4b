package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amountOf(t *testing.T, raw string) *decimal.Decimal {
	t.Helper()

	value, err := decimal.NewFromString(raw)
	require.NoError(t, err)

	return &value
}

// ---------------------------------------------------------------------------
// NewTransaction -- amount presence and sign rules per type
// ---------------------------------------------------------------------------

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name      string
		txType    TransactionType
		amount    string
		noAmount  bool
		errorCode ErrorCode
	}{
		{name: "deposit with amount", txType: TypeDeposit, amount: "10.5"},
		{name: "deposit with zero amount", txType: TypeDeposit, amount: "0"},
		{name: "deposit without amount", txType: TypeDeposit, noAmount: true, errorCode: ErrorMalformedTransaction},
		{name: "deposit with negative amount", txType: TypeDeposit, amount: "-1", errorCode: ErrorMalformedTransaction},
		{name: "withdrawal with amount", txType: TypeWithdrawal, amount: "3.33"},
		{name: "withdrawal without amount", txType: TypeWithdrawal, noAmount: true, errorCode: ErrorMalformedTransaction},
		{name: "withdrawal with negative amount", txType: TypeWithdrawal, amount: "-0.01", errorCode: ErrorMalformedTransaction},
		{name: "dispute without amount", txType: TypeDispute, noAmount: true},
		{name: "dispute with amount", txType: TypeDispute, amount: "5", errorCode: ErrorMalformedTransaction},
		{name: "resolve without amount", txType: TypeResolve, noAmount: true},
		{name: "resolve with amount", txType: TypeResolve, amount: "5", errorCode: ErrorMalformedTransaction},
		{name: "chargeback without amount", txType: TypeChargeback, noAmount: true},
		{name: "chargeback with amount", txType: TypeChargeback, amount: "5", errorCode: ErrorMalformedTransaction},
		{name: "unknown type", txType: TransactionType("transfer"), noAmount: true, errorCode: ErrorMalformedTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var amount *decimal.Decimal
			if !tt.noAmount {
				amount = amountOf(t, tt.amount)
			}

			tx, err := NewTransaction(tt.txType, 1, 1, amount)

			if tt.errorCode != "" {
				require.Error(t, err)

				var domainErr DomainError
				require.True(t, errors.As(err, &domainErr))
				assert.Equal(t, tt.errorCode, domainErr.Code)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.txType, tx.Type)
			assert.Equal(t, ClientID(1), tx.Client)
			assert.Equal(t, TxID(1), tx.TxID)

			if amount != nil {
				assert.True(t, tx.Amount.Equal(*amount), "expected amount %s, got %s", amount, tx.Amount)
			} else {
				assert.True(t, tx.Amount.IsZero(), "referential types carry no amount, got %s", tx.Amount)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Validate -- boundary defense for hand-built values
// ---------------------------------------------------------------------------

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name      string
		tx        Transaction
		errorCode ErrorCode
	}{
		{name: "valid deposit", tx: Transaction{Type: TypeDeposit, Client: 1, TxID: 1, Amount: decimal.NewFromInt(5)}},
		{name: "valid withdrawal of zero", tx: Transaction{Type: TypeWithdrawal, Client: 1, TxID: 1}},
		{name: "valid dispute", tx: Transaction{Type: TypeDispute, Client: 1, TxID: 1}},
		{name: "negative deposit", tx: Transaction{Type: TypeDeposit, Client: 1, TxID: 1, Amount: decimal.NewFromInt(-5)}, errorCode: ErrorMalformedTransaction},
		{name: "dispute smuggling an amount", tx: Transaction{Type: TypeDispute, Client: 1, TxID: 1, Amount: decimal.NewFromInt(5)}, errorCode: ErrorMalformedTransaction},
		{name: "resolve smuggling an amount", tx: Transaction{Type: TypeResolve, Client: 1, TxID: 1, Amount: decimal.NewFromInt(1)}, errorCode: ErrorMalformedTransaction},
		{name: "empty type", tx: Transaction{Client: 1, TxID: 1}, errorCode: ErrorMalformedTransaction},
		{name: "unknown type", tx: Transaction{Type: TransactionType("refund"), Client: 1, TxID: 1}, errorCode: ErrorMalformedTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.tx.Validate()

			if tt.errorCode == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)

			var domainErr DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.errorCode, domainErr.Code)
		})
	}
}

// ---------------------------------------------------------------------------
// ParseTransactionType
// ---------------------------------------------------------------------------

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected TransactionType
		wantErr  bool
	}{
		{name: "deposit", raw: "deposit", expected: TypeDeposit},
		{name: "withdrawal", raw: "withdrawal", expected: TypeWithdrawal},
		{name: "dispute", raw: "dispute", expected: TypeDispute},
		{name: "resolve", raw: "resolve", expected: TypeResolve},
		{name: "chargeback", raw: "chargeback", expected: TypeChargeback},
		{name: "surrounding whitespace", raw: "  deposit  ", expected: TypeDeposit},
		{name: "mixed case", raw: "Chargeback", expected: TypeChargeback},
		{name: "unknown", raw: "transfer", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTransactionType(tt.raw)

			if tt.wantErr {
				require.Error(t, err)

				var domainErr DomainError
				require.True(t, errors.As(err, &domainErr))
				assert.Equal(t, ErrorParse, domainErr.Code)
				assert.Equal(t, "type", domainErr.Field)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTransactionTypeRequiresAmount(t *testing.T) {
	t.Parallel()

	assert.True(t, TypeDeposit.RequiresAmount())
	assert.True(t, TypeWithdrawal.RequiresAmount())
	assert.False(t, TypeDispute.RequiresAmount())
	assert.False(t, TypeResolve.RequiresAmount())
	assert.False(t, TypeChargeback.RequiresAmount())
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

func TestTransactionKey(t *testing.T) {
	t.Parallel()

	first, err := NewTransaction(TypeDeposit, 1, 7, amountOf(t, "1"))
	require.NoError(t, err)

	second, err := NewTransaction(TypeDispute, 1, 7, nil)
	require.NoError(t, err)

	otherClient, err := NewTransaction(TypeDeposit, 2, 7, amountOf(t, "1"))
	require.NoError(t, err)

	assert.Equal(t, first.Key(), second.Key(), "same client and tx id must share a key")
	assert.NotEqual(t, first.Key(), otherClient.Key(), "distinct clients reusing a tx id must not collide")
}
