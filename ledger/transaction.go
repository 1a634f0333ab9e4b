package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID identifies a client account. The wire format carries 16-bit
// client identifiers.
type ClientID uint16

// TxID identifies a transaction. Identifiers are unique within a client,
// not globally; the wire format carries 32-bit values.
type TxID uint32

// TransactionType classifies an input event.
type TransactionType string

const (
	// TypeDeposit credits the available balance.
	TypeDeposit TransactionType = "deposit"
	// TypeWithdrawal debits the available balance.
	TypeWithdrawal TransactionType = "withdrawal"
	// TypeDispute moves a previously tracked amount from available to held.
	TypeDispute TransactionType = "dispute"
	// TypeResolve releases a disputed amount from held back to available.
	TypeResolve TransactionType = "resolve"
	// TypeChargeback withdraws a disputed amount from held and locks the account.
	TypeChargeback TransactionType = "chargeback"
)

// ParseTransactionType validates and converts a raw input value. Surrounding
// whitespace is trimmed and matching is case-insensitive.
func ParseTransactionType(raw string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(raw)))

	if !t.IsValid() {
		return "", NewDomainError(ErrorParse, "type", "unknown transaction type "+strings.TrimSpace(raw))
	}

	return t, nil
}

// IsValid reports whether the type is part of the settlement event set.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeDispute, TypeResolve, TypeChargeback:
		return true
	default:
		return false
	}
}

// RequiresAmount reports whether events of this type must carry an amount.
// Deposits and withdrawals move funds; the remaining types reference a prior
// transaction by id and carry no amount of their own.
func (t TransactionType) RequiresAmount() bool {
	return t == TypeDeposit || t == TypeWithdrawal
}

func (t TransactionType) String() string {
	return string(t)
}

// Transaction is one decoded input event. Values are validated at
// construction and treated as immutable afterwards.
type Transaction struct {
	Type   TransactionType
	Client ClientID
	TxID   TxID
	// Amount is meaningful only when Type.RequiresAmount(); it is zero for
	// the referential types.
	Amount decimal.Decimal
}

// NewTransaction builds a validated Transaction. The amount must be present
// and non-negative for deposits and withdrawals, and absent for disputes,
// resolves, and chargebacks; violations fail with ErrorMalformedTransaction
// before the event ever reaches the engine.
func NewTransaction(txType TransactionType, client ClientID, txID TxID, amount *decimal.Decimal) (Transaction, error) {
	if !txType.IsValid() {
		return Transaction{}, NewDomainError(ErrorMalformedTransaction, "type", "unknown transaction type "+string(txType))
	}

	if txType.RequiresAmount() {
		if amount == nil {
			return Transaction{}, NewDomainError(ErrorMalformedTransaction, "amount", string(txType)+" amount is missing")
		}

		if amount.IsNegative() {
			return Transaction{}, NewDomainError(ErrorMalformedTransaction, "amount", string(txType)+" amount must not be negative")
		}

		return Transaction{Type: txType, Client: client, TxID: txID, Amount: *amount}, nil
	}

	if amount != nil {
		return Transaction{}, NewDomainError(ErrorMalformedTransaction, "amount", string(txType)+" must not carry an amount")
	}

	return Transaction{Type: txType, Client: client, TxID: txID}, nil
}

// Validate re-checks the construction rules. It guards the engine boundary
// against hand-built values that bypassed NewTransaction; a transaction built
// by the constructor always passes.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return NewDomainError(ErrorMalformedTransaction, "type", "unknown transaction type "+string(t.Type))
	}

	if t.Type.RequiresAmount() {
		if t.Amount.IsNegative() {
			return NewDomainError(ErrorMalformedTransaction, "amount", string(t.Type)+" amount must not be negative")
		}

		return nil
	}

	if !t.Amount.IsZero() {
		return NewDomainError(ErrorMalformedTransaction, "amount", string(t.Type)+" must not carry an amount")
	}

	return nil
}

// Key returns the (client, tx) pair that uniquely identifies the transaction
// in the tracked history.
func (t Transaction) Key() TransactionKey {
	return TransactionKey{Client: t.Client, TxID: t.TxID}
}

// TransactionKey uniquely identifies a tracked transaction. The same pair is
// never tracked twice; distinct clients may reuse the same TxID.
type TransactionKey struct {
	Client ClientID
	TxID   TxID
}

// TransactionRecord is a tracked history entry. Only deposits and
// withdrawals are retained; the referential types mutate the Status of a
// previously tracked record instead of being stored themselves.
type TransactionRecord struct {
	Type   TransactionType
	Amount decimal.Decimal
	Status DisputeStatus
}
