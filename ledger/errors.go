package ledger

import "fmt"

// ErrorCode is a domain error code used by settlement validations.
type ErrorCode string

const (
	// ErrorMalformedTransaction indicates an input event violates the amount
	// presence or sign rules for its type.
	ErrorMalformedTransaction ErrorCode = "0001"
	// ErrorParse indicates the input stream cannot be decoded into an event.
	ErrorParse ErrorCode = "0002"
	// ErrorDuplicateTransaction indicates a (client, tx) pair was tracked twice.
	ErrorDuplicateTransaction ErrorCode = "0003"
	// ErrorUnknownTransaction indicates a dispute references a transaction never
	// tracked for that client.
	ErrorUnknownTransaction ErrorCode = "0004"
	// ErrorInvalidTransactionState indicates a dispute, resolve, or chargeback
	// was applied to a record not in the required prior status.
	ErrorInvalidTransactionState ErrorCode = "0005"
	// ErrorInsufficientFunds indicates a withdrawal exceeds the available balance.
	ErrorInsufficientFunds ErrorCode = "0006"
	// ErrorBalanceInconsistency indicates a dispute would hold funds no longer
	// present in the available balance.
	ErrorBalanceInconsistency ErrorCode = "0007"
	// ErrorAccountLocked indicates a deposit or withdrawal hit a locked account.
	ErrorAccountLocked ErrorCode = "0008"
)

// DomainError represents a structured settlement domain validation error.
//
// Every DomainError is fatal to the run: the caller stops consuming the input
// stream and reports the error instead of skipping the offending record. These
// conditions indicate a malformed or adversarial transaction history.
type DomainError struct {
	Code    ErrorCode
	Field   string
	Message string
}

// Error returns the formatted domain error string.
func (e DomainError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
}

// NewDomainError creates a domain error with code, field, and message.
func NewDomainError(code ErrorCode, field, message string) error {
	return DomainError{Code: code, Field: field, Message: message}
}
