package ledger

import "github.com/shopspring/decimal"

// SummaryDecimalPlaces is the fixed output precision for account summaries.
const SummaryDecimalPlaces int32 = 4

// Account is the balance state for one client. Accounts are created lazily
// on the first event referencing a client and never deleted during a run.
//
// Available and Held never go negative; Held reflects exactly the sum of
// amounts of currently disputed tracked records. Total is derived, never
// stored.
type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	// Locked is set permanently by a chargeback. A locked account accepts no
	// further deposits or withdrawals; disputes, resolves, and chargebacks on
	// already-tracked records may still be processed since they concern funds
	// already moved.
	Locked bool
}

// NewAccount returns a zero-balance unlocked account for the client.
func NewAccount(client ClientID) Account {
	return Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total returns the full balance, available plus held.
func (a Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Summary projects the account into its read-only output form. Values keep
// full precision; rounding happens at serialization via Rounded.
func (a Account) Summary() TransactionResultSummary {
	return TransactionResultSummary{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

// TransactionResultSummary is the read-only projection of an Account emitted
// after the input stream is exhausted.
type TransactionResultSummary struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Rounded returns a copy with every decimal field rounded to
// SummaryDecimalPlaces using banker's rounding.
func (s TransactionResultSummary) Rounded() TransactionResultSummary {
	s.Available = s.Available.RoundBank(SummaryDecimalPlaces)
	s.Held = s.Held.RoundBank(SummaryDecimalPlaces)
	s.Total = s.Total.RoundBank(SummaryDecimalPlaces)

	return s
}
