package engine

import (
	"context"

	"github.com/jproyo/payment-settle-accounts/ledger"
)

// Engine applies payment events to the account and history tables it
// exclusively owns for the lifetime of one run.
type Engine interface {
	// Process applies a single event and mutates the internal ledger, or
	// returns a fatal error that halts the run. It is safe for concurrent
	// callers; events for the same client must be submitted in their
	// original relative order.
	Process(ctx context.Context, tx ledger.Transaction) error

	// Snapshot returns one summary per account that has ever appeared,
	// ordered by client id for determinism. Take it only after all
	// producers have finished submitting events.
	Snapshot() []ledger.TransactionResultSummary
}
