package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jproyo/payment-settle-accounts/internal/assert"
	"github.com/jproyo/payment-settle-accounts/ledger"
	"github.com/jproyo/payment-settle-accounts/log"
)

// Option configures a MemoryEngine.
type Option func(*MemoryEngine)

// WithLogger sets the logger used for per-event debug logging and invariant
// failure reporting. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(e *MemoryEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// MemoryEngine is the in-memory settlement engine. It guards the account
// table and the tracked-transaction table with a single coarse lock, so
// Process may be called from multiple goroutines; the caller remains
// responsible for submitting same-client events in order.
type MemoryEngine struct {
	mu       sync.RWMutex
	accounts map[ledger.ClientID]ledger.Account
	records  map[ledger.TransactionKey]ledger.TransactionRecord
	logger   log.Logger
	asserter *assert.Asserter
}

// Compile-time assertion: *MemoryEngine implements Engine.
var _ Engine = (*MemoryEngine)(nil)

// NewMemoryEngine creates an empty settlement engine.
func NewMemoryEngine(opts ...Option) *MemoryEngine {
	e := &MemoryEngine{
		accounts: make(map[ledger.ClientID]ledger.Account),
		records:  make(map[ledger.TransactionKey]ledger.TransactionRecord),
		logger:   log.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.asserter = assert.New(context.Background(), e.logger, "engine", "process")

	return e
}

// Process applies one event. All mutations are computed on value copies and
// committed only after every check passed; no path repairs state after the
// fact. Any returned error is fatal to the run.
func (e *MemoryEngine) Process(ctx context.Context, tx ledger.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	account, ok := e.accounts[tx.Client]
	if !ok {
		account = ledger.NewAccount(tx.Client)
	}

	key := tx.Key()
	record, tracked := e.records[key]

	var (
		next ledger.Account
		rec  ledger.TransactionRecord
		err  error
	)

	switch tx.Type {
	case ledger.TypeDeposit:
		next, rec, err = e.applyDeposit(account, tx, tracked)
	case ledger.TypeWithdrawal:
		next, rec, err = e.applyWithdrawal(account, tx, tracked)
	case ledger.TypeDispute:
		next, rec, err = e.applyDispute(account, record, tx, tracked)
	case ledger.TypeResolve:
		next, rec, err = e.applyResolve(ctx, account, record, tx, tracked)
	case ledger.TypeChargeback:
		next, rec, err = e.applyChargeback(ctx, account, record, tx, tracked)
	default:
		return e.asserter.Never(ctx, "unhandled transaction type", "type", tx.Type)
	}

	if err != nil {
		return err
	}

	if err := e.verify(ctx, next); err != nil {
		return err
	}

	e.accounts[tx.Client] = next
	e.records[key] = rec

	if e.logger.Enabled(log.LevelDebug) {
		e.logger.Log(ctx, log.LevelDebug, "transaction applied",
			log.String("type", tx.Type.String()),
			log.Any("client", tx.Client),
			log.Any("tx", tx.TxID),
			log.String("status", rec.Status.String()),
		)
	}

	return nil
}

// Snapshot returns the per-client summaries ordered by client id.
func (e *MemoryEngine) Snapshot() []ledger.TransactionResultSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	summaries := make([]ledger.TransactionResultSummary, 0, len(e.accounts))
	for _, account := range e.accounts {
		summaries = append(summaries, account.Summary())
	}

	slices.SortFunc(summaries, func(a, b ledger.TransactionResultSummary) int {
		return cmp.Compare(a.Client, b.Client)
	})

	return summaries
}

func (e *MemoryEngine) applyDeposit(account ledger.Account, tx ledger.Transaction, tracked bool) (ledger.Account, ledger.TransactionRecord, error) {
	if account.Locked {
		return ledger.Account{}, ledger.TransactionRecord{}, errAccountLocked(tx)
	}

	if tracked {
		return ledger.Account{}, ledger.TransactionRecord{}, errDuplicate(tx)
	}

	account.Available = account.Available.Add(tx.Amount)

	return account, ledger.TransactionRecord{Type: tx.Type, Amount: tx.Amount, Status: ledger.StatusNormal}, nil
}

func (e *MemoryEngine) applyWithdrawal(account ledger.Account, tx ledger.Transaction, tracked bool) (ledger.Account, ledger.TransactionRecord, error) {
	if account.Locked {
		return ledger.Account{}, ledger.TransactionRecord{}, errAccountLocked(tx)
	}

	if tracked {
		return ledger.Account{}, ledger.TransactionRecord{}, errDuplicate(tx)
	}

	if account.Available.LessThan(tx.Amount) {
		return ledger.Account{}, ledger.TransactionRecord{}, ledger.NewDomainError(
			ledger.ErrorInsufficientFunds,
			"amount",
			fmt.Sprintf("withdrawal of %s exceeds available balance %s for client %d", tx.Amount, account.Available, tx.Client),
		)
	}

	account.Available = account.Available.Sub(tx.Amount)

	return account, ledger.TransactionRecord{Type: tx.Type, Amount: tx.Amount, Status: ledger.StatusNormal}, nil
}

// applyDispute moves the tracked amount from available to held. Locked
// accounts are not rejected here: disputes concern funds already moved.
func (e *MemoryEngine) applyDispute(account ledger.Account, record ledger.TransactionRecord, tx ledger.Transaction, tracked bool) (ledger.Account, ledger.TransactionRecord, error) {
	if !tracked {
		return ledger.Account{}, ledger.TransactionRecord{}, ledger.NewDomainError(
			ledger.ErrorUnknownTransaction,
			"tx",
			fmt.Sprintf("dispute references transaction %d never tracked for client %d", tx.TxID, tx.Client),
		)
	}

	if !record.Status.CanTransitionTo(ledger.StatusDisputed) {
		return ledger.Account{}, ledger.TransactionRecord{}, errInvalidState(tx, record.Status)
	}

	if account.Available.LessThan(record.Amount) {
		return ledger.Account{}, ledger.TransactionRecord{}, ledger.NewDomainError(
			ledger.ErrorBalanceInconsistency,
			"amount",
			fmt.Sprintf("attempt to dispute %s with only %s available for client %d", record.Amount, account.Available, tx.Client),
		)
	}

	account.Available = account.Available.Sub(record.Amount)
	account.Held = account.Held.Add(record.Amount)
	record.Status = ledger.StatusDisputed

	return account, record, nil
}

func (e *MemoryEngine) applyResolve(ctx context.Context, account ledger.Account, record ledger.TransactionRecord, tx ledger.Transaction, tracked bool) (ledger.Account, ledger.TransactionRecord, error) {
	if !tracked {
		return ledger.Account{}, ledger.TransactionRecord{}, errUntrackedReference(tx)
	}

	if !record.Status.CanTransitionTo(ledger.StatusResolved) {
		return ledger.Account{}, ledger.TransactionRecord{}, errInvalidState(tx, record.Status)
	}

	if err := e.asserter.That(ctx, account.Held.GreaterThanOrEqual(record.Amount), "held must cover the resolved amount",
		"client", tx.Client, "tx", tx.TxID, "held", account.Held, "amount", record.Amount); err != nil {
		return ledger.Account{}, ledger.TransactionRecord{}, err
	}

	account.Held = account.Held.Sub(record.Amount)
	account.Available = account.Available.Add(record.Amount)
	record.Status = ledger.StatusResolved

	return account, record, nil
}

func (e *MemoryEngine) applyChargeback(ctx context.Context, account ledger.Account, record ledger.TransactionRecord, tx ledger.Transaction, tracked bool) (ledger.Account, ledger.TransactionRecord, error) {
	if !tracked {
		return ledger.Account{}, ledger.TransactionRecord{}, errUntrackedReference(tx)
	}

	if !record.Status.CanTransitionTo(ledger.StatusChargedBack) {
		return ledger.Account{}, ledger.TransactionRecord{}, errInvalidState(tx, record.Status)
	}

	if err := e.asserter.That(ctx, account.Held.GreaterThanOrEqual(record.Amount), "held must cover the charged back amount",
		"client", tx.Client, "tx", tx.TxID, "held", account.Held, "amount", record.Amount); err != nil {
		return ledger.Account{}, ledger.TransactionRecord{}, err
	}

	account.Held = account.Held.Sub(record.Amount)
	account.Locked = true
	record.Status = ledger.StatusChargedBack

	return account, record, nil
}

// verify re-checks the balance invariants on the candidate state before it
// is committed. The dispatch arms already reject every violating path, so a
// failure here means engine corruption and halts the run.
func (e *MemoryEngine) verify(ctx context.Context, next ledger.Account) error {
	if err := e.asserter.That(ctx, !next.Available.IsNegative(), "available must not end negative",
		"client", next.Client, "available", next.Available); err != nil {
		return err
	}

	return e.asserter.That(ctx, !next.Held.IsNegative(), "held must not end negative",
		"client", next.Client, "held", next.Held)
}

func errAccountLocked(tx ledger.Transaction) error {
	return ledger.NewDomainError(
		ledger.ErrorAccountLocked,
		"client",
		fmt.Sprintf("account %d is locked and accepts no further %s events", tx.Client, tx.Type),
	)
}

func errDuplicate(tx ledger.Transaction) error {
	return ledger.NewDomainError(
		ledger.ErrorDuplicateTransaction,
		"tx",
		fmt.Sprintf("transaction %d already tracked for client %d", tx.TxID, tx.Client),
	)
}

func errUntrackedReference(tx ledger.Transaction) error {
	return ledger.NewDomainError(
		ledger.ErrorInvalidTransactionState,
		"tx",
		fmt.Sprintf("%s references transaction %d never tracked for client %d", tx.Type, tx.TxID, tx.Client),
	)
}

func errInvalidState(tx ledger.Transaction, status ledger.DisputeStatus) error {
	return ledger.NewDomainError(
		ledger.ErrorInvalidTransactionState,
		"tx",
		fmt.Sprintf("cannot %s transaction %d for client %d in status %s", tx.Type, tx.TxID, tx.Client, status),
	)
}
