// Package engine owns the in-memory ledger state and applies the settlement
// state machine: deposits and withdrawals move available funds, disputes hold
// them, resolves release them, chargebacks withdraw them and lock the account.
//
// The Engine interface is kept separate from its single in-memory
// implementation so an alternative backing store can substitute without
// touching call sites.
package engine
