// Package ledger defines the settlement data model: transactions, tracked
// transaction records with their dispute lifecycle, client accounts, and the
// domain error taxonomy shared by every component that moves money.
//
// The package is pure data plus validation rules. It owns no state; the
// engine package owns the account and history tables built from these types.
package ledger
