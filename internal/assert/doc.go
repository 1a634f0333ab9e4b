// Package assert evaluates internal invariants and reports violations as
// errors instead of panicking.
//
// The engine uses it to verify balance invariants after every mutation;
// a failed assertion means state corruption and halts the run like any
// domain error.
package assert
