// Package pipeline wires an event source, a settlement engine, and a result
// sink into a single run: decode one record, process it, and after the
// stream is exhausted serialize the engine snapshot.
//
// The CSV adapters implement the wire format: input rows of
// type,client,tx,amount and output rows of client,available,held,total,locked.
package pipeline
