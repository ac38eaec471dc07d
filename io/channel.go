// Package io provides the output channels of the machine.
// A run emits words, in order, to a Sink. Buffer keeps them for the
// caller, Tape writes them to a console stream, and Tee fans them out.
package io

// Sink defines the interface for all output channels.
type Sink interface {
	// Rewind resets the sink to its initial state.
	Rewind()
	// Append emits a single word to the sink.
	Append(value int64) error
}
