package io

import (
	"io"
	"strconv"
)

// Tape writes each emitted word as a decimal line to an io.Writer.
type Tape struct {
	Output io.Writer

	written int
}

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// Written returns the number of words written to the tape.
func (tc *Tape) Written() int {
	return tc.written
}

// Append writes a word to the output stream.
func (tc *Tape) Append(value int64) (err error) {
	if tc.Output == nil {
		err = ErrChannelMissing
		return
	}

	line := strconv.AppendInt(nil, value, 10)
	line = append(line, '\n')
	_, err = tc.Output.Write(line)
	if err != nil {
		return
	}

	tc.written++
	return
}
