package io

import (
	"iter"
	"maps"
	"slices"
	"strconv"
)

// Buffer collects emitted words in emission order.
type Buffer struct {
	Capacity int // If non-zero, the maximum number of words held.

	data []int64
}

// Defines returns an iter of defines for the channel.
func (buf *Buffer) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"BUFFER_CAPACITY": strconv.Itoa(buf.Capacity),
	})
}

// Rewind discards all collected words.
func (buf *Buffer) Rewind() {
	if len(buf.data) > 0 {
		buf.data = buf.data[:0]
	}
}

// Append collects a word.
func (buf *Buffer) Append(value int64) (err error) {
	if buf.Capacity > 0 && len(buf.data) >= buf.Capacity {
		err = ErrChannelFull
		return
	}

	buf.data = append(buf.data, value)
	return
}

// Words returns a copy of the collected words.
func (buf *Buffer) Words() []int64 {
	return slices.Clone(buf.data)
}

// Len returns the number of collected words.
func (buf *Buffer) Len() int {
	return len(buf.data)
}

// Last returns the most recently collected word.
func (buf *Buffer) Last() (value int64, ok bool) {
	if len(buf.data) == 0 {
		return
	}

	return buf.data[len(buf.data)-1], true
}
