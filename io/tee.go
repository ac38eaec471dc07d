package io

// Tee emits every word to each of its sinks, in order.
type Tee []Sink

// Rewind rewinds all sinks.
func (tee Tee) Rewind() {
	for _, sink := range tee {
		sink.Rewind()
	}
}

// Append emits the word to all sinks, stopping at the first failure.
func (tee Tee) Append(value int64) (err error) {
	for _, sink := range tee {
		err = sink.Append(value)
		if err != nil {
			return
		}
	}

	return
}
