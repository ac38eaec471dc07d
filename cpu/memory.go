package cpu

import (
	"slices"
)

// Memory is the linear, zero indexed store shared by code and data.
type Memory []Word

// Get reads the word at an address.
func (mem Memory) Get(addr Word) (value Word, err error) {
	if addr < 0 || addr >= Word(len(mem)) {
		err = ErrOutOfBounds(addr)
		return
	}

	value = mem[addr]
	return
}

// Set writes the word at an address.
func (mem Memory) Set(addr Word, value Word) (err error) {
	if addr < 0 || addr >= Word(len(mem)) {
		err = ErrOutOfBounds(addr)
		return
	}

	mem[addr] = value
	return
}

// Value resolves a raw operand through its parameter mode.
func (mem Memory) Value(raw Word, mode Mode) (value Word, err error) {
	switch mode {
	case MODE_IMMEDIATE:
		value = raw
	case MODE_POSITION:
		value, err = mem.Get(raw)
	default:
		err = ErrParameterMode(mode)
	}

	return
}

// Clone returns a private copy of the memory.
func (mem Memory) Clone() Memory {
	return slices.Clone(mem)
}
