package cpu

import (
	"fmt"
)

// Word is a single memory cell, holding either code or data.
type Word int64

// Opcode is the operation selector, the low two decimal digits of a header.
type Opcode int

const (
	OP_ADD        = Opcode(1)  // add
	OP_MUL        = Opcode(2)  // mul
	OP_INPUT      = Opcode(3)  // in
	OP_OUTPUT     = Opcode(4)  // out
	OP_JUMP_TRUE  = Opcode(5)  // jt
	OP_JUMP_FALSE = Opcode(6)  // jf
	OP_LESS       = Opcode(7)  // lt
	OP_EQUAL      = Opcode(8)  // eq
	OP_HALT       = Opcode(99) // hlt
)

var opcodeName = map[Opcode]string{
	OP_ADD:        "add",
	OP_MUL:        "mul",
	OP_INPUT:      "in",
	OP_OUTPUT:     "out",
	OP_JUMP_TRUE:  "jt",
	OP_JUMP_FALSE: "jf",
	OP_LESS:       "lt",
	OP_EQUAL:      "eq",
	OP_HALT:       "hlt",
}

// String returns the assembler mnemonic of the opcode.
func (op Opcode) String() string {
	name, ok := opcodeName[op]
	if !ok {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
	return name
}

// Arity returns the number of operand words that follow the header.
func (op Opcode) Arity() int {
	switch op {
	case OP_ADD, OP_MUL, OP_LESS, OP_EQUAL:
		return 3
	case OP_JUMP_TRUE, OP_JUMP_FALSE:
		return 2
	case OP_INPUT, OP_OUTPUT:
		return 1
	}
	return 0
}

// Mode is a parameter addressing mode.
type Mode int

const (
	MODE_POSITION  = Mode(0) // operand is an address
	MODE_IMMEDIATE = Mode(1) // operand is a literal
)

func (mode Mode) String() string {
	switch mode {
	case MODE_POSITION:
		return "position"
	case MODE_IMMEDIATE:
		return "immediate"
	}
	return fmt.Sprintf("Mode(%d)", int(mode))
}

// MODE_SLOTS is the number of parameter modes encoded in every header.
const MODE_SLOTS = 3

// Variant selects the instruction set the decoder accepts.
type Variant int

const (
	VARIANT_FULL  = Variant(0) // All nine opcodes, with parameter modes.
	VARIANT_BASIC = Variant(1) // add, mul and hlt; every operand in position mode.
)

func (v Variant) String() string {
	switch v {
	case VARIANT_FULL:
		return "full"
	case VARIANT_BASIC:
		return "basic"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Supports returns true if the opcode belongs to the variant.
func (v Variant) Supports(op Opcode) bool {
	switch v {
	case VARIANT_BASIC:
		return op == OP_ADD || op == OP_MUL || op == OP_HALT
	case VARIANT_FULL:
		_, ok := opcodeName[op]
		return ok
	}
	return false
}

// Header splits an instruction header into its opcode and parameter modes.
// Mode digits are read least significant first after the opcode; digits
// beyond the header are position mode.
func Header(header Word) (op Opcode, modes [MODE_SLOTS]Mode, err error) {
	if header < 0 {
		err = ErrOpcode(header)
		return
	}

	op = Opcode(header % 100)
	digits := header / 100
	for n := range modes {
		mode := Mode(digits % 10)
		if mode != MODE_POSITION && mode != MODE_IMMEDIATE {
			err = ErrParameterMode(mode)
			return
		}
		modes[n] = mode
		digits /= 10
	}

	// Anything past the third slot is not a mode.
	for ; digits != 0; digits /= 10 {
		if digits%10 != 0 {
			err = ErrParameterMode(digits % 10)
			return
		}
	}

	return
}

// MakeHeader encodes an opcode and its parameter modes into a header word.
func MakeHeader(op Opcode, modes ...Mode) Word {
	header := Word(op)
	scale := Word(100)
	for _, mode := range modes {
		header += Word(mode) * scale
		scale *= 10
	}
	return header
}
