package cpu

import (
	"fmt"
	"strings"
)

// Instruction is a decoded instruction: one of Full, Complex, Simple or Halt.
type Instruction interface {
	// Opcode returns the operation of the instruction.
	Opcode() Opcode
	// Address returns the address of the instruction header.
	Address() int
	// Width returns the number of words the instruction occupies.
	Width() int

	fmt.Stringer

	instruction()
}

// Full is an instruction with two sources and a destination address.
type Full struct {
	Op    Opcode
	Ip    int
	Modes [2]Mode
	Args  [2]Word
	Dest  Word
}

// Complex is an instruction with a source and a jump target.
type Complex struct {
	Op     Opcode
	Ip     int
	Modes  [2]Mode
	Arg    Word
	Target Word
}

// Simple is an instruction with a single operand.
type Simple struct {
	Op   Opcode
	Ip   int
	Mode Mode
	Arg  Word
}

// Halt terminates the run.
type Halt struct {
	Ip int
}

func (Full) instruction()    {}
func (Complex) instruction() {}
func (Simple) instruction()  {}
func (Halt) instruction()    {}

func (in Full) Opcode() Opcode    { return in.Op }
func (in Complex) Opcode() Opcode { return in.Op }
func (in Simple) Opcode() Opcode  { return in.Op }
func (in Halt) Opcode() Opcode    { return OP_HALT }

func (in Full) Address() int    { return in.Ip }
func (in Complex) Address() int { return in.Ip }
func (in Simple) Address() int  { return in.Ip }
func (in Halt) Address() int    { return in.Ip }

func (in Full) Width() int    { return 4 }
func (in Complex) Width() int { return 3 }
func (in Simple) Width() int  { return 2 }
func (in Halt) Width() int    { return 1 }

// operand formats an operand the way the assembler reads it.
func operand(mode Mode, value Word) string {
	if mode == MODE_IMMEDIATE {
		return fmt.Sprintf("#%d", value)
	}
	return fmt.Sprintf("%d", value)
}

func (in Full) String() string {
	return strings.Join([]string{
		in.Op.String(),
		operand(in.Modes[0], in.Args[0]),
		operand(in.Modes[1], in.Args[1]),
		operand(MODE_POSITION, in.Dest),
	}, " ")
}

func (in Complex) String() string {
	return strings.Join([]string{
		in.Op.String(),
		operand(in.Modes[0], in.Arg),
		operand(in.Modes[1], in.Target),
	}, " ")
}

func (in Simple) String() string {
	return in.Op.String() + " " + operand(in.Mode, in.Arg)
}

func (in Halt) String() string {
	return OP_HALT.String()
}

// Decode decodes the instruction at ip in mem.
// The operand words are bounds checked before any of them are read.
func Decode(mem Memory, ip int, variant Variant) (inst Instruction, next int, err error) {
	if ip < 0 {
		err = ErrOutOfBounds(ip)
		return
	}
	if ip >= len(mem) {
		err = ErrUnexpectedEnd
		return
	}

	header := mem[ip]

	var op Opcode
	var modes [MODE_SLOTS]Mode
	if variant == VARIANT_BASIC {
		// The whole header is the opcode; there are no mode digits.
		if header < 0 || header > Word(OP_HALT) {
			err = ErrOpcode(header)
			return
		}
		op = Opcode(header)
	} else {
		op, modes, err = Header(header)
		if err != nil {
			return
		}
	}

	if !variant.Supports(op) {
		err = ErrOpcode(op)
		return
	}

	arity := op.Arity()
	if ip+arity >= len(mem) {
		err = ErrUnexpectedEnd
		return
	}
	args := mem[ip+1 : ip+1+arity]
	next = ip + 1 + arity

	switch arity {
	case 3:
		if modes[2] != MODE_POSITION {
			err = ErrImmediateDestination
			return
		}
		inst = Full{
			Op:    op,
			Ip:    ip,
			Modes: [2]Mode{modes[0], modes[1]},
			Args:  [2]Word{args[0], args[1]},
			Dest:  args[2],
		}
	case 2:
		inst = Complex{
			Op:     op,
			Ip:     ip,
			Modes:  [2]Mode{modes[0], modes[1]},
			Arg:    args[0],
			Target: args[1],
		}
	case 1:
		if op == OP_INPUT && modes[0] != MODE_POSITION {
			err = ErrImmediateDestination
			return
		}
		inst = Simple{
			Op:   op,
			Ip:   ip,
			Mode: modes[0],
			Arg:  args[0],
		}
	default:
		inst = Halt{Ip: ip}
	}

	return
}
