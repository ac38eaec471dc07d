// Package cpu implements the machine and assembler for intcode programs.
//
// The machine is a stored-program interpreter: code and data share one
// linear memory of signed words. An instruction is a header word followed
// by its operands. The low two decimal digits of the header select the
// opcode; the hundreds, thousands and ten-thousands digits give the
// parameter mode (position or immediate) of the first, second and third
// operand. Destinations are always addresses.
//
// The Cpu decodes an Instruction (Full, Complex, Simple or Halt) at its
// instruction pointer, executes it, and advances or jumps. Tick performs
// one such step; Run ticks until halt and returns the word at address 0.
// Emitted words go to an io.Sink.
//
// The assembler provides a small assembly language for the instruction set,
// supporting labels, equates, and compile-time expression evaluation.
package cpu
