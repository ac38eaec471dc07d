package cpu

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrUnexpectedEnd        = errors.New(f("unexpected end of input"))
	ErrImmediateDestination = errors.New(f("immediate mode destination"))
	ErrInputMissing         = errors.New(f("input missing"))
	ErrStepLimit            = errors.New(f("step limit exceeded"))
	ErrOutputMissing        = errors.New(f("output sink missing"))

	// Program errors
	ErrProgramEmpty = errors.New(f("program empty"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
)

// ErrOpcode is an opcode field that matches no instruction.
type ErrOpcode Word

func (eo ErrOpcode) Error() string {
	return f("unknown opcode %v", int64(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrParameterMode is a mode digit that is neither position nor immediate.
type ErrParameterMode Word

func (em ErrParameterMode) Error() string {
	return f("unrecognised parameter mode %v", int64(em))
}

func (em ErrParameterMode) Is(err error) (ok bool) {
	_, ok = err.(ErrParameterMode)
	return
}

// ErrOutOfBounds is an address outside of memory.
type ErrOutOfBounds Word

func (eb ErrOutOfBounds) Error() string {
	return f("address %v out of bounds", int64(eb))
}

func (eb ErrOutOfBounds) Is(err error) (ok bool) {
	_, ok = err.(ErrOutOfBounds)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrWord locates a malformed word in a comma separated program.
type ErrWord struct {
	Index int
	Word  string
	Err   error
}

func (err *ErrWord) Error() string {
	return f("word %d '%v' %v", err.Index, err.Word, err.Err)
}

func (err *ErrWord) Unwrap() error {
	return err.Err
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
