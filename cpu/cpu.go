package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/intcode/io"
)

// Sink is an output channel interface.
type Sink io.Sink

// State is the run state of the CPU.
type State int

const (
	STATE_RUNNING = State(0) // Decoding and executing.
	STATE_HALTED  = State(1) // Halt executed.
	STATE_FAILED  = State(2) // Decode or execute failed.
)

func (state State) String() string {
	switch state {
	case STATE_RUNNING:
		return "running"
	case STATE_HALTED:
		return "halted"
	case STATE_FAILED:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(state))
}

var _cpu_defines = map[string]string{
	"OP_ADD":         fmt.Sprintf("%d", OP_ADD),
	"OP_MUL":         fmt.Sprintf("%d", OP_MUL),
	"OP_INPUT":       fmt.Sprintf("%d", OP_INPUT),
	"OP_OUTPUT":      fmt.Sprintf("%d", OP_OUTPUT),
	"OP_JUMP_TRUE":   fmt.Sprintf("%d", OP_JUMP_TRUE),
	"OP_JUMP_FALSE":  fmt.Sprintf("%d", OP_JUMP_FALSE),
	"OP_LESS":        fmt.Sprintf("%d", OP_LESS),
	"OP_EQUAL":       fmt.Sprintf("%d", OP_EQUAL),
	"OP_HALT":        fmt.Sprintf("%d", OP_HALT),
	"MODE_POSITION":  fmt.Sprintf("%d", MODE_POSITION),
	"MODE_IMMEDIATE": fmt.Sprintf("%d", MODE_IMMEDIATE),
}

// ErrExecute locates the instruction that failed to execute.
type ErrExecute struct {
	Instruction Instruction
	Err         error
}

func (err *ErrExecute) Error() string {
	return f("%v: %v: %v", fmt.Sprintf("%04d", err.Instruction.Address()), err.Instruction.String(), err.Err)
}

func (err *ErrExecute) Unwrap() error {
	return err.Err
}

// Cpu is the simulation context for the machine: a private memory and
// the instruction pointer that walks it.
type Cpu struct {
	Verbose   bool    // Set to enable verbose logging.
	Variant   Variant // Instruction set accepted by the decoder.
	StepLimit int     // If non-zero, the maximum number of instructions per run.

	Memory Memory // Program and data.
	Ip     int    // Current instruction pointer.
	Output Sink   // Destination of emitted words.
	State  State  // Current run state.
	Ticks  int    // Instructions executed since reset.

	input    Word
	hasInput bool
	err      error
}

// NewCpu creates a new CPU for an instruction set variant.
func NewCpu(variant Variant) (cpu *Cpu) {
	cpu = &Cpu{
		Variant: variant,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"ip", "state", "ticks", "input", "memory"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "ip":
			strval = fmt.Sprintf("%04d", cpu.Ip)
			if cpu.Ip >= 0 && cpu.Ip < len(cpu.Memory) {
				strval += fmt.Sprintf(" [%d]", cpu.Memory[cpu.Ip])
			}
		case "state":
			strval = cpu.State.String()
			if cpu.err != nil {
				strval += fmt.Sprintf(" (%v)", cpu.err)
			}
		case "ticks":
			strval = fmt.Sprintf("%d", cpu.Ticks)
		case "input":
			strval = "-"
			if cpu.hasInput {
				strval = fmt.Sprintf("%d", cpu.input)
			}
		case "memory":
			strval = fmt.Sprintf("%d words", len(cpu.Memory))
		}
		text += fmt.Sprintf("% 6s: %v\n", reg, strval)
	}

	return
}

// Reset the CPU state.
// - Installs a private copy of the program as memory.
// - Sets the IP to zero, and the state to running.
// - Zeros the tick counter.
// - Rewinds the output sink.
//
// The input word is kept; use SetInput or ClearInput to change it.
func (cpu *Cpu) Reset(program Memory) {
	if cpu.Verbose {
		log.Printf("cpu: reset, %d words", len(program))
	}

	cpu.Memory = program.Clone()
	cpu.Ip = 0
	cpu.State = STATE_RUNNING
	cpu.Ticks = 0
	cpu.err = nil

	if cpu.Output != nil {
		cpu.Output.Rewind()
	}
}

// SetInput sets the word returned by every input instruction of the run.
func (cpu *Cpu) SetInput(value Word) {
	cpu.input = value
	cpu.hasInput = true
}

// ClearInput removes the input word.
func (cpu *Cpu) ClearInput() {
	cpu.input = 0
	cpu.hasInput = false
}

// Err returns the error that failed the run, if any.
func (cpu *Cpu) Err() error {
	return cpu.err
}

// Decode decodes the instruction at the current IP.
func (cpu *Cpu) Decode() (inst Instruction, next int, err error) {
	return Decode(cpu.Memory, cpu.Ip, cpu.Variant)
}

// Tick decodes and executes a single instruction.
// done is set once the CPU has halted. A failed CPU keeps returning
// the error that failed it.
func (cpu *Cpu) Tick() (done bool, err error) {
	switch cpu.State {
	case STATE_HALTED:
		done = true
		return
	case STATE_FAILED:
		err = cpu.err
		return
	}

	defer func() {
		if err != nil {
			cpu.State = STATE_FAILED
			cpu.err = err
			if cpu.Verbose {
				log.Printf("cpu: failed at %04d: %v", cpu.Ip, err)
			}
		}
	}()

	if cpu.StepLimit > 0 && cpu.Ticks >= cpu.StepLimit {
		err = ErrStepLimit
		return
	}

	inst, _, err := cpu.Decode()
	if err != nil {
		return
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	done = cpu.State == STATE_HALTED
	return
}

// Run ticks the CPU until it halts, and returns the word at address 0.
func (cpu *Cpu) Run() (result Word, err error) {
	for {
		var done bool
		done, err = cpu.Tick()
		if err != nil {
			return
		}
		if done {
			break
		}
	}

	result, err = cpu.Memory.Get(0)
	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = &ErrExecute{Instruction: inst, Err: err}
		}
	}()
	if cpu.Verbose {
		log.Printf("%04d: %v", inst.Address(), inst)
	}

	mem := cpu.Memory

	next_ip := inst.Address() + inst.Width()

	switch in := inst.(type) {
	case Full:
		var a, b Word
		a, err = mem.Value(in.Args[0], in.Modes[0])
		if err != nil {
			return
		}
		b, err = mem.Value(in.Args[1], in.Modes[1])
		if err != nil {
			return
		}
		var value Word
		switch in.Op {
		case OP_ADD:
			value = a + b
		case OP_MUL:
			value = a * b
		case OP_LESS:
			if a < b {
				value = 1
			}
		case OP_EQUAL:
			if a == b {
				value = 1
			}
		default:
			err = ErrOpcode(in.Op)
			return
		}
		err = mem.Set(in.Dest, value)
		if err != nil {
			return
		}
	case Complex:
		var cond, target Word
		cond, err = mem.Value(in.Arg, in.Modes[0])
		if err != nil {
			return
		}
		target, err = mem.Value(in.Target, in.Modes[1])
		if err != nil {
			return
		}
		switch in.Op {
		case OP_JUMP_TRUE:
			if cond != 0 {
				next_ip = int(target)
			}
		case OP_JUMP_FALSE:
			if cond == 0 {
				next_ip = int(target)
			}
		default:
			err = ErrOpcode(in.Op)
			return
		}
	case Simple:
		switch in.Op {
		case OP_INPUT:
			if in.Mode != MODE_POSITION {
				err = ErrImmediateDestination
				return
			}
			if !cpu.hasInput {
				err = ErrInputMissing
				return
			}
			err = mem.Set(in.Arg, cpu.input)
			if err != nil {
				return
			}
		case OP_OUTPUT:
			var value Word
			value, err = mem.Value(in.Arg, in.Mode)
			if err != nil {
				return
			}
			if cpu.Output == nil {
				err = ErrOutputMissing
				return
			}
			err = cpu.Output.Append(int64(value))
			if err != nil {
				return
			}
		default:
			err = ErrOpcode(in.Op)
			return
		}
	case Halt:
		cpu.State = STATE_HALTED
		next_ip = in.Ip
		if cpu.Verbose {
			log.Printf("cpu: halted after %d ticks", cpu.Ticks+1)
		}
	default:
		err = errors.New(f("instruction type %T", inst))
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks += 1

	return
}
