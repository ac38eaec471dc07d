package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/intcode/io"
)

// newTestCpu resets a full CPU with a program, and a buffer for output.
func newTestCpu(program ...Word) (cpu *Cpu, output *io.Buffer) {
	output = &io.Buffer{}
	cpu = NewCpu(VARIANT_FULL)
	cpu.Output = output
	cpu.Reset(Memory(program))
	return
}

func TestCpu_Run(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []Word
		result  Word
		memory  Memory
	}){
		{"add_self", []Word{1, 1, 2, 0, 99}, 3, nil},
		{"add_mul", []Word{1, 1, 2, 0, 2, 2, 2, 0, 99}, 4, nil},
		{"immediate", []Word{1101, 100, -1, 4, 0}, 1101, Memory{1101, 100, -1, 4, 99}},
		{"mixed_modes", []Word{1002, 4, 3, 4, 33}, 1002, Memory{1002, 4, 3, 4, 99}},
		{"aoc_example", []Word{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}, 3500, nil},
		{"self_modify", []Word{1, 1, 1, 4, 99, 5, 6, 0, 99}, 30, Memory{30, 1, 1, 4, 2, 5, 6, 0, 99}},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(entry.program...)
		result, err := cpu.Run()
		assert.NoError(err, entry.name)
		assert.Equal(entry.result, result, entry.name)
		assert.Equal(STATE_HALTED, cpu.State, entry.name)
		if entry.memory != nil {
			assert.Equal(entry.memory, cpu.Memory, entry.name)
		}
	}
}

func TestCpu_Tick(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(1, 1, 2, 0, 2, 2, 2, 0, 99)

	done, err := cpu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(4, cpu.Ip)
	assert.Equal(Word(3), cpu.Memory[0])
	assert.Equal(1, cpu.Ticks)

	done, err = cpu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(8, cpu.Ip)
	assert.Equal(Word(4), cpu.Memory[0])

	done, err = cpu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(8, cpu.Ip)
	assert.Equal(STATE_HALTED, cpu.State)
	assert.Equal(3, cpu.Ticks)

	// A halted CPU stays halted.
	done, err = cpu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(3, cpu.Ticks)
}

func TestCpu_Echo(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(3, 0, 4, 0, 99)
	cpu.SetInput(7)

	_, err := cpu.Run()
	assert.NoError(err)
	assert.Equal([]int64{7}, output.Words())
}

func TestCpu_InputReused(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(3, 9, 3, 10, 4, 9, 4, 10, 99, 0, 0)
	cpu.SetInput(-5)

	_, err := cpu.Run()
	assert.NoError(err)
	assert.Equal([]int64{-5, -5}, output.Words())
}

func TestCpu_Compare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []Word
		input   Word
		output  int64
	}){
		{"eq_pos_true", []Word{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, 8, 1},
		{"eq_pos_false", []Word{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, 7, 0},
		{"lt_pos_true", []Word{3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8}, 7, 1},
		{"lt_pos_false", []Word{3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8}, 8, 0},
		{"eq_imm_true", []Word{3, 3, 1108, -1, 8, 3, 4, 3, 99}, 8, 1},
		{"eq_imm_false", []Word{3, 3, 1108, -1, 8, 3, 4, 3, 99}, 9, 0},
		{"lt_imm_true", []Word{3, 3, 1107, -1, 8, 3, 4, 3, 99}, -100, 1},
		{"lt_imm_false", []Word{3, 3, 1107, -1, 8, 3, 4, 3, 99}, 8, 0},
	}

	for _, entry := range table {
		cpu, output := newTestCpu(entry.program...)
		cpu.SetInput(entry.input)
		_, err := cpu.Run()
		assert.NoError(err, entry.name)
		assert.Equal([]int64{entry.output}, output.Words(), entry.name)
	}
}

func TestCpu_Jump(t *testing.T) {
	assert := assert.New(t)

	position := []Word{3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9}
	immediate := []Word{3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1}
	compare := []Word{
		3, 21, 1008, 21, 8, 20, 1005, 20, 22, 107, 8, 21, 20, 1006, 20, 31,
		1106, 0, 36, 98, 0, 0, 1002, 21, 125, 20, 4, 20, 1105, 1, 46, 104,
		999, 1105, 1, 46, 1101, 1000, 1, 20, 4, 20, 1105, 1, 46, 98, 99,
	}

	table := [](struct {
		name    string
		program []Word
		input   Word
		output  int64
	}){
		{"position_zero", position, 0, 0},
		{"position_nonzero", position, 5, 1},
		{"immediate_zero", immediate, 0, 0},
		{"immediate_nonzero", immediate, -3, 1},
		{"compare_below", compare, 7, 999},
		{"compare_equal", compare, 8, 1000},
		{"compare_above", compare, 9, 1001},
	}

	for _, entry := range table {
		cpu, output := newTestCpu(entry.program...)
		cpu.SetInput(entry.input)
		_, err := cpu.Run()
		assert.NoError(err, entry.name)
		assert.Equal([]int64{entry.output}, output.Words(), entry.name)
	}
}

func TestCpu_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []Word
		err     error
		ip      int
	}){
		{"unknown_opcode", []Word{50, 0, 0, 0}, ErrOpcode(50), 0},
		{"unknown_after_add", []Word{1, 0, 0, 0, 42}, ErrOpcode(42), 4},
		{"truncated_jump", []Word{1101, 0, 0, 0, 5, 1}, ErrUnexpectedEnd, 4},
		{"run_off_end", []Word{1, 0, 0, 0}, ErrUnexpectedEnd, 4},
		{"bad_mode", []Word{201, 0, 0, 0, 99}, ErrParameterMode(2), 0},
		{"read_beyond", []Word{1, 100, 0, 0, 99}, ErrOutOfBounds(100), 0},
		{"write_beyond", []Word{1101, 1, 1, 50, 99}, ErrOutOfBounds(50), 0},
		{"write_negative", []Word{1101, 1, 1, -1, 99}, ErrOutOfBounds(-1), 0},
		{"jump_negative", []Word{1105, 1, -1}, ErrOutOfBounds(-1), -1},
		{"jump_beyond", []Word{1105, 1, 3}, ErrUnexpectedEnd, 3},
		{"input_missing", []Word{3, 0, 99}, ErrInputMissing, 0},
		{"immediate_dest", []Word{11101, 0, 0, 0, 99}, ErrImmediateDestination, 0},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(entry.program...)
		_, err := cpu.Run()
		assert.Error(err, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)
		assert.Equal(STATE_FAILED, cpu.State, entry.name)
		assert.Equal(entry.ip, cpu.Ip, entry.name)
		assert.Equal(err, cpu.Err(), entry.name)

		// Value carrying errors keep their value.
		switch expected := entry.err.(type) {
		case ErrOpcode:
			var eo ErrOpcode
			assert.True(errors.As(err, &eo), entry.name)
			assert.Equal(expected, eo, entry.name)
		case ErrOutOfBounds:
			var eb ErrOutOfBounds
			assert.True(errors.As(err, &eb), entry.name)
			assert.Equal(expected, eb, entry.name)
		case ErrParameterMode:
			var em ErrParameterMode
			assert.True(errors.As(err, &em), entry.name)
			assert.Equal(expected, em, entry.name)
		}

		// A failed CPU does not resume.
		done, again := cpu.Tick()
		assert.False(done, entry.name)
		assert.Equal(err, again, entry.name)
	}
}

func TestCpu_ExecuteError(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(1, 0, 0, 0, 2, 100, 0, 0, 99)

	_, err := cpu.Run()

	var ee *ErrExecute
	assert.True(errors.As(err, &ee))
	assert.Equal(4, ee.Instruction.Address())
	assert.Equal(OP_MUL, ee.Instruction.Opcode())
	assert.Equal(ErrOutOfBounds(100), ee.Err)
}

func TestCpu_OutputMissing(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(VARIANT_FULL)
	cpu.Reset(Memory{104, 1, 99})

	_, err := cpu.Run()
	assert.ErrorIs(err, ErrOutputMissing)
}

func TestCpu_OutputFull(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(104, 1, 104, 2, 99)
	output.Capacity = 1

	_, err := cpu.Run()
	assert.ErrorIs(err, io.ErrChannelFull)
	assert.Equal([]int64{1}, output.Words())
}

func TestCpu_StepLimit(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(1105, 1, 0)
	cpu.StepLimit = 10

	_, err := cpu.Run()
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(10, cpu.Ticks)
}

func TestCpu_Basic(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(VARIANT_BASIC)
	cpu.Reset(Memory{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50})
	result, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(Word(3500), result)

	// Opcodes outside of the basic set fail rather than being skipped.
	var eo ErrOpcode

	cpu.Reset(Memory{1101, 1, 1, 0, 99})
	_, err = cpu.Run()
	assert.True(errors.As(err, &eo))
	assert.Equal(ErrOpcode(1101), eo)

	cpu.Reset(Memory{3, 0, 99})
	cpu.SetInput(1)
	_, err = cpu.Run()
	assert.True(errors.As(err, &eo))
	assert.Equal(ErrOpcode(3), eo)
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	program := Memory{1, 1, 2, 0, 4, 0, 99}

	cpu, output := newTestCpu(program...)
	result, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(Word(3), result)
	assert.Equal([]int64{3}, output.Words())

	// The program given to reset is never modified.
	assert.Equal(Memory{1, 1, 2, 0, 4, 0, 99}, program)

	cpu.Reset(program)
	assert.Equal(0, cpu.Ip)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(STATE_RUNNING, cpu.State)
	assert.Nil(cpu.Err())
	assert.Equal(0, output.Len())

	// [0] = [1] + [5]
	cpu.Memory[2] = 5
	cpu.Memory[5] = 5
	result, err = cpu.Run()
	assert.NoError(err)
	assert.Equal(Word(6), result)
	assert.Equal([]int64{6}, output.Words())
	assert.Equal(Word(2), program[2])
	assert.Equal(Word(0), program[5])
}

func TestCpu_Defines(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(VARIANT_FULL)
	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}

	assert.Equal("1", defines["OP_ADD"])
	assert.Equal("99", defines["OP_HALT"])
	assert.Equal("1", defines["MODE_IMMEDIATE"])
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(1, 1, 2, 0, 99)
	cpu.SetInput(12)
	_, err := cpu.Tick()
	assert.NoError(err)

	text := cpu.String()
	assert.Contains(text, "ip: 0004 [99]")
	assert.Contains(text, "state: running")
	assert.Contains(text, "input: 12")
}
