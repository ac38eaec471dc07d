// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/internal"
	"github.com/ezrec/intcode/io"
)

const (
	ADDR_NOUN   = 1   // Address patched with the noun.
	ADDR_VERB   = 2   // Address patched with the verb.
	SEARCH_SPAN = 100 // Nouns and verbs are searched in [0, SEARCH_SPAN).
)

var _emulator_defines = map[string]string{
	"ADDR_NOUN":   fmt.Sprintf("%v", ADDR_NOUN),
	"ADDR_VERB":   fmt.Sprintf("%v", ADDR_VERB),
	"SEARCH_SPAN": fmt.Sprintf("%v", SEARCH_SPAN),
}

// Result of a run: both result channels of the machine.
type Result struct {
	Word0   cpu.Word // Word at address 0 after halt.
	Outputs []int64  // Emitted words, in emission order.
}

// Emulator state. CPU + program + output channels.
type Emulator struct {
	Verbose  bool        // If set, enables verbose logging.
	*cpu.Cpu             // Reference to the CPU simulation.
	Program  cpu.Program // Base program; never modified by a run.

	Output io.Buffer // Collected output words.
	Tape   io.Sink   // If set, also receives every output word.

	patch map[int]cpu.Word
}

// NewEmulator creates a new emulator for a program.
func NewEmulator(variant cpu.Variant, program cpu.Program) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(variant),
		Program: program,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Output.Defines(),
	)
}

// Patch overwrites an address of every subsequent run.
func (emu *Emulator) Patch(addr int, value cpu.Word) {
	if emu.patch == nil {
		emu.patch = make(map[int]cpu.Word, 2)
	}
	emu.patch[addr] = value
}

// ClearPatches removes all patches.
func (emu *Emulator) ClearPatches() {
	clear(emu.patch)
}

// SetNounVerb patches the noun and verb addresses.
func (emu *Emulator) SetNounVerb(noun, verb cpu.Word) {
	emu.Patch(ADDR_NOUN, noun)
	emu.Patch(ADDR_VERB, verb)
}

// Reset the emulator state.
// - Installs a fresh copy of the base program in the CPU.
// - Applies the patches, in address order.
// - Rewinds the output channels.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	var sink cpu.Sink = &emu.Output
	if emu.Tape != nil {
		sink = io.Tee{&emu.Output, emu.Tape}
	}
	emu.Cpu.Output = sink

	emu.Cpu.Reset(cpu.Memory(emu.Program))

	for _, addr := range slices.Sorted(maps.Keys(emu.patch)) {
		err = emu.Cpu.Memory.Set(cpu.Word(addr), emu.patch[addr])
		if err != nil {
			return
		}
		if emu.Verbose {
			log.Printf("emulator: patch [%d] = %d", addr, emu.patch[addr])
		}
	}

	return
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return emu.Cpu.Ip
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Cpu.Ip
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, Err: err}
		}
	}()

	done, err = emu.Cpu.Tick()
	return
}

// Run resets the emulator and runs the program to halt. If input is
// non-nil, it is the word read by every input instruction.
func (emu *Emulator) Run(input *cpu.Word) (result Result, err error) {
	if input != nil {
		emu.Cpu.SetInput(*input)
	} else {
		emu.Cpu.ClearInput()
	}

	err = emu.Reset()
	if err != nil {
		return
	}

	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	result.Word0, err = emu.Cpu.Memory.Get(0)
	if err != nil {
		return
	}
	result.Outputs = emu.Output.Words()

	return
}

// Diagnostic runs the program with an input word, and returns the last
// emitted output word.
func (emu *Emulator) Diagnostic(input cpu.Word) (code int64, err error) {
	_, err = emu.Run(&input)
	if err != nil {
		return
	}

	code, ok := emu.Output.Last()
	if !ok {
		err = ErrNoOutput
		return
	}

	return
}

// Search finds the first noun and verb, in [0, SEARCH_SPAN), for which
// the word at address 0 is the target after halt.
// Candidates that fail to run are skipped. Existing noun and verb
// patches are restored afterwards.
func (emu *Emulator) Search(ctx context.Context, target cpu.Word) (noun, verb cpu.Word, err error) {
	saved := maps.Clone(emu.patch)
	defer func() { emu.patch = saved }()

	for n := range SEARCH_SPAN {
		for v := range SEARCH_SPAN {
			noun, verb = cpu.Word(n), cpu.Word(v)
			err = ctx.Err()
			if err != nil {
				noun, verb = 0, 0
				return
			}

			emu.SetNounVerb(noun, verb)
			result, run_err := emu.Run(nil)
			if run_err != nil {
				if emu.Verbose {
					log.Printf("emulator: noun %d verb %d: %v", noun, verb, run_err)
				}
				continue
			}
			if result.Word0 == target {
				return
			}
		}
	}

	noun, verb = 0, 0
	err = ErrNotFound
	return
}
