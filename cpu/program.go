package cpu

import (
	"iter"
	"strconv"
	"strings"
)

// Program is the initial memory image of a run.
type Program []Word

// ParseProgram parses comma separated decimal words.
func ParseProgram(text string) (prog Program, err error) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		err = ErrProgramEmpty
		return
	}

	for n, word := range strings.Split(text, ",") {
		word = strings.TrimSpace(word)
		var value int64
		value, err = strconv.ParseInt(word, 10, 64)
		if err != nil {
			err = &ErrWord{Index: n, Word: word, Err: ErrParseNumber(word)}
			return
		}
		prog = append(prog, Word(value))
	}

	return
}

// Memory returns a private memory image of the program.
func (prog Program) Memory() Memory {
	return Memory(prog).Clone()
}

// Clone returns a copy of the program.
func (prog Program) Clone() Program {
	return Program(Memory(prog).Clone())
}

// Patch returns a copy of the program with a word replaced.
func (prog Program) Patch(addr int, value Word) (patched Program, err error) {
	patched = prog.Clone()
	err = Memory(patched).Set(Word(addr), value)
	if err != nil {
		patched = nil
	}
	return
}

// String returns the program in its comma separated form.
func (prog Program) String() string {
	var sb strings.Builder
	for n, word := range prog {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(int64(word), 10))
	}
	return sb.String()
}

// Disassemble iterates over the instructions of the program from
// address zero, stopping at the first word that does not decode.
// Halt does not stop the listing, as data may follow.
func (prog Program) Disassemble(variant Variant) iter.Seq2[int, Instruction] {
	return func(yield func(ip int, inst Instruction) bool) {
		mem := Memory(prog)
		ip := 0
		for ip < len(mem) {
			inst, next, err := Decode(mem, ip, variant)
			if err != nil {
				return
			}
			if !yield(ip, inst) {
				return
			}
			ip = next
		}
	}
}
