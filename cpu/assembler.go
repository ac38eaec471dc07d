// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// link is an operand word that refers to a label defined later.
type link struct {
	LineNo int
	Line   string
	Addr   int
	Label  string
}

// Assembler is a single pass assembler for the machine.
//
// Each line holds optional labels, then a mnemonic and its operands:
//
//	loop:   add #1 count count   ; count += 1
//	        lt count #10 flag
//	        jt flag #loop
//	        hlt
//	count:  .word 0
//	flag:   .word 0
//
// A '#' prefix selects immediate mode. Operands may be numbers, labels,
// equates, or $(...) compile time expressions.
type Assembler struct {
	Verbose bool    // If set, verbosely logs the assembler actions.
	Program Program // Generated words.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	links []link
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// mnemonicMap maps mnemonics to opcodes.
var mnemonicMap = func() map[string]Opcode {
	mnemonics := make(map[string]Opcode, len(opcodeName))
	for op, name := range opcodeName {
		mnemonics[name] = op
	}
	return mnemonics
}()

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value Word, err error) {
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = Word(v64)
	return
}

// isLabel returns true if the word is a label name.
func isLabel(word string) bool {
	if len(word) == 0 {
		return false
	}
	for n, r := range word {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case n > 0 && (unicode.IsDigit(r) || r == '.'):
		default:
			return false
		}
	}
	return true
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value Word, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var equ Word
		equ, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(int64(equ))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = Word(st_int64)
	return
}

var parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)

// parseLine splits a line into words, after expression evaluation.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = strings.Fields(line)

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !isLabel(label) {
			err = ErrTargetInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = len(asm.Program)
		words = words[1:]
	}

	return
}

// operand decodes an operand word into its mode and value.
// Labels not yet defined are recorded for linking.
func (asm *Assembler) operand(word string, lineno int, line string) (mode Mode, value Word, err error) {
	mode = MODE_POSITION
	if strings.HasPrefix(word, "#") {
		mode = MODE_IMMEDIATE
		word = word[1:]
	}

	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	if isLabel(word) {
		addr, ok := asm.Label[word]
		if ok {
			value = Word(addr)
			return
		}
		asm.links = append(asm.links, link{
			LineNo: lineno,
			Line:   line,
			Addr:   len(asm.Program),
			Label:  word,
		})
		return
	}

	value, err = asm.valueOf(word)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int, line string) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	if words[0] == ".word" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var mode Mode
			var value Word
			mode, value, err = asm.operand(word, lineno, line)
			if err != nil {
				return
			}
			if mode != MODE_POSITION {
				err = ErrTargetInvalid
				return
			}
			asm.Program = append(asm.Program, value)
		}
		return
	}

	op, ok := mnemonicMap[words[0]]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := words[1:]
	arity := op.Arity()
	if len(args) < arity {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > arity {
		err = ErrOpcodeExtraArgs
		return
	}

	// Destinations are always addresses.
	dest := -1
	switch arity {
	case 3:
		dest = 2
	case 1:
		if op == OP_INPUT {
			dest = 0
		}
	}

	header := len(asm.Program)
	asm.Program = append(asm.Program, Word(op))

	var modes []Mode
	for n, arg := range args {
		var mode Mode
		var value Word
		mode, value, err = asm.operand(arg, lineno, line)
		if err != nil {
			return
		}
		if n == dest && mode != MODE_POSITION {
			err = ErrTargetInvalid
			return
		}
		modes = append(modes, mode)
		asm.Program = append(asm.Program, value)
	}

	asm.Program[header] = MakeHeader(op, modes...)

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Program = asm.Program[:0]
	asm.links = asm.links[:0]
	asm.Label = make(map[string]int, 16)
	asm.Equate = maps.Clone(_cpu_defines)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno, line)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for _, ln := range asm.links {
		addr, ok := asm.Label[ln.Label]
		if !ok {
			lineno = ln.LineNo
			line = ln.Line
			err = ErrLabelMissing(ln.Label)
			return
		}
		asm.Program[ln.Addr] = Word(addr)
	}

	prog = slices.Clone(asm.Program)

	return
}
