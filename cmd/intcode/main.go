// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/emulator"
	"github.com/ezrec/intcode/io"
)

// defines collects -D NAME=VALUE flags.
type defines map[string]string

func (d defines) String() string {
	var parts []string
	for key, value := range d {
		parts = append(parts, key+"="+value)
	}
	return strings.Join(parts, ",")
}

func (d defines) Set(text string) error {
	key, value, ok := strings.Cut(text, "=")
	if !ok || len(key) == 0 {
		return fmt.Errorf("%q is not NAME=VALUE", text)
	}
	d[key] = value
	return nil
}

// optionalWord is a word flag that records whether it was set.
type optionalWord struct {
	value cpu.Word
	set   bool
}

func (w *optionalWord) String() string {
	if !w.set {
		return ""
	}
	return strconv.FormatInt(int64(w.value), 10)
}

func (w *optionalWord) Set(text string) error {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return err
	}
	w.value = cpu.Word(v)
	w.set = true
	return nil
}

func main() {
	var program string
	var compile string
	var input optionalWord
	var noun optionalWord
	var verb optionalWord
	var target optionalWord
	var limit int
	var basic bool
	var disassemble bool
	var output string
	var verbose bool
	predefine := defines{}

	flag.StringVar(&program, "p", "", "comma separated program file")
	flag.StringVar(&compile, "c", "", "assembly file to compile")
	flag.Var(&input, "i", "Input word")
	flag.Var(&noun, "n", "Noun, patched at address 1")
	flag.Var(&verb, "b", "Verb, patched at address 2")
	flag.Var(&target, "t", "Search for the noun and verb producing this word")
	flag.IntVar(&limit, "l", 0, "Step limit, 0 for none")
	flag.BoolVar(&basic, "basic", false, "Basic instruction set (add, mul, hlt)")
	flag.BoolVar(&disassemble, "d", false, "Disassemble, do not execute")
	flag.StringVar(&output, "o", "-", "Output tape")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(predefine, "D", "Assembler predefine NAME=VALUE")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	variant := cpu.VARIANT_FULL
	if basic {
		variant = cpu.VARIANT_BASIC
	}

	var prog cpu.Program
	switch {
	case len(program) != 0 && len(compile) != 0:
		log.Fatalf("%v: -p and -c are exclusive", os.Args[0])
	case len(program) != 0:
		text, err := os.ReadFile(program)
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
		prog, err = cpu.ParseProgram(string(text))
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		emu := emulator.NewEmulator(variant, nil)
		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		for key, value := range predefine {
			asm.Predefine(key, value)
		}
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	default:
		log.Fatalf("%v: one of -p or -c is required", os.Args[0])
	}

	if disassemble {
		for ip, inst := range prog.Disassemble(variant) {
			fmt.Printf("%04d: %v\n", ip, inst)
		}
		return
	}

	emu := emulator.NewEmulator(variant, prog)
	emu.Verbose = verbose
	emu.Cpu.StepLimit = limit

	if output == "-" {
		emu.Tape = &io.Tape{Output: os.Stdout}
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape = &io.Tape{Output: ouf}
	}

	if noun.set {
		emu.Patch(emulator.ADDR_NOUN, noun.value)
	}
	if verb.set {
		emu.Patch(emulator.ADDR_VERB, verb.value)
	}

	if target.set {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Search output is not interesting.
		emu.Tape = nil
		n, v, err := emu.Search(ctx, target.value)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("noun=%d verb=%d answer=%d\n", n, v, 100*n+v)
		return
	}

	var in *cpu.Word
	if input.set {
		in = &input.value
	}

	result, err := emu.Run(in)
	if err != nil {
		if verbose {
			log.Print(emu.Cpu.String())
		}
		log.Fatal(err)
	}

	fmt.Printf("[0]=%d\n", result.Word0)
}
