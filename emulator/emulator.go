// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs SPU programs, from source or from a binary image,
// and maps execution faults back to their source lines.
package emulator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/spu/cpu"
	"github.com/ezrec/spu/device"
	"github.com/ezrec/spu/internal"
)

var _emulator_defines = map[string]string{
	"WORD_SIZE": fmt.Sprintf("%v", device.WORD_SIZE),
}

// Emulator state. CPU + console + ROM image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the ROM, for debugging.

	Console device.Console // Console for input, print, draw and dump.
	Rom     device.Rom     // Binary image loaded at reset.

	predefine map[string]string // Extra assembler predefines.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
	}
	emu.Cpu = cpu.NewCpu(&emu.Console)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Close the emulator
func (emu *Emulator) Close() (err error) {
	err = emu.Cpu.Close()

	return
}

// Predefine adds an assembler equate, overriding the emulator defines.
func (emu *Emulator) Predefine(equ string, value string) {
	if emu.predefine == nil {
		emu.predefine = map[string]string{equ: value}
	} else {
		emu.predefine[equ] = value
	}
}

// Assemble compiles source into the ROM, with the emulator defines.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range internal.IterSeq2Concat(emu.Defines(), maps.All(emu.predefine)) {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Rom.Data = prog.Binary()

	return
}

// LoadRom reads a binary image into the ROM. The program listing is
// recovered by disassembly, and has no source line numbers.
func (emu *Emulator) LoadRom(input io.Reader) (err error) {
	_, err = emu.Rom.ReadFrom(input)
	if err != nil {
		return
	}

	prog := &cpu.Program{}
	for ip, data := range emu.Rom.Data {
		code := cpu.Word(data)
		text, derr := cpu.DisassembleWord(code)
		if derr != nil {
			text = fmt.Sprintf(".word 0x%08x", data)
		}
		prog.Opcodes = append(prog.Opcodes, cpu.Opcode{Ip: ip, Words: strings.Fields(text), Code: code})
	}

	emu.Program = prog

	return
}

// Reset the emulator, and load the ROM into a fresh cpu.
func (emu *Emulator) Reset() (err error) {
	old := emu.Cpu

	err = old.Close()
	if err != nil && !errors.Is(err, cpu.ErrClosed) {
		return
	}

	emu.Console.Rewind()

	emu.Cpu = cpu.NewCpu(&emu.Console)
	emu.Cpu.ScreenHeight = old.ScreenHeight
	emu.Cpu.ScreenWidth = old.ScreenWidth
	emu.Cpu.Verbose = emu.Verbose

	code := make([]cpu.Word, len(emu.Rom.Data))
	for n, data := range emu.Rom.Data {
		code[n] = cpu.Word(data)
	}

	err = emu.Cpu.Load(code)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: reset, %d words", len(code))
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return emu.Cpu.Ip
}

// LineNo returns the current line number for the executing opcode,
// or 0 if it has no source.
func (emu *Emulator) LineNo() int {
	op := emu.Program.Debug(emu.Cpu.Ip)
	if op == nil {
		return 0
	}

	return op.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: emu.LineNo(), Ip: emu.Cpu.Ip, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	done = emu.Cpu.State != cpu.STATE_RUNNING

	return
}

// Run ticks the emulator until it halts or faults.
func (emu *Emulator) Run() (state cpu.State, err error) {
	for done := false; !done && err == nil; {
		done, err = emu.Tick()
	}

	state = emu.Cpu.State
	return
}
