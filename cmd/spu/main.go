// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command spu runs an SPU binary image, or compiles and runs SPU source.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/ezrec/spu/cpu"
	"github.com/ezrec/spu/emulator"
)

func main() {
	var compile string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".s file to compile and run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Console.Input = os.Stdin
	emu.Console.Output = os.Stdout

	switch {
	case len(compile) != 0:
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		err = emu.Assemble(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	default:
		binary := "example.o"
		switch flag.NArg() {
		case 0:
		case 1:
			binary = flag.Arg(0)
		default:
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
		}
		inf, err := os.Open(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		err = emu.LoadRom(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	state, err := emu.Run()
	if state == cpu.STATE_FAULTED {
		emu.Cpu.Dump(os.Stderr)
		log.Printf("%v", err)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
