// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command spuasm assembles SPU source into a flat binary image.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ezrec/spu/device"
	"github.com/ezrec/spu/emulator"
)

// defineFlags collects repeated -D NAME=VALUE flags.
type defineFlags map[string]string

func (df defineFlags) String() string {
	var defs []string
	for name, value := range df {
		defs = append(defs, name+"="+value)
	}
	return strings.Join(defs, ",")
}

func (df defineFlags) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		return fmt.Errorf("'%v' is not NAME=VALUE", text)
	}
	df[name] = value
	return nil
}

func main() {
	var output string
	var verbose bool
	defines := defineFlags{}

	flag.StringVar(&output, "o", "-", "Binary output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(defines, "D", "Predefine NAME=VALUE (repeatable)")

	flag.Parse()

	source := "example.s"
	switch flag.NArg() {
	case 0:
	case 1:
		source = flag.Arg(0)
	default:
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	inf, err := os.Open(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
	defer inf.Close()

	emu := emulator.NewEmulator()
	defer emu.Close()
	emu.Verbose = verbose

	for name, value := range defines {
		emu.Predefine(name, value)
	}

	err = emu.Assemble(inf)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	var ouf io.Writer = os.Stdout
	if output != "-" {
		file, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer file.Close()
		ouf = file
	}

	rom := device.Rom{Data: emu.Program.Binary()}
	_, err = rom.WriteTo(ouf)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}
}
