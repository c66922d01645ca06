// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command spudisasm lists an SPU binary image as assembler source.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/spu/cpu"
	"github.com/ezrec/spu/device"
)

func main() {
	var hex bool

	flag.BoolVar(&hex, "x", false, "Prefix each line with its index and word")

	flag.Parse()

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
	defer inf.Close()

	var rom device.Rom
	_, err = rom.ReadFrom(inf)
	if err != nil {
		log.Fatalf("%v: %v", binary, err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for ip, data := range rom.Data {
		text, err := cpu.DisassembleWord(cpu.Word(data))
		if err != nil {
			out.Flush()
			log.Fatalf("%v: %v", binary, &cpu.ErrDisassemble{Ip: ip, Word: cpu.Word(data), Err: err})
		}
		if hex {
			fmt.Fprintf(out, "%04x: %08x  %v\n", ip, data, text)
		} else {
			fmt.Fprintln(out, text)
		}
	}
}
