package cpu

import (
	"iter"
)

// Opcode is an assembled instruction, and its source.
type Opcode struct {
	LineNo int      // Source line number.
	Ip     int      // Instruction index.
	Words  []string // Source tokens.
	Code   Word     // Encoded instruction.
}

type Program struct {
	Opcodes []Opcode
}

// Debug finds the opcode at an instruction index, or nil.
func (prog *Program) Debug(ip int) (op *Opcode) {
	for n := range prog.Opcodes {
		if prog.Opcodes[n].Ip == ip {
			op = &prog.Opcodes[n]
			break
		}
	}

	return
}

// Binary returns the raw instruction words.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, uint32(code))
	}

	return
}

// Code returns the instruction words, as loaded by the cpu.
func (prog *Program) Code() (code []Word) {
	for _, w := range prog.Codes() {
		code = append(code, w)
	}

	return
}

func (prog *Program) Codes() iter.Seq2[int, Word] {
	return func(yield func(ip int, code Word) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Ip, op.Code) {
				return
			}
		}
	}
}
