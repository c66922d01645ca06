package cpu

import (
	"errors"
)

// DisassembleWord renders a word as a line of assembler source.
func DisassembleWord(w Word) (text string, err error) {
	inst, err := Decode(w)
	if err != nil {
		err = errors.Join(ErrOpcode(w), err)
		return
	}

	text, err = inst.Text()
	return
}

// Disassemble renders each word as a line of assembler source.
// The first word that does not decode stops the disassembly.
func Disassemble(code []Word) (lines []string, err error) {
	for ip, w := range code {
		var text string
		text, err = DisassembleWord(w)
		if err != nil {
			err = &ErrDisassemble{Ip: ip, Word: w, Err: err}
			return
		}
		lines = append(lines, text)
	}

	return
}
