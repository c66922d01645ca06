package cpu

import (
	"fmt"
)

// Instruction is a decoded word.
type Instruction struct {
	Command *Command
	Args    Args
}

// Decode decodes a word using the SPU instruction set.
func Decode(w Word) (inst Instruction, err error) {
	return Commands.Decode(w)
}

// Encode builds the binary form of the instruction.
func (inst Instruction) Encode() (w Word, err error) {
	if inst.Command == nil {
		err = ErrInstructionInvalid
		return
	}

	if inst.Args == nil || inst.Args.Shape() != inst.Command.Shape {
		err = fmt.Errorf("%w: %v takes %v", ErrShapeMismatch, inst.Command.Name, inst.Command.Shape)
		return
	}

	if jump, ok := inst.Args.(ArgsJump); ok && jump.Cond != COND_ALWAYS && !inst.Command.Conditional {
		err = fmt.Errorf("%w: %v.%v", ErrCondInvalid, inst.Command.Name, jump.Cond)
		return
	}

	w, err = inst.Command.Shape.EncodeBinary(inst.Command.Opcode, inst.Args)
	return
}

// Text renders the source form of the instruction.
func (inst Instruction) Text() (text string, err error) {
	if inst.Command == nil {
		err = ErrInstructionInvalid
		return
	}

	text, err = inst.Command.Shape.EncodeText(inst.Command.Name, inst.Args)
	return
}

func (inst Instruction) String() string {
	text, err := inst.Text()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return text
}
