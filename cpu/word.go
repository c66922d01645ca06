// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"encoding/binary"
	"fmt"
)

// Word is a single instruction, as stored in a little-endian binary.
//
// The low byte is the header: a 6-bit base opcode in bits 0..5, the
// register-extended bit 6, and the reserved bit 7. The upper three bytes
// are the 24-bit argument. Argument field positions count from the most
// significant bit of the argument, so position 0 is the top bit of byte 1.
type Word uint32

const (
	WORD_BITLEN      = 32
	ARG_BITLEN       = 24
	OPCODE_BITLEN    = 6
	DIRECTIVE_BITLEN = 10 // Directive opcode, at the top of the argument.

	DIRECTIVE_ARG_BITLEN = ARG_BITLEN - DIRECTIVE_BITLEN

	OPCODE_MASK       = (1 << OPCODE_BITLEN) - 1
	HEADER_REG_EXTEND = 1 << 6
	HEADER_RESERVED   = 1 << 7
	HEADER_MASK       = 0xff
	ARG_MASK          = (1 << ARG_BITLEN) - 1

	MAX_OPCODE           = OPCODE_MASK
	MAX_DIRECTIVE_OPCODE = (1 << DIRECTIVE_BITLEN) - 1
)

// argToCanonical returns the argument with byte 1 as its most significant
// byte.
func argToCanonical(w Word) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(w))
	b[0] = 0
	return binary.BigEndian.Uint32(b[:])
}

// argFromCanonical replaces the argument of w, keeping its header.
func argFromCanonical(w Word, arg uint32) Word {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], arg&ARG_MASK)
	b[0] = byte(uint32(w) & HEADER_MASK)
	return Word(binary.LittleEndian.Uint32(b[:]))
}

func fieldShift(pos, length uint) (shift uint, err error) {
	if length == 0 || pos > ARG_BITLEN || length > ARG_BITLEN-pos {
		err = fmt.Errorf("%w: %d bits at %d", ErrDecode, length, pos)
		return
	}
	shift = ARG_BITLEN - length - pos
	return
}

// Opcode returns the base opcode.
func (w Word) Opcode() uint {
	return uint(w) & OPCODE_MASK
}

// SetOpcode replaces the base opcode.
func (w *Word) SetOpcode(opcode uint) (err error) {
	if opcode > MAX_OPCODE {
		err = fmt.Errorf("%w: opcode 0x%x", ErrOperandRange, opcode)
		return
	}
	*w = Word(uint(*w)&^OPCODE_MASK | opcode)
	return
}

// RegExtended returns the state of the register-extended header bit.
func (w Word) RegExtended() bool {
	return (w & HEADER_REG_EXTEND) != 0
}

func (w *Word) setRegExtended(on bool) {
	if on {
		*w |= HEADER_REG_EXTEND
	} else {
		*w &^= HEADER_REG_EXTEND
	}
}

// Arg returns the argument in its canonical form.
func (w Word) Arg() uint32 {
	return argToCanonical(w)
}

// Field extracts length bits at argument position pos.
func (w Word) Field(pos, length uint) (value uint32, err error) {
	shift, err := fieldShift(pos, length)
	if err != nil {
		return
	}

	value = (argToCanonical(w) >> shift) & ((1 << length) - 1)
	return
}

// SetField stores value as length bits at argument position pos.
// A value wider than the field is rejected, never truncated.
func (w *Word) SetField(pos, length uint, value uint32) (err error) {
	shift, err := fieldShift(pos, length)
	if err != nil {
		return
	}

	mask := uint32(1<<length) - 1
	if value&^mask != 0 {
		err = fmt.Errorf("%w: 0x%x in %d bits", ErrOperandRange, value, length)
		return
	}

	arg := argToCanonical(*w)
	arg = (arg &^ (mask << shift)) | (value << shift)
	*w = argFromCanonical(*w, arg)
	return
}

// Register extracts a register index at argument position pos.
// In head mode the top bit of the index lives in the register-extended
// header bit, and only 4 bits are stored in the argument.
func (w Word) Register(pos uint, head bool) (r Register, err error) {
	if !head {
		var value uint32
		value, err = w.Field(pos, REGISTER_BITLEN)
		r = Register(value)
		return
	}

	value, err := w.Field(pos, REGISTER_BITLEN-1)
	if err != nil {
		return
	}

	r = Register(value)
	if w.RegExtended() {
		r |= REGISTER_COUNT >> 1
	}
	return
}

// SetRegister stores a register index at argument position pos.
func (w *Word) SetRegister(pos uint, head bool, r Register) (err error) {
	if r >= REGISTER_COUNT {
		err = fmt.Errorf("%w: register %d", ErrOperandRange, r)
		return
	}

	if !head {
		err = w.SetField(pos, REGISTER_BITLEN, uint32(r))
		return
	}

	high := REGISTER_COUNT >> 1
	err = w.SetField(pos, REGISTER_BITLEN-1, uint32(r)&uint32(high-1))
	if err != nil {
		return
	}

	w.setRegExtended(r&Register(high) != 0)
	return
}

// DirectiveOpcode returns the directive opcode embedded in the argument.
func (w Word) DirectiveOpcode() (opcode uint, err error) {
	value, err := w.Field(0, DIRECTIVE_BITLEN)
	opcode = uint(value)
	return
}

// SetDirectiveOpcode replaces the embedded directive opcode.
func (w *Word) SetDirectiveOpcode(opcode uint) (err error) {
	err = w.SetField(0, DIRECTIVE_BITLEN, uint32(opcode))
	return
}

// directivePos converts a directive argument position to an argument position.
func directivePos(pos uint) (apos uint, err error) {
	if pos > DIRECTIVE_ARG_BITLEN {
		err = fmt.Errorf("%w: directive position %d", ErrDecode, pos)
		return
	}
	apos = pos + DIRECTIVE_BITLEN
	return
}

// DirectiveField is Field relative to the directive argument.
func (w Word) DirectiveField(pos, length uint) (value uint32, err error) {
	pos, err = directivePos(pos)
	if err != nil {
		return
	}
	return w.Field(pos, length)
}

// SetDirectiveField is SetField relative to the directive argument.
func (w *Word) SetDirectiveField(pos, length uint, value uint32) (err error) {
	pos, err = directivePos(pos)
	if err != nil {
		return
	}
	return w.SetField(pos, length, value)
}

// DirectiveRegister is Register relative to the directive argument.
func (w Word) DirectiveRegister(pos uint, head bool) (r Register, err error) {
	pos, err = directivePos(pos)
	if err != nil {
		return
	}
	return w.Register(pos, head)
}

// SetDirectiveRegister is SetRegister relative to the directive argument.
func (w *Word) SetDirectiveRegister(pos uint, head bool, r Register) (err error) {
	pos, err = directivePos(pos)
	if err != nil {
		return
	}
	return w.SetRegister(pos, head, r)
}

// signExtend interprets the low bits of value as two's complement.
func signExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

// signedField converts a signed value to a bits-wide field.
func signedField(value int64, bits uint) (field uint32, err error) {
	limit := int64(1) << (bits - 1)
	if value < -limit || value >= limit {
		err = fmt.Errorf("%w: %d in %d bits", ErrOperandRange, value, bits)
		return
	}

	field = uint32(value) & ((1 << bits) - 1)
	return
}
