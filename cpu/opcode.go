// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// Base opcodes.
const (
	OP_MOV       = 0x01
	OP_LDC       = 0x02
	OP_JMP       = 0x03
	OP_CALL      = 0x04
	OP_DIRECTIVE = 0x3e
)

// Directive opcodes, valid under OP_DIRECTIVE.
const (
	DIR_ADD   = 0x01
	DIR_MUL   = 0x02
	DIR_SUB   = 0x03
	DIR_DIV   = 0x04
	DIR_MOD   = 0x05
	DIR_SHL   = 0x06
	DIR_SHR   = 0x07
	DIR_SQRT  = 0x08
	DIR_NOT   = 0x09
	DIR_OR    = 0x0a
	DIR_XOR   = 0x0b
	DIR_AND   = 0x0c
	DIR_CMP   = 0x10
	DIR_LDM   = 0x11
	DIR_STM   = 0x12
	DIR_SCRHW = 0x13
	DIR_PUSHR = 0x20
	DIR_POPR  = 0x21
	DIR_INPUT = 0x22
	DIR_PRINT = 0x23
	DIR_DRAW  = 0x24
	DIR_RET   = 0x30
	DIR_DUMP  = 0xfe
	DIR_HALT  = 0xff
)

const (
	REGISTER_COUNT  = 32
	REGISTER_BITLEN = 5
	REGISTER_RSP    = Register(REGISTER_COUNT - 1)
)

// Register is a general purpose register index.
type Register uint8

// String returns the assembler name of the register.
func (r Register) String() string {
	if r == REGISTER_RSP {
		return "rsp"
	}
	return "r" + strconv.Itoa(int(r))
}

// ParseRegister parses 'r0' .. 'r30' or 'rsp'.
func ParseRegister(word string) (r Register, err error) {
	if word == "rsp" {
		r = REGISTER_RSP
		return
	}

	digits, ok := strings.CutPrefix(word, "r")
	if !ok {
		err = ErrParseRegister(word)
		return
	}

	value, perr := strconv.ParseUint(digits, 10, 8)
	if perr != nil || value >= uint64(REGISTER_RSP) {
		err = ErrParseRegister(word)
		return
	}

	r = Register(value)
	return
}

// ParseImmediate parses a '$' prefixed integer, in any Go integer base.
func ParseImmediate(word string) (value int64, err error) {
	digits, ok := strings.CutPrefix(word, "$")
	if !ok {
		err = ErrParseNumber(word)
		return
	}

	value, err = strconv.ParseInt(digits, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// Flags is the comparison flags register.
type Flags uint8

const (
	FLAG_EQUAL    = Flags(1 << 0)
	FLAG_LESS     = Flags(1 << 1)
	FLAG_OVERFLOW = Flags(1 << 2) // Reserved.
)

func (fl Flags) String() string {
	var names []string
	if fl&FLAG_EQUAL != 0 {
		names = append(names, "eq")
	}
	if fl&FLAG_LESS != 0 {
		names = append(names, "lt")
	}
	if fl&FLAG_OVERFLOW != 0 {
		names = append(names, "ov")
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

//go:generate go tool stringer -linecomment -type=Cond

// Cond is a jump condition, tested against the Flags.
type Cond int

const (
	COND_ALWAYS = Cond(0) // always
	COND_EQ     = Cond(1) // eq
	COND_NEQ    = Cond(2) // neq
	COND_GEQ    = Cond(3) // geq
	COND_GT     = Cond(4) // gt
	COND_LEQ    = Cond(5) // leq
	COND_LT     = Cond(6) // lt
	COND_COUNT  = 7
)

// ParseCond parses a jump mnemonic suffix. The empty suffix is COND_ALWAYS.
func ParseCond(suffix string) (cond Cond, err error) {
	if suffix == "" {
		cond = COND_ALWAYS
		return
	}

	for cond = COND_EQ; cond < COND_COUNT; cond++ {
		if cond.String() == suffix {
			return
		}
	}

	err = fmt.Errorf("%w: .%v", ErrCondInvalid, suffix)
	return
}

// Taken reports if the condition holds for the flags.
func (cond Cond) Taken(flags Flags) (taken bool, err error) {
	equal := flags&FLAG_EQUAL != 0
	less := flags&FLAG_LESS != 0

	switch cond {
	case COND_ALWAYS:
		taken = true
	case COND_EQ:
		taken = equal
	case COND_NEQ:
		taken = !equal
	case COND_GEQ:
		taken = !less
	case COND_GT:
		taken = !less && !equal
	case COND_LEQ:
		taken = less || equal
	case COND_LT:
		taken = less
	default:
		err = fmt.Errorf("%w: %d", ErrCondInvalid, int(cond))
	}

	return
}
