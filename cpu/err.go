package cpu

import (
	"errors"

	"github.com/ezrec/spu/translate"
)

var f = translate.From

var (
	// Codec errors
	ErrDecode        = errors.New(f("bit field outside of the argument"))
	ErrOperandRange  = errors.New(f("number too long"))
	ErrShapeMismatch = errors.New(f("shape mismatch"))
	ErrOpcodeUnknown = errors.New(f("opcode unknown"))
	ErrCondInvalid   = errors.New(f("jump condition invalid"))

	// Cpu errors
	ErrDivisionByZero = errors.New(f("division by zero"))
	ErrNegativeSqrt   = errors.New(f("square root of a negative number"))
	ErrStackUnderflow = errors.New(f("stack underflow"))
	ErrStackOverflow  = errors.New(f("stack overflow"))
	ErrCallStack      = errors.New(f("call stack"))
	ErrOutOfBounds    = errors.New(f("out of bounds access"))
	ErrInput          = errors.New(f("console input"))
	ErrAlreadyLoaded  = errors.New(f("code already loaded"))
	ErrNotRunning     = errors.New(f("cpu not running"))
	ErrClosed         = errors.New(f("cpu closed"))

	// Assembler errors
	ErrArity              = errors.New(f("wrong number of operands"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label .%v undefined", string(el))
}

// ErrOpcode reports the instruction word that failed.
type ErrOpcode Word

func (eo ErrOpcode) Error() string {
	word := Word(eo)
	if word.Opcode() == OP_DIRECTIVE {
		directive, _ := word.DirectiveOpcode()
		return f("bad opcode 0x%02x.0x%03x in word 0x%08x", word.Opcode(), directive, uint32(word))
	}
	return f("bad opcode 0x%02x in word 0x%08x", word.Opcode(), uint32(word))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrDisassemble locates a word that could not be disassembled.
type ErrDisassemble struct {
	Ip   int
	Word Word
	Err  error
}

func (err ErrDisassemble) Error() string {
	return f("%04x: %v", err.Ip, err.Err)
}

func (err ErrDisassemble) Unwrap() error {
	return err.Err
}
