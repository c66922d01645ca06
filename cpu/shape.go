// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -linecomment -type=Shape

// Shape is the operand layout of an instruction.
type Shape int

const (
	SHAPE_TRIPLE_REG = Shape(iota) // triple_reg
	SHAPE_DOUBLE_REG               // double_reg
	SHAPE_SINGLE_REG               // single_reg
	SHAPE_NO_ARG                   // no_arg
	SHAPE_LOAD_CONST               // load_const
	SHAPE_MOVE                     // move
	SHAPE_JUMP                     // jump
	SHAPE_COUNT                    // count
)

const (
	IMMEDIATE_BITLEN = 20
	OFFSET_BITLEN    = 20
	MOVE_RESERVED    = 2
)

// Args are the decoded operands of an instruction, one type per Shape.
type Args interface {
	Shape() Shape
}

type ArgsTripleReg struct {
	Rd, Rl, Rr Register
}

type ArgsDoubleReg struct {
	Rd, Rn Register
}

type ArgsSingleReg struct {
	Rd Register
}

type ArgsNoArg struct{}

type ArgsLoadConst struct {
	Rd  Register
	Imm int32
}

type ArgsMove struct {
	Rd, Rn Register
}

type ArgsJump struct {
	Cond   Cond
	Offset int32
}

func (ArgsTripleReg) Shape() Shape { return SHAPE_TRIPLE_REG }
func (ArgsDoubleReg) Shape() Shape { return SHAPE_DOUBLE_REG }
func (ArgsSingleReg) Shape() Shape { return SHAPE_SINGLE_REG }
func (ArgsNoArg) Shape() Shape     { return SHAPE_NO_ARG }
func (ArgsLoadConst) Shape() Shape { return SHAPE_LOAD_CONST }
func (ArgsMove) Shape() Shape      { return SHAPE_MOVE }
func (ArgsJump) Shape() Shape      { return SHAPE_JUMP }

// argsAs asserts the concrete operand type.
func argsAs[T Args](args Args) (value T, err error) {
	value, ok := args.(T)
	if !ok {
		err = fmt.Errorf("%w: %v is not %v", ErrShapeMismatch, shapeOf(args), value.Shape())
	}
	return
}

func shapeOf(args Args) string {
	if args == nil {
		return "nil"
	}
	return args.Shape().String()
}

// Resolver converts a jump target operand to a relative offset.
type Resolver interface {
	Resolve(operand string) (offset int64, err error)
}

type shapeCodec struct {
	directive    bool
	arity        int
	decodeBinary func(w Word) (Args, error)
	encodeBinary func(w *Word, args Args) error
	decodeText   func(words []string, res Resolver) (Args, error)
	encodeText   func(args Args) []string
}

var shapeCodecs = [SHAPE_COUNT]shapeCodec{
	SHAPE_TRIPLE_REG: {
		directive: true,
		arity:     3,
		decodeBinary: func(w Word) (args Args, err error) {
			var a ArgsTripleReg
			a.Rd, err = w.DirectiveRegister(0, true)
			if err == nil {
				a.Rl, err = w.DirectiveRegister(4, false)
			}
			if err == nil {
				a.Rr, err = w.DirectiveRegister(9, false)
			}
			args = a
			return
		},
		encodeBinary: func(w *Word, args Args) (err error) {
			a, err := argsAs[ArgsTripleReg](args)
			if err == nil {
				err = w.SetDirectiveRegister(0, true, a.Rd)
			}
			if err == nil {
				err = w.SetDirectiveRegister(4, false, a.Rl)
			}
			if err == nil {
				err = w.SetDirectiveRegister(9, false, a.Rr)
			}
			return
		},
		decodeText: func(words []string, _ Resolver) (args Args, err error) {
			regs, err := parseRegisters(words[1:])
			if err != nil {
				return
			}
			args = ArgsTripleReg{Rd: regs[0], Rl: regs[1], Rr: regs[2]}
			return
		},
		encodeText: func(args Args) []string {
			a := args.(ArgsTripleReg)
			return []string{a.Rd.String(), a.Rl.String(), a.Rr.String()}
		},
	},
	SHAPE_DOUBLE_REG: {
		directive: true,
		arity:     2,
		decodeBinary: func(w Word) (args Args, err error) {
			var a ArgsDoubleReg
			a.Rd, err = w.DirectiveRegister(0, true)
			if err == nil {
				a.Rn, err = w.DirectiveRegister(4, false)
			}
			args = a
			return
		},
		encodeBinary: func(w *Word, args Args) (err error) {
			a, err := argsAs[ArgsDoubleReg](args)
			if err == nil {
				err = w.SetDirectiveRegister(0, true, a.Rd)
			}
			if err == nil {
				err = w.SetDirectiveRegister(4, false, a.Rn)
			}
			return
		},
		decodeText: func(words []string, _ Resolver) (args Args, err error) {
			regs, err := parseRegisters(words[1:])
			if err != nil {
				return
			}
			args = ArgsDoubleReg{Rd: regs[0], Rn: regs[1]}
			return
		},
		encodeText: func(args Args) []string {
			a := args.(ArgsDoubleReg)
			return []string{a.Rd.String(), a.Rn.String()}
		},
	},
	SHAPE_SINGLE_REG: {
		directive: true,
		arity:     1,
		decodeBinary: func(w Word) (args Args, err error) {
			var a ArgsSingleReg
			a.Rd, err = w.DirectiveRegister(0, true)
			args = a
			return
		},
		encodeBinary: func(w *Word, args Args) (err error) {
			a, err := argsAs[ArgsSingleReg](args)
			if err == nil {
				err = w.SetDirectiveRegister(0, true, a.Rd)
			}
			return
		},
		decodeText: func(words []string, _ Resolver) (args Args, err error) {
			regs, err := parseRegisters(words[1:])
			if err != nil {
				return
			}
			args = ArgsSingleReg{Rd: regs[0]}
			return
		},
		encodeText: func(args Args) []string {
			return []string{args.(ArgsSingleReg).Rd.String()}
		},
	},
	SHAPE_NO_ARG: {
		directive: true,
		arity:     0,
		decodeBinary: func(w Word) (args Args, err error) {
			args = ArgsNoArg{}
			return
		},
		encodeBinary: func(w *Word, args Args) (err error) {
			_, err = argsAs[ArgsNoArg](args)
			return
		},
		decodeText: func(words []string, _ Resolver) (args Args, err error) {
			args = ArgsNoArg{}
			return
		},
		encodeText: func(args Args) []string {
			return nil
		},
	},
	SHAPE_LOAD_CONST: {
		arity: 2,
		decodeBinary: func(w Word) (args Args, err error) {
			var a ArgsLoadConst
			a.Rd, err = w.Register(0, true)
			if err != nil {
				return
			}
			imm, err := w.Field(4, IMMEDIATE_BITLEN)
			if err != nil {
				return
			}
			a.Imm = signExtend(imm, IMMEDIATE_BITLEN)
			args = a
			return
		},
		encodeBinary: func(w *Word, args Args) (err error) {
			a, err := argsAs[ArgsLoadConst](args)
			if err != nil {
				return
			}
			imm, err := signedField(int64(a.Imm), IMMEDIATE_BITLEN)
			if err == nil {
				err = w.SetRegister(0, true, a.Rd)
			}
			if err == nil {
				err = w.SetField(4, IMMEDIATE_BITLEN, imm)
			}
			return
		},
		decodeText: func(words []string, _ Resolver) (args Args, err error) {
			rd, err := ParseRegister(words[1])
			if err != nil {
				return
			}
			imm, err := ParseImmediate(words[2])
			if err != nil {
				return
			}
			_, err = signedField(imm, IMMEDIATE_BITLEN)
			if err != nil {
				return
			}
			args = ArgsLoadConst{Rd: rd, Imm: int32(imm)}
			return
		},
		encodeText: func(args Args) []string {
			a := args.(ArgsLoadConst)
			return []string{a.Rd.String(), fmt.Sprintf("$%d", a.Imm)}
		},
	},
	SHAPE_MOVE: {
		arity: 2,
		decodeBinary: func(w Word) (args Args, err error) {
			var a ArgsMove
			a.Rd, err = w.Register(0, true)
			if err == nil {
				a.Rn, err = w.Register(4+MOVE_RESERVED, false)
			}
			args = a
			return
		},
		encodeBinary: func(w *Word, args Args) (err error) {
			a, err := argsAs[ArgsMove](args)
			if err == nil {
				err = w.SetRegister(0, true, a.Rd)
			}
			if err == nil {
				err = w.SetRegister(4+MOVE_RESERVED, false, a.Rn)
			}
			return
		},
		decodeText: func(words []string, _ Resolver) (args Args, err error) {
			regs, err := parseRegisters(words[1:])
			if err != nil {
				return
			}
			args = ArgsMove{Rd: regs[0], Rn: regs[1]}
			return
		},
		encodeText: func(args Args) []string {
			a := args.(ArgsMove)
			return []string{a.Rd.String(), a.Rn.String()}
		},
	},
	SHAPE_JUMP: {
		arity: 1,
		decodeBinary: func(w Word) (args Args, err error) {
			var a ArgsJump
			cond, err := w.Register(0, true)
			if err != nil {
				return
			}
			a.Cond = Cond(cond)
			if a.Cond >= COND_COUNT {
				err = fmt.Errorf("%w: %d", ErrCondInvalid, cond)
				return
			}
			offset, err := w.Field(4, OFFSET_BITLEN)
			if err != nil {
				return
			}
			a.Offset = signExtend(offset, OFFSET_BITLEN)
			args = a
			return
		},
		encodeBinary: func(w *Word, args Args) (err error) {
			a, err := argsAs[ArgsJump](args)
			if err != nil {
				return
			}
			if a.Cond < COND_ALWAYS || a.Cond >= COND_COUNT {
				err = fmt.Errorf("%w: %d", ErrCondInvalid, int(a.Cond))
				return
			}
			offset, err := signedField(int64(a.Offset), OFFSET_BITLEN)
			if err == nil {
				err = w.SetRegister(0, true, Register(a.Cond))
			}
			if err == nil {
				err = w.SetField(4, OFFSET_BITLEN, offset)
			}
			return
		},
		decodeText: func(words []string, res Resolver) (args Args, err error) {
			_, suffix, _ := strings.Cut(words[0], ".")
			cond, err := ParseCond(suffix)
			if err != nil {
				return
			}

			var offset int64
			operand := words[1]
			switch {
			case strings.HasPrefix(operand, "$"):
				offset, err = ParseImmediate(operand)
			case strings.HasPrefix(operand, "."):
				if res == nil {
					err = ErrLabelMissing(operand[1:])
					break
				}
				offset, err = res.Resolve(operand)
			default:
				err = fmt.Errorf("%w: '%v'", ErrOperandInvalid, operand)
			}
			if err != nil {
				return
			}

			_, err = signedField(offset, OFFSET_BITLEN)
			if err != nil {
				return
			}

			args = ArgsJump{Cond: cond, Offset: int32(offset)}
			return
		},
		encodeText: func(args Args) []string {
			return []string{fmt.Sprintf("$%d", args.(ArgsJump).Offset)}
		},
	},
}

func parseRegisters(words []string) (regs []Register, err error) {
	regs = make([]Register, len(words))
	for n, word := range words {
		regs[n], err = ParseRegister(word)
		if err != nil {
			return
		}
	}
	return
}

func (shape Shape) codec() (codec *shapeCodec, err error) {
	if shape < 0 || shape >= SHAPE_COUNT {
		err = fmt.Errorf("%w: %v", ErrShapeMismatch, shape)
		return
	}
	codec = &shapeCodecs[shape]
	return
}

// Directive reports if the shape lives in the directive opcode space.
func (shape Shape) Directive() bool {
	codec, err := shape.codec()
	return err == nil && codec.directive
}

// Arity is the number of text operands following the mnemonic.
func (shape Shape) Arity() int {
	codec, err := shape.codec()
	if err != nil {
		return 0
	}
	return codec.arity
}

// DecodeBinary extracts the opcode and the operands of a word.
// For directive shapes the opcode is the embedded directive opcode.
func (shape Shape) DecodeBinary(w Word) (opcode uint, args Args, err error) {
	codec, err := shape.codec()
	if err != nil {
		return
	}

	if codec.directive != (w.Opcode() == OP_DIRECTIVE) {
		err = fmt.Errorf("%w: opcode 0x%02x for %v", ErrShapeMismatch, w.Opcode(), shape)
		return
	}

	if codec.directive {
		opcode, err = w.DirectiveOpcode()
	} else {
		opcode = w.Opcode()
	}
	if err != nil {
		return
	}

	args, err = codec.decodeBinary(w)
	if err != nil {
		args = nil
	}
	return
}

// EncodeBinary builds a word from an opcode and its operands.
func (shape Shape) EncodeBinary(opcode uint, args Args) (w Word, err error) {
	codec, err := shape.codec()
	if err != nil {
		return
	}

	if codec.directive {
		if opcode > MAX_DIRECTIVE_OPCODE {
			err = fmt.Errorf("%w: directive opcode 0x%x", ErrOperandRange, opcode)
			return
		}
		err = w.SetOpcode(OP_DIRECTIVE)
		if err == nil {
			err = w.SetDirectiveOpcode(opcode)
		}
	} else {
		if opcode == OP_DIRECTIVE {
			err = fmt.Errorf("%w: opcode 0x%02x is reserved", ErrShapeMismatch, opcode)
			return
		}
		err = w.SetOpcode(opcode)
	}
	if err != nil {
		return
	}

	err = codec.encodeBinary(&w, args)
	if err != nil {
		w = 0
	}
	return
}

// DecodeText parses the operands of a tokenized source line.
// words[0] is the mnemonic, including any condition suffix.
func (shape Shape) DecodeText(words []string, res Resolver) (args Args, err error) {
	codec, err := shape.codec()
	if err != nil {
		return
	}

	if len(words) != 1+codec.arity {
		err = fmt.Errorf("%w: %v expects %d, not %d", ErrArity, shape, codec.arity, len(words)-1)
		return
	}

	args, err = codec.decodeText(words, res)
	return
}

// EncodeText renders the source form of an instruction.
func (shape Shape) EncodeText(mnemonic string, args Args) (text string, err error) {
	codec, err := shape.codec()
	if err != nil {
		return
	}

	if args == nil || args.Shape() != shape {
		err = fmt.Errorf("%w: %v is not %v", ErrShapeMismatch, shapeOf(args), shape)
		return
	}

	if jump, ok := args.(ArgsJump); ok && jump.Cond != COND_ALWAYS {
		mnemonic += "." + jump.Cond.String()
	}

	text = strings.Join(append([]string{mnemonic}, codec.encodeText(args)...), " ")
	return
}
