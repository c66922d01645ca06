// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"slices"
)

// ExecFunc applies decoded operands to the cpu.
type ExecFunc func(cpu *Cpu, args Args) (err error)

// Command binds a mnemonic to its opcode, operand shape and handler.
type Command struct {
	Name        string
	Opcode      uint
	Shape       Shape
	Conditional bool // Accepts a '.cond' mnemonic suffix.
	Exec        ExecFunc
}

// Directive reports if the command lives in the directive opcode space.
func (cmd *Command) Directive() bool {
	return cmd.Shape.Directive()
}

// CommandTable indexes commands by opcode and by name.
type CommandTable struct {
	commands []*Command
	opcode   [2][]*Command
}

func spaceOf(directive bool) int {
	if directive {
		return 1
	}
	return 0
}

// NewCommandTable indexes a static command list. A duplicated name or
// opcode is a programming error, and panics.
func NewCommandTable(commands []Command) (table *CommandTable) {
	table = &CommandTable{}
	table.opcode[0] = make([]*Command, MAX_OPCODE+1)
	table.opcode[1] = make([]*Command, MAX_DIRECTIVE_OPCODE+1)

	for n := range commands {
		cmd := &commands[n]

		if _, ok := table.Lookup(cmd.Name); ok {
			panic(fmt.Sprintf("cpu: command %v duplicated", cmd.Name))
		}

		space := table.opcode[spaceOf(cmd.Directive())]
		if cmd.Opcode >= uint(len(space)) {
			panic(fmt.Sprintf("cpu: command %v opcode 0x%x out of range", cmd.Name, cmd.Opcode))
		}
		if !cmd.Directive() && cmd.Opcode == OP_DIRECTIVE {
			panic(fmt.Sprintf("cpu: command %v uses the directive opcode", cmd.Name))
		}
		if other := space[cmd.Opcode]; other != nil {
			panic(fmt.Sprintf("cpu: command %v opcode 0x%x used by %v", cmd.Name, cmd.Opcode, other.Name))
		}
		if cmd.Conditional && cmd.Shape != SHAPE_JUMP {
			panic(fmt.Sprintf("cpu: command %v is conditional, but not a jump", cmd.Name))
		}

		space[cmd.Opcode] = cmd
		table.commands = append(table.commands, cmd)
	}

	return
}

// Opcode finds a command by its opcode.
func (table *CommandTable) Opcode(opcode uint, directive bool) (cmd *Command, ok bool) {
	space := table.opcode[spaceOf(directive)]
	if opcode >= uint(len(space)) {
		return
	}

	cmd = space[opcode]
	ok = cmd != nil
	return
}

// Lookup finds a command by its mnemonic, without condition suffix.
func (table *CommandTable) Lookup(name string) (cmd *Command, ok bool) {
	index := slices.IndexFunc(table.commands, func(cmd *Command) bool {
		return cmd.Name == name
	})
	if index < 0 {
		return
	}

	cmd = table.commands[index]
	ok = true
	return
}

// All iterates the commands in table order.
func (table *CommandTable) All() iter.Seq[*Command] {
	return slices.Values(table.commands)
}

// Decode finds the command of the word, and decodes its operands.
func (table *CommandTable) Decode(w Word) (inst Instruction, err error) {
	opcode := w.Opcode()
	directive := opcode == OP_DIRECTIVE
	if directive {
		opcode, err = w.DirectiveOpcode()
		if err != nil {
			return
		}
	}

	cmd, ok := table.Opcode(opcode, directive)
	if !ok {
		err = ErrOpcodeUnknown
		return
	}

	_, args, err := cmd.Shape.DecodeBinary(w)
	if err != nil {
		return
	}

	if jump, ok := args.(ArgsJump); ok && !cmd.Conditional && jump.Cond != COND_ALWAYS {
		err = fmt.Errorf("%w: %v.%v", ErrShapeMismatch, cmd.Name, jump.Cond)
		return
	}

	inst = Instruction{Command: cmd, Args: args}
	return
}

// Commands is the SPU instruction set.
var Commands = NewCommandTable([]Command{
	{Name: "mov", Opcode: OP_MOV, Shape: SHAPE_MOVE, Exec: execMov},
	{Name: "ldc", Opcode: OP_LDC, Shape: SHAPE_LOAD_CONST, Exec: execLdc},
	{Name: "jmp", Opcode: OP_JMP, Shape: SHAPE_JUMP, Conditional: true, Exec: execJmp},
	{Name: "call", Opcode: OP_CALL, Shape: SHAPE_JUMP, Exec: execCall},

	{Name: "add", Opcode: DIR_ADD, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return l + r })},
	{Name: "mul", Opcode: DIR_MUL, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return l * r })},
	{Name: "sub", Opcode: DIR_SUB, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return l - r })},
	{Name: "div", Opcode: DIR_DIV, Shape: SHAPE_TRIPLE_REG, Exec: divideOp(func(l, r int64) int64 { return l / r })},
	{Name: "mod", Opcode: DIR_MOD, Shape: SHAPE_TRIPLE_REG, Exec: divideOp(func(l, r int64) int64 { return l % r })},
	{Name: "shl", Opcode: DIR_SHL, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return int64(uint64(l) << uint64(r)) })},
	{Name: "shr", Opcode: DIR_SHR, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return int64(uint64(l) >> uint64(r)) })},
	{Name: "or", Opcode: DIR_OR, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return l | r })},
	{Name: "xor", Opcode: DIR_XOR, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return l ^ r })},
	{Name: "and", Opcode: DIR_AND, Shape: SHAPE_TRIPLE_REG, Exec: binaryOp(func(l, r int64) int64 { return l & r })},

	{Name: "sqrt", Opcode: DIR_SQRT, Shape: SHAPE_DOUBLE_REG, Exec: execSqrt},
	{Name: "not", Opcode: DIR_NOT, Shape: SHAPE_DOUBLE_REG, Exec: execNot},
	{Name: "cmp", Opcode: DIR_CMP, Shape: SHAPE_DOUBLE_REG, Exec: execCmp},
	{Name: "ldm", Opcode: DIR_LDM, Shape: SHAPE_DOUBLE_REG, Exec: execLdm},
	{Name: "stm", Opcode: DIR_STM, Shape: SHAPE_DOUBLE_REG, Exec: execStm},
	{Name: "scrhw", Opcode: DIR_SCRHW, Shape: SHAPE_DOUBLE_REG, Exec: execScrhw},

	{Name: "pushr", Opcode: DIR_PUSHR, Shape: SHAPE_SINGLE_REG, Exec: execPushr},
	{Name: "popr", Opcode: DIR_POPR, Shape: SHAPE_SINGLE_REG, Exec: execPopr},
	{Name: "input", Opcode: DIR_INPUT, Shape: SHAPE_SINGLE_REG, Exec: execInput},
	{Name: "print", Opcode: DIR_PRINT, Shape: SHAPE_SINGLE_REG, Exec: execPrint},
	{Name: "draw", Opcode: DIR_DRAW, Shape: SHAPE_SINGLE_REG, Exec: execDraw},

	{Name: "ret", Opcode: DIR_RET, Shape: SHAPE_NO_ARG, Exec: execRet},
	{Name: "dump", Opcode: DIR_DUMP, Shape: SHAPE_NO_ARG, Exec: execDump},
	{Name: "halt", Opcode: DIR_HALT, Shape: SHAPE_NO_ARG, Exec: execHalt},
})
