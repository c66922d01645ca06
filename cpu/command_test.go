package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommands(t *testing.T) {
	assert := assert.New(t)

	count := 0
	for cmd := range Commands.All() {
		count++

		found, ok := Commands.Lookup(cmd.Name)
		assert.True(ok, cmd.Name)
		assert.Same(cmd, found)

		found, ok = Commands.Opcode(cmd.Opcode, cmd.Directive())
		assert.True(ok, cmd.Name)
		assert.Same(cmd, found)

		assert.NotNil(cmd.Exec, cmd.Name)
	}
	assert.Equal(28, count)

	table := [](struct {
		name        string
		opcode      uint
		shape       Shape
		conditional bool
	}){
		{"mov", OP_MOV, SHAPE_MOVE, false},
		{"ldc", OP_LDC, SHAPE_LOAD_CONST, false},
		{"jmp", OP_JMP, SHAPE_JUMP, true},
		{"call", OP_CALL, SHAPE_JUMP, false},
		{"add", DIR_ADD, SHAPE_TRIPLE_REG, false},
		{"and", DIR_AND, SHAPE_TRIPLE_REG, false},
		{"cmp", DIR_CMP, SHAPE_DOUBLE_REG, false},
		{"scrhw", DIR_SCRHW, SHAPE_DOUBLE_REG, false},
		{"draw", DIR_DRAW, SHAPE_SINGLE_REG, false},
		{"ret", DIR_RET, SHAPE_NO_ARG, false},
		{"halt", DIR_HALT, SHAPE_NO_ARG, false},
	}

	for _, entry := range table {
		cmd, ok := Commands.Lookup(entry.name)
		if !assert.True(ok, entry.name) {
			continue
		}
		assert.Equal(entry.opcode, cmd.Opcode, entry.name)
		assert.Equal(entry.shape, cmd.Shape, entry.name)
		assert.Equal(entry.conditional, cmd.Conditional, entry.name)
	}

	_, ok := Commands.Lookup("jmp.eq")
	assert.False(ok)
	_, ok = Commands.Lookup("nop")
	assert.False(ok)
	_, ok = Commands.Opcode(0x3f, false)
	assert.False(ok)
	_, ok = Commands.Opcode(MAX_DIRECTIVE_OPCODE+1, true)
	assert.False(ok)
}

func TestNewCommandTable(t *testing.T) {
	assert := assert.New(t)

	nop := func(cpu *Cpu, args Args) error { return nil }

	assert.Panics(func() {
		NewCommandTable([]Command{
			{Name: "a", Opcode: 1, Shape: SHAPE_NO_ARG, Exec: nop},
			{Name: "a", Opcode: 2, Shape: SHAPE_NO_ARG, Exec: nop},
		})
	})

	assert.Panics(func() {
		NewCommandTable([]Command{
			{Name: "a", Opcode: 1, Shape: SHAPE_NO_ARG, Exec: nop},
			{Name: "b", Opcode: 1, Shape: SHAPE_SINGLE_REG, Exec: nop},
		})
	})

	assert.Panics(func() {
		NewCommandTable([]Command{
			{Name: "a", Opcode: OP_DIRECTIVE, Shape: SHAPE_MOVE, Exec: nop},
		})
	})

	assert.Panics(func() {
		NewCommandTable([]Command{
			{Name: "a", Opcode: 1, Shape: SHAPE_MOVE, Conditional: true, Exec: nop},
		})
	})

	// The same opcode in both spaces is two distinct commands.
	table := NewCommandTable([]Command{
		{Name: "a", Opcode: 1, Shape: SHAPE_MOVE, Exec: nop},
		{Name: "b", Opcode: 1, Shape: SHAPE_NO_ARG, Exec: nop},
	})
	a, ok := table.Opcode(1, false)
	assert.True(ok)
	assert.Equal("a", a.Name)
	b, ok := table.Opcode(1, true)
	assert.True(ok)
	assert.Equal("b", b.Name)
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	inst, err := Decode(0x05000002)
	assert.NoError(err)
	assert.Equal("ldc", inst.Command.Name)
	assert.Equal(ArgsLoadConst{Rd: 0, Imm: 5}, inst.Args)
	assert.Equal("ldc r0 $5", inst.String())

	inst, err = Decode(0x00c03f3e)
	assert.NoError(err)
	assert.Equal("halt", inst.Command.Name)

	// Base opcode 0 is not assigned.
	_, err = Decode(0x00000000)
	assert.ErrorIs(err, ErrOpcodeUnknown)

	// Directive opcode 0 is not assigned.
	_, err = Decode(0x0000003e)
	assert.ErrorIs(err, ErrOpcodeUnknown)

	_, err = Instruction{Command: inst.Command, Args: ArgsMove{}}.Encode()
	assert.ErrorIs(err, ErrShapeMismatch)

	_, err = Instruction{}.Encode()
	assert.ErrorIs(err, ErrInstructionInvalid)

	call, _ := Commands.Lookup("call")
	_, err = Instruction{Command: call, Args: ArgsJump{Cond: COND_EQ}}.Encode()
	assert.ErrorIs(err, ErrCondInvalid)

	// Only conditional commands may carry a condition.
	var w Word
	assert.NoError(w.SetOpcode(OP_CALL))
	assert.NoError(w.SetRegister(0, true, Register(COND_EQ)))
	assert.Equal(Word(0x00001004), w)
	_, err = Decode(w)
	assert.ErrorIs(err, ErrShapeMismatch)

	w = 0
	assert.NoError(w.SetOpcode(OP_JMP))
	assert.NoError(w.SetRegister(0, true, Register(COND_EQ)))
	inst, err = Decode(w)
	assert.NoError(err)
	assert.Equal(ArgsJump{Cond: COND_EQ}, inst.Args)
}
