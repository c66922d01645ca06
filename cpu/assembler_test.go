package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(0, len(asm.Label))
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".top:",
		"jmp .end",
		"ldc r0 $1",
		"jmp.neq .top",
		".end:",
		"halt",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	expected := []Opcode{
		{2, 0, []string{"jmp", ".end"}, 0x02000003},
		{3, 1, []string{"ldc", "r0", "$1"}, 0x01000002},
		{4, 2, []string{"jmp.neq", ".top"}, 0xfdff2f03},
		{6, 3, []string{"halt"}, 0x00c03f3e},
	}

	opEqual(t, expected, prog.Opcodes)

	assert.Equal(map[string]int{"top": 0, "end": 3}, asm.Label)

	inst, err := Decode(prog.Opcodes[0].Code)
	assert.NoError(err)
	assert.Equal(ArgsJump{Cond: COND_ALWAYS, Offset: 2}, inst.Args)

	inst, err = Decode(prog.Opcodes[2].Code)
	assert.NoError(err)
	assert.Equal(ArgsJump{Cond: COND_NEQ, Offset: -3}, inst.Args)

	// A label at the end of the code addresses the implicit halt.
	prog, err = asm.Parse(strings.NewReader("call .done\n.done:\n"))
	assert.NoError(err)
	assert.Equal([]uint32{0x00000004}, prog.Binary())
}

func TestAssemblerComments(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"; A comment",
		"",
		"   ldc r0 $1   # trailing",
		"\thalt\t; tabbed",
		"# ldc r1 $2",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	expected := []Opcode{
		{3, 0, []string{"ldc", "r0", "$1"}, 0x01000002},
		{4, 1, []string{"halt"}, 0x00c03f3e},
	}

	opEqual(t, expected, prog.Opcodes)

	lines, err := asm.Tokenize(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	assert.Equal([]Line{
		{LineNo: 3, Text: "ldc r0 $1", Words: []string{"ldc", "r0", "$1"}},
		{LineNo: 4, Text: "halt", Words: []string{"halt"}},
	}, lines)

	// Comment characters may be quoted.
	lines, err = asm.Tokenize(strings.NewReader("ldc r0 $'#' ; hash\nldc r1 $';'# semi\nldc r2 $'\\\\' ; backslash\n"))
	assert.NoError(err)
	assert.Equal([]Line{
		{LineNo: 1, Text: "ldc r0 $'#'", Words: []string{"ldc", "r0", "$35"}},
		{LineNo: 2, Text: "ldc r1 $';'", Words: []string{"ldc", "r1", "$59"}},
		{LineNo: 3, Text: "ldc r2 $'\\\\'", Words: []string{"ldc", "r2", "$92"}},
	}, lines)
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("RAM_SIZE", "1048576")

	program := []string{
		".equ COUNT $5",
		".equ ACC r3",
		"ldc ACC COUNT",
		"ldc r0 $(COUNT * 2 + 1)",
		"ldc r1 $'A'",
		"ldc r2 $(LINENO)",
		"ldc r4 $(RAM_SIZE >> 10)",
		"ldc r5 $'\\n'",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	var code []Word
	for _, op := range prog.Opcodes {
		code = append(code, op.Code)
	}

	lines, err := Disassemble(code)
	assert.NoError(err)
	assert.Equal([]string{
		"ldc r3 $5",
		"ldc r0 $11",
		"ldc r1 $65",
		"ldc r2 $6",
		"ldc r4 $1024",
		"ldc r5 $10",
	}, lines)

	assert.Equal("$5", asm.Equate["COUNT"])
	assert.Equal("r3", asm.Equate["ACC"])
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		lineno int
		err    error
	}){
		{"jmp .nowhere", 1, ErrLabelMissing("nowhere")},
		{"halt\n.a:\nhalt\n.a:", 4, ErrLabelDuplicate},
		{".a: halt", 1, ErrLabelInvalid},
		{".:", 1, ErrLabelInvalid},
		{"." + strings.Repeat("x", LABEL_MAX_LEN+1) + ":", 1, ErrLabelInvalid},
		{"jmp ." + strings.Repeat("x", LABEL_MAX_LEN+1), 1, ErrLabelInvalid},
		{"add r0 r1", 1, ErrArity},
		{"halt\nhalt r0", 2, ErrArity},
		{"nop", 1, ErrInstructionInvalid},
		{"ldc r0 $524288", 1, ErrOperandRange},
		{"ldc r0 $-524289", 1, ErrOperandRange},
		{"jmp $524288", 1, ErrOperandRange},
		{"halt.eq", 1, ErrCondInvalid},
		{"call.eq $0", 1, ErrCondInvalid},
		{"jmp. $0", 1, ErrCondInvalid},
		{"jmp.maybe $0", 1, ErrCondInvalid},
		{"jmp r0", 1, ErrOperandInvalid},
		{".equ A", 1, ErrEquateSyntax},
		{".equ A 1\n.equ A 2", 2, ErrEquateDuplicate},
		{".equ LINENO 1", 1, ErrEquateDuplicate},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		assert.ErrorIs(err, entry.err, entry.source)

		var es *ErrSyntax
		if assert.True(errors.As(err, &es), entry.source) {
			assert.Equal(entry.lineno, es.LineNo, entry.source)
		}
	}

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader("add r0 r1 r32"))
	var eReg ErrParseRegister
	assert.ErrorAs(err, &eReg)
	assert.Equal(ErrParseRegister("r32"), eReg)

	_, err = asm.Parse(strings.NewReader("ldc r0 5"))
	var eNum ErrParseNumber
	assert.ErrorAs(err, &eNum)

	_, err = asm.Parse(strings.NewReader("ldc r0 $(1 +)"))
	var eExpr ErrParseExpression
	assert.ErrorAs(err, &eExpr)
	assert.Equal(ErrParseExpression("1 +"), eExpr)

	_, err = asm.Parse(strings.NewReader("ldc r0 $(\"text\")"))
	assert.ErrorAs(err, &eExpr)
}

func TestAssemblerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".start:",
		"mov r1 rsp",
		"ldc r16 $-7",
		"jmp.lt .start",
		"jmp.geq .end",
		"call .start",
		"add r0 r1 r2",
		"mul r3 r4 r5",
		"sub r6 r7 r8",
		"div r9 r10 r11",
		"mod r12 r13 r14",
		"shl r15 r16 r17",
		"shr r18 r19 r20",
		"or r21 r22 r23",
		"xor r24 r25 r26",
		"and r27 r28 r29",
		"sqrt r30 rsp",
		"not r0 r0",
		"cmp r17 r18",
		"ldm r1 r2",
		"stm r3 r4",
		"scrhw r5 r6",
		"pushr r7",
		"popr r8",
		"input r9",
		"print r10",
		"draw r11",
		"ret",
		"dump",
		".end:",
		"halt",
	}

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	code := prog.Code()
	assert.Equal(29, len(code))

	lines, err := Disassemble(code)
	require.NoError(t, err)
	assert.Equal("jmp.lt $-3", lines[2])
	assert.Equal("call $-5", lines[4])

	again, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	assert.Equal(prog.Binary(), again.Binary())
}
