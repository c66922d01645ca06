package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	lines, err := Disassemble([]Word{0x05000002, 0x03000002, 0x0148003e, 0x00fc087e, 0x00c03f3e})
	assert.NoError(err)
	assert.Equal([]string{
		"ldc r0 $5",
		"ldc r0 $3",
		"add r2 r0 r1",
		"print rsp",
		"halt",
	}, lines)

	lines, err = Disassemble(nil)
	assert.NoError(err)
	assert.Empty(lines)

	lines, err = Disassemble([]Word{0x00c03f3e, 0x0000003f, 0x00c03f3e})
	assert.ErrorIs(err, ErrOpcodeUnknown)
	assert.ErrorIs(err, ErrOpcode(0))
	assert.Equal([]string{"halt"}, lines)

	var ed *ErrDisassemble
	if assert.True(errors.As(err, &ed)) {
		assert.Equal(1, ed.Ip)
		assert.Equal(Word(0x0000003f), ed.Word)
	}

	text, err := DisassembleWord(0xfdff1f03)
	assert.NoError(err)
	assert.Equal("jmp.eq $-3", text)

	// call.eq has no text form, so it does not disassemble.
	_, err = DisassembleWord(0x00001004)
	assert.ErrorIs(err, ErrShapeMismatch)
}
