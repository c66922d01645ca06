package emulator

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/spu/cpu"
	"github.com/ezrec/spu/device"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Same(&emu.Console, emu.Cpu.Console)

	defines := map[string]string{}
	for name, value := range emu.Defines() {
		defines[name] = value
	}
	assert.Equal("4", defines["WORD_SIZE"])
	assert.Equal("1048576", defines["RAM_SIZE"])
	assert.Equal("32", defines["SCREEN_WIDTH"])

	assert.NoError(emu.Close())
}

func doRun(t *testing.T, emu *Emulator, program []string, input string) (output string) {
	assert := assert.New(t)

	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	err = emu.Reset()
	require.NoError(t, err)

	emu.Console.Input = strings.NewReader(input)
	console_output := &bytes.Buffer{}
	emu.Console.Output = console_output

	for {
		lineno := emu.LineNo()
		if lineno != 0 {
			here := program[lineno-1]
			debug := emu.Program.Debug(emu.Ip())
			if assert.NotNil(debug, here) {
				assert.Equal(lineno, debug.LineNo)
			}
		}

		done, err := emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v", err)
		}
		if done {
			break
		}
	}

	output = console_output.String()
	return
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	program := []string{
		"; Sum of 1..N",
		"input r0",
		"ldc r1 $0",
		"ldc r2 $1",
		".loop:",
		"add r1 r1 r0",
		"sub r0 r0 r2",
		"ldc r3 $0",
		"cmp r0 r3",
		"jmp.gt .loop",
		"print r1",
		"halt",
	}

	output := doRun(t, emu, program, "10")
	assert.Equal("55\n", output)
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State)

	// A second reset runs the same ROM again.
	output = doRun(t, emu, program, "4")
	assert.Equal("10\n", output)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	program := []string{
		"ldc r0 $(RAM_SIZE - SCREEN_HEIGHT * SCREEN_WIDTH)",
		"ldc r1 $1",
		"stm r0 r1",
		"ldc r0 $(WORD_SIZE)",
		"print r0",
	}

	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.Error(err)
	assert.ErrorIs(err, cpu.ErrOperandRange)

	program[0] = "ldc r0 $(SCREEN_HEIGHT * SCREEN_WIDTH)"
	output := doRun(t, emu, program, "")
	assert.Equal("4\n", output)
	assert.Equal(int64(1), emu.Cpu.Ram[1024])
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	program := []string{
		"ldc r0 $1",
		"ldc r1 $0",
		"",
		"div r2 r0 r1 ; fault",
		"halt",
	}

	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)
	require.NoError(t, emu.Reset())

	state, err := emu.Run()
	assert.Equal(cpu.STATE_FAULTED, state)
	assert.ErrorIs(err, cpu.ErrDivisionByZero)

	var er *ErrRuntime
	if assert.True(errors.As(err, &er)) {
		assert.Equal(4, er.LineNo)
		assert.Equal(2, er.Ip)
		assert.True(strings.HasPrefix(er.Error(), "line 4 "), er.Error())
	}

	// Only the tick that faulted reports it.
	done, err := emu.Tick()
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrNotRunning)
}

func TestEmulatorRom(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	rom := &device.Rom{Data: []uint32{0x05000002, 0x0000003f}}
	var image bytes.Buffer
	_, err := rom.WriteTo(&image)
	require.NoError(t, err)

	require.NoError(t, emu.LoadRom(&image))
	assert.Equal(rom.Data, emu.Rom.Data)
	if assert.Equal(2, len(emu.Program.Opcodes)) {
		assert.Equal([]string{"ldc", "r0", "$5"}, emu.Program.Opcodes[0].Words)
		assert.Equal(0, emu.Program.Opcodes[0].LineNo)
	}

	require.NoError(t, emu.Reset())

	state, err := emu.Run()
	assert.Equal(cpu.STATE_FAULTED, state)
	assert.ErrorIs(err, cpu.ErrOpcodeUnknown)

	var er *ErrRuntime
	if assert.True(errors.As(err, &er)) {
		assert.Equal(0, er.LineNo)
		assert.Equal(1, er.Ip)
		assert.True(strings.HasPrefix(er.Error(), "ip 0001 "), er.Error())
	}

	err = emu.LoadRom(bytes.NewReader([]byte{1, 2, 3}))
	assert.ErrorIs(err, device.ErrPrematureEOF)
}

func TestEmulatorPredefine(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	emu.Predefine("COUNT", "$7")
	emu.Predefine("WORD_SIZE", "8")

	output := doRun(t, emu, []string{
		"ldc r0 COUNT",
		"print r0",
		"ldc r0 $(WORD_SIZE)",
		"print r0",
	}, "")
	assert.Equal("7\n8\n", output)
}

func TestEmulatorExample(t *testing.T) {
	assert := assert.New(t)

	source, err := os.ReadFile("../example.s")
	require.NoError(t, err)

	emu := NewEmulator()
	defer emu.Close()

	output := doRun(t, emu, strings.Split(string(source), "\n"), "5")
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State)

	lines := strings.Split(output, "\n")
	if assert.Equal(cpu.SCREEN_HEIGHT+2, len(lines), output) {
		assert.Equal("120", lines[0])
		assert.Equal("* "+strings.Repeat(". ", cpu.SCREEN_WIDTH-1), lines[1])
		assert.Equal(". * "+strings.Repeat(". ", cpu.SCREEN_WIDTH-2), lines[2])
		assert.Equal(strings.Repeat(". ", cpu.SCREEN_WIDTH-1)+"* ", lines[cpu.SCREEN_HEIGHT])
		assert.Equal("", lines[cpu.SCREEN_HEIGHT+1])
	}
}
