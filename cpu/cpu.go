// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/spu/device"
	"github.com/oleiade/lane"
)

const (
	RAM_SIZE         = 1 << 20 // RAM cells
	CALL_STACK_LIMIT = 1024    // Maximum call depth
	SCREEN_HEIGHT    = 32
	SCREEN_WIDTH     = 32
)

//go:generate go tool stringer -linecomment -type=State

// State is the execution state of the cpu.
type State int

const (
	STATE_RUNNING = State(iota) // running
	STATE_HALTED                // halted
	STATE_FAULTED               // faulted
)

var _cpu_defines = map[string]string{
	"RAM_SIZE":         fmt.Sprintf("%d", RAM_SIZE),
	"CALL_STACK_LIMIT": fmt.Sprintf("%d", CALL_STACK_LIMIT),
	"REGISTER_COUNT":   fmt.Sprintf("%d", REGISTER_COUNT),
	"STACK_LIMIT":      fmt.Sprintf("%d", STACK_LIMIT),
}

// Cpu is the SPU machine state.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Console *device.Console // Integer I/O and screen.

	Register [REGISTER_COUNT]int64 // Register bank.
	Flags    Flags                 // Comparison flags.
	Ip       int                   // Index of the next instruction.
	Code     []Word                // Loaded program.

	Stack     Stack       // Value stack.
	CallStack *lane.Deque // Return addresses, capped at CALL_STACK_LIMIT.
	Ram       []int64     // Flat memory, RAM_SIZE cells.

	ScreenHeight int
	ScreenWidth  int

	State State
	Ticks int // Instructions executed.

	loaded bool
	closed bool
}

// NewCpu creates a cpu attached to a console. A nil console is replaced
// by one with no input and discarded output.
func NewCpu(console *device.Console) (cpu *Cpu) {
	if console == nil {
		console = &device.Console{}
	}

	cpu = &Cpu{
		Console:      console,
		CallStack:    lane.NewCappedDeque(CALL_STACK_LIMIT),
		Ram:          make([]int64, RAM_SIZE),
		ScreenHeight: SCREEN_HEIGHT,
		ScreenWidth:  SCREEN_WIDTH,
	}

	return
}

// Defines for the cpu, for use as assembler predefines.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for name, value := range maps.All(_cpu_defines) {
			if !yield(name, value) {
				return
			}
		}
		if !yield("SCREEN_HEIGHT", fmt.Sprintf("%d", cpu.ScreenHeight)) {
			return
		}
		yield("SCREEN_WIDTH", fmt.Sprintf("%d", cpu.ScreenWidth))
	}
}

// Load installs the program. A cpu accepts exactly one program.
func (cpu *Cpu) Load(code []Word) (err error) {
	if cpu.closed {
		err = ErrClosed
		return
	}

	if cpu.loaded {
		err = ErrAlreadyLoaded
		return
	}

	cpu.Code = code
	cpu.loaded = true
	cpu.Ip = 0
	cpu.State = STATE_RUNNING

	if cpu.Verbose {
		log.Printf("cpu: loaded %d words", len(code))
	}

	return
}

// Reset the cpu state, keeping the loaded program.
// - Clears the registers, flags, stacks and RAM.
// - Rewinds the console input.
// - Restarts execution at instruction 0.
func (cpu *Cpu) Reset() (err error) {
	if cpu.closed {
		err = ErrClosed
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Ram)
	cpu.Flags = 0
	cpu.Stack.Reset()
	for !cpu.CallStack.Empty() {
		cpu.CallStack.Pop()
	}
	cpu.Console.Rewind()
	cpu.Ip = 0
	cpu.Ticks = 0
	cpu.State = STATE_RUNNING

	return
}

// Close releases the memory of the cpu.
func (cpu *Cpu) Close() (err error) {
	if cpu.closed {
		err = ErrClosed
		return
	}

	cpu.closed = true
	cpu.Code = nil
	cpu.Ram = nil
	cpu.Stack = Stack{}
	cpu.CallStack = nil
	cpu.State = STATE_HALTED

	return
}

// Fetch returns the word at the instruction pointer.
// Running off the end of the code is an implicit halt.
func (cpu *Cpu) Fetch() (w Word, ok bool) {
	if cpu.Ip < 0 || cpu.Ip >= len(cpu.Code) {
		return
	}

	w = cpu.Code[cpu.Ip]
	ok = true
	return
}

// Tick executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	if cpu.closed {
		err = ErrClosed
		return
	}

	if cpu.State != STATE_RUNNING {
		err = fmt.Errorf("%w: %v", ErrNotRunning, cpu.State)
		return
	}

	w, ok := cpu.Fetch()
	if !ok {
		if cpu.Verbose {
			log.Printf("%04x: end of code", cpu.Ip)
		}
		cpu.State = STATE_HALTED
		return
	}

	ip := cpu.Ip
	defer func() {
		if err != nil {
			// Leave the faulting instruction at the ip.
			cpu.Ip = ip
			cpu.State = STATE_FAULTED
			err = errors.Join(ErrOpcode(w), err)
		}
	}()

	inst, err := Decode(w)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %v", ip, inst)
	}

	cpu.Ip++
	cpu.Ticks++

	err = cpu.Execute(inst)
	return
}

// Execute applies a decoded instruction to the machine state.
// The instruction pointer already addresses the following instruction.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	if inst.Command == nil {
		err = ErrInstructionInvalid
		return
	}

	if inst.Args == nil || inst.Args.Shape() != inst.Command.Shape {
		err = fmt.Errorf("%w: %v takes %v", ErrShapeMismatch, inst.Command.Name, inst.Command.Shape)
		return
	}

	err = inst.Command.Exec(cpu, inst.Args)
	return
}

// Run executes until the cpu halts or faults.
func (cpu *Cpu) Run() (state State, err error) {
	for cpu.State == STATE_RUNNING {
		err = cpu.Tick()
		if err != nil {
			break
		}
	}

	state = cpu.State
	return
}

// jump moves the instruction pointer relative to the next instruction.
func (cpu *Cpu) jump(offset int32) (err error) {
	target := cpu.Ip + int(offset)
	err = cpu.jumpTo(target)
	return
}

// jumpTo sets the instruction pointer. One past the end is a valid
// target, and halts at the next tick.
func (cpu *Cpu) jumpTo(target int) (err error) {
	if target < 0 || target > len(cpu.Code) {
		err = fmt.Errorf("%w: jump to %d of %d", ErrOutOfBounds, target, len(cpu.Code))
		return
	}

	cpu.Ip = target
	return
}

// ramIndex validates a RAM cell index.
func (cpu *Cpu) ramIndex(addr int64) (index int, err error) {
	if addr < 0 || addr >= int64(len(cpu.Ram)) {
		err = fmt.Errorf("%w: ram[%d] of %d", ErrOutOfBounds, addr, len(cpu.Ram))
		return
	}

	index = int(addr)
	return
}

// Dump writes the machine state.
func (cpu *Cpu) Dump(w io.Writer) (err error) {
	var text strings.Builder

	fmt.Fprintf(&text, "state: %v\n", cpu.State)
	fmt.Fprintf(&text, "   ip: %04x\n", cpu.Ip)
	fmt.Fprintf(&text, "flags: %v\n", cpu.Flags)
	for n, value := range cpu.Register {
		fmt.Fprintf(&text, "% 5s: %016x %d\n", Register(n), uint64(value), value)
	}

	fmt.Fprintf(&text, "stack:")
	if cpu.Stack.Empty() {
		fmt.Fprintf(&text, " -")
	}
	for _, value := range cpu.Stack.Data {
		fmt.Fprintf(&text, " %d", value)
	}
	fmt.Fprintf(&text, "\n")

	if cpu.CallStack == nil || cpu.CallStack.Empty() {
		fmt.Fprintf(&text, "calls: -\n")
	} else {
		fmt.Fprintf(&text, "calls: %d, return to %04x\n", cpu.CallStack.Size(), cpu.CallStack.Last())
	}

	_, err = io.WriteString(w, text.String())
	return
}

// String returns the current cpu state as a string.
func (cpu *Cpu) String() string {
	var text strings.Builder
	_ = cpu.Dump(&text)
	return text.String()
}
