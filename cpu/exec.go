// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"math"
)

func execMov(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsMove](args)
	if err != nil {
		return
	}

	cpu.Register[a.Rd] = cpu.Register[a.Rn]
	return
}

func execLdc(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsLoadConst](args)
	if err != nil {
		return
	}

	cpu.Register[a.Rd] = int64(a.Imm)
	return
}

// binaryOp builds a handler for 'op rd rl rr', rd = op(rl, rr).
func binaryOp(op func(l, r int64) int64) ExecFunc {
	return func(cpu *Cpu, args Args) (err error) {
		a, err := argsAs[ArgsTripleReg](args)
		if err != nil {
			return
		}

		cpu.Register[a.Rd] = op(cpu.Register[a.Rl], cpu.Register[a.Rr])
		return
	}
}

// divideOp is binaryOp, faulting on a zero divisor.
func divideOp(op func(l, r int64) int64) ExecFunc {
	return func(cpu *Cpu, args Args) (err error) {
		a, err := argsAs[ArgsTripleReg](args)
		if err != nil {
			return
		}

		divisor := cpu.Register[a.Rr]
		if divisor == 0 {
			err = ErrDivisionByZero
			return
		}

		cpu.Register[a.Rd] = op(cpu.Register[a.Rl], divisor)
		return
	}
}

// isqrt is the integer square root, floor(sqrt(value)).
func isqrt(value int64) int64 {
	root := uint64(math.Sqrt(float64(value)))
	for root*root > uint64(value) {
		root--
	}
	for (root+1)*(root+1) <= uint64(value) {
		root++
	}
	return int64(root)
}

func execSqrt(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsDoubleReg](args)
	if err != nil {
		return
	}

	value := cpu.Register[a.Rn]
	if value < 0 {
		err = fmt.Errorf("%w: %d", ErrNegativeSqrt, value)
		return
	}

	cpu.Register[a.Rd] = isqrt(value)
	return
}

func execNot(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsDoubleReg](args)
	if err != nil {
		return
	}

	cpu.Register[a.Rd] = ^cpu.Register[a.Rn]
	return
}

func execCmp(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsDoubleReg](args)
	if err != nil {
		return
	}

	l, r := cpu.Register[a.Rd], cpu.Register[a.Rn]
	cpu.Flags = 0
	if l == r {
		cpu.Flags |= FLAG_EQUAL
	}
	if l < r {
		cpu.Flags |= FLAG_LESS
	}
	return
}

func execJmp(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsJump](args)
	if err != nil {
		return
	}

	taken, err := a.Cond.Taken(cpu.Flags)
	if err != nil || !taken {
		return
	}

	err = cpu.jump(a.Offset)
	return
}

func execCall(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsJump](args)
	if err != nil {
		return
	}

	if a.Cond != COND_ALWAYS {
		err = fmt.Errorf("%w: call.%v", ErrShapeMismatch, a.Cond)
		return
	}

	if !cpu.CallStack.Append(cpu.Ip) {
		err = errors.Join(ErrCallStack, ErrStackOverflow)
		return
	}

	err = cpu.jump(a.Offset)
	if err != nil {
		cpu.CallStack.Pop()
		return
	}

	return
}

func execRet(cpu *Cpu, args Args) (err error) {
	if cpu.CallStack.Empty() {
		err = errors.Join(ErrCallStack, ErrStackUnderflow)
		return
	}

	ret := cpu.CallStack.Pop().(int)
	err = cpu.jumpTo(ret)
	return
}

func execPushr(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsSingleReg](args)
	if err != nil {
		return
	}

	if !cpu.Stack.Push(cpu.Register[a.Rd]) {
		err = ErrStackOverflow
		return
	}
	return
}

func execPopr(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsSingleReg](args)
	if err != nil {
		return
	}

	value, ok := cpu.Stack.Pop()
	if !ok {
		err = ErrStackUnderflow
		return
	}

	cpu.Register[a.Rd] = value
	return
}

// execLdm loads rn with the RAM cell indexed by rd.
func execLdm(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsDoubleReg](args)
	if err != nil {
		return
	}

	index, err := cpu.ramIndex(cpu.Register[a.Rd])
	if err != nil {
		return
	}

	cpu.Register[a.Rn] = cpu.Ram[index]
	return
}

// execStm stores rn to the RAM cell indexed by rd.
func execStm(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsDoubleReg](args)
	if err != nil {
		return
	}

	index, err := cpu.ramIndex(cpu.Register[a.Rd])
	if err != nil {
		return
	}

	cpu.Ram[index] = cpu.Register[a.Rn]
	return
}

func execInput(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsSingleReg](args)
	if err != nil {
		return
	}

	value, err := cpu.Console.ReadInt()
	if err != nil {
		err = errors.Join(ErrInput, err)
		return
	}

	cpu.Register[a.Rd] = value
	return
}

func execPrint(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsSingleReg](args)
	if err != nil {
		return
	}

	err = cpu.Console.WriteInt(cpu.Register[a.Rd])
	return
}

// execScrhw reads the screen height into rd, and the width into rn.
func execScrhw(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsDoubleReg](args)
	if err != nil {
		return
	}

	cpu.Register[a.Rd] = int64(cpu.ScreenHeight)
	cpu.Register[a.Rn] = int64(cpu.ScreenWidth)
	return
}

// execDraw renders the screen from the RAM cells starting at rd.
func execDraw(cpu *Cpu, args Args) (err error) {
	a, err := argsAs[ArgsSingleReg](args)
	if err != nil {
		return
	}

	addr := cpu.Register[a.Rd]
	size := int64(cpu.ScreenHeight) * int64(cpu.ScreenWidth)
	if addr < 0 || addr > int64(len(cpu.Ram)) || addr+size > int64(len(cpu.Ram)) {
		err = fmt.Errorf("%w: draw %d cells at %d", ErrOutOfBounds, size, addr)
		return
	}

	err = cpu.Console.Draw(cpu.Ram[addr:addr+size], cpu.ScreenHeight, cpu.ScreenWidth)
	return
}

func execDump(cpu *Cpu, args Args) (err error) {
	err = cpu.Dump(cpu.Console.Writer())
	return
}

func execHalt(cpu *Cpu, args Args) (err error) {
	cpu.State = STATE_HALTED
	return
}
