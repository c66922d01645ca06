// Package cpu implements the SPU virtual processor and its toolchain.
//
// An instruction is a 32-bit little-endian Word: a one byte header (6-bit
// base opcode, register-extended bit, reserved bit) followed by a 24-bit
// argument. The base opcode OP_DIRECTIVE extends the instruction space with
// a 10-bit directive opcode embedded in the argument.
//
// Every instruction belongs to one of seven Shapes, which own the binary and
// textual encodings of its operands. The Commands table binds each mnemonic
// to an opcode, a Shape and an execution handler for the Cpu.
//
// The Assembler translates source text to a Program in two passes, so that
// jump and call targets may refer to labels declared later in the source.
// Disassemble performs the reverse translation.
package cpu
