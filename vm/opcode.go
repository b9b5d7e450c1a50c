package vm

// Opcode is the 4-bit operation field, bits 15..12 of an instruction.
type Opcode uint8

// opcodes
const (
	OP_BR Opcode = iota
	OP_ADD
	OP_LD
	OP_ST
	OP_JSR
	OP_AND
	OP_LDR
	OP_STR
	OP_RTI
	OP_NOT
	OP_LDI
	OP_STI
	OP_JMP
	OP_RES
	OP_LEA
	OP_TRAP
)

var opcodeNames = [...]string{
	OP_BR:   "BR",
	OP_ADD:  "ADD",
	OP_LD:   "LD",
	OP_ST:   "ST",
	OP_JSR:  "JSR",
	OP_AND:  "AND",
	OP_LDR:  "LDR",
	OP_STR:  "STR",
	OP_RTI:  "RTI",
	OP_NOT:  "NOT",
	OP_LDI:  "LDI",
	OP_STI:  "STI",
	OP_JMP:  "JMP",
	OP_RES:  "RES",
	OP_LEA:  "LEA",
	OP_TRAP: "TRAP",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "OP_INVALID"
}

// Implemented reports whether the machine has a handler for op.
func (op Opcode) Implemented() bool {
	return op != OP_RTI && op != OP_RES && int(op) < len(opcodeNames)
}

func decodeOpcode(instruction word) Opcode {
	return Opcode(instruction >> 12)
}
