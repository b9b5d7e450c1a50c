package vm

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// State of the fetch-decode-execute loop.
type State int

const (
	Running State = iota
	Halted
	Faulted // stopped on an unimplemented opcode; never resumes
)

func (s State) String() string {
	switch s {
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	}
	return "running"
}

type cpu struct {
	state   State
	reg     registers
	mem     *deviceMemory
	console Console
	log     *logrus.Entry
	cycles  uint64
	fault   error
}

func (cpu *cpu) stop() {
	cpu.state = Halted
}

// step runs one fetch-decode-execute cycle. Once faulted, it keeps
// returning the fault without touching the machine.
func (cpu *cpu) step() error {
	switch cpu.state {
	case Faulted:
		return cpu.fault
	case Halted:
		return ErrHalted
	}
	at := cpu.reg.pc
	instruction := cpu.mem.read(cpu.reg.pc)
	cpu.reg.pc++
	cpu.cycles++
	return cpu.decodeAndExecuteInstruction(at, instruction)
}

func (cpu *cpu) tracing() bool {
	return cpu.log.Logger.IsLevelEnabled(logrus.TraceLevel)
}

func (cpu *cpu) trace(at word, op Opcode, fields logrus.Fields) {
	fields["pc"] = fmt.Sprintf("0x%04x", uint16(at))
	fields["op"] = op.String()
	cpu.log.WithFields(fields).Trace("exec")
}

func (cpu *cpu) decodeAndExecuteInstruction(at, instruction word) error {
	op := decodeOpcode(instruction)
	gpr := &cpu.reg.gpr
	tracing := cpu.tracing()

	switch op {
	case OP_ADD:
		dr := (instruction >> 9) & 0b111
		sr1 := (instruction >> 6) & 0b111

		if (instruction>>5)&0b1 == 1 {
			imm5 := sext(instruction, 5)
			if tracing {
				cpu.trace(at, op, logrus.Fields{"dr": dr, "sr1": sr1, "imm5": int16(imm5)})
			}
			gpr[dr] = gpr[sr1] + imm5
		} else {
			sr2 := instruction & 0b111
			if tracing {
				cpu.trace(at, op, logrus.Fields{"dr": dr, "sr1": sr1, "sr2": sr2})
			}
			gpr[dr] = gpr[sr1] + gpr[sr2]
		}
		cpu.reg.setCondition(dr)

	case OP_AND:
		dr := (instruction >> 9) & 0b111
		sr1 := (instruction >> 6) & 0b111

		if (instruction>>5)&0b1 == 1 {
			imm5 := sext(instruction, 5)
			if tracing {
				cpu.trace(at, op, logrus.Fields{"dr": dr, "sr1": sr1, "imm5": int16(imm5)})
			}
			gpr[dr] = gpr[sr1] & imm5
		} else {
			sr2 := instruction & 0b111
			if tracing {
				cpu.trace(at, op, logrus.Fields{"dr": dr, "sr1": sr1, "sr2": sr2})
			}
			gpr[dr] = gpr[sr1] & gpr[sr2]
		}
		cpu.reg.setCondition(dr)

	case OP_NOT:
		dr := (instruction >> 9) & 0b111
		sr := (instruction >> 6) & 0b111
		if tracing {
			cpu.trace(at, op, logrus.Fields{"dr": dr, "sr": sr})
		}

		gpr[dr] = ^gpr[sr]
		cpu.reg.setCondition(dr)

	case OP_BR:
		nzp := (instruction >> 9) & 0b111
		offset := sext(instruction, 9)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"nzp": fmt.Sprintf("%03b", nzp), "offset": int16(offset)})
		}

		if nzp&word(cpu.reg.cond) != 0 {
			cpu.reg.pc += offset
		}

	case OP_JMP:
		br := (instruction >> 6) & 0b111
		if tracing {
			cpu.trace(at, op, logrus.Fields{"br": br})
		}

		cpu.reg.pc = gpr[br]

	case OP_JSR:
		gpr[R7] = cpu.reg.pc
		if (instruction>>11)&0b1 == 1 {
			offset := sext(instruction, 11)
			if tracing {
				cpu.trace(at, op, logrus.Fields{"offset": int16(offset)})
			}
			cpu.reg.pc += offset
		} else {
			br := (instruction >> 6) & 0b111
			if tracing {
				cpu.trace(at, op, logrus.Fields{"br": br, "mode": "JSRR"})
			}
			cpu.reg.pc = gpr[br]
		}

	case OP_LD:
		dr := (instruction >> 9) & 0b111
		offset := sext(instruction, 9)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"dr": dr, "offset": int16(offset)})
		}

		gpr[dr] = cpu.mem.read(cpu.reg.pc + offset)
		cpu.reg.setCondition(dr)

	case OP_LDI:
		dr := (instruction >> 9) & 0b111
		offset := sext(instruction, 9)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"dr": dr, "offset": int16(offset)})
		}

		gpr[dr] = cpu.mem.read(cpu.mem.read(cpu.reg.pc + offset))
		cpu.reg.setCondition(dr)

	case OP_LDR:
		dr := (instruction >> 9) & 0b111
		br := (instruction >> 6) & 0b111
		offset := sext(instruction, 6)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"dr": dr, "br": br, "offset": int16(offset)})
		}

		gpr[dr] = cpu.mem.read(gpr[br] + offset)
		cpu.reg.setCondition(dr)

	case OP_LEA:
		dr := (instruction >> 9) & 0b111
		offset := sext(instruction, 9)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"dr": dr, "offset": int16(offset)})
		}

		gpr[dr] = cpu.reg.pc + offset
		cpu.reg.setCondition(dr)

	case OP_ST:
		sr := (instruction >> 9) & 0b111
		offset := sext(instruction, 9)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"sr": sr, "offset": int16(offset)})
		}

		cpu.mem.write(cpu.reg.pc+offset, gpr[sr])

	case OP_STI:
		sr := (instruction >> 9) & 0b111
		offset := sext(instruction, 9)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"sr": sr, "offset": int16(offset)})
		}

		cpu.mem.write(cpu.mem.read(cpu.reg.pc+offset), gpr[sr])

	case OP_STR:
		sr := (instruction >> 9) & 0b111
		br := (instruction >> 6) & 0b111
		offset := sext(instruction, 6)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"sr": sr, "br": br, "offset": int16(offset)})
		}

		cpu.mem.write(gpr[br]+offset, gpr[sr])

	case OP_TRAP:
		vector := TrapVector(instruction & 0xFF)
		if tracing {
			cpu.trace(at, op, logrus.Fields{"vector": fmt.Sprintf("0x%02x", uint16(vector))})
		}

		return cpu.trap(vector)

	case OP_RTI, OP_RES:
		cpu.log.WithFields(logrus.Fields{
			"pc": fmt.Sprintf("0x%04x", uint16(at)),
			"op": op.String(),
		}).Debug("unimplemented opcode")
		cpu.fault = &ErrUnimplementedOpcode{Opcode: op, PC: at, Instruction: instruction}
		cpu.state = Faulted
		return cpu.fault

	default:
		panic(fmt.Sprintf("opcode %d out of range", op))
	}
	return nil
}
