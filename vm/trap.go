package vm

// TrapVector selects a built-in routine, bits 7..0 of a TRAP instruction.
type TrapVector word

const (
	TRAP_GETC  TrapVector = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   TrapVector = 0x21 /* output a character */
	TRAP_PUTS  TrapVector = 0x22 /* output a word string */
	TRAP_IN    TrapVector = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP TrapVector = 0x24 /* output a byte string */
	TRAP_HALT  TrapVector = 0x25 /* halt the program */
)

var inPrompt = f("Enter a character: ")

func (cpu *cpu) trap(vector TrapVector) error {
	switch vector {
	case TRAP_GETC:
		c, err := cpu.getc()
		if err != nil {
			return err
		}
		cpu.reg.gpr[R0] = c

	case TRAP_OUT:
		return cpu.putc(byte(cpu.reg.gpr[R0]))

	case TRAP_PUTS:
		for addr := cpu.reg.gpr[R0]; ; addr++ {
			c := cpu.mem.read(addr)
			if c == 0 {
				break
			}
			if err := cpu.putc(byte(c)); err != nil {
				return err
			}
		}

	case TRAP_IN:
		for _, c := range []byte(inPrompt) {
			if err := cpu.putc(c); err != nil {
				return err
			}
		}
		c, err := cpu.getc()
		if err != nil {
			return err
		}
		if err := cpu.putc(byte(c)); err != nil {
			return err
		}
		cpu.reg.gpr[R0] = c

	case TRAP_PUTSP:
		for addr := cpu.reg.gpr[R0]; ; addr++ {
			w := cpu.mem.read(addr)
			if w == 0 {
				break
			}
			if err := cpu.putc(byte(w & 0xFF)); err != nil {
				return err
			}
			if hi := (w >> 8) & 0xFF; hi != 0 {
				if err := cpu.putc(byte(hi)); err != nil {
					return err
				}
			}
		}

	case TRAP_HALT:
		cpu.log.WithField("pc", cpu.reg.pc).Info("halted")
		cpu.stop()

	default:
		cpu.log.WithField("vector", vector).Debug("unknown trap ignored")
	}
	return nil
}

func (cpu *cpu) getc() (word, error) {
	if cpu.console == nil {
		return 0, &ErrDevice{Op: "getc", Err: ErrConsole}
	}
	c, err := cpu.console.ReadByte()
	if err != nil {
		return 0, &ErrDevice{Op: "getc", Err: err}
	}
	return word(c) & 0xFF, nil
}

func (cpu *cpu) putc(c byte) error {
	if cpu.console == nil {
		return &ErrDevice{Op: "putc", Err: ErrConsole}
	}
	if err := cpu.console.WriteByte(c); err != nil {
		return &ErrDevice{Op: "putc", Err: err}
	}
	return nil
}
