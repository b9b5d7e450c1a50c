package vm

type word uint16

// general purpose registers
const (
	R0 = 0b000
	R1 = 0b001
	R2 = 0b010
	R3 = 0b011
	R4 = 0b100
	R5 = 0b101
	R6 = 0b110
	R7 = 0b111
)

// Flag is the condition code. Exactly one flag is held at a time; the
// values line up with the n/z/p mask bits of BR.
type Flag word

const (
	FlagPos Flag = 0b001
	FlagZro Flag = 0b010
	FlagNeg Flag = 0b100
)

func (fl Flag) String() string {
	switch fl {
	case FlagPos:
		return "p"
	case FlagZro:
		return "z"
	case FlagNeg:
		return "n"
	}
	return "?"
}

type registers struct {
	gpr  [8]word
	pc   word
	cond Flag
}

// setCondition derives COND from the sign of register r.
func (reg *registers) setCondition(r word) {
	v := reg.gpr[r]
	switch {
	case v == 0:
		reg.cond = FlagZro
	case v>>15 != 0:
		reg.cond = FlagNeg
	default:
		reg.cond = FlagPos
	}
}

// sext sign-extends the low bitCount bits of x to a full word.
func sext(x word, bitCount uint) word {
	x &= 0xFFFF >> (16 - bitCount)
	if (x>>(bitCount-1))&0b1 != 0 {
		x |= 0xFFFF << bitCount
	}
	return x
}
