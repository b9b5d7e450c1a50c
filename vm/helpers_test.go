package vm

import (
	"bytes"
	goIO "io"
	"time"

	"github.com/sirupsen/logrus"
)

// fakeConsole feeds queued keys and records output.
type fakeConsole struct {
	input  []byte
	output bytes.Buffer
	polls  int
	closed bool
}

func (fc *fakeConsole) Poll(timeout time.Duration) (byte, bool) {
	fc.polls++
	if len(fc.input) == 0 {
		return 0, false
	}
	c := fc.input[0]
	fc.input = fc.input[1:]
	return c, true
}

func (fc *fakeConsole) ReadByte() (byte, error) {
	if len(fc.input) == 0 {
		return 0, goIO.EOF
	}
	c := fc.input[0]
	fc.input = fc.input[1:]
	return c, nil
}

func (fc *fakeConsole) WriteByte(c byte) error {
	return fc.output.WriteByte(c)
}

func (fc *fakeConsole) Close() error {
	fc.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(goIO.Discard)
	return log
}

// newTestVM places program at UserSpaceStart.
func newTestVM(input string, program ...uint16) (*VM, *fakeConsole) {
	console := &fakeConsole{input: []byte(input)}
	machine := NewVM(WithConsole(console), WithLogger(quietLogger()), WithPollInterval(0))
	for i, w := range program {
		machine.Poke(uint16(UserSpaceStart+i), w)
	}
	return machine, console
}

// Instruction encoders.

func opADD(dr, sr1, sr2 uint16) uint16 { return 0x1000 | dr<<9 | sr1<<6 | sr2 }
func opADDi(dr, sr1 uint16, imm int) uint16 {
	return 0x1000 | dr<<9 | sr1<<6 | 0x20 | uint16(imm)&0x1F
}
func opAND(dr, sr1, sr2 uint16) uint16 { return 0x5000 | dr<<9 | sr1<<6 | sr2 }
func opANDi(dr, sr1 uint16, imm int) uint16 {
	return 0x5000 | dr<<9 | sr1<<6 | 0x20 | uint16(imm)&0x1F
}
func opNOT(dr, sr uint16) uint16          { return 0x9000 | dr<<9 | sr<<6 | 0x3F }
func opBR(nzp uint16, off int) uint16     { return nzp<<9 | uint16(off)&0x1FF }
func opJMP(br uint16) uint16              { return 0xC000 | br<<6 }
func opJSR(off int) uint16                { return 0x4800 | uint16(off)&0x7FF }
func opJSRR(br uint16) uint16             { return 0x4000 | br<<6 }
func opLD(dr uint16, off int) uint16      { return 0x2000 | dr<<9 | uint16(off)&0x1FF }
func opLDI(dr uint16, off int) uint16     { return 0xA000 | dr<<9 | uint16(off)&0x1FF }
func opLDR(dr, br uint16, off int) uint16 { return 0x6000 | dr<<9 | br<<6 | uint16(off)&0x3F }
func opLEA(dr uint16, off int) uint16     { return 0xE000 | dr<<9 | uint16(off)&0x1FF }
func opST(sr uint16, off int) uint16      { return 0x3000 | sr<<9 | uint16(off)&0x1FF }
func opSTI(sr uint16, off int) uint16     { return 0xB000 | sr<<9 | uint16(off)&0x1FF }
func opSTR(sr, br uint16, off int) uint16 { return 0x7000 | sr<<9 | br<<6 | uint16(off)&0x3F }
func opTRAP(vector TrapVector) uint16     { return 0xF000 | uint16(vector) }
