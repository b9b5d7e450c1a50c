package vm

import (
	"errors"

	"github.com/aryanA101a/lulu/internal/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageTooShort = errors.New(f("image too short"))

	// Execution errors
	ErrOpcode  = errors.New(f("opcode unimplemented"))
	ErrHalted  = errors.New(f("machine halted"))
	ErrConsole = errors.New(f("console unavailable"))
)

// ErrUnimplementedOpcode is returned when the machine fetches an opcode
// with no handler (RES or RTI). It is fatal: the machine stops and does not
// resume.
type ErrUnimplementedOpcode struct {
	Opcode      Opcode
	PC          word // address the instruction was fetched from
	Instruction word
}

func (err *ErrUnimplementedOpcode) Error() string {
	return f("0x%04x: %v (0x%04x): %v", uint16(err.PC), err.Opcode, uint16(err.Instruction), ErrOpcode)
}

func (err *ErrUnimplementedOpcode) Unwrap() error {
	return ErrOpcode
}

// ErrDevice wraps a console failure raised while executing a trap or a
// memory-mapped device read.
type ErrDevice struct {
	Op  string
	Err error
}

func (err *ErrDevice) Error() string {
	return f("device %v: %v", err.Op, err.Err)
}

func (err *ErrDevice) Unwrap() error {
	return err.Err
}

// ErrLoad names the image that failed to load.
type ErrLoad struct {
	Path string
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
