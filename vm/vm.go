// Package vm implements an LC-3 virtual machine: 64K words of memory with a
// memory-mapped keyboard, eight general purpose registers, and the
// fetch-decode-execute loop with the console TRAP routines.
package vm

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval bounds the keyboard wait of a KBSR read.
const DefaultPollInterval = 10 * time.Millisecond

type VM struct {
	memory *memory
	cpu    cpu
}

// Option configures a VM.
type Option func(vm *VM)

// WithConsole attaches the keyboard and display. Without one, console
// traps fail and KBSR never reports a key.
func WithConsole(console Console) Option {
	return func(vm *VM) {
		vm.cpu.console = console
		vm.cpu.mem.console = console
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(vm *VM) {
		vm.cpu.log = logrus.NewEntry(log)
	}
}

// WithPollInterval sets how long a KBSR read waits for a key. Negative
// intervals are treated as zero.
func WithPollInterval(d time.Duration) Option {
	return func(vm *VM) {
		vm.cpu.mem.poll = max(d, 0)
	}
}

// NewVM returns a machine ready to run from UserSpaceStart.
func NewVM(opts ...Option) *VM {
	mem := newMemory()
	vm := &VM{
		memory: mem,
		cpu: cpu{
			state: Running,
			reg:   registers{pc: UserSpaceStart, cond: FlagZro},
			mem:   &deviceMemory{memory: mem, poll: DefaultPollInterval},
			log:   logrus.NewEntry(logrus.StandardLogger()),
		},
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Step executes a single instruction. A halted machine returns ErrHalted;
// a faulted one returns its fault again.
func (vm *VM) Step() error {
	return vm.cpu.step()
}

// Run executes instructions until HALT or an error. An
// *ErrUnimplementedOpcode stops the machine for good: later calls return
// the same error.
func (vm *VM) Run() error {
	if vm.cpu.state == Faulted {
		return vm.cpu.fault
	}
	for vm.cpu.state == Running {
		if err := vm.cpu.step(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the console.
func (vm *VM) Close() error {
	if vm.cpu.console == nil {
		return nil
	}
	return vm.cpu.console.Close()
}

func (vm *VM) State() State {
	return vm.cpu.state
}

func (vm *VM) Halted() bool {
	return vm.cpu.state == Halted
}

// Cycles returns the number of instructions fetched.
func (vm *VM) Cycles() uint64 {
	return vm.cpu.cycles
}

// Peek reads memory without triggering device side effects.
func (vm *VM) Peek(addr uint16) uint16 {
	return uint16(vm.memory.read(word(addr)))
}

// Poke stores a word.
func (vm *VM) Poke(addr, value uint16) {
	vm.memory.write(word(addr), word(value))
}

// Snapshot is a copy of the register file.
type Snapshot struct {
	R     [8]uint16
	PC    uint16
	Cond  Flag
	State State
}

func (vm *VM) Snapshot() Snapshot {
	s := Snapshot{
		PC:    uint16(vm.cpu.reg.pc),
		Cond:  vm.cpu.reg.cond,
		State: vm.cpu.state,
	}
	for i, r := range vm.cpu.reg.gpr {
		s.R[i] = uint16(r)
	}
	return s
}

// SetRegister writes a general purpose register. The condition code is
// left alone.
func (vm *VM) SetRegister(r int, value uint16) {
	vm.cpu.reg.gpr[r] = word(value)
}
