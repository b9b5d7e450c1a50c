package vm

import "time"

const MemorySize = 1 << 16

const (
	TrapVectorTableStart       = 0x0000
	InterruptVectorTableStart  = 0x0100
	SystemSpaceStart           = 0x0200
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR word = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR word = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
)

const kbsrReady word = 1 << 15

// memory is the raw word store. Every address exists; nothing is
// intercepted here.
type memory struct {
	ram [MemorySize]word
}

func (mem *memory) write(addr, value word) {
	mem.ram[addr] = value
}

func (mem *memory) read(addr word) word {
	return mem.ram[addr]
}

// deviceMemory decorates the raw store with the keyboard device registers.
// A read of KBSR polls the console and refreshes KBSR and KBDR before the
// stored value is returned. Writes are never intercepted.
type deviceMemory struct {
	*memory
	console Console
	poll    time.Duration
}

func (mem *deviceMemory) read(addr word) word {
	if addr == KBSR {
		mem.pollKeyboard()
	}
	return mem.memory.read(addr)
}

// pollKeyboard consumes at most one key event. Two KBSR reads in a row may
// consume two keys.
func (mem *deviceMemory) pollKeyboard() {
	if mem.console != nil {
		if c, ok := mem.console.Poll(mem.poll); ok {
			mem.memory.write(KBSR, kbsrReady)
			mem.memory.write(KBDR, word(c)&0xFF)
			return
		}
	}
	mem.memory.write(KBSR, 0)
}

func newMemory() *memory {
	return &memory{}
}
