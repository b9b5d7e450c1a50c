package vm

import (
	"encoding/binary"
	goIO "io"
	"os"

	"github.com/sirupsen/logrus"
)

// LoadImage decodes an LC-3 object image: a big-endian origin followed by
// big-endian words up to the end of the stream. A trailing odd byte is
// dropped.
func LoadImage(r goIO.Reader) (origin uint16, words []uint16, err error) {
	file, err := goIO.ReadAll(r)
	if err != nil {
		return 0, nil, err
	}
	if len(file) < 2 {
		return 0, nil, ErrImageTooShort
	}

	/* origin tells us where in memory to place the image */
	origin = binary.BigEndian.Uint16(file)
	words = make([]uint16, 0, (len(file)-2)/2)
	for j := 2; j+1 < len(file); j += 2 {
		words = append(words, binary.BigEndian.Uint16(file[j:]))
	}
	return origin, words, nil
}

// Load installs an object image. Words that would land past the top of
// memory are discarded.
func (vm *VM) Load(r goIO.Reader) error {
	origin, words, err := LoadImage(r)
	if err != nil {
		return err
	}

	if room := MemorySize - int(origin); len(words) > room {
		vm.cpu.log.WithFields(logrus.Fields{
			"origin": origin,
			"words":  len(words),
			"kept":   room,
		}).Debug("image truncated")
		words = words[:room]
	}
	for i, w := range words {
		vm.memory.write(word(int(origin)+i), word(w))
	}

	vm.cpu.log.WithFields(logrus.Fields{
		"origin": origin,
		"words":  len(words),
	}).Debug("image loaded")
	return nil
}

// LoadFile loads the object image at path.
func (vm *VM) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return &ErrLoad{Path: path, Err: err}
	}
	defer file.Close()

	if err := vm.Load(file); err != nil {
		return &ErrLoad{Path: path, Err: err}
	}
	return nil
}
