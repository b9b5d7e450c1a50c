package vm

import (
	goIO "io"
	"os"
	"sync"
	"time"

	"github.com/pkg/term/termios"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is the keyboard and display the machine talks to.
type Console interface {
	// Poll waits at most timeout for a key. It reports false when no key
	// arrived in time.
	Poll(timeout time.Duration) (byte, bool)
	// ReadByte blocks until a key is available.
	ReadByte() (byte, error)
	// WriteByte emits one character.
	WriteByte(c byte) error
	// Close releases the device.
	Close() error
}

// Terminal is a Console on a pair of files, normally stdin and stdout.
// When the input is a terminal, canonical mode and echo are turned off for
// the lifetime of the Terminal.
type Terminal struct {
	in                     *os.File
	out                    goIO.Writer
	log                    logrus.FieldLogger
	raw                    bool
	restore                sync.Once
	restoreErr             error
	originalTerminalConfig unix.Termios
	buf                    [1]byte
}

// OpenTerminal takes over in and out. Close must be called to restore the
// terminal settings.
func OpenTerminal(in *os.File, out goIO.Writer, log logrus.FieldLogger) (*Terminal, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := &Terminal{in: in, out: out, log: log}
	if term.IsTerminal(int(in.Fd())) {
		if err := t.enableRawMode(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// this configures the terminal to run in raw mode
func (t *Terminal) enableRawMode() error {
	t.log.Debug("enabling raw mode...")
	if err := termios.Tcgetattr(t.in.Fd(), &t.originalTerminalConfig); err != nil {
		return &ErrDevice{Op: "tcgetattr", Err: err}
	}
	newTermios := t.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(t.in.Fd(), termios.TCSANOW, &newTermios); err != nil {
		return &ErrDevice{Op: "tcsetattr", Err: err}
	}
	t.raw = true
	return nil
}

// disableRawMode restores the saved settings once, however many goroutines
// ask.
func (t *Terminal) disableRawMode() error {
	t.restore.Do(func() {
		if !t.raw {
			return
		}
		t.log.Debug("disabling raw mode...")
		t.restoreErr = termios.Tcsetattr(t.in.Fd(), termios.TCSANOW, &t.originalTerminalConfig)
	})
	return t.restoreErr
}

func (t *Terminal) Poll(timeout time.Duration) (byte, bool) {
	fds := []unix.PollFd{{Fd: int32(t.in.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(max(timeout, 0)/time.Millisecond))
	if err != nil || n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return 0, false
	}
	c, err := t.ReadByte()
	if err != nil {
		return 0, false
	}
	return c, true
}

func (t *Terminal) ReadByte() (byte, error) {
	for {
		n, err := t.in.Read(t.buf[:])
		if n == 1 {
			return t.buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (t *Terminal) WriteByte(c byte) error {
	_, err := t.out.Write([]byte{c})
	return err
}

func (t *Terminal) Close() error {
	return t.disableRawMode()
}
