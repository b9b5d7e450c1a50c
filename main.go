package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/aryanA101a/lulu/internal/translate"
	"github.com/aryanA101a/lulu/vm"
)

var f = translate.From

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args and executes the images. It returns the process exit
// code: 2 for usage errors, 1 for load or runtime errors, 0 on HALT.
func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	var verbose bool
	var trace bool
	var dump bool
	var poll = vm.DefaultPollInterval

	flags := flag.NewFlagSet("lulu", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&verbose, "v", false, "Verbose mode")
	flags.BoolVar(&trace, "trace", false, "Log every executed instruction")
	flags.BoolVar(&dump, "dump", false, "Print the registers on exit")
	flags.DurationVar(&poll, "poll", poll, "Keyboard status poll interval")

	flags.Usage = func() {
		fmt.Fprint(stderr, f("usage: lulu [flags] image-file1 ...\n"))
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return 2
	}
	if poll < 0 {
		fmt.Fprintln(stderr, f("-poll must not be negative"))
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	switch {
	case trace:
		log.SetLevel(logrus.TraceLevel)
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}

	return execute(log, flags.Args(), stdin, stdout, stderr, poll, dump)
}

func execute(log *logrus.Logger, images []string, stdin *os.File, stdout, stderr io.Writer, poll time.Duration, dump bool) int {
	terminal, err := vm.OpenTerminal(stdin, stdout, log)
	if err != nil {
		log.Errorf("console: %v", err)
		return 1
	}

	machine := vm.NewVM(
		vm.WithConsole(terminal),
		vm.WithLogger(log),
		vm.WithPollInterval(poll),
	)
	defer machine.Close()

	// Raw mode must not outlive the process.
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	defer close(done)
	go func() {
		select {
		case sig := <-sigs:
			log.WithField("signal", sig).Debug("interrupted")
			machine.Close()
			os.Exit(130)
		case <-done:
		}
	}()

	for _, image := range images {
		if err := machine.LoadFile(image); err != nil {
			log.Errorf("failed to load image: %v", err)
			return 1
		}
	}

	err = machine.Run()

	if dump {
		printer := pp.New()
		printer.SetOutput(stderr)
		file, ok := stderr.(*os.File)
		printer.SetColoringEnabled(ok && term.IsTerminal(int(file.Fd())))
		printer.Println(machine.Snapshot())
	}

	if err != nil {
		var opErr *vm.ErrUnimplementedOpcode
		if errors.As(err, &opErr) {
			log.WithField("cycles", machine.Cycles()).Errorf("abort: %v", err)
		} else {
			log.Errorf("%v", err)
		}
		return 1
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, f("HALT"))
	return 0
}
