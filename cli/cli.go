// Package cli parses the command line shared by the chip8 hosts.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"
	"go.creack.net/chip8/asm"
	"go.creack.net/chip8/assets"
	"go.creack.net/chip8/vm"
)

// DemoPrefix selects a bundled program instead of a file, e.g. "demo:maze".
const DemoPrefix = "demo:"

// Config is the parsed command line.
type Config struct {
	ROM       string // Path to the program, or DemoPrefix + name.
	Scale     int    // Window scale factor.
	Seed      uint64 // Random seed, 0 for a time based one.
	Cycles    int    // Cycles to run, headless host only.
	Decoupled bool   // Run the machine on its own goroutine.
	Debug     bool
	Quiet     bool
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and the flag defaults to w.
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [options] <rom path | %s<name>>\n\n", e.flags.Name(), DemoPrefix)
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintf(w, "\ndemos: %s\n", strings.Join(assets.Names(), ", "))
}

func readFlags(flags *flag.FlagSet, cfg *Config) {
	flags.IntVar(&cfg.Scale, "scale", 10, "window scale factor")
	flags.Uint64Var(&cfg.Seed, "seed", 0, "random seed, 0 picks one from the clock")
	flags.IntVar(&cfg.Cycles, "cycles", 1000, "number of cycles to run (headless only)")
	flags.BoolVar(&cfg.Decoupled, "decoupled", false, "run the machine on its own goroutine")
	flags.BoolVar(&cfg.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&cfg.Quiet, "q", false, "perform operations quietly")
}

// Parse reads args, the program name excluded.
func Parse(name string, args []string) (Config, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var cfg Config
	readFlags(flags, &cfg)

	if err := flags.Parse(args); err != nil {
		return cfg, &UsageError{flags: flags, msg: err.Error()}
	}
	switch flags.NArg() {
	case 0:
		return cfg, &UsageError{flags: flags, msg: "missing rom path"}
	case 1:
	default:
		return cfg, &UsageError{flags: flags, msg: fmt.Sprintf("unexpected argument %q after rom path", flags.Arg(1))}
	}
	cfg.ROM = flags.Arg(0)

	if cfg.Scale < 1 {
		return cfg, &UsageError{flags: flags, msg: fmt.Sprintf("invalid scale %d", cfg.Scale)}
	}
	if cfg.Cycles < 0 {
		return cfg, &UsageError{flags: flags, msg: fmt.Sprintf("invalid cycle count %d", cfg.Cycles)}
	}
	return cfg, nil
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadROM returns the program image named by path.
// Assembler sources (.s) and bundled demos are assembled on the fly.
func LoadROM(path string) ([]byte, error) {
	if name, ok := strings.CutPrefix(path, DemoPrefix); ok {
		src, err := assets.Source(name)
		if err != nil {
			return nil, err
		}
		return compile(path, src)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	if filepath.Ext(path) == ".s" {
		return compile(path, string(data))
	}
	return data, nil
}

func compile(name, src string) ([]byte, error) {
	rom, _, err := asm.Compile(name, src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", name, err)
	}
	return rom, nil
}

// NewMachine returns a machine with rom loaded, seeded from cfg.
func NewMachine(cfg Config, rom []byte) *vm.Machine {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	m := vm.New(vm.WithSeed(seed))
	m.LoadROM(rom)
	return m
}
