// Command headless runs a CHIP-8 program without a window and prints the
// final frame as text.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/runner"
	"go.creack.net/chip8/vm"
)

func run(logger *log.Logger, cfg cli.Config) (*vm.Machine, error) {
	rom, err := cli.LoadROM(cfg.ROM)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	m := cli.NewMachine(cfg, rom)
	ctx := app.Context()

	logger.Debug("Running", log.String("rom", cfg.ROM), log.Int("cycles", cfg.Cycles))
	for i := 0; i < cfg.Cycles; i++ {
		select {
		case <-ctx.Done():
			logger.Info("Interrupted", log.Int("cycle", i))
			return m, nil
		default:
		}
		if err := runner.Cycle(m, op.NoKey); err != nil {
			return m, err
		}
	}
	return m, nil
}

func main() {
	cfg, err := cli.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
			os.Exit(2)
		}
		cli.CreateLogger(false, false).Fatal(err.Error())
	}
	logger := cli.CreateLogger(cfg.Debug, cfg.Quiet)

	m, err := run(logger, cfg)
	if m != nil {
		frame := m.Snapshot()
		fmt.Print(frame.String())
	}
	if err != nil {
		logger.Fatal("Machine halted", log.Err(err))
	}
	logger.Info("Done", log.Int("cycles", int(m.Cycles)), log.Hex("pc", m.PC))
}
