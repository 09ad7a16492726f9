// Package runner drives a vm.Machine, either inline from a host loop or
// from its own goroutine.
package runner

import (
	"context"
	"time"

	"github.com/retroenv/retrogolib/log"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

// CycleInterval paces execution at about 600 instructions per second.
const CycleInterval = 1660 * time.Microsecond

// Cycle feeds one key sample to m and executes one instruction.
// Hosts must stop calling it after the first error.
func Cycle(m *vm.Machine, key op.Key) error {
	m.SetKey(key)
	return m.Step()
}

// Runner owns a Machine from a dedicated goroutine.
// The host talks to it only through the mailboxes.
type Runner struct {
	Keys     *Mailbox[op.Key]   // Host -> VM.
	Frames   *Mailbox[vm.Frame] // VM -> host.
	Messages *Mailbox[Message]  // VM -> host.

	logger   *log.Logger
	machine  *vm.Machine
	interval time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterval overrides CycleInterval.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) { r.interval = d }
}

// New returns a Runner for m. m must not be touched by anyone else once Run starts.
func New(logger *log.Logger, m *vm.Machine, opts ...Option) *Runner {
	r := &Runner{
		Keys:     NewMailbox[op.Key](),
		Frames:   NewMailbox[vm.Frame](),
		Messages: NewMailbox[Message](),
		logger:   logger,
		machine:  m,
		interval: CycleInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the machine until ctx is done (returns nil) or the machine
// halts on a fatal error (returns it). The last key received stays held
// until a new sample arrives.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	key := op.NoKey
	r.logger.Debug("Runner started", log.Hex("pc", r.machine.PC))
	r.Messages.Put(NewMessage(MsgStarted, r.machine.Cycles, nil))

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Runner stopped", log.Int("cycles", int(r.machine.Cycles)))
			r.Messages.Put(NewMessage(MsgStopped, r.machine.Cycles, nil))
			return nil
		case <-ticker.C:
		}

		if k, ok := r.Keys.Take(); ok {
			key = k
		}
		if err := Cycle(r.machine, key); err != nil {
			r.logger.Error("Machine halted", log.Hex("pc", r.machine.PC), log.Err(err))
			r.Frames.Put(r.machine.Snapshot())
			r.Messages.Put(NewMessage(MsgHalted, r.machine.Cycles, err))
			return err
		}
		r.Frames.Put(r.machine.Snapshot())
	}
}
