// Command chip8 runs a CHIP-8 program in a window.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/colornames"

	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/keypad"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/runner"
	"go.creack.net/chip8/vm"
)

var fontFace = text.NewGoXFace(bitmapfont.Face)

// physicalKeys follows the keypad.Layout order.
var physicalKeys = [keypad.Size]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

// cyclesPerTick keeps the inline loop close to runner.CycleInterval.
var cyclesPerTick = max(1, int(time.Second/runner.CycleInterval)/ebiten.DefaultTPS)

// Game implements ebiten.Game interface.
type Game struct {
	logger *log.Logger
	scale  int

	// Exactly one of machine or runner is set.
	machine *vm.Machine
	runner  *runner.Runner

	screen *ebiten.Image
	frame  vm.Frame

	paused bool
	halted error
}

func NewGame(logger *log.Logger, scale int, m *vm.Machine, r *runner.Runner) *Game {
	g := &Game{
		logger: logger,
		scale:  scale,
		runner: r,
		screen: ebiten.NewImage(op.Width, op.Height),
		frame:  m.Snapshot(),
	}
	if r == nil {
		g.machine = m
	}
	return g
}

func heldKey() op.Key {
	return keypad.First(func(i int) bool { return ebiten.IsKeyPressed(physicalKeys[i]) })
}

// Update proceeds the game state.
// Update is called every tick (1/60 [s] by default).
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	key := heldKey()

	if g.runner != nil {
		g.runner.Keys.Put(key)
		if frame, ok := g.runner.Frames.Take(); ok {
			g.frame = frame
		}
		if msg, ok := g.runner.Messages.Take(); ok && msg.Type == runner.MsgHalted {
			g.halted = msg.Err
		}
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if g.paused || g.halted != nil {
		return nil
	}
	for range cyclesPerTick {
		if err := runner.Cycle(g.machine, key); err != nil {
			g.logger.Error("Machine halted", log.Hex("pc", g.machine.PC), log.Err(err))
			g.halted = err
			break
		}
	}
	g.frame = g.machine.Snapshot()
	return nil
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var (
		msg string
		clr = colornames.Yellow
	)
	switch {
	case g.halted != nil:
		msg = fmt.Sprintf("halted: %s", g.halted)
		clr = colornames.Tomato
	case g.paused:
		msg = "paused"
	default:
		return
	}

	textOp := &text.DrawOptions{}
	textOp.GeoM.Translate(4, 4)
	textOp.LineSpacing = fontFace.Metrics().HLineGap + fontFace.Metrics().HAscent + fontFace.Metrics().HDescent
	textOp.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, msg, fontFace, textOp)
}

// Draw draws the game screen.
// Draw is called every frame (typically 1/60[s] for 60Hz display).
func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.WritePixels(g.frame.RGBA().Pix)

	drawOp := &ebiten.DrawImageOptions{}
	drawOp.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screen, drawOp)

	g.drawHUD(screen)
}

// Layout takes the outside size (e.g., the window size) and returns the (logical) screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return op.Width * g.scale, op.Height * g.scale
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

	rom, err := cli.LoadROM(cfg.ROM)
	if err != nil {
		logger.Fatal("Failed to load program", log.String("rom", cfg.ROM), log.Err(err))
	}
	m := cli.NewMachine(cfg, rom)

	var r *runner.Runner
	if cfg.Decoupled {
		r = runner.New(logger, m)
	}
	game := NewGame(logger, cfg.Scale, m, r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if r != nil {
		// A halt is reported through Messages and shown by the HUD.
		go func() { _ = r.Run(ctx) }()
	}

	ebiten.SetWindowSize(op.Width*cfg.Scale, op.Height*cfg.Scale)
	ebiten.SetWindowTitle("CHIP-8")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("Game loop failed", log.Err(err))
	}
}
