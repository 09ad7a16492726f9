// Command chip8-term runs a CHIP-8 program in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/rivo/tview"

	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/disasm"
	"go.creack.net/chip8/keypad"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/runner"
	"go.creack.net/chip8/vm"
)

// Terminals only report key presses, a key counts as held for this long.
const holdFor = 150 * time.Millisecond

// refreshInterval is the UI refresh rate.
const refreshInterval = time.Second / 60

type Game struct {
	app *tview.Application

	root *tview.Pages

	screen    *tview.Box
	stateView *tview.TextView
	logsView  *tview.TextView

	runner *runner.Runner

	// Only touched from the tview goroutine.
	frame  vm.Frame
	status string

	keyMu sync.Mutex
	key   op.Key
	keyAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func NewGame(ctx context.Context, name string, r *runner.Runner, listing string) *Game {
	tapp := tview.NewApplication()

	newTextView := func(text string) *tview.TextView {
		return tview.NewTextView().
			SetDynamicColors(true).
			SetText(text)
	}

	screen := tview.NewBox()
	screen.SetTitle(name).SetBorder(true)

	stateView := newTextView("")
	stateView.SetTitle("State").SetBorder(true)

	logsView := newTextView("")
	logsView.SetTitle("Logs").SetBorder(true)
	logsView.ScrollToEnd()

	rightPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(stateView, 0, 1, false).
		AddItem(logsView, 0, 2, false)

	// The screen uses one cell per column and half a cell per row.
	mainPage := tview.NewFlex().
		AddItem(screen, op.Width+2, 0, true).
		AddItem(rightPane, 0, 1, false)

	listingView := newTextView(tview.Escape(listing))
	listingView.SetTitle("Listing (tab to go back)").SetBorder(true)

	pages := tview.NewPages()
	pages.AddPage("main", mainPage, true, true)
	pages.AddPage("listing", listingView, true, false)

	ctx, cancel := context.WithCancel(ctx)

	g := &Game{
		app:       tapp,
		root:      pages,
		screen:    screen,
		stateView: stateView,
		logsView:  logsView,
		runner:    r,
		status:    "running",
		key:       op.NoKey,
		ctx:       ctx,
		cancel:    cancel,
	}
	for y := range g.frame {
		for x := range g.frame[y] {
			g.frame[y][x] = vm.PixelOff
		}
	}
	screen.SetDrawFunc(g.drawScreen)
	return g
}

func (g *Game) Stop() {
	g.app.Stop()
	g.cancel()
}

func (g *Game) Init() {
	f := func(event *tcell.EventKey) *tcell.EventKey {
		curPage, _ := g.root.GetFrontPage()
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			g.Stop()
			return nil
		case tcell.KeyTab:
			if curPage == "main" {
				g.root.SwitchToPage("listing")
			} else {
				g.root.SwitchToPage("main")
			}
			return nil
		case tcell.KeyRune:
		default:
			return event
		}
		if k, ok := keypad.FromRune(event.Rune()); ok {
			g.keyMu.Lock()
			g.key, g.keyAt = k, time.Now()
			g.keyMu.Unlock()
			return nil
		}
		return event
	}
	g.root.SetInputCapture(f)
}

// sampleKey returns the key held at now.
func (g *Game) sampleKey(now time.Time) op.Key {
	g.keyMu.Lock()
	defer g.keyMu.Unlock()
	if g.key != op.NoKey && now.Sub(g.keyAt) > holdFor {
		g.key = op.NoKey
	}
	return g.key
}

func (g *Game) drawScreen(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	x, y, width, height = x+1, y+1, width-2, height-2
	for row := 0; row < op.Height && row/2 < height; row += 2 {
		for col := 0; col < op.Width && col < width; col++ {
			style := tcell.StyleDefault.
				Foreground(tcell.NewHexColor(int32(g.frame[row][col]))).
				Background(tcell.NewHexColor(int32(g.frame[row+1][col])))
			screen.SetContent(x+col, y+row/2, '▀', nil, style)
		}
	}
	return x, y, width, height
}

func (g *Game) drawState(key op.Key) {
	g.stateView.Clear()
	keyStr := "-"
	if key.Valid() {
		keyStr = fmt.Sprintf("%X", int(key))
	}
	fmt.Fprintf(g.stateView, "Status: %s\n", g.status)
	fmt.Fprintf(g.stateView, "Key: %s\n", keyStr)
	fmt.Fprintf(g.stateView, "\nKeys: 1234/QWER/ASDF/ZXCV\nTab: listing, Esc: quit\n")
}

func (g *Game) handleMessage(msg runner.Message) {
	colorCode := "[" + tcell.ColorDefault.String() + ":::]"
	switch msg.Type {
	case runner.MsgHalted:
		g.status = "halted"
		colorCode = "[" + tcell.ColorRed.String() + ":::]"
	case runner.MsgStopped:
		g.status = "stopped"
	}
	fmt.Fprintf(g.logsView, "%s%s[:::]\n", colorCode, tview.Escape(msg.String()))
}

// Update forwards the key sample and presents whatever the runner produced.
func (g *Game) Update(now time.Time) {
	key := g.sampleKey(now)
	g.runner.Keys.Put(key)

	frame, hasFrame := g.runner.Frames.Take()
	msg, hasMsg := g.runner.Messages.Take()

	g.app.QueueUpdateDraw(func() {
		if hasFrame {
			g.frame = frame
		}
		if hasMsg {
			g.handleMessage(msg)
		}
		g.drawState(key)
	})
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
	listing, err := disasm.Disam(cfg.ROM, rom)
	if err != nil {
		logger.Fatal("Failed to disassemble program", log.Err(err))
	}

	m := cli.NewMachine(cfg, rom)
	r := runner.New(logger, m)
	g := NewGame(app.Context(), cfg.ROM, r, listing)
	g.Init()

	// A halt keeps the window up, it is reported through the logs view.
	go func() { _ = r.Run(g.ctx) }()

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				g.Update(now)
			case <-g.ctx.Done():
				g.app.Stop()
				return
			}
		}
	}()

	if err := g.app.SetRoot(g.root, true).SetFocus(g.root).Run(); err != nil {
		logger.Fatal("Terminal UI failed", log.Err(err))
	}
	g.cancel()
	logger.Info("Done", log.String("rom", cfg.ROM))
}
