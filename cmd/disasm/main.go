package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/disasm"
)

func main() {
	listing := flag.Bool("listing", false, "print addresses and raw bytes instead of assembler source")
	debug := flag.Bool("debug", false, "enable debugging options for extended logging")
	quiet := flag.Bool("q", false, "perform operations quietly")
	flag.Parse()
	f := flag.Arg(0)
	if f == "" {
		tmp := strings.Split(os.Args[0], "/")
		binName := tmp[len(tmp)-1]
		fmt.Fprintf(os.Stderr, "usage: %s [options] <rom path | %s<name>>\n", binName, cli.DemoPrefix)
		flag.PrintDefaults()
		os.Exit(2)
	}
	logger := cli.CreateLogger(*debug, *quiet)

	rom, err := cli.LoadROM(f)
	if err != nil {
		logger.Fatal("Failed to load program", log.String("rom", f), log.Err(err))
	}
	logger.Debug("Loaded program", log.String("rom", f), log.Int("size", len(rom)))

	if *listing {
		for _, l := range disasm.Disassemble(rom) {
			fmt.Println(l)
		}
		return
	}

	src, err := disasm.Disam(f, rom)
	if err != nil {
		logger.Fatal("Failed to disassemble program", log.Err(err))
	}
	fmt.Print(src)
}
