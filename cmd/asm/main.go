package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"go.creack.net/chip8/asm"
	"go.creack.net/chip8/cli"
)

func run(logger *log.Logger, input, output string, prettyPrint bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	buf, pr, err := asm.Compile(input, string(data))
	if err != nil {
		return fmt.Errorf("failed to compile: %w", err)
	}
	if prettyPrint {
		for _, elem := range pr.Nodes() {
			fmt.Printf("%s\n", elem)
		}
		return nil
	}

	if err := os.WriteFile(output, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	labels := pr.Labels()
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logger.Debug("Label", log.String("name", name), log.Hex("addr", uint16(labels[name])))
	}
	logger.Info("Assembled program", log.String("output", output), log.Int("size", len(buf)))
	return nil
}

func main() {
	output := flag.String("o", "", "output file, default to <input>.ch8")
	prettyPrint := flag.Bool("pretty", false, "pretty print, do not output compiled file")
	debug := flag.Bool("debug", false, "enable debugging options for extended logging")
	quiet := flag.Bool("q", false, "perform operations quietly")
	flag.Parse()
	input := flag.Arg(0)
	if input == "" {
		tmp := strings.Split(os.Args[0], "/")
		binName := tmp[len(tmp)-1]
		fmt.Fprintf(os.Stderr, "usage: %s [options] <.s path>\n", binName)
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *output == "" {
		*output = strings.TrimSuffix(input, ".s") + ".ch8"
	}

	logger := cli.CreateLogger(*debug, *quiet)
	if err := run(logger, input, *output, *prettyPrint); err != nil {
		logger.Fatal("Assembly failed", log.String("input", input), log.Err(err))
	}
}
