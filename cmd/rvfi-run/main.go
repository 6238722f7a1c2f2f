// Package main provides a headless RVFI trace runner: it loads an ELF,
// runs it to completion with the RVFI monitor enabled, and writes the
// full retirement trace to stdout as JSON lines, one record per
// instruction, for a formal lockstep checker to consume.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv32p/core"
	"github.com/sarchlab/rv32p/loader"
)

var (
	maxCycles  = flag.Uint64("max-cycles", 10_000_000, "Stop after this many cycles even if the program hasn't halted")
	withICache = flag.Bool("with-icache", false, "Enable the instruction cache")
	withDCache = flag.Bool("with-dcache", false, "Enable the data cache")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvfi-run [options] <program.elf>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	prog, err := loader.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	cfg := core.DefaultConfig()
	cfg.WithRVFI = true
	cfg.WithICache = *withICache
	cfg.WithDCache = *withDCache
	if cfg.WithICache {
		cfg.ICacheNWays, cfg.ICacheLines, cfg.ICacheWords = 2, 64, 4
		cfg.ICacheBase, cfg.ICacheLimit = cfg.MemBase, cfg.MemBase+cfg.MemSize
	}
	if cfg.WithDCache {
		cfg.DCacheNWays, cfg.DCacheLines, cfg.DCacheWords = 2, 64, 4
		cfg.DCacheBase, cfg.DCacheLimit = cfg.MemBase, cfg.MemBase+cfg.MemSize
		cfg.WrbufDepth = 4
	}

	c := core.NewFromProgram(cfg, prog)
	running := c.RunCycles(*maxCycles)
	if !running {
		fmt.Fprintf(os.Stderr, "warning: program did not halt within %d cycles\n", *maxCycles)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, t := range c.RVFI().Traces() {
		if err := enc.Encode(t); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing trace: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(int(c.ExitCode()))
}
