// Package main provides the command-line entry point for rv32p, a
// six-stage in-order RV32IM pipeline simulator.
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
	configPath = flag.String("config", "", "Path to a core configuration JSON file")
	withICache = flag.Bool("with-icache", false, "Enable the instruction cache")
	withDCache = flag.Bool("with-dcache", false, "Enable the data cache")
	withMulDiv = flag.Bool("with-muldiv", true, "Enable the M extension")
	withRVFI   = flag.Bool("rvfi", false, "Record an RVFI retirement trace")
	maxCycles  = flag.Uint64("max-cycles", 10_000_000, "Stop after this many cycles even if the program hasn't halted")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32p [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	c := core.NewFromProgram(cfg, prog)

	running := c.RunCycles(*maxCycles)

	fmt.Printf("Exit code: %d\n", c.ExitCode())
	fmt.Printf("Instructions: %d\n", c.Stats.Instructions)
	fmt.Printf("Cycles: %d\n", c.Stats.Cycles)
	if c.Stats.Instructions > 0 {
		fmt.Printf("CPI: %.2f\n", float64(c.Stats.Cycles)/float64(c.Stats.Instructions))
	}
	if !running {
		fmt.Fprintf(os.Stderr, "warning: program did not halt within %d cycles\n", *maxCycles)
	}

	if *withRVFI && c.RVFI() != nil {
		fmt.Printf("Retired %d instructions traced via RVFI\n", c.RVFI().Len())
	}

	os.Exit(int(c.ExitCode()))
}

// loadConfig builds a core.Config from -config if given, falling back
// to core.DefaultConfig, then layers the cache/muldiv/rvfi flags on
// top: -with-icache, -with-dcache and -rvfi can only turn a feature on
// (a file's true is kept when the flag is unset), while -with-muldiv
// always replaces the file's value, default included.
func loadConfig() (core.Config, error) {
	cfg := core.DefaultConfig()

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.WithICache = cfg.WithICache || *withICache
	cfg.WithDCache = cfg.WithDCache || *withDCache
	cfg.WithMulDiv = *withMulDiv
	cfg.WithRVFI = cfg.WithRVFI || *withRVFI

	if cfg.WithICache && cfg.ICacheNWays == 0 {
		cfg.ICacheNWays, cfg.ICacheLines, cfg.ICacheWords = 2, 64, 4
		cfg.ICacheBase, cfg.ICacheLimit = cfg.MemBase, cfg.MemBase+cfg.MemSize
	}
	if cfg.WithDCache && cfg.DCacheNWays == 0 {
		cfg.DCacheNWays, cfg.DCacheLines, cfg.DCacheWords = 2, 64, 4
		cfg.DCacheBase, cfg.DCacheLimit = cfg.MemBase, cfg.MemBase+cfg.MemSize
		cfg.WrbufDepth = 4
	}

	return cfg, nil
}
