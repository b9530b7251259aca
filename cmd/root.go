package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/psvitals/vitals/collector"
	"github.com/psvitals/vitals/config"
	"github.com/psvitals/vitals/ui"
)

// Version is set at build time via ldflags.
var Version = "0.3.0"

// Options holds CLI configuration after flags, environment, and the config
// file have been resolved.
type Options struct {
	Interval   time.Duration
	Limit      int
	PageSize   int
	JSONMode   bool
	PlainMode  bool
	WatchMode  bool
	WatchCount int
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `vitals v%s — Cross-platform process and system vitals reporter

Usage:
  vitals [OPTIONS] [INTERVAL]

Modes:
  (default)         Interactive TUI (bubbletea, fullscreen)
  -plain            One-shot plain-text report to stdout, then exit
  -watch            Plain-text report with auto-refresh
  -json             Single JSON snapshot to stdout, then exit
  -version          Print version and exit

Options:
  -interval N       Refresh interval in seconds for the TUI and -watch (default: 2)
  -limit N          Max processes to report (-1 = all, 0 = none; -watch defaults to 15)
  -count N          Number of iterations for -watch mode (0 = infinite, default: 0)

Positional:
  INTERVAL          First positional arg sets interval: vitals 5 = vitals -interval 5

Examples:
  vitals                             Interactive TUI, 2s refresh
  vitals 5                           Interactive TUI, 5s refresh
  vitals -plain                      Full report once, then exit
  vitals -plain -limit 10            Top 10 processes by CPU + system vitals
  vitals -watch                      Auto-refreshing report, Ctrl+C to quit
  vitals -watch -count 10 -interval 3
  vitals -json | jq '.processes[0]'
  VITALS_NO_RICH=1 vitals -plain     Force the platform-command sources
  vitals -version
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	fileCfg := config.Load()

	var opts Options
	var intervalSec int
	var showVersion bool

	flag.IntVar(&intervalSec, "interval", fileCfg.IntervalSec, "Refresh interval in seconds")
	flag.IntVar(&opts.Limit, "limit", fileCfg.ProcessLimit, "Max processes to report (-1 = all, 0 = none)")
	flag.BoolVar(&opts.JSONMode, "json", false, "Output a single JSON snapshot and exit")
	flag.BoolVar(&opts.PlainMode, "plain", false, "One-shot plain-text report (no TUI)")
	flag.BoolVar(&opts.WatchMode, "watch", false, "Plain-text output with auto-refresh (no TUI)")
	flag.IntVar(&opts.WatchCount, "count", 0, "Number of iterations for -watch (0=infinite)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		fmt.Printf("vitals v%s\n", Version)
		return nil
	}

	// Support positional arg for interval: `vitals 5` = `vitals --interval 5`
	if args := flag.Args(); len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			intervalSec = n
		}
	}
	if intervalSec < 1 {
		intervalSec = 1
	}
	opts.Interval = time.Duration(intervalSec) * time.Second
	opts.PageSize = fileCfg.PageSize

	orc := collector.NewOrchestrator(collector.Options{
		Timeout:           fileCfg.AdapterTimeout(),
		CPUSampleWindow:   fileCfg.CPUSampleWindow(),
		DisableRichSource: fileCfg.DisableRichSource,
	})

	// -json mode: single snapshot to stdout
	if opts.JSONMode {
		return runJSON(orc, opts.Limit)
	}

	// -plain mode: single plain-text report
	if opts.PlainMode {
		return runPlain(orc, opts.Limit)
	}

	// -watch mode: plain-text output with auto-refresh
	if opts.WatchMode {
		return runWatch(orc, opts)
	}

	// Normal TUI mode
	m := ui.NewModel(orc, ui.Options{
		Interval: opts.Interval,
		PageSize: opts.PageSize,
		Limit:    opts.Limit,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// runJSON outputs a single snapshot as JSON and exits. The limit bounds the
// emitted process list only; counts are computed over the full set before
// truncation.
func runJSON(orc *collector.Orchestrator, limit int) error {
	snap := orc.CollectSystemStatus(context.Background())
	snap.Processes = collector.Truncate(snap.Processes, limit)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
