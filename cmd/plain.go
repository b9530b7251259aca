package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/psvitals/vitals/collector"
	"github.com/psvitals/vitals/model"
)

// ── ANSI color/style codes ──────────────────────────────────────────────────

const (
	R = "\033[0m" // reset
	B = "\033[1m" // bold
	D = "\033[2m" // dim

	FYel = "\033[33m"
	FCyn = "\033[36m"

	FBRed = "\033[91m"
	FBGrn = "\033[92m"
	FBYel = "\033[93m"
	FBWht = "\033[97m"

	BBlu = "\033[44m"
)

// ── Thresholds ──────────────────────────────────────────────────────────────

const (
	tCPUWarn = 70.0
	tCPUCrit = 90.0
	tMemWarn = 70.0
	tMemCrit = 85.0

	// A process above this share of a single resource counts as intensive.
	tIntensivePct = 10.0
)

// watchDefaultLimit bounds the process table in -watch mode when no explicit
// limit is given; an unbounded table scrolls the system panel off screen.
const watchDefaultLimit = 15

// ── Styling helpers ─────────────────────────────────────────────────────────

// cpct colors a percentage: green below warn, yellow at warn, red at crit.
// Negative values mean unmeasured and render as a dim dash.
func cpct(v float64, warn, crit float64) string {
	if v < 0 {
		return fmt.Sprintf("%s%6s %s", D, "-", R)
	}
	switch {
	case v >= crit:
		return fmt.Sprintf("%s%s%6.1f%%%s", B, FBRed, v, R)
	case v >= warn:
		return fmt.Sprintf("%s%6.1f%%%s", FBYel, v, R)
	default:
		return fmt.Sprintf("%s%6.1f%%%s", FBGrn, v, R)
	}
}

// bar renders a percentage bar of width w. Negative values mean unmeasured
// and render as an empty dim track.
func bar(pct float64, w int) string {
	if pct < 0 {
		return fmt.Sprintf("%s%s%s", D, strings.Repeat("-", w), R)
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100.0 * float64(w))
	if filled > w {
		filled = w
	}
	empty := w - filled
	var c string
	switch {
	case pct >= 90:
		c = FBRed
	case pct >= 70:
		c = FBYel
	case pct >= 40:
		c = FYel
	default:
		c = FBGrn
	}
	return fmt.Sprintf("%s%s%s%s%s", c, strings.Repeat("#", filled), D, strings.Repeat("-", empty), R)
}

// fb formats a byte count; negative means unmeasured.
func fb(b int64) string {
	if b < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(b))
}

// fcount formats a count; negative means unmeasured.
func fcount(v int64) string {
	if v < 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func trunc(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n < 3 {
		return s[:n]
	}
	return s[:n-2] + ".."
}

func titleLine(t string) string {
	pad := 78 - len(t) - 2
	if pad < 0 {
		pad = 0
	}
	return fmt.Sprintf("%s%s== %s %s%s", B, FCyn, t, strings.Repeat("=", pad), R)
}

func hr() string {
	return fmt.Sprintf("%s%s%s", D, strings.Repeat("-", 78), R)
}

// platformLabel prefers the version string ("Ubuntu 24.04", "macOS 14.5")
// over the bare family name.
func platformLabel(snap *model.SystemSnapshot) string {
	if snap.PlatformVersion != "" && snap.PlatformVersion != model.UnknownText {
		return snap.PlatformVersion
	}
	return snap.PlatformName
}

// intensiveCounts tallies processes above the intensity threshold over the
// full untruncated list, so a display limit never biases the totals.
func intensiveCounts(procs []model.ProcessRecord) (cpu, mem int) {
	for _, p := range procs {
		if p.CPUPercent > tIntensivePct {
			cpu++
		}
		if p.MemoryPercent > tIntensivePct {
			mem++
		}
	}
	return cpu, mem
}

// statusOrder fixes the display order of per-status counts.
var statusOrder = []model.Status{
	model.StatusRunning,
	model.StatusSleeping,
	model.StatusStopped,
	model.StatusZombie,
	model.StatusUnknown,
}

// ── Section renderers ───────────────────────────────────────────────────────

func printSystem(snap *model.SystemSnapshot) {
	fmt.Println(titleLine("SYSTEM"))

	fmt.Printf(" %sHost%s   %s%s%s  %s(%s, %s)%s\n",
		B, R, FBWht, snap.Hostname, R,
		D, platformLabel(snap), snap.Architecture, R)

	if !snap.BootTime.IsZero() {
		fmt.Printf(" %sBoot%s   %s  %s(%s)%s\n",
			B, R, snap.BootTime.Format("2006-01-02 15:04:05"),
			D, humanize.Time(snap.BootTime), R)
	} else {
		fmt.Printf(" %sBoot%s   %s-%s\n", B, R, D, R)
	}

	cpu := snap.CPU
	fmt.Printf(" %sCPU%s    [%s] %s  %s%s phys / %s log%s",
		B, R, bar(cpu.UsagePercent, 22), cpct(cpu.UsagePercent, tCPUWarn, tCPUCrit),
		D, fcount(cpu.PhysicalCores), fcount(cpu.LogicalCores), R)
	if cpu.ModelName != model.UnknownText && cpu.ModelName != "" {
		fmt.Printf("  %s", trunc(cpu.ModelName, 28))
	}
	fmt.Println()

	mem := snap.Memory
	fmt.Printf(" %sMem%s    [%s] %s  %s / %s",
		B, R, bar(mem.UsagePercent, 22), cpct(mem.UsagePercent, tMemWarn, tMemCrit),
		fb(mem.Used), fb(mem.Total))
	if mem.Available >= 0 {
		fmt.Printf("  %s(%s available)%s", D, fb(mem.Available), R)
	}
	fmt.Println()

	swap := snap.Swap
	fmt.Printf(" %sSwap%s   [%s] %s  %s / %s\n",
		B, R, bar(swap.UsagePercent, 22), cpct(swap.UsagePercent, tMemWarn, tMemCrit),
		fb(swap.Used), fb(swap.Total))

	if len(snap.LoadAverage) == 3 {
		fmt.Printf(" %sLoad%s   %s%.2f  %.2f  %.2f%s\n",
			B, R, FBWht, snap.LoadAverage[0], snap.LoadAverage[1], snap.LoadAverage[2], R)
	} else {
		fmt.Printf(" %sLoad%s   %s-%s\n", B, R, D, R)
	}

	fmt.Printf(" %sProcs%s  %s%d total%s", B, R, FBWht, len(snap.Processes), R)
	for _, st := range statusOrder {
		if n := snap.ProcessCounts[st]; n > 0 {
			fmt.Printf("   %s%s%s %d", D, st, R, n)
		}
	}
	fmt.Println()

	if len(snap.Sources) > 0 {
		fmt.Printf(" %sSrc%s    %s%s%s\n", B, R, D, strings.Join(snap.Sources, ", "), R)
	}
}

func printProcessTable(procs []model.ProcessRecord, limit int) {
	shown := collector.Truncate(procs, limit)

	title := fmt.Sprintf("PROCESSES (%d by CPU)", len(procs))
	if len(shown) < len(procs) {
		title = fmt.Sprintf("PROCESSES (top %d of %d by CPU)", len(shown), len(procs))
	}
	fmt.Println(titleLine(title))

	fmt.Printf(" %s%7s  %-24s %7s %7s %10s %5s  %-8s %s%s\n",
		B, "PID", "NAME", "CPU", "MEM", "RSS", "THR", "STATUS", "USER", R)
	for _, p := range shown {
		fmt.Printf(" %7d  %-24s %s %s %10s %5s  %-8s %s\n",
			p.PID,
			trunc(p.Name, 24),
			cpct(p.CPUPercent, tIntensivePct, 50),
			cpct(p.MemoryPercent, tIntensivePct, 30),
			fb(p.RSS),
			fcount(p.Threads),
			p.Status,
			trunc(p.Owner, 12))
	}

	cpuHot, memHot := intensiveCounts(procs)
	fmt.Printf(" %sCPU>%.0f%%:%s %d   %sMEM>%.0f%%:%s %d\n",
		D, tIntensivePct, R, cpuHot,
		D, tIntensivePct, R, memHot)
}

// ── One-shot mode ───────────────────────────────────────────────────────────

// runPlain prints a single report and exits.
func runPlain(orc *collector.Orchestrator, limit int) error {
	snap := orc.CollectSystemStatus(context.Background())

	fmt.Println()
	printSystem(&snap)
	fmt.Println()
	printProcessTable(snap.Processes, limit)
	return nil
}

// ── Main Watch Loop ─────────────────────────────────────────────────────────

func runWatch(orc *collector.Orchestrator, opts Options) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	limit := opts.Limit
	if limit < 0 {
		limit = watchDefaultLimit
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	iteration := 0

	for {
		select {
		case <-sig:
			fmt.Printf("\n%sStopped.%s\n", D, R)
			return nil
		case <-ticker.C:
			iteration++
			snap := orc.CollectSystemStatus(context.Background())

			fmt.Print("\033[2J\033[H")

			// Title bar
			ts := snap.Timestamp.Format("15:04:05")
			iter := fmt.Sprintf("#%d", iteration)
			if opts.WatchCount > 0 {
				iter = fmt.Sprintf("#%d/%d", iteration, opts.WatchCount)
			}
			fmt.Printf(" %s%s vitals v%s %s  %s  %s%s%s  %s%v%s  %s\n",
				B, BBlu+FBWht, Version, R,
				B+ts+R,
				FCyn, snap.PlatformName, R,
				D, opts.Interval, R,
				D+iter+R)
			fmt.Println(hr())

			printSystem(&snap)
			fmt.Println()
			printProcessTable(snap.Processes, limit)

			fmt.Println()
			fmt.Println(hr())
			fmt.Printf(" %sCtrl+C%s to quit", B, R)
			if opts.WatchCount > 0 {
				fmt.Printf("  %s|%s  %d/%d", D, R, iteration, opts.WatchCount)
			}
			fmt.Println()

			if opts.WatchCount > 0 && iteration >= opts.WatchCount {
				return nil
			}
		}
	}
}
