package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/psvitals/vitals/model"
)

var (
	richOnce sync.Once
	richOK   bool
)

// RichSourceAvailable probes the library source once per process. On
// hardened hosts (masked /proc, restricted sysctls) every library call
// fails; probing at startup keeps per-query collection branch-free.
func RichSourceAvailable() bool {
	richOnce.Do(func() {
		_, err := mem.VirtualMemory()
		richOK = err == nil
	})
	return richOK
}

// GopsutilAdapter is the preferred source on every platform: the library
// hands back complete, already-parsed numbers, so the command and
// filesystem adapters are only the degraded path behind it.
type GopsutilAdapter struct {
	SampleWindow time.Duration // blocking window for system-wide cpu usage
}

func (g *GopsutilAdapter) Name() string { return "gopsutil" }

func (g *GopsutilAdapter) TryCollect(ctx context.Context, kind Query) (*Partial, error) {
	switch kind {
	case QueryProcesses:
		return g.processes(ctx)
	case QuerySystem:
		return g.system(ctx)
	}
	return nil, fmt.Errorf("gopsutil: query %v: %w", kind, ErrSourceUnavailable)
}

func (g *GopsutilAdapter) processes(ctx context.Context) (*Partial, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("gopsutil processes: %v: %w", err, ErrSourceUnavailable)
	}

	records := make([]model.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gopsutil processes: %v: %w", ctx.Err(), ErrSourceUnavailable)
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // exited or inaccessible since enumeration
		}
		rec := model.NewProcessRecord(p.Pid)
		rec.Name = name
		if v, err := p.CPUPercentWithContext(ctx); err == nil {
			rec.CPUPercent = v
		}
		if v, err := p.MemoryPercentWithContext(ctx); err == nil {
			rec.MemoryPercent = float64(v)
		}
		if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
			rec.Status = statusFromWord(st[0])
		}
		if v, err := p.UsernameWithContext(ctx); err == nil && v != "" {
			rec.Owner = v
		}
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			rec.RSS = int64(mi.RSS)
		}
		if v, err := p.NumThreadsWithContext(ctx); err == nil && v > 0 {
			rec.Threads = int64(v)
		}
		if v, err := p.CmdlineWithContext(ctx); err == nil {
			rec.Command = TruncateCommand(v)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("gopsutil processes: no records: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: g.Name(), Processes: records}, nil
}

func (g *GopsutilAdapter) system(ctx context.Context) (*Partial, error) {
	snap := model.NewSystemSnapshot()
	got := 0

	if hi, err := host.InfoWithContext(ctx); err == nil {
		snap.PlatformName = hi.OS
		snap.PlatformVersion = strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion)
		snap.Architecture = hi.KernelArch
		snap.Hostname = hi.Hostname
		if hi.BootTime > 0 {
			snap.BootTime = time.Unix(int64(hi.BootTime), 0)
		}
		got++
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil && n > 0 {
		snap.CPU.PhysicalCores = int64(n)
		got++
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		snap.CPU.LogicalCores = int64(n)
		got++
	}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 && infos[0].ModelName != "" {
		snap.CPU.ModelName = infos[0].ModelName
		got++
	}
	if pcts, err := cpu.PercentWithContext(ctx, g.sampleWindow(), false); err == nil && len(pcts) > 0 {
		snap.CPU.UsagePercent = pcts[0]
		got++
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		snap.Memory.Total = int64(vm.Total)
		snap.Memory.Used = int64(vm.Used)
		snap.Memory.Available = int64(vm.Available)
		got++
	}
	if sm, err := mem.SwapMemoryWithContext(ctx); err == nil && sm != nil {
		snap.Swap.Total = int64(sm.Total)
		snap.Swap.Used = int64(sm.Used)
		snap.Swap.Available = int64(sm.Free)
		got++
	}
	if la, err := load.AvgWithContext(ctx); err == nil && la != nil {
		snap.LoadAverage = []float64{la.Load1, la.Load5, la.Load15}
		got++
	}

	if got == 0 {
		return nil, fmt.Errorf("gopsutil system: nothing collected: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: g.Name(), System: &snap}, nil
}

func (g *GopsutilAdapter) sampleWindow() time.Duration {
	if g.SampleWindow <= 0 {
		return 200 * time.Millisecond
	}
	return g.SampleWindow
}

// statusFromWord maps the library's status words to the normalized enum.
// Some platforms still hand back raw single-letter codes, which fall
// through to the letter mapping.
func statusFromWord(s string) model.Status {
	switch strings.ToLower(s) {
	case "running":
		return model.StatusRunning
	case "sleep", "idle", "wait", "lock", "blocked", "disk-sleep":
		return model.StatusSleeping
	case "stop":
		return model.StatusStopped
	case "zombie":
		return model.StatusZombie
	}
	return model.StatusFromLetter(strings.ToUpper(s))
}

// TruncateCommand caps command lines for display and transport. Long java
// and chrome invocations otherwise dominate snapshots.
func TruncateCommand(cmd string) string {
	const max = 200
	if len(cmd) <= max {
		return cmd
	}
	return cmd[:max] + "..."
}
