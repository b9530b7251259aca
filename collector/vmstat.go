package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/psvitals/vitals/model"
	"github.com/psvitals/vitals/util"
)

// VMStatAdapter reads macOS system vitals from sysctl, vm_stat, and
// sw_vers. Each command contributes independently, so a single missing
// tool degrades the snapshot instead of losing it.
type VMStatAdapter struct {
	Runner Runner
}

func (a *VMStatAdapter) Name() string { return "vmstat" }

func (a *VMStatAdapter) runner() Runner {
	if a.Runner == nil {
		return NewRunner()
	}
	return a.Runner
}

func (a *VMStatAdapter) TryCollect(ctx context.Context, kind Query) (*Partial, error) {
	if kind != QuerySystem {
		return nil, fmt.Errorf("vmstat: query %v: %w", kind, ErrSourceUnavailable)
	}
	r := a.runner()
	if !r.LookPath("sysctl") {
		return nil, fmt.Errorf("vmstat: sysctl not found: %w", ErrSourceUnavailable)
	}

	snap := model.NewSystemSnapshot()
	snap.PlatformName = "darwin"
	got := 0

	if v, ok := a.sysctl(ctx, r, "hw.memsize"); ok {
		if total := int64(util.ParseUint64(v)); total > 0 {
			snap.Memory.Total = total
			got++
		}
	}
	if out, err := r.Run(ctx, "vm_stat"); err == nil {
		if free, used, ok := parseVMStatPages(string(out)); ok {
			snap.Memory.Available = free
			snap.Memory.Used = used
			got++
		}
	}
	if v, ok := a.sysctl(ctx, r, "vm.swapusage"); ok {
		total, used, free, err := parseSwapUsage(v)
		if err == nil {
			snap.Swap.Total = total
			snap.Swap.Used = used
			snap.Swap.Available = free
			got++
		}
	}
	if v, ok := a.sysctl(ctx, r, "hw.physicalcpu"); ok {
		if n := int64(util.ParseInt(v)); n > 0 {
			snap.CPU.PhysicalCores = n
		}
	}
	if v, ok := a.sysctl(ctx, r, "hw.logicalcpu"); ok {
		if n := int64(util.ParseInt(v)); n > 0 {
			snap.CPU.LogicalCores = n
			got++
		}
	}
	if v, ok := a.sysctl(ctx, r, "machdep.cpu.brand_string"); ok && v != "" {
		snap.CPU.ModelName = v
	}
	if v, ok := a.sysctl(ctx, r, "vm.loadavg"); ok {
		if loads, err := parseBracedLoadAvg(v); err == nil {
			snap.LoadAverage = loads
			got++
		}
	}
	if v, ok := a.sysctl(ctx, r, "kern.boottime"); ok {
		if sec, err := parseBootTimeSec(v); err == nil {
			snap.BootTime = time.Unix(sec, 0)
			got++
		}
	}
	if r.LookPath("sw_vers") {
		if out, err := r.Run(ctx, "sw_vers", "-productVersion"); err == nil {
			if v := strings.TrimSpace(string(out)); v != "" {
				snap.PlatformVersion = "macOS " + v
			}
		}
	}

	if got == 0 {
		return nil, fmt.Errorf("vmstat: nothing collected: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: a.Name(), System: &snap}, nil
}

func (a *VMStatAdapter) sysctl(ctx context.Context, r Runner, key string) (string, bool) {
	out, err := r.Run(ctx, "sysctl", "-n", key)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// parseVMStatPages turns vm_stat page counters into free and used byte
// counts. The page size comes from the banner line; counter values carry a
// trailing period. Free follows the inactive+free convention, used is
// active+wired.
func parseVMStatPages(out string) (free, used int64, ok bool) {
	pageSize := int64(4096)
	pages := make(map[string]int64)
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "page size of") {
			fields := strings.Fields(line)
			for i, f := range fields {
				if f == "of" && i+1 < len(fields) {
					if v := int64(util.ParseUint64(fields[i+1])); v > 0 {
						pageSize = v
					}
				}
			}
			continue
		}
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		val = strings.TrimSuffix(strings.TrimSpace(val), ".")
		pages[strings.TrimSpace(key)] = int64(util.ParseUint64(val))
	}
	freePages, haveFree := pages["Pages free"]
	activePages, haveActive := pages["Pages active"]
	if !haveFree && !haveActive {
		return 0, 0, false
	}
	free = (freePages + pages["Pages inactive"]) * pageSize
	used = (activePages + pages["Pages wired down"]) * pageSize
	return free, used, true
}

// parseSwapUsage parses the vm.swapusage sysctl:
// "total = 2048.00M  used = 1024.00M  free = 1024.00M  (encrypted)".
func parseSwapUsage(s string) (total, used, free int64, err error) {
	fields := strings.Fields(s)
	pick := func(name string) (int64, error) {
		for i, f := range fields {
			if f == name && i+2 < len(fields) && fields[i+1] == "=" {
				return util.ParseMemSize(fields[i+2])
			}
		}
		return 0, fmt.Errorf("swapusage: %q not found in %q", name, s)
	}
	if total, err = pick("total"); err != nil {
		return 0, 0, 0, err
	}
	if used, err = pick("used"); err != nil {
		return 0, 0, 0, err
	}
	if free, err = pick("free"); err != nil {
		return 0, 0, 0, err
	}
	return total, used, free, nil
}

// parseBracedLoadAvg parses the vm.loadavg sysctl: "{ 1.50 2.00 2.50 }".
func parseBracedLoadAvg(s string) ([]float64, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "{}"))
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return nil, fmt.Errorf("loadavg: expected 3 values in %q", s)
	}
	loads := make([]float64, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("loadavg: %w", err)
		}
		loads[i] = v
	}
	return loads, nil
}

// parseBootTimeSec parses the kern.boottime sysctl:
// "{ sec = 1700000000, usec = 123456 } Tue Nov 14 10:13:20 2023".
func parseBootTimeSec(s string) (int64, error) {
	fields := strings.Fields(s)
	for i, f := range fields {
		if f != "sec" {
			continue
		}
		if i+2 >= len(fields) || fields[i+1] != "=" {
			break
		}
		raw := strings.TrimSuffix(fields[i+2], ",")
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("boottime: %w", err)
		}
		return sec, nil
	}
	return 0, fmt.Errorf("boottime: no sec field in %q", s)
}
