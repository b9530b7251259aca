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

// WMICAdapter reads Windows system vitals through wmic /value queries.
// Units differ per WMI class: Win32_OperatingSystem memory counters are
// KB, Win32_PageFileUsage sizes are MB.
type WMICAdapter struct {
	Runner Runner
}

func (a *WMICAdapter) Name() string { return "wmic" }

func (a *WMICAdapter) runner() Runner {
	if a.Runner == nil {
		return NewRunner()
	}
	return a.Runner
}

func (a *WMICAdapter) TryCollect(ctx context.Context, kind Query) (*Partial, error) {
	if kind != QuerySystem {
		return nil, fmt.Errorf("wmic: query %v: %w", kind, ErrSourceUnavailable)
	}
	r := a.runner()
	if !r.LookPath("wmic") {
		return nil, fmt.Errorf("wmic: command not found: %w", ErrSourceUnavailable)
	}

	snap := model.NewSystemSnapshot()
	snap.PlatformName = "windows"
	got := 0

	if kv, err := a.query(ctx, r, "os", "get",
		"Caption,Version,TotalVisibleMemorySize,FreePhysicalMemory,LastBootUpTime", "/value"); err == nil {
		if caption := kv["Caption"]; caption != "" {
			snap.PlatformVersion = strings.TrimSpace(caption + " " + kv["Version"])
		}
		if v := int64(util.ParseUint64(kv["TotalVisibleMemorySize"])); v > 0 {
			snap.Memory.Total = v * 1024
		}
		if v := int64(util.ParseUint64(kv["FreePhysicalMemory"])); v > 0 {
			snap.Memory.Available = v * 1024
		}
		if t, err := parseWMIDateTime(kv["LastBootUpTime"]); err == nil {
			snap.BootTime = t
		}
		got++
	}

	if kv, err := a.query(ctx, r, "cpu", "get",
		"Name,NumberOfCores,NumberOfLogicalProcessors,LoadPercentage", "/value"); err == nil {
		if name := kv["Name"]; name != "" {
			snap.CPU.ModelName = name
		}
		if v := int64(util.ParseUint64(kv["NumberOfCores"])); v > 0 {
			snap.CPU.PhysicalCores = v
		}
		if v := int64(util.ParseUint64(kv["NumberOfLogicalProcessors"])); v > 0 {
			snap.CPU.LogicalCores = v
		}
		if raw, ok := kv["LoadPercentage"]; ok && raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				snap.CPU.UsagePercent = v
			}
		}
		got++
	}

	if kv, err := a.query(ctx, r, "path", "Win32_PageFileUsage", "get",
		"AllocatedBaseSize,CurrentUsage", "/value"); err == nil {
		if v := int64(util.ParseUint64(kv["AllocatedBaseSize"])); v > 0 {
			snap.Swap.Total = v * 1024 * 1024
		}
		if raw := kv["CurrentUsage"]; raw != "" {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 0 {
				snap.Swap.Used = v * 1024 * 1024
			}
		}
		got++
	}

	// Windows has no load average; LoadAverage stays empty.

	if got == 0 {
		return nil, fmt.Errorf("wmic: nothing collected: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: a.Name(), System: &snap}, nil
}

func (a *WMICAdapter) query(ctx context.Context, r Runner, args ...string) (map[string]string, error) {
	out, err := r.Run(ctx, "wmic", args...)
	if err != nil {
		return nil, err
	}
	kv := util.ParseKeyValueLines(strings.Split(strings.ReplaceAll(string(out), "\r", ""), "\n"))
	if len(kv) == 0 {
		return nil, fmt.Errorf("wmic: empty output")
	}
	return kv, nil
}

// parseWMIDateTime parses the WMI CIM datetime format
// "20240101120000.500000+060": local wall-clock time, a fractional-second
// field, and the UTC offset in minutes.
func parseWMIDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 14 {
		return time.Time{}, fmt.Errorf("wmi datetime too short: %q", s)
	}
	loc := time.UTC
	if i := strings.IndexAny(s[14:], "+-"); i >= 0 {
		if offMin, err := strconv.Atoi(s[14+i:]); err == nil {
			loc = time.FixedZone("", offMin*60)
		}
	}
	t, err := time.ParseInLocation("20060102150405", s[:14], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("wmi datetime %q: %w", s, err)
	}
	return t, nil
}
