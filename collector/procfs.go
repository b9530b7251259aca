package collector

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/psvitals/vitals/model"
	"github.com/psvitals/vitals/util"
)

// Minimum stat fields after the comm parenthesis: state through num_threads.
const pidStatMinFields = 18

// ProcfsAdapter reads the Linux /proc pseudo-filesystem directly. It is the
// degraded path behind the library source: everything it reports comes from
// plain file reads, so it works on minimal systems with no external tools.
type ProcfsAdapter struct {
	ProcPath      string        // defaults to /proc
	OSReleasePath string        // defaults to /etc/os-release
	SampleWindow  time.Duration // window between the two cpu-jiffy samples

	// pause separates the two jiffy samples; tests replace it to mutate
	// the fake proc tree between samples instead of sleeping.
	pause func(ctx context.Context, d time.Duration) error
}

func (a *ProcfsAdapter) Name() string { return "procfs" }

func (a *ProcfsAdapter) procPath() string {
	if a.ProcPath == "" {
		return "/proc"
	}
	return a.ProcPath
}

func (a *ProcfsAdapter) osReleasePath() string {
	if a.OSReleasePath == "" {
		return "/etc/os-release"
	}
	return a.OSReleasePath
}

func (a *ProcfsAdapter) sampleWindow() time.Duration {
	if a.SampleWindow <= 0 {
		return 200 * time.Millisecond
	}
	return a.SampleWindow
}

func (a *ProcfsAdapter) wait(ctx context.Context) error {
	if a.pause != nil {
		return a.pause(ctx, a.sampleWindow())
	}
	t := time.NewTimer(a.sampleWindow())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *ProcfsAdapter) TryCollect(ctx context.Context, kind Query) (*Partial, error) {
	if _, err := os.Stat(a.procPath()); err != nil {
		return nil, fmt.Errorf("procfs: %v: %w", err, ErrSourceUnavailable)
	}
	switch kind {
	case QueryProcesses:
		return a.processes(ctx)
	case QuerySystem:
		return a.system(ctx)
	}
	return nil, fmt.Errorf("procfs: query %v: %w", kind, ErrSourceUnavailable)
}

// jiffySample is one reading of the aggregate cpu counters plus each PID's
// accumulated utime+stime, used for the two-sample cpu attribution.
type jiffySample struct {
	total  uint64
	ncpu   int
	perPID map[int32]uint64
}

func (a *ProcfsAdapter) processes(ctx context.Context) (*Partial, error) {
	first, err := a.sampleJiffies()
	if err != nil {
		return nil, fmt.Errorf("procfs processes: %v: %w", err, ErrSourceUnavailable)
	}
	if err := a.wait(ctx); err != nil {
		return nil, fmt.Errorf("procfs processes: %v: %w", err, ErrSourceUnavailable)
	}
	second, err := a.sampleJiffies()
	if err != nil {
		return nil, fmt.Errorf("procfs processes: %v: %w", err, ErrSourceUnavailable)
	}
	totalDelta := util.Delta(first.total, second.total)

	entries, err := os.ReadDir(a.procPath())
	if err != nil {
		return nil, fmt.Errorf("procfs processes: %v: %w", err, ErrSourceUnavailable)
	}

	memTotal := int64(-1)
	if kv, err := util.ParseKeyValueFile(filepath.Join(a.procPath(), "meminfo")); err == nil {
		if v, err := util.ParseMemSize(kv["MemTotal"]); err == nil && v > 0 {
			memTotal = v
		}
	}

	uidNames := make(map[string]string) // per-query owner cache
	var records []model.ProcessRecord
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("procfs processes: %v: %w", ctx.Err(), ErrSourceUnavailable)
		}
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.ParseInt(e.Name(), 10, 32)
		if err != nil || pid <= 0 {
			continue
		}
		rec, jiffies, err := a.readProcess(int32(pid), uidNames)
		if err != nil {
			continue // process exited between listing and read, or malformed
		}
		if totalDelta > 0 && second.ncpu > 0 {
			if prev, ok := first.perPID[rec.PID]; ok {
				procDelta := util.Delta(prev, jiffies)
				// Share of all-cpu time scaled to single-core attribution,
				// so a busy multi-threaded process can exceed 100.
				rec.CPUPercent = float64(procDelta) / float64(totalDelta) * float64(second.ncpu) * 100
			}
		}
		if rec.RSS >= 0 && memTotal > 0 {
			rec.MemoryPercent = float64(rec.RSS) / float64(memTotal) * 100
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("procfs processes: no records: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: a.Name(), Processes: records}, nil
}

// sampleJiffies reads the aggregate cpu line and every PID's utime+stime in
// one pass. PIDs that vanish mid-walk are simply absent from the sample.
func (a *ProcfsAdapter) sampleJiffies() (jiffySample, error) {
	s := jiffySample{perPID: make(map[int32]uint64)}
	var err error
	s.total, s.ncpu, _, err = a.readCPUTimes()
	if err != nil {
		return s, err
	}
	entries, err := os.ReadDir(a.procPath())
	if err != nil {
		return s, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, perr := strconv.ParseInt(e.Name(), 10, 32)
		if perr != nil || pid <= 0 {
			continue
		}
		content, rerr := util.ReadFileString(filepath.Join(a.procPath(), e.Name(), "stat"))
		if rerr != nil {
			continue
		}
		_, fields, perr2 := splitPIDStat(content)
		if perr2 != nil {
			continue
		}
		s.perPID[int32(pid)] = util.ParseUint64(fields[11]) + util.ParseUint64(fields[12])
	}
	return s, nil
}

// readCPUTimes parses the /proc/stat "cpu" aggregate line. It returns the
// summed jiffies, the number of per-cpu lines, and the active (non-idle,
// non-iowait) jiffies.
func (a *ProcfsAdapter) readCPUTimes() (total uint64, ncpu int, active uint64, err error) {
	lines, err := util.ReadFileLines(filepath.Join(a.procPath(), "stat"))
	if err != nil {
		return 0, 0, 0, err
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "cpu ") {
			fields := strings.Fields(line)
			var idle uint64
			for i := 1; i < len(fields); i++ {
				v := util.ParseUint64(fields[i])
				total += v
				if i == 4 || i == 5 { // idle, iowait
					idle += v
				}
			}
			active = util.Delta(idle, total)
		} else if strings.HasPrefix(line, "cpu") {
			ncpu++
		}
	}
	if total == 0 {
		return 0, 0, 0, fmt.Errorf("no cpu line in stat")
	}
	return total, ncpu, active, nil
}

// readProcess assembles one record from the PID's stat, status, and cmdline
// files. The returned jiffies are the PID's utime+stime for cpu attribution.
func (a *ProcfsAdapter) readProcess(pid int32, uidNames map[string]string) (model.ProcessRecord, uint64, error) {
	rec := model.NewProcessRecord(pid)
	pidDir := filepath.Join(a.procPath(), strconv.Itoa(int(pid)))

	content, err := util.ReadFileString(filepath.Join(pidDir, "stat"))
	if err != nil {
		return rec, 0, err
	}
	comm, fields, err := splitPIDStat(content)
	if err != nil {
		return rec, 0, err
	}
	rec.Name = comm
	rec.Status = model.StatusFromLetter(fields[0])
	rec.Threads = int64(util.ParseInt(fields[17]))
	if rec.Threads <= 0 {
		rec.Threads = model.UnknownInt
	}
	jiffies := util.ParseUint64(fields[11]) + util.ParseUint64(fields[12])

	// status may be unreadable under tight permissions; the record is still
	// usable without rss/owner.
	if kv, err := util.ParseKeyValueFile(filepath.Join(pidDir, "status")); err == nil {
		if rss := kv["VmRSS"]; rss != "" {
			if v, err := util.ParseMemSize(rss); err == nil {
				rec.RSS = v
			}
		}
		if uidLine := kv["Uid"]; uidLine != "" {
			rec.Owner = lookupUID(util.FieldsAt(uidLine, 0), uidNames)
		}
	}

	if raw, err := os.ReadFile(filepath.Join(pidDir, "cmdline")); err == nil && len(raw) > 0 {
		cmd := strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", " "))
		rec.Command = TruncateCommand(cmd)
	}
	return rec, jiffies, nil
}

// splitPIDStat splits a /proc/[pid]/stat line into the comm (which may
// contain spaces and parens, so it is bounded by the first '(' and the last
// ')') and the whitespace fields after it.
func splitPIDStat(content string) (string, []string, error) {
	start := strings.Index(content, "(")
	end := strings.LastIndex(content, ")")
	if start < 0 || end < 0 || end <= start || end+2 > len(content) {
		return "", nil, fmt.Errorf("bad stat format")
	}
	fields := strings.Fields(content[end+2:])
	if len(fields) < pidStatMinFields {
		return "", nil, fmt.Errorf("stat too short: %d fields", len(fields))
	}
	return content[start+1 : end], fields, nil
}

// lookupUID resolves a numeric uid to a username, falling back to the raw
// uid string so the owner column stays meaningful on systems with no
// passwd entry (containers).
func lookupUID(uid string, cache map[string]string) string {
	if uid == "" {
		return model.UnknownText
	}
	if name, ok := cache[uid]; ok {
		return name
	}
	name := uid
	if u, err := user.LookupId(uid); err == nil && u.Username != "" {
		name = u.Username
	}
	cache[uid] = name
	return name
}

func (a *ProcfsAdapter) system(ctx context.Context) (*Partial, error) {
	snap := model.NewSystemSnapshot()
	snap.PlatformName = "linux"
	got := 0

	if kv, err := util.ParseKeyValueFile(filepath.Join(a.procPath(), "meminfo")); err == nil && len(kv) > 0 {
		if v, err := util.ParseMemSize(kv["MemTotal"]); err == nil {
			snap.Memory.Total = v
		}
		if v, err := util.ParseMemSize(kv["MemAvailable"]); err == nil {
			snap.Memory.Available = v
		} else if v, err := util.ParseMemSize(kv["MemFree"]); err == nil {
			// Older kernels lack MemAvailable; free undercounts but beats unknown.
			snap.Memory.Available = v
		}
		if v, err := util.ParseMemSize(kv["SwapTotal"]); err == nil {
			snap.Swap.Total = v
		}
		if v, err := util.ParseMemSize(kv["SwapFree"]); err == nil {
			snap.Swap.Available = v
		}
		got++
	}

	if content, err := util.ReadFileString(filepath.Join(a.procPath(), "loadavg")); err == nil {
		fields := strings.Fields(content)
		if len(fields) >= 3 {
			snap.LoadAverage = []float64{
				util.ParseFloat64(fields[0]),
				util.ParseFloat64(fields[1]),
				util.ParseFloat64(fields[2]),
			}
			got++
		}
	}

	if kv, err := util.ParseKeyValueFile(filepath.Join(a.procPath(), "stat")); err == nil {
		if btime := util.ParseUint64(kv["btime"]); btime > 0 {
			snap.BootTime = time.Unix(int64(btime), 0)
			got++
		}
	}

	if usage, err := a.sampleCPUUsage(ctx); err == nil {
		snap.CPU.UsagePercent = usage
		got++
	}

	if phys, logical, modelName, err := a.readCPUInfo(); err == nil {
		if logical > 0 {
			snap.CPU.LogicalCores = logical
		}
		if phys > 0 {
			snap.CPU.PhysicalCores = phys
		}
		if modelName != "" {
			snap.CPU.ModelName = modelName
		}
		got++
	}

	if kv, err := util.ParseKeyValueFile(a.osReleasePath()); err == nil {
		if pretty := strings.Trim(kv["PRETTY_NAME"], `"`); pretty != "" {
			snap.PlatformVersion = pretty
		}
	}

	if got == 0 {
		return nil, fmt.Errorf("procfs system: nothing collected: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: a.Name(), System: &snap}, nil
}

// sampleCPUUsage measures system-wide cpu usage over the sample window.
func (a *ProcfsAdapter) sampleCPUUsage(ctx context.Context) (float64, error) {
	total1, _, active1, err := a.readCPUTimes()
	if err != nil {
		return 0, err
	}
	if err := a.wait(ctx); err != nil {
		return 0, err
	}
	total2, _, active2, err := a.readCPUTimes()
	if err != nil {
		return 0, err
	}
	if util.Delta(total1, total2) == 0 {
		return 0, fmt.Errorf("no cpu time elapsed")
	}
	return util.CPUPct(active1, active2, total1, total2), nil
}

// readCPUInfo derives core counts from /proc/cpuinfo: logical cores are
// "processor" entries, physical cores are distinct (physical id, core id)
// pairs. Architectures without topology fields report physical as unknown.
func (a *ProcfsAdapter) readCPUInfo() (physical, logical int64, modelName string, err error) {
	lines, err := util.ReadFileLines(filepath.Join(a.procPath(), "cpuinfo"))
	if err != nil {
		return 0, 0, "", err
	}
	cores := make(map[string]bool)
	var physID string
	for _, line := range lines {
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "processor":
			logical++
			physID = ""
		case "physical id":
			physID = val
		case "core id":
			cores[physID+"/"+val] = true
		case "model name":
			if modelName == "" {
				modelName = val
			}
		}
	}
	if logical == 0 {
		return 0, 0, "", fmt.Errorf("no processor entries")
	}
	return int64(len(cores)), logical, modelName, nil
}
