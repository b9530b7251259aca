package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/psvitals/vitals/model"
)

func writeProcFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// pidStatLine builds a /proc/[pid]/stat line with 22 fields after the comm,
// enough to reach num_threads.
func pidStatLine(pid int, comm, state string, utime, stime, threads int) string {
	return fmt.Sprintf("%d (%s) %s 1 %d %d 0 -1 4194304 500 0 0 0 %d %d 0 0 20 0 %d 0 300 0 0\n",
		pid, comm, state, pid, pid, utime, stime, threads)
}

const procStatFirst = `cpu  300 0 200 400 100 0 0 0 0 0
cpu0 150 0 100 200 50 0 0 0 0 0
cpu1 150 0 100 200 50 0 0 0 0 0
btime 1700000000
`

const procStatSecond = `cpu  900 0 400 600 100 0 0 0 0 0
cpu0 450 0 200 300 50 0 0 0 0 0
cpu1 450 0 200 300 50 0 0 0 0 0
btime 1700000000
`

const procMeminfo = `MemTotal:       16384000 kB
MemFree:         4096000 kB
MemAvailable:    8192000 kB
SwapTotal:       2097152 kB
SwapFree:        1048576 kB
`

// newFakeProcTree lays out three readable PID entries plus one malformed
// one, with cpu counters that advance between the two jiffy samples: pid
// 101 accumulates 500 of the 1000 elapsed jiffies on a 2-cpu box.
func newFakeProcTree(t *testing.T) (*ProcfsAdapter, string) {
	t.Helper()
	root := t.TempDir()
	writeProcFile(t, root, "stat", procStatFirst)
	writeProcFile(t, root, "meminfo", procMeminfo)
	writeProcFile(t, root, "loadavg", "1.50 2.00 2.50 2/345 6789\n")
	writeProcFile(t, root, "cpuinfo", `processor	: 0
physical id	: 0
core id		: 0
model name	: Example CPU @ 3.00GHz

processor	: 1
physical id	: 0
core id		: 1
model name	: Example CPU @ 3.00GHz
`)

	writeProcFile(t, root, "101/stat", pidStatLine(101, "alpha", "S", 100, 50, 4))
	writeProcFile(t, root, "101/status", "Name:\talpha\nUid:\t54321\t54321\t54321\t54321\nVmRSS:\t  409600 kB\n")
	writeProcFile(t, root, "101/cmdline", "/usr/bin/alpha\x00--serve\x00")

	writeProcFile(t, root, "202/stat", pidStatLine(202, "beta", "R", 10, 10, 1))
	writeProcFile(t, root, "202/status", "Name:\tbeta\nUid:\t0\t0\t0\t0\nVmRSS:\t  1024 kB\n")
	writeProcFile(t, root, "202/cmdline", "")

	writeProcFile(t, root, "303/stat", pidStatLine(303, "gamma worker", "Z", 0, 0, 1))
	writeProcFile(t, root, "303/status", "Name:\tgamma\nUid:\t54321\t54321\t54321\t54321\n")
	writeProcFile(t, root, "303/cmdline", "")

	// Malformed entry: no comm parens, too few fields.
	writeProcFile(t, root, "404/stat", "404 broken\n")

	a := &ProcfsAdapter{
		ProcPath:      root,
		OSReleasePath: filepath.Join(root, "os-release"),
		SampleWindow:  time.Millisecond,
	}
	a.pause = func(ctx context.Context, d time.Duration) error {
		writeProcFile(t, root, "stat", procStatSecond)
		writeProcFile(t, root, "101/stat", pidStatLine(101, "alpha", "S", 500, 150, 4))
		return nil
	}
	writeProcFile(t, root, "os-release", "NAME=\"Debian GNU/Linux\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\n")
	return a, root
}

func collectProcfsProcesses(t *testing.T) []model.ProcessRecord {
	t.Helper()
	a, _ := newFakeProcTree(t)
	p, err := a.TryCollect(context.Background(), QueryProcesses)
	if err != nil {
		t.Fatalf("TryCollect(processes) error: %v", err)
	}
	return p.Processes
}

// ---------------------------------------------------------------------------
// ProcfsAdapter processes – fabricated /proc tree
// ---------------------------------------------------------------------------

func TestProcfsProcesses_MalformedEntrySkipped(t *testing.T) {
	procs := collectProcfsProcesses(t)
	if len(procs) != 3 {
		t.Fatalf("len(processes) = %d; want 3 (malformed pid dir skipped)", len(procs))
	}
	for _, p := range procs {
		if p.PID == 404 {
			t.Errorf("malformed pid 404 present in result")
		}
	}
}

func TestProcfsProcesses_FieldsParsed(t *testing.T) {
	procs := collectProcfsProcesses(t)
	var alpha *model.ProcessRecord
	for i := range procs {
		if procs[i].PID == 101 {
			alpha = &procs[i]
		}
	}
	if alpha == nil {
		t.Fatalf("pid 101 missing from result")
	}
	if alpha.Name != "alpha" {
		t.Errorf("Name = %q; want \"alpha\"", alpha.Name)
	}
	if alpha.Status != model.StatusSleeping {
		t.Errorf("Status = %q; want %q", alpha.Status, model.StatusSleeping)
	}
	if alpha.Threads != 4 {
		t.Errorf("Threads = %d; want 4", alpha.Threads)
	}
	if alpha.RSS != 409600*1024 {
		t.Errorf("RSS = %d; want %d", alpha.RSS, 409600*1024)
	}
	if alpha.Command != "/usr/bin/alpha --serve" {
		t.Errorf("Command = %q; want \"/usr/bin/alpha --serve\"", alpha.Command)
	}
}

func TestProcfsProcesses_CPUDeltaAttribution(t *testing.T) {
	procs := collectProcfsProcesses(t)
	for _, p := range procs {
		switch p.PID {
		case 101:
			// 500 of 1000 elapsed jiffies on 2 cpus: 500/1000*2*100 = 100.
			if p.CPUPercent < 99.9 || p.CPUPercent > 100.1 {
				t.Errorf("pid 101 CPUPercent = %v; want 100", p.CPUPercent)
			}
		case 202:
			if p.CPUPercent != 0 {
				t.Errorf("pid 202 CPUPercent = %v; want 0 (no jiffies accumulated)", p.CPUPercent)
			}
		}
	}
}

func TestProcfsProcesses_MemoryPercentFromRSS(t *testing.T) {
	procs := collectProcfsProcesses(t)
	for _, p := range procs {
		if p.PID != 101 {
			continue
		}
		// 409600 kB of 16384000 kB total = 2.5%.
		if p.MemoryPercent < 2.49 || p.MemoryPercent > 2.51 {
			t.Errorf("pid 101 MemoryPercent = %v; want 2.5", p.MemoryPercent)
		}
	}
}

func TestProcfsProcesses_OwnerFallsBackToUID(t *testing.T) {
	procs := collectProcfsProcesses(t)
	for _, p := range procs {
		if p.PID == 101 && p.Owner != "54321" {
			t.Errorf("Owner = %q; want uid fallback \"54321\"", p.Owner)
		}
	}
}

func TestProcfsProcesses_CommWithSpacesPreserved(t *testing.T) {
	procs := collectProcfsProcesses(t)
	for _, p := range procs {
		if p.PID == 303 && p.Name != "gamma worker" {
			t.Errorf("Name = %q; want \"gamma worker\"", p.Name)
		}
	}
}

func TestProcfsProcesses_MissingStatusLeavesRSSUnknown(t *testing.T) {
	procs := collectProcfsProcesses(t)
	for _, p := range procs {
		if p.PID != 303 {
			continue
		}
		if p.RSS != model.UnknownInt {
			t.Errorf("pid 303 RSS = %d; want %d (no VmRSS line)", p.RSS, model.UnknownInt)
		}
	}
}

// ---------------------------------------------------------------------------
// ProcfsAdapter system – fabricated /proc tree
// ---------------------------------------------------------------------------

func collectProcfsSystem(t *testing.T) *model.SystemSnapshot {
	t.Helper()
	a, _ := newFakeProcTree(t)
	p, err := a.TryCollect(context.Background(), QuerySystem)
	if err != nil {
		t.Fatalf("TryCollect(system) error: %v", err)
	}
	if p.System == nil {
		t.Fatalf("Partial.System = nil; want snapshot")
	}
	return p.System
}

func TestProcfsSystem_Memory(t *testing.T) {
	snap := collectProcfsSystem(t)
	if snap.Memory.Total != 16384000*1024 {
		t.Errorf("Memory.Total = %d; want %d", snap.Memory.Total, int64(16384000)*1024)
	}
	if snap.Memory.Available != 8192000*1024 {
		t.Errorf("Memory.Available = %d; want %d", snap.Memory.Available, int64(8192000)*1024)
	}
	if snap.Swap.Total != 2097152*1024 {
		t.Errorf("Swap.Total = %d; want %d", snap.Swap.Total, int64(2097152)*1024)
	}
}

func TestProcfsSystem_LoadAverage(t *testing.T) {
	snap := collectProcfsSystem(t)
	want := []float64{1.50, 2.00, 2.50}
	if len(snap.LoadAverage) != 3 {
		t.Fatalf("len(LoadAverage) = %d; want 3", len(snap.LoadAverage))
	}
	for i := range want {
		if snap.LoadAverage[i] != want[i] {
			t.Errorf("LoadAverage[%d] = %v; want %v", i, snap.LoadAverage[i], want[i])
		}
	}
}

func TestProcfsSystem_BootTime(t *testing.T) {
	snap := collectProcfsSystem(t)
	if snap.BootTime.Unix() != 1700000000 {
		t.Errorf("BootTime = %v; want unix 1700000000", snap.BootTime)
	}
}

func TestProcfsSystem_CPUUsageFromTwoSamples(t *testing.T) {
	snap := collectProcfsSystem(t)
	// Active jiffies go 500 -> 1300 while total goes 1000 -> 2000: 80%.
	if snap.CPU.UsagePercent < 79.9 || snap.CPU.UsagePercent > 80.1 {
		t.Errorf("CPU.UsagePercent = %v; want 80", snap.CPU.UsagePercent)
	}
}

func TestProcfsSystem_CoreCountsAndModel(t *testing.T) {
	snap := collectProcfsSystem(t)
	if snap.CPU.LogicalCores != 2 {
		t.Errorf("LogicalCores = %d; want 2", snap.CPU.LogicalCores)
	}
	if snap.CPU.PhysicalCores != 2 {
		t.Errorf("PhysicalCores = %d; want 2", snap.CPU.PhysicalCores)
	}
	if snap.CPU.ModelName != "Example CPU @ 3.00GHz" {
		t.Errorf("ModelName = %q; want \"Example CPU @ 3.00GHz\"", snap.CPU.ModelName)
	}
}

func TestProcfsSystem_PlatformFromOSRelease(t *testing.T) {
	snap := collectProcfsSystem(t)
	if snap.PlatformName != "linux" {
		t.Errorf("PlatformName = %q; want \"linux\"", snap.PlatformName)
	}
	if snap.PlatformVersion != "Debian GNU/Linux 12 (bookworm)" {
		t.Errorf("PlatformVersion = %q; want pretty name", snap.PlatformVersion)
	}
}

// ---------------------------------------------------------------------------
// ProcfsAdapter – unavailability
// ---------------------------------------------------------------------------

func TestProcfs_MissingMountIsUnavailable(t *testing.T) {
	a := &ProcfsAdapter{ProcPath: filepath.Join(t.TempDir(), "nope")}
	_, err := a.TryCollect(context.Background(), QuerySystem)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("TryCollect on missing mount = %v; want ErrSourceUnavailable", err)
	}
}

func TestProcfs_EmptyTreeIsUnavailable(t *testing.T) {
	a := &ProcfsAdapter{ProcPath: t.TempDir(), SampleWindow: time.Millisecond}
	_, err := a.TryCollect(context.Background(), QueryProcesses)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("TryCollect on empty tree = %v; want ErrSourceUnavailable", err)
	}
}

// ---------------------------------------------------------------------------
// splitPIDStat – comm boundary handling
// ---------------------------------------------------------------------------

func TestSplitPIDStat_ParensInsideComm(t *testing.T) {
	comm, fields, err := splitPIDStat(pidStatLine(7, "tmux: server (x)", "S", 1, 2, 3))
	if err != nil {
		t.Fatalf("splitPIDStat error: %v", err)
	}
	if comm != "tmux: server (x)" {
		t.Errorf("comm = %q; want \"tmux: server (x)\"", comm)
	}
	if fields[0] != "S" {
		t.Errorf("state field = %q; want \"S\"", fields[0])
	}
}

func TestSplitPIDStat_TooFewFieldsRejected(t *testing.T) {
	if _, _, err := splitPIDStat("9 (x) S 1 2\n"); err == nil {
		t.Errorf("splitPIDStat on short line: got nil error; want parse failure")
	}
}
