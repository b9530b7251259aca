package model

import (
	"sort"
	"time"
)

// Unknown sentinels. Every measured value in the model is >= 0, so a
// negative number always means "not measured" rather than a true zero.
// Text fields use UnknownText and timestamps use the zero time.Time.
const (
	UnknownInt   int64   = -1
	UnknownFloat float64 = -1
	UnknownText  string  = "unknown"
)

// Platform identifies the operating system family a snapshot came from.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
	PlatformDarwin  Platform = "darwin"
	PlatformOther   Platform = "other"
)

// Status is a normalized process scheduling state.
type Status string

const (
	StatusRunning  Status = "running"
	StatusSleeping Status = "sleeping"
	StatusStopped  Status = "stopped"
	StatusZombie   Status = "zombie"
	StatusUnknown  Status = "unknown"
)

// StatusFromLetter maps the first letter of a kernel/ps state code to a
// Status. Codes differ slightly across platforms but share a first letter:
// R runnable, S/I sleeping, D/U uninterruptible wait, W paging, T/t
// stopped or traced, Z zombie.
func StatusFromLetter(code string) Status {
	if code == "" {
		return StatusUnknown
	}
	switch code[0] {
	case 'R':
		return StatusRunning
	case 'S', 'I', 'W', 'D', 'U':
		return StatusSleeping
	case 'T', 't':
		return StatusStopped
	case 'Z':
		return StatusZombie
	}
	return StatusUnknown
}

// ProcessRecord is one process in a snapshot. PID is the only field every
// source can supply; all others may hold unknown markers.
type ProcessRecord struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`    // total attribution; may exceed 100 on multi-core
	MemoryPercent float64 `json:"memory_percent"` // 0-100
	Status        Status  `json:"status"`
	Owner         string  `json:"owner"`
	RSS           int64   `json:"rss_bytes"` // resident set size
	Threads       int64   `json:"threads"`
	Command       string  `json:"command,omitempty"` // full command line, empty if unavailable
}

// NewProcessRecord returns a record with every optional field unknown.
func NewProcessRecord(pid int32) ProcessRecord {
	return ProcessRecord{
		PID:           pid,
		Name:          UnknownText,
		CPUPercent:    UnknownFloat,
		MemoryPercent: UnknownFloat,
		Status:        StatusUnknown,
		Owner:         UnknownText,
		RSS:           UnknownInt,
		Threads:       UnknownInt,
	}
}

// Normalize enforces field ranges: out-of-range values become unknown
// rather than leaking negatives or >100 memory shares downstream.
// CPUPercent has no upper bound (multi-core attribution).
func (p *ProcessRecord) Normalize() {
	if p.Name == "" {
		p.Name = UnknownText
	}
	if p.Owner == "" {
		p.Owner = UnknownText
	}
	if p.Status == "" {
		p.Status = StatusUnknown
	}
	if p.CPUPercent < 0 {
		p.CPUPercent = UnknownFloat
	}
	if p.MemoryPercent < 0 {
		p.MemoryPercent = UnknownFloat
	} else if p.MemoryPercent > 100 {
		p.MemoryPercent = 100
	}
	if p.RSS < 0 {
		p.RSS = UnknownInt
	}
	if p.Threads < 0 {
		p.Threads = UnknownInt
	}
}

// CPUInfo holds system-wide CPU identity and usage.
type CPUInfo struct {
	PhysicalCores int64   `json:"physical_cores"`
	LogicalCores  int64   `json:"logical_cores"`
	UsagePercent  float64 `json:"usage_percent"` // 0-100 across all cores
	ModelName     string  `json:"model_name"`
}

// NewCPUInfo returns an all-unknown CPUInfo.
func NewCPUInfo() CPUInfo {
	return CPUInfo{
		PhysicalCores: UnknownInt,
		LogicalCores:  UnknownInt,
		UsagePercent:  UnknownFloat,
		ModelName:     UnknownText,
	}
}

// Normalize clamps usage into [0,100] and zeroes-out impossible core counts.
func (c *CPUInfo) Normalize() {
	if c.PhysicalCores < 1 {
		c.PhysicalCores = UnknownInt
	}
	if c.LogicalCores < 1 {
		c.LogicalCores = UnknownInt
	}
	if c.UsagePercent < 0 {
		c.UsagePercent = UnknownFloat
	} else if c.UsagePercent > 100 {
		c.UsagePercent = 100
	}
	if c.ModelName == "" {
		c.ModelName = UnknownText
	}
}

// MemoryInfo holds byte counts for one memory pool (RAM or swap).
type MemoryInfo struct {
	Total        int64   `json:"total_bytes"`
	Used         int64   `json:"used_bytes"`
	Available    int64   `json:"available_bytes"`
	UsagePercent float64 `json:"usage_percent"` // derived, see Derive
}

// NewMemoryInfo returns an all-unknown MemoryInfo.
func NewMemoryInfo() MemoryInfo {
	return MemoryInfo{
		Total:        UnknownInt,
		Used:         UnknownInt,
		Available:    UnknownInt,
		UsagePercent: UnknownFloat,
	}
}

// Derive fills fields computable from the others: Used from
// Total-Available (and vice versa), then UsagePercent = Used/Total*100.
// The percent stays unknown unless both Used and a positive Total are
// known; an unknown or zero total is never divided by.
func (m *MemoryInfo) Derive() {
	if m.Used < 0 && m.Total >= 0 && m.Available >= 0 && m.Available <= m.Total {
		m.Used = m.Total - m.Available
	}
	if m.Available < 0 && m.Total >= 0 && m.Used >= 0 && m.Used <= m.Total {
		m.Available = m.Total - m.Used
	}
	if m.UsagePercent < 0 && m.Total > 0 && m.Used >= 0 {
		m.UsagePercent = float64(m.Used) / float64(m.Total) * 100
	}
	if m.UsagePercent > 100 {
		m.UsagePercent = 100
	}
}

// SystemSnapshot is one point-in-time view of the whole system. Fields a
// source could not measure hold unknown markers, never silent zeros.
type SystemSnapshot struct {
	PlatformName    string          `json:"platform_name"`
	PlatformVersion string          `json:"platform_version"`
	Architecture    string          `json:"architecture"`
	Hostname        string          `json:"hostname"`
	BootTime        time.Time       `json:"boot_time"` // zero when unknown
	CPU             CPUInfo         `json:"cpu"`
	Memory          MemoryInfo      `json:"memory"`
	Swap            MemoryInfo      `json:"swap"`
	LoadAverage     []float64       `json:"load_average"` // 0, 1, or 3 entries
	Processes       []ProcessRecord `json:"processes,omitempty"`
	ProcessCounts   map[Status]int  `json:"process_counts,omitempty"`
	Sources         []string        `json:"sources,omitempty"` // adapters that contributed
	Timestamp       time.Time       `json:"timestamp"`
}

// NewSystemSnapshot returns a snapshot with every field unknown except the
// timestamp.
func NewSystemSnapshot() SystemSnapshot {
	return SystemSnapshot{
		PlatformName:    UnknownText,
		PlatformVersion: UnknownText,
		Architecture:    UnknownText,
		Hostname:        UnknownText,
		CPU:             NewCPUInfo(),
		Memory:          NewMemoryInfo(),
		Swap:            NewMemoryInfo(),
		Timestamp:       time.Now(),
	}
}

// Finalize normalizes nested fields, derives memory percentages and the
// per-status process counts, and sorts the process list.
func (s *SystemSnapshot) Finalize() {
	s.CPU.Normalize()
	s.Memory.Derive()
	s.Swap.Derive()
	if s.PlatformName == "" {
		s.PlatformName = UnknownText
	}
	if s.PlatformVersion == "" {
		s.PlatformVersion = UnknownText
	}
	if s.Architecture == "" {
		s.Architecture = UnknownText
	}
	if s.Hostname == "" {
		s.Hostname = UnknownText
	}
	for i := range s.Processes {
		s.Processes[i].Normalize()
	}
	SortProcesses(s.Processes)
	if len(s.Processes) > 0 {
		s.ProcessCounts = CountByStatus(s.Processes)
	}
}

// SortProcesses orders records by CPU percent descending, ties broken by
// PID ascending. Unknown CPU (-1) naturally sorts after every measured
// value, so degraded sources end up at the bottom of the table.
func SortProcesses(procs []ProcessRecord) {
	sort.Slice(procs, func(i, j int) bool {
		if procs[i].CPUPercent != procs[j].CPUPercent {
			return procs[i].CPUPercent > procs[j].CPUPercent
		}
		return procs[i].PID < procs[j].PID
	})
}

// CountByStatus tallies records per normalized status.
func CountByStatus(procs []ProcessRecord) map[Status]int {
	counts := make(map[Status]int)
	for _, p := range procs {
		counts[p.Status]++
	}
	return counts
}
