package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/psvitals/vitals/model"
)

// psColumns is the header-suppressed format list. comm goes last because
// executable names may contain spaces.
const psColumns = "pid=,pcpu=,pmem=,rss=,state=,user=,comm="

// PSAdapter enumerates processes through the ps command, shared by the
// degraded macOS and Linux paths.
type PSAdapter struct {
	Runner Runner
}

func (a *PSAdapter) Name() string { return "ps" }

func (a *PSAdapter) runner() Runner {
	if a.Runner == nil {
		return NewRunner()
	}
	return a.Runner
}

func (a *PSAdapter) TryCollect(ctx context.Context, kind Query) (*Partial, error) {
	if kind != QueryProcesses {
		return nil, fmt.Errorf("ps: query %v: %w", kind, ErrSourceUnavailable)
	}
	r := a.runner()
	if !r.LookPath("ps") {
		return nil, fmt.Errorf("ps: command not found: %w", ErrSourceUnavailable)
	}
	out, err := r.Run(ctx, "ps", "axo", psColumns)
	if err != nil {
		return nil, fmt.Errorf("ps: %v: %w", err, ErrSourceUnavailable)
	}
	records := parsePSOutput(out)
	if len(records) == 0 {
		return nil, fmt.Errorf("ps: no records: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: a.Name(), Processes: records}, nil
}

// parsePSOutput splits header-less ps output into records. Lines with too
// few columns or a non-numeric pid are skipped rather than failing the
// whole read.
func parsePSOutput(out []byte) []model.ProcessRecord {
	var records []model.ProcessRecord
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}
		pid, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil || pid <= 0 {
			continue
		}
		rec := model.NewProcessRecord(int32(pid))
		if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
			rec.CPUPercent = v
		}
		if v, err := strconv.ParseFloat(fields[2], 64); err == nil {
			rec.MemoryPercent = v
		}
		if v, err := strconv.ParseInt(fields[3], 10, 64); err == nil && v >= 0 {
			rec.RSS = v * 1024 // ps reports rss in KiB
		}
		rec.Status = model.StatusFromLetter(fields[4])
		rec.Owner = fields[5]
		rec.Name = strings.Join(fields[6:], " ")
		records = append(records, rec)
	}
	return records
}
