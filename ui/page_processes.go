package ui

import (
	"fmt"
	"strings"

	"github.com/psvitals/vitals/model"
)

// Processes above this share of CPU or memory count as intensive.
const intensivePct = 10.0

// lastPage returns the index of the last process-table page.
func lastPage(n, pageSize int) int {
	if n <= 0 || pageSize < 1 {
		return 0
	}
	return (n - 1) / pageSize
}

// pageBounds returns the [start, end) slice bounds of the given page.
func pageBounds(page, pageSize, n int) (int, int) {
	start := page * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

// intensiveSummary tallies processes above the intensity threshold over the
// full snapshot list, never just the visible page.
func intensiveSummary(procs []model.ProcessRecord) (cpu, mem int) {
	for _, p := range procs {
		if p.CPUPercent > intensivePct {
			cpu++
		}
		if p.MemoryPercent > intensivePct {
			mem++
		}
	}
	return cpu, mem
}

// renderProcessPage draws one page of the CPU-sorted process table.
func (m Model) renderProcessPage() string {
	procs := m.visibleProcs()
	start, end := pageBounds(m.procPage, m.opts.PageSize, len(procs))

	var sb strings.Builder

	title := fmt.Sprintf("PROCESSES  %d-%d of %d, by CPU", start+1, end, len(procs))
	if len(procs) == 0 {
		title = "PROCESSES  none"
	}
	sb.WriteString(" " + titleStyle.Render(title) + "\n\n")

	sb.WriteString(" " + headerStyle.Render(fmt.Sprintf("%*s  %-*s %*s %*s %*s %*s  %-*s %-*s",
		colPID, "PID", colProc, "NAME", colPct, "CPU", colPct, "MEM",
		colRSS, "RSS", colThr, "THR", colStatus, "STATUS", colOwner, "USER")) + "\n")

	for _, p := range procs[start:end] {
		sb.WriteString(fmt.Sprintf(" %*d  %-*s %s %s %*s %*s  %s %-*s\n",
			colPID, p.PID,
			colProc, truncate(p.Name, colProc),
			usageColor(p.CPUPercent).Render(fmt.Sprintf("%*s", colPct, fmtPct(p.CPUPercent))),
			usageColor(p.MemoryPercent).Render(fmt.Sprintf("%*s", colPct, fmtPct(p.MemoryPercent))),
			colRSS, fmtBytes(p.RSS),
			colThr, fmtCount(p.Threads),
			styledPad(statusColor(p.Status).Render(string(p.Status)), colStatus),
			colOwner, truncate(p.Owner, colOwner)))
	}

	cpuHot, memHot := intensiveSummary(m.snap.Processes)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(" %s %d   %s %d\n",
		labelStyle.Render(fmt.Sprintf("cpu>%.0f%%:", intensivePct)), cpuHot,
		labelStyle.Render(fmt.Sprintf("mem>%.0f%%:", intensivePct)), memHot))

	if last := lastPage(len(procs), m.opts.PageSize); last > 0 {
		sb.WriteString(helpStyle.Render(fmt.Sprintf(" page %d/%d   n next  p prev  f first  l last",
			m.procPage+1, last+1)) + "\n")
	}

	return sb.String()
}
