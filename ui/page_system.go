package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/psvitals/vitals/model"
)

// sysBoxW is the inner width of the system page boxes.
const sysBoxW = 56

// statusOrder fixes the display order of per-status counts.
var statusOrder = []model.Status{
	model.StatusRunning,
	model.StatusSleeping,
	model.StatusStopped,
	model.StatusZombie,
	model.StatusUnknown,
}

// kvLine lays out one label/value pair; val may carry its own styling.
func kvLine(key string, val string) string {
	return styledPad(labelStyle.Render(key+":"), 16) + " " + val
}

// gaugeLine renders a utilization gauge with the percentage alongside.
func gaugeLine(pct float64) string {
	return gauge(pct, 24) + " " + usageColor(pct).Render(fmt.Sprintf("%6s", fmtPct(pct)))
}

func bootText(snap *model.SystemSnapshot) string {
	if snap.BootTime.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)",
		snap.BootTime.Format("2006-01-02 15:04:05"),
		humanize.Time(snap.BootTime))
}

func coresText(cpu model.CPUInfo) string {
	return fmt.Sprintf("%s physical / %s logical",
		fmtCount(cpu.PhysicalCores), fmtCount(cpu.LogicalCores))
}

func loadText(load []float64) string {
	if len(load) != 3 {
		return "-"
	}
	return fmt.Sprintf("%.2f  %.2f  %.2f", load[0], load[1], load[2])
}

func memText(mi model.MemoryInfo) string {
	s := fmt.Sprintf("%s / %s", fmtBytes(mi.Used), fmtBytes(mi.Total))
	if mi.Available >= 0 {
		s += fmt.Sprintf("  (%s available)", fmtBytes(mi.Available))
	}
	return s
}

// renderSystemPage draws the host, CPU, memory, and process-count boxes.
func (m Model) renderSystemPage() string {
	snap := m.snap
	var sb strings.Builder

	sb.WriteString(" " + titleStyle.Render("SYSTEM  "+snap.Timestamp.Format("15:04:05")) + "\n\n")

	sb.WriteString(renderKVBox("HOST", []kv{
		{"Hostname", snap.Hostname},
		{"Platform", platformText(snap)},
		{"Architecture", snap.Architecture},
		{"Boot time", bootText(snap)},
	}, sysBoxW))

	sb.WriteString(boxTop("CPU", sysBoxW) + "\n")
	sb.WriteString(boxRow(kvLine("Usage", gaugeLine(snap.CPU.UsagePercent)), sysBoxW) + "\n")
	sb.WriteString(boxRow(kvLine("Cores", valueStyle.Render(coresText(snap.CPU))), sysBoxW) + "\n")
	if snap.CPU.ModelName != model.UnknownText && snap.CPU.ModelName != "" {
		sb.WriteString(boxRow(kvLine("Model", valueStyle.Render(truncate(snap.CPU.ModelName, 38))), sysBoxW) + "\n")
	}
	sb.WriteString(boxRow(kvLine("Load", valueStyle.Render(loadText(snap.LoadAverage))), sysBoxW) + "\n")
	if len(m.cpuHist) > 1 {
		sb.WriteString(boxRow(kvLine("History", sparkline(m.cpuHist, 38)), sysBoxW) + "\n")
	}
	sb.WriteString(boxBot(sysBoxW) + "\n")

	sb.WriteString(boxTop("MEMORY", sysBoxW) + "\n")
	sb.WriteString(boxRow(kvLine("Usage", gaugeLine(snap.Memory.UsagePercent)), sysBoxW) + "\n")
	sb.WriteString(boxRow(kvLine("Used", valueStyle.Render(memText(snap.Memory))), sysBoxW) + "\n")
	if len(m.memHist) > 1 {
		sb.WriteString(boxRow(kvLine("History", sparkline(m.memHist, 38)), sysBoxW) + "\n")
	}
	sb.WriteString(boxRow(kvLine("Swap", valueStyle.Render(memText(snap.Swap))), sysBoxW) + "\n")
	sb.WriteString(boxBot(sysBoxW) + "\n")

	counts := []kv{{"Total", fmt.Sprintf("%d", len(snap.Processes))}}
	for _, st := range statusOrder {
		if n := snap.ProcessCounts[st]; n > 0 {
			counts = append(counts, kv{string(st), fmt.Sprintf("%d", n)})
		}
	}
	if len(snap.Sources) > 0 {
		counts = append(counts, kv{"Sources", strings.Join(snap.Sources, ", ")})
	}
	sb.WriteString(renderKVBox("PROCESSES", counts, sysBoxW))

	return sb.String()
}

// renderBothPage stacks a condensed system strip above the process table.
func (m Model) renderBothPage() string {
	snap := m.snap
	var sb strings.Builder

	sb.WriteString(" " + titleStyle.Render("SYSTEM") + "\n")
	sb.WriteString(fmt.Sprintf(" %s %s %s   %s %s %s   %s %s\n",
		labelStyle.Render("cpu"), gauge(snap.CPU.UsagePercent, 14),
		usageColor(snap.CPU.UsagePercent).Render(fmtPct(snap.CPU.UsagePercent)),
		labelStyle.Render("mem"), gauge(snap.Memory.UsagePercent, 14),
		usageColor(snap.Memory.UsagePercent).Render(fmtPct(snap.Memory.UsagePercent)),
		labelStyle.Render("load"), valueStyle.Render(loadText(snap.LoadAverage))))
	sb.WriteString("\n")

	sb.WriteString(m.renderProcessPage())
	return sb.String()
}
