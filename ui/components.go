package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Column widths for the process table, shared by the Processes and Both pages.
const (
	colPID    = 7
	colProc   = 24
	colPct    = 7
	colRSS    = 10
	colThr    = 5
	colStatus = 8
	colOwner  = 12
)

// kv is one labeled value inside a bordered box.
type kv struct {
	Key string
	Val string
}

// styledPad pads a styled string to the given visual width using spaces.
// Unlike fmt.Sprintf("%-Xs"), this accounts for ANSI escape codes.
func styledPad(styled string, width int) string {
	visW := lipgloss.Width(styled)
	if visW >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visW)
}

// ─── BOX DRAWING HELPERS ─────────────────────────────────────────────────────

// boxTop renders the top border of a rounded box with an embedded title.
func boxTop(title string, innerW int) string {
	dash := innerW - lipgloss.Width(title)
	if dash < 0 {
		dash = 0
	}
	return " " + dimStyle.Render("╭─") + titleStyle.Render(title) + dimStyle.Render(strings.Repeat("─", dash)+"─╮")
}

// boxBot renders the bottom border of a rounded box.
func boxBot(innerW int) string {
	return " " + dimStyle.Render("╰"+strings.Repeat("─", innerW+2)+"╯")
}

// boxRow renders one content line inside a box, padded to innerW.
func boxRow(content string, innerW int) string {
	visW := lipgloss.Width(content)
	pad := innerW - visW
	if pad < 0 {
		pad = 0
	}
	return " " + dimStyle.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + dimStyle.Render("│")
}

// renderKVBox renders key-value pairs inside a titled box.
func renderKVBox(title string, details []kv, innerW int) string {
	var sb strings.Builder
	sb.WriteString(boxTop(title, innerW) + "\n")
	for _, d := range details {
		key := d.Key
		if len(key) > 14 {
			key = key[:14]
		}
		content := fmt.Sprintf("%s %s",
			styledPad(labelStyle.Render(key+":"), 16),
			valueStyle.Render(d.Val))
		sb.WriteString(boxRow(content, innerW) + "\n")
	}
	sb.WriteString(boxBot(innerW) + "\n")
	return sb.String()
}

// gauge renders a utilization bar of the given width. Negative values mean
// unmeasured and render as an empty dim track.
func gauge(pct float64, width int) string {
	if width < 1 {
		width = 10
	}
	if pct < 0 {
		return dimStyle.Render(strings.Repeat("░", width))
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	b := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return usageColor(pct).Render(b)
}

// fmtBytes formats a byte count in binary units; negative means unmeasured.
func fmtBytes(b int64) string {
	if b < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(b))
}

// fmtPct formats a percentage; negative means unmeasured.
func fmtPct(v float64) string {
	if v < 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v)
}

// fmtCount formats a count; negative means unmeasured.
func fmtCount(v int64) string {
	if v < 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		if width > 3 {
			return s[:width-3] + "..."
		}
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncate shortens s to maxLen characters with ellipsis if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
