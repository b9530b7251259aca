package ui

import (
	"fmt"
	"strings"

	"github.com/psvitals/vitals/model"
)

// menuKeys are the direct hotkeys for each menu entry.
var menuKeys = []string{"1", "2", "3", "r", "q"}

// renderMenu draws the landing page: a short host line plus the action list.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("vitals") + dimStyle.Render(" — point-in-time process and system vitals"))
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("host: ") + valueStyle.Render(m.snap.Hostname))
	sb.WriteString(labelStyle.Render("   platform: ") + valueStyle.Render(platformText(m.snap)))
	if len(m.snap.Sources) > 0 {
		sb.WriteString(labelStyle.Render("   sources: ") + valueStyle.Render(strings.Join(m.snap.Sources, ", ")))
	}
	sb.WriteString("\n\n")

	for i, item := range menuItems {
		row := fmt.Sprintf(" %s  %-16s", menuKeys[i], item)
		if i == m.menuCursor {
			sb.WriteString(selectedStyle.Render("▸"+row) + "\n")
		} else {
			sb.WriteString(" " + dimStyle.Render(menuKeys[i]) + "  " + valueStyle.Render(item) + "\n")
		}
	}

	sb.WriteString("\n" + helpStyle.Render("j/k move   enter select   ? help"))

	return panelStyle.Render(sb.String())
}

// platformText prefers the version string over the bare family name.
func platformText(snap *model.SystemSnapshot) string {
	if snap.PlatformVersion != "" && snap.PlatformVersion != model.UnknownText {
		return snap.PlatformVersion
	}
	return snap.PlatformName
}
