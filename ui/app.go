package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/psvitals/vitals/collector"
	"github.com/psvitals/vitals/model"
)

// Page identifies the current screen.
type Page int

const (
	PageMenu Page = iota
	PageProcesses
	PageSystem
	PageBoth
	pageCount
)

var pageNames = []string{"Menu", "Processes", "System", "Both"}

type tickMsg time.Time

type collectMsg struct {
	snap model.SystemSnapshot
}

// Options configures the TUI.
type Options struct {
	Interval time.Duration
	PageSize int // rows per process-table page
	Limit    int // max processes shown; negative means all
}

// Model is the bubbletea model.
type Model struct {
	orc  *collector.Orchestrator
	opts Options

	width  int
	height int

	// Data
	snap       *model.SystemSnapshot
	collecting bool

	// Navigation
	page       Page
	menuCursor int
	procPage   int // current page of the process table
	showHelp   bool

	// Auto-refresh control
	paused bool

	// Usage history for the sparklines
	cpuHist []float64
	memHist []float64
}

// NewModel creates a new TUI model.
func NewModel(orc *collector.Orchestrator, opts Options) Model {
	if opts.Interval < time.Second {
		opts.Interval = 2 * time.Second
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	return Model{orc: orc, opts: opts}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.opts.Interval), collectOnce(m.orc))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func collectOnce(orc *collector.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return collectMsg{snap: orc.CollectSystemStatus(context.Background())}
	}
}

// visibleProcs applies the display limit. Counts and summaries are always
// computed over the full snapshot list.
func (m Model) visibleProcs() []model.ProcessRecord {
	if m.snap == nil {
		return nil
	}
	return collector.Truncate(m.snap.Processes, m.opts.Limit)
}

// menuItems are the actions offered on the menu page.
var menuItems = []string{
	"Process Status",
	"System Status",
	"Both",
	"Refresh Now",
	"Quit",
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.showHelp = true
		case "a":
			m.paused = !m.paused
			if !m.paused {
				// Resume: schedule next tick immediately
				return m, tea.Batch(tick(m.opts.Interval), collectOnce(m.orc))
			}
		case "r":
			m.collecting = true
			return m, collectOnce(m.orc)
		case "1":
			m.page = PageProcesses
			m.procPage = 0
		case "2":
			m.page = PageSystem
		case "3":
			m.page = PageBoth
			m.procPage = 0
		case "b", "esc":
			m.page = PageMenu
		case "j", "down":
			if m.page == PageMenu && m.menuCursor < len(menuItems)-1 {
				m.menuCursor++
			}
		case "k", "up":
			if m.page == PageMenu && m.menuCursor > 0 {
				m.menuCursor--
			}
		case "enter":
			if m.page == PageMenu {
				switch m.menuCursor {
				case 0:
					m.page = PageProcesses
					m.procPage = 0
				case 1:
					m.page = PageSystem
				case 2:
					m.page = PageBoth
					m.procPage = 0
				case 3:
					m.collecting = true
					return m, collectOnce(m.orc)
				case 4:
					return m, tea.Quit
				}
			}
		case "n", "right":
			if last := lastPage(len(m.visibleProcs()), m.opts.PageSize); m.procPage < last {
				m.procPage++
			}
		case "p", "left":
			if m.procPage > 0 {
				m.procPage--
			}
		case "f":
			m.procPage = 0
		case "l":
			m.procPage = lastPage(len(m.visibleProcs()), m.opts.PageSize)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		if m.paused {
			return m, nil
		}
		m.collecting = true
		return m, tea.Batch(tick(m.opts.Interval), collectOnce(m.orc))
	case collectMsg:
		snap := msg.snap
		m.snap = &snap
		m.collecting = false
		m.cpuHist = pushSample(m.cpuHist, snap.CPU.UsagePercent, histLen)
		m.memHist = pushSample(m.memHist, snap.Memory.UsagePercent, histLen)
		// The process count may have shrunk; keep the page in range.
		if last := lastPage(len(m.visibleProcs()), m.opts.PageSize); m.procPage > last {
			m.procPage = last
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.snap == nil {
		return "Collecting first sample..."
	}

	var content string
	switch m.page {
	case PageMenu:
		content = m.renderMenu()
	case PageProcesses:
		content = m.renderProcessPage()
	case PageSystem:
		content = m.renderSystemPage()
	case PageBoth:
		content = m.renderBothPage()
	}

	// Trim to viewport height (leave room for status bar)
	lines := strings.Split(content, "\n")
	maxLines := m.height - 2
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	content = strings.Join(lines, "\n")

	return content + "\n" + m.renderStatusBar()
}

func (m Model) renderStatusBar() string {
	var tabs []string
	for i, name := range pageNames {
		if i == 0 {
			continue // the menu has no tab; esc returns to it
		}
		label := fmt.Sprintf("%d:%s", i, name)
		if Page(i) == m.page {
			tabs = append(tabs, headerStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, dimStyle.Render(" "+label+" "))
		}
	}
	left := strings.Join(tabs, "")

	var right string
	switch {
	case m.paused:
		right = warnStyle.Render("PAUSED") + helpStyle.Render("  a resume  ? help  q quit")
	case m.collecting:
		right = okStyle.Render("sampling") + helpStyle.Render("  ? help  q quit")
	default:
		right = helpStyle.Render(fmt.Sprintf("every %v  ? help  q quit", m.opts.Interval))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelp() string {
	help := `
 vitals — key bindings

   1          Process status
   2          System status
   3          Both
   esc / b    Back to menu
   enter      Select menu item

   n / right  Next process page
   p / left   Previous process page
   f          First page
   l          Last page

   r          Refresh now
   a          Pause / resume auto-refresh
   ?          Toggle this help
   q          Quit

 Press any key to close.
`
	return helpStyle.Render(help)
}
