// Package tui renders batch progress and the final summary in the terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olafgeibig/foto2pdf/core"
)

// Model is a bubbletea model fed by a stream of batch results. It quits when
// the stream is closed. ctrl+c cancels the batch and quits.
type Model struct {
	updates  <-chan core.BatchResult
	cancel   context.CancelFunc
	started  time.Time
	width    int
	total    int
	agg      core.Aggregator
	last     string
	quitting bool
}

type doneMsg struct{}

type resultMsg core.BatchResult

// NewModel returns a progress model expecting total results on updates.
// cancel, if non-nil, is called when the user presses ctrl+c.
func NewModel(updates <-chan core.BatchResult, total int, cancel context.CancelFunc) Model {
	return Model{updates: updates, cancel: cancel, total: total, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForResults(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		r := core.BatchResult(msg)
		m.agg.Add(r)
		m.last = filepath.Base(r.Input())
		return m, listenForResults(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

// Summary returns the counts seen so far.
func (m Model) Summary() core.BatchSummary { return m.agg.Summary() }

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	s := m.agg.Summary()
	ratio := 0.0
	if m.total > 0 {
		ratio = math.Min(1, float64(s.Total)/float64(m.total))
	}
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("foto2pdf"),
		labelStyle.Render(fmt.Sprintf("Images: %d/%d", s.Total, m.total)) +
			successStyle.Render(fmt.Sprintf("  ok:%d", s.Success)) +
			warnStyle.Render(fmt.Sprintf("  skipped:%d", s.Skipped)) +
			errorStyle.Render(fmt.Sprintf("  errors:%d", s.Errored)),
		dimStyle.Render(fmt.Sprintf("Last: %s", m.last)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
	}
	return strings.Join(lines, "\n")
}

func listenForResults(updates <-chan core.BatchResult) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return resultMsg(r)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle     = lipgloss.NewStyle().Foreground(ColorAccent)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorDim)
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorWarn)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError)
)
