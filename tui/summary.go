package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/olafgeibig/foto2pdf/core"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lays out a batch summary; error categories follow in name order.
func SummaryRows(s core.BatchSummary) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Total images", Value: fmt.Sprintf("%d", s.Total)},
		{Label: "Processed", Value: fmt.Sprintf("%d", s.Success)},
		{Label: "Skipped (unreadable)", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Errored", Value: fmt.Sprintf("%d", s.Errored)},
	}
	cats := make([]string, 0, len(s.ErrorTypes))
	for c := range s.ErrorTypes {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		rows = append(rows, SummaryRow{Label: "  " + c, Value: fmt.Sprintf("%d", s.ErrorTypes[c])})
	}
	return rows
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		lines = append(lines, fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value)))
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
