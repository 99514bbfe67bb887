// Package ui renders the human-facing output of the maintenance commands.
// Hook commands never use it; their stdout belongs to the host.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Report writes styled lines to w. Colors are dropped automatically when w
// is not a terminal.
type Report struct {
	w     io.Writer
	title lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	dim   lipgloss.Style
}

func NewReport(w io.Writer) *Report {
	r := lipgloss.NewRenderer(w)
	return &Report{
		w: w,
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		ok:  r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		bad: r.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		dim: r.NewStyle().Faint(true),
	}
}

func (r *Report) Title(s string) {
	fmt.Fprintln(r.w, r.title.Render(s))
}

// Field prints an aligned "label: value" line.
func (r *Report) Field(label, value string) {
	fmt.Fprintf(r.w, "  %-14s %s\n", label+":", value)
}

// Check prints a pass/fail line with an optional detail.
func (r *Report) Check(pass bool, label, detail string) {
	mark := r.ok.Render("ok  ")
	if !pass {
		mark = r.bad.Render("FAIL")
	}
	line := fmt.Sprintf("  %s %s", mark, label)
	if detail != "" {
		line += " " + r.dim.Render("("+detail+")")
	}
	fmt.Fprintln(r.w, line)
}

// Table prints rows under headers. Cells in the column named by highlight
// are colored red when non-empty.
func (r *Report) Table(headers []string, rows [][]string, highlight int) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == highlight && row >= 0 && row < len(rows) && rows[row][col] != "" {
				return r.bad.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(r.w, t.String())
}

func (r *Report) Empty(msg string) {
	fmt.Fprintln(r.w, r.dim.Render(msg))
}
