package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Colors from the ANSI 256 palette.
const (
	colorPrimary = lipgloss.Color("39")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorDanger  = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("245")
)

var (
	headerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	footerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			MarginTop(1)

	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	sizeStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
)

// PrettyFormatter renders a styled terminal summary.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.header(r))
	w.WriteString("\n")
	w.WriteString(f.table(r))
	w.WriteString(f.footer(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) header(r *Result) string {
	lines := []string{
		labelStyle.Render("Dirs:") + " " + valueStyle.Render(strings.Join(r.Dirs, ", ")),
	}
	if r.Backend != "" {
		lines = append(lines, labelStyle.Render("Global:")+" "+
			valueStyle.Render(fmt.Sprintf("%s (%s)", r.SearchRoot, r.Backend)))
	}
	for _, p := range r.Phases {
		lines = append(lines, fmt.Sprintf("%s %s",
			labelStyle.Render(p.Name+":"),
			valueStyle.Render(fmt.Sprintf("%d deleted, %d failed in %s",
				p.Counters.Deleted, p.Counters.Failed, humanDuration(p.Duration.Seconds())))))
	}
	if r.Interrupted {
		lines = append(lines, warningStyle.Bold(true).Render("Scan interrupted"))
	}
	return headerBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) table(r *Result) string {
	if len(r.Deleted) == 0 && len(r.Failed) == 0 {
		return labelStyle.Render("  No matching files found\n")
	}

	width := 8
	for _, e := range r.Deleted {
		width = max(width, len(humanize.IBytes(uint64(max(e.Size, 0)))))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s  %s\n", headerStyle.Render(padLeft("SIZE", width)), headerStyle.Render("PATH"))
	for _, e := range r.Deleted {
		size := humanize.IBytes(uint64(max(e.Size, 0)))
		fmt.Fprintf(&sb, "  %s  %s\n", sizeStyle.Render(padLeft(size, width)), pathStyle.Render(e.Path))
	}
	for _, e := range r.Failed {
		fmt.Fprintf(&sb, "  %s  %s %s\n",
			errorStyle.Render(padLeft("failed", width)), pathStyle.Render(e.Path), errorStyle.Render(e.Err))
	}
	return sb.String()
}

func (f *PrettyFormatter) footer(r *Result) string {
	totals := r.Totals()
	parts := []string{
		labelStyle.Render("Deleted:") + " " + valueStyle.Render(fmt.Sprintf("%d", totals.Deleted)),
		labelStyle.Render("Freed:") + " " + sizeStyle.Render(humanize.IBytes(uint64(r.DeletedSize()))),
	}
	if totals.Failed > 0 {
		parts = append(parts, labelStyle.Render("Failed:")+" "+errorStyle.Render(fmt.Sprintf("%d", totals.Failed)))
	}
	parts = append(parts, labelStyle.Render("Use -o plain for unformatted output"))
	return footerBox.Render(strings.Join(parts, "  "))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// humanDuration formats seconds as "850ms", "4.2s", "3m 7s" or "1h 2m".
func humanDuration(sec float64) string {
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, int(sec)%60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)
