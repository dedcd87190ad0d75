package viz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cosim/internal/storage"
)

// Summary renders the metadata of a stored run.
func Summary(meta storage.RunMetadata) string {
	var b strings.Builder
	b.WriteString(titleStyle().Render("run "+meta.ID) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle().Render(label) + valueStyle().Render(value) + "\n")
	}
	row("scenario", meta.Scenario)
	row("scheme", meta.Scheme)
	row("problems", strings.Join(meta.Problems, ", "))
	row("dt", fmt.Sprintf("%g", meta.Dt))
	row("duration", fmt.Sprintf("%g", meta.Duration))

	end := fmt.Sprintf("%g", meta.EndTime)
	if meta.EndTime < meta.Duration {
		end = statusStyle(CurrentTheme.Warning).Render(end + " (stopped early)")
	}
	b.WriteString(labelStyle().Render("end time") + end + "\n")
	if !meta.Timestamp.IsZero() {
		row("started", meta.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if len(meta.Stats) > 0 {
		b.WriteString("\n" + subtle().Render("stats") + "\n")
		for _, k := range sortedKeys(meta.Stats) {
			row("  "+k, fmt.Sprintf("%d", meta.Stats[k]))
		}
	}
	if len(meta.Metrics) > 0 {
		b.WriteString("\n" + subtle().Render("metrics") + "\n")
		for _, k := range sortedKeys(meta.Metrics) {
			row("  "+k, fmt.Sprintf("%.6g", meta.Metrics[k]))
		}
	}
	return panel().Render(strings.TrimRight(b.String(), "\n"))
}

// RunTable lists stored runs, one per line.
func RunTable(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return subtle().Render("no runs")
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary)
	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-36s  %-12s  %-8s  %8s  %s", "ID", "SCENARIO", "SCHEME", "END", "PROBLEMS")) + "\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "%-36s  %-12s  %-8s  %8.3g  %s\n",
			r.ID, r.Scenario, r.Scheme, r.EndTime, strings.Join(r.Problems, ","))
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
