package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cosim/internal/storage"
)

// PlotSeries renders one asciigraph plot per named series of h. No names
// selects every series.
func PlotSeries(h storage.History, names []string, width, height int) (string, error) {
	if len(names) == 0 {
		names = h.Columns()
	}
	var b strings.Builder
	for _, name := range names {
		data, ok := h.Series[name]
		if !ok {
			return "", fmt.Errorf("unknown series: %s", name)
		}
		if len(data) == 0 {
			continue
		}
		b.WriteString(asciigraph.Plot(downsample(data, width),
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(name),
		))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// downsample keeps at most n evenly spaced samples, including the last.
func downsample(data []float64, n int) []float64 {
	if n <= 1 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	step := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(float64(i)*step+0.5)]
	}
	return out
}
