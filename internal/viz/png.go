package viz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/cosim/internal/storage"
)

// ExportPNG draws the named series of h against time into an image at
// path. The format follows the file extension. No names selects every
// series.
func ExportPNG(h storage.History, names []string, title, path string) error {
	if len(names) == 0 {
		names = h.Columns()
	}
	if len(h.Times) == 0 {
		return fmt.Errorf("history is empty")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Add(plotter.NewGrid())

	for i, name := range names {
		data, ok := h.Series[name]
		if !ok {
			return fmt.Errorf("unknown series: %s", name)
		}
		n := min(len(data), len(h.Times))
		pts := make(plotter.XYs, 0, n)
		for j := 0; j < n; j++ {
			if !finite(data[j]) {
				continue
			}
			pts = append(pts, plotter.XY{X: h.Times[j], Y: data[j]})
		}
		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot %s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
