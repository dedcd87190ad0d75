package viz

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cosim/internal/coupling"
	"github.com/san-kum/cosim/internal/storage"
)

func sampleHistory() storage.History {
	h := storage.History{Series: map[string][]float64{}}
	for i := 0; i < 50; i++ {
		t := float64(i) * 0.1
		h.Times = append(h.Times, t)
		h.Series["a.x"] = append(h.Series["a.x"], t*t)
		h.Series["b.v"] = append(h.Series["b.v"], 1-t)
	}
	return h
}

func TestCanvasSetIgnoresOutOfBounds(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
	if strings.Trim(c.String(), "\n") != string([]rune{brailleBlank, brailleBlank}) {
		t.Errorf("canvas should stay blank, got %q", c.String())
	}

	c.Set(0, 0)
	c.Set(1, 3)
	if got := c.Grid[0][0]; got != brailleBlank|0x1|0x80 {
		t.Errorf("Grid[0][0] = %U", got)
	}
}

func TestCanvasTrajectoryCoversCorners(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Trajectory([]float64{0, 1}, []float64{0, 1})

	// lower left and upper right sub-pixels
	if c.Grid[1][0]&0x40 == 0 {
		t.Error("start point not drawn at the bottom left")
	}
	if c.Grid[0][3]&0x8 == 0 {
		t.Error("end point not drawn at the top right")
	}
}

func TestCanvasTrajectorySkipsNonFinite(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Trajectory([]float64{math.NaN(), math.Inf(1)}, []float64{0, 1})
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				t.Fatalf("expected a blank canvas, got %U", r)
			}
		}
	}
}

func TestDownsample(t *testing.T) {
	data := make([]float64, 101)
	for i := range data {
		data[i] = float64(i)
	}
	got := downsample(data, 11)
	if len(got) != 11 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != 0 || got[10] != 100 || got[5] != 50 {
		t.Errorf("unexpected samples %v", got)
	}
	if short := downsample(data[:5], 11); len(short) != 5 {
		t.Errorf("short series should be kept, got %d", len(short))
	}
}

func TestPlotSeries(t *testing.T) {
	out, err := PlotSeries(sampleHistory(), nil, 40, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a.x") || !strings.Contains(out, "b.v") {
		t.Errorf("captions missing:\n%s", out)
	}

	if _, err := PlotSeries(sampleHistory(), []string{"c.y"}, 40, 5); err == nil {
		t.Error("expected an error for an unknown series")
	}
}

func TestExportPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.png")
	if err := ExportPNG(sampleHistory(), []string{"a.x"}, "run", path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty image")
	}

	if err := ExportPNG(storage.History{}, nil, "", path); err == nil {
		t.Error("expected an error for an empty history")
	}
}

func TestSummary(t *testing.T) {
	out := Summary(storage.RunMetadata{
		ID:       "run-1",
		Scenario: "feedback",
		Scheme:   "explicit",
		Duration: 2,
		EndTime:  1,
		Problems: []string{"plant", "lag"},
		Stats:    map[string]int{"steps": 10},
		Metrics:  map[string]float64{"peak(plant.theta)": 0.5},
	})
	for _, want := range []string{"run-1", "feedback", "plant, lag", "stopped early", "steps", "peak(plant.theta)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary lacks %q:\n%s", want, out)
		}
	}
}

func TestRunTable(t *testing.T) {
	if !strings.Contains(RunTable(nil), "no runs") {
		t.Error("empty table should say so")
	}
	out := RunTable([]storage.RunMetadata{{ID: "abc", Scenario: "chain", Scheme: "picard"}})
	if !strings.Contains(out, "abc") || !strings.Contains(out, "picard") {
		t.Errorf("row missing:\n%s", out)
	}
}

func TestLiveUpdate(t *testing.T) {
	cancelled := false
	var m tea.Model = NewLive("test", 2, func() { cancelled = true })

	m, _ = m.Update(StepMsg{T: 1, Values: map[string]float64{"a.x": 1, "b.v": 2}})
	live := m.(Live)
	if live.t != 1 || len(live.columns) != 2 {
		t.Fatalf("step not recorded: t=%g columns=%v", live.t, live.columns)
	}
	if !strings.Contains(live.View(), "50%") {
		t.Error("progress not shown")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(Live).selected != 1 {
		t.Error("tab should select the next series")
	}

	m, _ = m.Update(DoneMsg{Err: errors.New("boom")})
	if !strings.Contains(m.(Live).View(), "failed: boom") {
		t.Error("failure not shown")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !cancelled {
		t.Error("quitting should cancel the run")
	}
	if cmd == nil {
		t.Error("quitting should return tea.Quit")
	}
}

func TestLiveShowsStopper(t *testing.T) {
	var m tea.Model = NewLive("test", 1, nil)
	m, _ = m.Update(DoneMsg{Result: &coupling.Result{StoppedBy: "plant"}})
	if !strings.Contains(m.(Live).View(), "stopped by plant") {
		t.Error("stopper not shown")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeTerminal.Name)

	if GetTheme("missing").Name != ThemeTerminal.Name {
		t.Error("unknown theme should fall back to terminal")
	}
	SetTheme("ocean")
	nextTheme()
	if CurrentTheme.Name != ThemeTerminal.Name {
		t.Errorf("theme after ocean = %s", CurrentTheme.Name)
	}
}
