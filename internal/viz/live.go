package viz

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cosim/internal/coupling"
)

const (
	liveWidth       = 64
	liveHeight      = 12
	historyCapacity = 2000
)

// StepMsg carries the values recorded after a validated coupled step.
type StepMsg struct {
	T      float64
	Values map[string]float64
}

// DoneMsg ends a live run.
type DoneMsg struct {
	Result *coupling.Result
	Err    error
}

// Live is a Bubble Tea model following a Supervisor run.
type Live struct {
	title    string
	duration float64
	cancel   context.CancelFunc

	t       float64
	times   []float64
	series  map[string][]float64
	columns []string
	latest  map[string]float64

	selected int
	phase    bool
	done     bool
	result   *coupling.Result
	err      error
}

func NewLive(title string, duration float64, cancel context.CancelFunc) Live {
	return Live{
		title:    title,
		duration: duration,
		cancel:   cancel,
		series:   make(map[string][]float64),
		latest:   make(map[string]float64),
	}
}

func (m Live) Init() tea.Cmd { return nil }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "tab":
			if len(m.columns) > 0 {
				m.selected = (m.selected + 1) % len(m.columns)
			}
		case "p":
			m.phase = !m.phase
		case "t":
			nextTheme()
		}
	case StepMsg:
		m.record(msg)
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
	}
	return m, nil
}

func (m *Live) record(msg StepMsg) {
	m.t = msg.T
	m.latest = msg.Values
	if len(m.columns) != len(msg.Values) {
		m.columns = slices.Sorted(maps.Keys(msg.Values))
		m.selected = min(m.selected, max(len(m.columns)-1, 0))
	}
	m.times = appendCapped(m.times, msg.T)
	for k, v := range msg.Values {
		m.series[k] = appendCapped(m.series[k], v)
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[len(s)-historyCapacity:]
	}
	return s
}

func (m Live) View() string {
	var b strings.Builder
	b.WriteString(titleStyle().Render(m.title) + "  " + subtle().Render(fmt.Sprintf("t=%.4g", m.t)) + "\n")

	frac := 0.0
	if m.duration > 0 {
		frac = m.t / m.duration
	}
	b.WriteString(ProgressBar(frac, liveWidth) + fmt.Sprintf(" %3.0f%%\n\n", frac*100))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.chart(), "  ", m.values()))
	b.WriteString("\n" + m.status() + "\n")
	b.WriteString(keyHint().Render("tab: series  p: phase  t: theme  q: quit"))
	return b.String()
}

func (m Live) chart() string {
	if len(m.columns) == 0 {
		return subtle().Render("waiting for the first step")
	}
	if m.phase && len(m.columns) >= 2 {
		xs, ys := m.columns[m.selected], m.columns[(m.selected+1)%len(m.columns)]
		c := NewCanvas(liveWidth/2, liveHeight/2)
		c.Trajectory(m.series[xs], m.series[ys])
		return panel().Render(subtle().Render(ys+" vs "+xs) + "\n" + c.String())
	}
	name := m.columns[m.selected]
	return asciigraph.Plot(downsample(m.series[name], liveWidth),
		asciigraph.Height(liveHeight),
		asciigraph.Width(liveWidth),
		asciigraph.Caption(name),
	)
}

func (m Live) values() string {
	var b strings.Builder
	for i, name := range m.columns {
		label := labelStyle().Render(name)
		if i == m.selected {
			label = lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).Width(22).Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s\n", label,
			valueStyle().Render(fmt.Sprintf("%10.4g", m.latest[name])),
			Sparkline(m.series[name], 16))
	}
	return b.String()
}

func (m Live) status() string {
	switch {
	case !m.done:
		return statusStyle(CurrentTheme.Primary).Render("running")
	case m.err != nil:
		return statusStyle(CurrentTheme.Error).Render("failed: " + m.err.Error())
	case m.result != nil && m.result.StoppedBy != "":
		return statusStyle(CurrentTheme.Warning).Render("stopped by " + m.result.StoppedBy)
	default:
		return statusStyle(CurrentTheme.Success).Render("done, press q to leave")
	}
}

// Observer forwards every recorded step to p.
func Observer(p *tea.Program) coupling.Observer {
	return coupling.ObserverFunc(func(t float64, values map[string]float64) {
		p.Send(StepMsg{T: t, Values: maps.Clone(values)})
	})
}

// RunLive runs sup while showing its progress. Quitting the view cancels
// the run; the partial result is returned with the run's error.
func RunLive(ctx context.Context, sup *coupling.Supervisor, title string) (*coupling.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewLive(title, sup.Settings().Duration, cancel))
	sup.AddObserver(Observer(p))

	done := make(chan DoneMsg, 1)
	go func() {
		res, err := sup.Run(ctx)
		done <- DoneMsg{Result: res, Err: err}
		p.Send(DoneMsg{Result: res, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	cancel()
	d := <-done
	return d.Result, d.Err
}
