package trace_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cosim/internal/config"
	"github.com/san-kum/cosim/internal/coupling"
	"github.com/san-kum/cosim/internal/icoco"
	"github.com/san-kum/cosim/internal/integrators"
	"github.com/san-kum/cosim/internal/models"
	"github.com/san-kum/cosim/internal/problems"
	"github.com/san-kum/cosim/internal/trace"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestExplicitPairTrace(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Name = "pair"
	cfg.Dt = 0.5
	cfg.Duration = 1.0
	cfg.Problems = []config.ProblemConfig{
		{Name: "a", Model: "relaxation", Integrator: "rk4"},
		{Name: "b", Model: "relaxation", Integrator: "rk4"},
	}
	cfg.Exchanges = []config.ExchangeConfig{
		{From: "a", Output: "value", To: "b", Input: "target"},
	}
	require.NoError(t, cfg.Validate())

	rec := trace.NewRecorder()
	sup, err := coupling.Build(cfg, coupling.BuildOptions{Logger: quiet, Observers: []icoco.Observer{rec}})
	require.NoError(t, err)
	_, err = sup.Run(context.Background())
	require.NoError(t, err)

	golden(t).Assert(t, "explicit_pair", []byte(rec.Text()))
}

func TestIllegalCallsTrace(t *testing.T) {
	integ, err := integrators.New("rk4")
	require.NoError(t, err)
	p, err := problems.New(problems.Options{
		Name:       "solo",
		ModelName:  "relaxation",
		Model:      models.NewRelaxation(),
		Integrator: integ,
	})
	require.NoError(t, err)

	rec := trace.NewRecorder()
	g := icoco.Wrap(p, icoco.WithObserver(rec), icoco.WithLogger(quiet))

	_, _ = g.PresentTime()
	_, _ = g.Initialize()
	_, _ = g.InitTimeStep(-1)
	_, _ = g.SolveTimeStep()
	_, _ = g.InitTimeStep(0.25)
	_, _ = g.SolveTimeStep()
	_, _ = g.SolveTimeStep()
	_ = g.Terminate()
	_ = g.AbortTimeStep()
	_, _ = g.GetOutputIntField("state")
	_ = g.Terminate()

	golden(t).Assert(t, "illegal_calls", []byte(rec.Text()))
}

func TestRecorder(t *testing.T) {
	rec := trace.NewRecorder()
	rec.OnCall(icoco.Call{Problem: "p", Method: "initialize", State: icoco.Ready})
	rec.OnCall(icoco.Call{Problem: "p", Method: "initTimeStep", State: icoco.StepDefined, Time: 1.5})
	rec.OnCall(icoco.Call{Problem: "p", Method: "initTimeStep", State: icoco.StepDefined, Time: 1.5,
		Err: icoco.NewWrongContext("p", "initTimeStep", icoco.PreInsideStep)})

	assert.Equal(t, 3, rec.Len())
	assert.Equal(t, map[string]int{"initialize": 1, "initTimeStep": 2}, rec.Counts())
	assert.Equal(t, "p.initTimeStep state=STEP_DEFINED t=1.5", trace.Line(rec.Calls()[1]))

	var buf bytes.Buffer
	_, err := rec.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, rec.Text(), buf.String())
	assert.Contains(t, buf.String(), "err=WrongContext\n")

	rec.Reset()
	assert.Zero(t, rec.Len())
	assert.Empty(t, rec.Text())
}
