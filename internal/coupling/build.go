package coupling

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/san-kum/cosim/internal/config"
	"github.com/san-kum/cosim/internal/icoco"
	"github.com/san-kum/cosim/internal/integrators"
	"github.com/san-kum/cosim/internal/models"
	"github.com/san-kum/cosim/internal/problems"
	"github.com/san-kum/cosim/internal/storage"
)

// SettingsFromConfig maps the supervisor part of a scenario.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Scheme:        cfg.Scheme,
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		MinDt:         cfg.MinDt,
		MaxRetries:    cfg.MaxRetries,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
	}
}

// BuildOptions carry what a scenario file cannot: where relative data
// files live, the checkpoint store and guard observers.
type BuildOptions struct {
	BaseDir     string
	Checkpoints *storage.Checkpoints
	Observers   []icoco.Observer
	Logger      *slog.Logger
}

// Build turns a validated scenario into a ready-to-run Supervisor with
// one guarded ODEProblem per configured problem.
func Build(cfg *config.Config, opts BuildOptions) (*Supervisor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sup := New(SettingsFromConfig(cfg), WithLogger(logger))

	guardOpts := []icoco.Option{icoco.WithLogger(logger)}
	for _, o := range opts.Observers {
		guardOpts = append(guardOpts, icoco.WithObserver(o))
	}

	for _, pc := range cfg.Problems {
		p, err := buildProblem(pc, cfg.Dt, opts.Checkpoints)
		if err != nil {
			return nil, fmt.Errorf("problem %s: %w", pc.Name, err)
		}
		g := icoco.Wrap(p, guardOpts...)
		if pc.DataFile != "" {
			path := pc.DataFile
			if !filepath.IsAbs(path) && opts.BaseDir != "" {
				path = filepath.Join(opts.BaseDir, path)
			}
			if err := g.SetDataFile(path); err != nil {
				return nil, fmt.Errorf("problem %s: %w", pc.Name, err)
			}
		}
		if err := sup.Add(g, pc.Stationary); err != nil {
			return nil, err
		}
	}

	for _, ec := range cfg.Exchanges {
		err := sup.Connect(Exchange{From: ec.From, Output: ec.Output, To: ec.To, Input: ec.Input, Scale: ec.Scale})
		if err != nil {
			return nil, err
		}
	}
	return sup, nil
}

// buildProblem makes an ODEProblem; without its own dt it prefers the
// scenario dt.
func buildProblem(pc config.ProblemConfig, dt float64, cps *storage.Checkpoints) (*problems.ODEProblem, error) {
	model, err := models.New(pc.Model)
	if err != nil {
		return nil, err
	}
	name := pc.Integrator
	if name == "" {
		name = config.DefaultIntegrator
	}
	integ, err := integrators.New(name)
	if err != nil {
		return nil, err
	}
	if pc.Dt > 0 {
		dt = pc.Dt
	}
	return problems.New(problems.Options{
		Name:        pc.Name,
		ModelName:   pc.Model,
		Model:       model,
		Integrator:  integ,
		PreferredDt: dt,
		MaxDt:       pc.MaxDt,
		EndTime:     pc.EndTime,
		SubSteps:    pc.SubSteps,
		Params:      pc.Params,
		Init:        pc.Init,
		Checkpoints: cps,
	})
}
