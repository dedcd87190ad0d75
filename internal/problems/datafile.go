package problems

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// DataFile is the YAML document accepted by SetDataFile. Set fields
// override the problem options at Initialize.
type DataFile struct {
	Params    map[string]float64 `yaml:"params,omitempty"`
	Init      map[string]float64 `yaml:"init,omitempty"`
	Dt        float64            `yaml:"dt,omitempty"`
	MaxDt     float64            `yaml:"max_dt,omitempty"`
	EndTime   float64            `yaml:"end_time,omitempty"`
	SubSteps  int                `yaml:"sub_steps,omitempty"`
	Tolerance float64            `yaml:"tolerance,omitempty"`
}

func LoadDataFile(path string) (*DataFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var df DataFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	return &df, nil
}

func (df *DataFile) apply(opts *Options) {
	if len(df.Params) > 0 {
		opts.Params = merge(opts.Params, df.Params)
	}
	if len(df.Init) > 0 {
		opts.Init = merge(opts.Init, df.Init)
	}
	if df.Dt > 0 {
		opts.PreferredDt = df.Dt
	}
	if df.MaxDt > 0 {
		opts.MaxDt = df.MaxDt
	}
	if df.EndTime > 0 {
		opts.EndTime = df.EndTime
	}
	if df.SubSteps > 0 {
		opts.SubSteps = df.SubSteps
	}
	if df.Tolerance > 0 {
		opts.Tolerance = df.Tolerance
	}
}

func merge(base, over map[string]float64) map[string]float64 {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]float64, len(over))
	}
	maps.Copy(out, over)
	return out
}
