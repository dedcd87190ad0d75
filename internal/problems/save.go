package problems

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/cosim/internal/icoco"
	"github.com/san-kum/cosim/internal/storage"
)

// Save methods understood by ODEProblem.
const (
	SaveMemory = "memory"
	SaveSQLite = "sqlite"
)

func (p *ODEProblem) snapshot() snapshot {
	return snapshot{
		time:   p.time,
		steps:  p.steps,
		x:      p.x.Clone(),
		inputs: maps.Clone(p.inputs),
	}
}

func (p *ODEProblem) apply(s snapshot) {
	p.time = s.time
	p.steps = s.steps
	p.x = s.x.Clone()
	p.inputs = maps.Clone(s.inputs)
	if p.inputs == nil {
		p.inputs = make(map[string]float64)
	}
	p.lastChange = math.Inf(1)
}

func (p *ODEProblem) checkpoints(method, saveMethod string) (*storage.Checkpoints, error) {
	switch saveMethod {
	case SaveMemory:
		return nil, nil
	case SaveSQLite:
		if p.opts.Checkpoints == nil {
			return nil, icoco.NewWrongArgument(p.Name(), method, "method", "no checkpoint database configured")
		}
		return p.opts.Checkpoints, nil
	}
	return nil, icoco.NewWrongArgument(p.Name(), method, "method", fmt.Sprintf("unknown save method %q", saveMethod))
}

func (p *ODEProblem) missing(method string, label int) error {
	return icoco.NewWrongArgument(p.Name(), method, "label", fmt.Sprintf("no state saved under label %d", label))
}

// Save records the validated state under label. Saving twice under the
// same label overwrites.
func (p *ODEProblem) Save(label int, saveMethod string) error {
	db, err := p.checkpoints("save", saveMethod)
	if err != nil {
		return err
	}
	s := p.snapshot()
	if db == nil {
		p.memory[label] = s
		return nil
	}
	return db.Put(context.Background(), storage.Checkpoint{
		Problem: p.Name(),
		Label:   label,
		Time:    s.time,
		Steps:   s.steps,
		State:   s.x,
		Inputs:  s.inputs,
	})
}

func (p *ODEProblem) Restore(label int, saveMethod string) error {
	db, err := p.checkpoints("restore", saveMethod)
	if err != nil {
		return err
	}
	if db == nil {
		s, ok := p.memory[label]
		if !ok {
			return p.missing("restore", label)
		}
		p.apply(s)
		return nil
	}

	cp, err := db.Get(context.Background(), p.Name(), label)
	if errors.Is(err, storage.ErrCheckpointNotFound) {
		return p.missing("restore", label)
	}
	if err != nil {
		return err
	}
	if len(cp.State) != p.model.StateDim() {
		return icoco.NewWrongArgument(p.Name(), "restore", "label",
			fmt.Sprintf("saved state has %d entries, model needs %d", len(cp.State), p.model.StateDim()))
	}
	p.apply(snapshot{time: cp.Time, steps: cp.Steps, x: cp.State, inputs: cp.Inputs})
	return nil
}

func (p *ODEProblem) Forget(label int, saveMethod string) error {
	db, err := p.checkpoints("forget", saveMethod)
	if err != nil {
		return err
	}
	if db == nil {
		if _, ok := p.memory[label]; !ok {
			return p.missing("forget", label)
		}
		delete(p.memory, label)
		return nil
	}
	err = db.Delete(context.Background(), p.Name(), label)
	if errors.Is(err, storage.ErrCheckpointNotFound) {
		return p.missing("forget", label)
	}
	return err
}
