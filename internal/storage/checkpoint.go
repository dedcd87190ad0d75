package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/unicode/norm"
)

//go:embed schema.sql
var schemaSQL string

var ErrCheckpointNotFound = errors.New("storage: checkpoint not found")

// Checkpoint is a restore point of one coupled problem.
type Checkpoint struct {
	Problem string
	Label   int
	Time    float64
	Steps   int
	State   []float64
	Inputs  map[string]float64
}

// Checkpoints persists restore points in SQLite, keyed by (problem, label).
type Checkpoints struct {
	db *sql.DB
}

// OpenCheckpoints opens or creates the checkpoint database at path.
// ":memory:" gives a private in-process database.
func OpenCheckpoints(path string) (*Checkpoints, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}

	// one connection: an in-memory database lives on its connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to checkpoint database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Checkpoints{db: db}, nil
}

func (c *Checkpoints) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put stores cp, replacing any checkpoint with the same key.
func (c *Checkpoints) Put(ctx context.Context, cp Checkpoint) error {
	state, err := json.Marshal(cp.State)
	if err != nil {
		return err
	}
	inputs, err := json.Marshal(cp.Inputs)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO checkpoints (problem, label, time, steps, state, inputs, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (problem, label) DO UPDATE SET
			time = excluded.time,
			steps = excluded.steps,
			state = excluded.state,
			inputs = excluded.inputs,
			created_at = excluded.created_at`,
		key(cp.Problem), cp.Label, cp.Time, cp.Steps,
		string(state), string(inputs), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store checkpoint %d of %s: %w", cp.Label, cp.Problem, err)
	}
	return nil
}

func (c *Checkpoints) Get(ctx context.Context, problem string, label int) (*Checkpoint, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT time, steps, state, inputs FROM checkpoints WHERE problem = ? AND label = ?`,
		key(problem), label)

	cp := &Checkpoint{Problem: problem, Label: label}
	var state, inputs string
	if err := row.Scan(&cp.Time, &cp.Steps, &state, &inputs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckpointNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &cp.State); err != nil {
		return nil, fmt.Errorf("corrupt checkpoint state: %w", err)
	}
	if err := json.Unmarshal([]byte(inputs), &cp.Inputs); err != nil {
		return nil, fmt.Errorf("corrupt checkpoint inputs: %w", err)
	}
	return cp, nil
}

func (c *Checkpoints) Delete(ctx context.Context, problem string, label int) error {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE problem = ? AND label = ?`, key(problem), label)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCheckpointNotFound
	}
	return nil
}

// Labels lists the labels saved for problem in ascending order.
func (c *Checkpoints) Labels(ctx context.Context, problem string) ([]int, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT label FROM checkpoints WHERE problem = ? ORDER BY label`, key(problem))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make([]int, 0)
	for rows.Next() {
		var l int
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// key normalizes problem names so visually identical names share checkpoints.
func key(problem string) string {
	return norm.NFC.String(problem)
}
