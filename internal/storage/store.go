package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Store keeps coupled runs on disk, one directory per run holding
// metadata.json and history.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// CheckpointPath is the SQLite file used for "sqlite" restore points.
func (s *Store) CheckpointPath() string {
	return filepath.Join(s.baseDir, "checkpoints.db")
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Scheme    string             `json:"scheme"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	EndTime   float64            `json:"end_time"`
	Problems  []string           `json:"problems"`
	Stats     map[string]int     `json:"stats"`
	Metrics   map[string]float64 `json:"metrics"`
}

// History is a set of time series sampled at the validated times of a run.
type History struct {
	Times  []float64
	Series map[string][]float64
}

// Columns returns the series names in stable order.
func (h History) Columns() []string {
	cols := make([]string, 0, len(h.Series))
	for name := range h.Series {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Save writes a run and returns its id. meta.ID and meta.Timestamp are
// filled in when empty.
func (s *Store) Save(meta RunMetadata, history History) (string, error) {
	if meta.ID == "" {
		meta.ID = NewRunID()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeHistory(filepath.Join(runDir, "history.csv"), history); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeHistory(path string, history History) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := history.Columns()
	if err := w.Write(append([]string{"time"}, cols...)); err != nil {
		return err
	}

	for i, t := range history.Times {
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, c := range cols {
			series := history.Series[c]
			if i < len(series) {
				row = append(row, strconv.FormatFloat(series[i], 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadHistory(runID string) (History, error) {
	history := History{Series: make(map[string][]float64)}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		return history, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return history, err
	}
	if len(records) == 0 {
		return history, fmt.Errorf("empty history for run %s", runID)
	}

	header := records[0]
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		history.Times = append(history.Times, t)
		for j := 1; j < len(header) && j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			history.Series[header[j]] = append(history.Series[header[j]], v)
		}
	}
	return history, nil
}
