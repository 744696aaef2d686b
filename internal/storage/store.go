package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/wavestep/internal/config"
	"github.com/san-kum/wavestep/internal/sim"
)

const (
	metadataFile = "metadata.json"
	probesFile   = "probes.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Grid        [3]int             `json:"grid"`
	Spacing     [3]float64         `json:"spacing"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	StepsTaken  int                `json:"steps_taken"`
	Sequence    []string           `json:"sequence"`
	SampleEvery int                `json:"sample_every"`
	Workers     int                `json:"workers"`
	Elapsed     float64            `json:"elapsed_seconds"`
	Probes      []string           `json:"probes"`
	Metrics     map[string]float64 `json:"metrics"`
	// NonFinite names metrics that were NaN or Inf and are left out of
	// Metrics.
	NonFinite []string `json:"non_finite_metrics,omitempty"`
}

// Duration is the simulated time covered by the run.
func (m *RunMetadata) Duration() float64 {
	return float64(m.StepsTaken) * m.Dt
}

// SampleInterval is the simulated time between stored probe rows.
func (m *RunMetadata) SampleInterval() float64 {
	return float64(max(m.SampleEvery, 1)) * m.Dt
}

func (s *Store) Save(cfg *config.Config, workers int, result *sim.Result, elapsed time.Duration) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        cfg.Name,
		Timestamp:   now,
		Grid:        [3]int{cfg.Grid.NX, cfg.Grid.NY, cfg.Grid.NZ},
		Spacing:     [3]float64{cfg.Spacing.DX, cfg.Spacing.DY, cfg.Spacing.DZ},
		Dt:          cfg.Dt,
		Steps:       cfg.Steps,
		StepsTaken:  result.StepsTaken,
		Sequence:    cfg.Sequence,
		SampleEvery: max(cfg.SampleEvery, 1),
		Workers:     workers,
		Elapsed:     elapsed.Seconds(),
		Probes:      result.ProbeNames,
		Metrics:     make(map[string]float64, len(result.Metrics)),
	}
	for name, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.NonFinite = append(meta.NonFinite, name)
			continue
		}
		meta.Metrics[name] = v
	}
	sort.Strings(meta.NonFinite)

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, probesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	header := append([]string{"time"}, result.ProbeNames...)
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, row := range result.Probes {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.FormatFloat(result.Times[i], 'g', -1, 64))
		for _, val := range row {
			record = append(record, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Probes holds the stored probe table of one run.
type Probes struct {
	Names []string
	Times []float64
	// Values[i][p] is probe p at Times[i].
	Values [][]float64
}

// Series returns the column for probe p.
func (p *Probes) Series(idx int) []float64 {
	out := make([]float64, 0, len(p.Values))
	for _, row := range p.Values {
		if idx < len(row) {
			out = append(out, row[idx])
		}
	}
	return out
}

func (s *Store) LoadProbes(runID string) (*Probes, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, probesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := &Probes{}
	if len(records) == 0 {
		return out, nil
	}
	out.Names = records[0][1:]

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", probesFile, i+1, err)
		}

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", probesFile, i+1, err)
			}
			row = append(row, val)
		}
		out.Times = append(out.Times, t)
		out.Values = append(out.Values, row)
	}

	return out, nil
}
