// Package storage persists scenario traces as one directory per run holding
// metadata.json and trace.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/planefx/internal/render"
	"github.com/san-kum/planefx/internal/scenario"
)

var ErrNoRun = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

var traceHeader = []string{
	"tick", "segment", "altitude", "speed", "density", "speed_of_sound", "mach",
	"transonic", "transonic_scale", "contrails", "vapor", "lift_intensity",
	"live_effects", "pending", "skip", "error",
}

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
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Vehicle   string             `json:"vehicle"`
	Timestamp time.Time          `json:"timestamp"`
	Ticks     int                `json:"ticks"`
	Elapsed   time.Duration      `json:"elapsed"`
	Metrics   map[string]float64 `json:"metrics"`
	Effects   render.Stats       `json:"effects"`
}

func (s *Store) Save(trace *scenario.Trace) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", trace.Scenario, now.UnixMilli())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  trace.Scenario,
		Vehicle:   trace.Vehicle,
		Timestamp: now,
		Ticks:     trace.Ticks,
		Elapsed:   trace.Elapsed,
		Metrics:   trace.Metrics,
		Effects:   trace.Effects,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), trace.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrace(path string, samples []scenario.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for _, smp := range samples {
		if err := w.Write(encodeSample(smp)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func encodeSample(s scenario.Sample) []string {
	return []string{
		strconv.FormatUint(s.Tick, 10),
		s.Segment,
		ftoa(s.Altitude),
		ftoa(s.Speed),
		ftoa(s.Density),
		ftoa(s.SpeedOfSound),
		ftoa(s.Mach),
		strconv.FormatBool(s.Transonic),
		ftoa(s.TransonicScale),
		strconv.FormatBool(s.Contrails),
		strconv.Itoa(s.Vapor),
		ftoa(s.LiftIntensity),
		strconv.Itoa(s.LiveEffects),
		strconv.Itoa(s.Pending),
		s.Skip,
		s.Err,
	}
}

func decodeSample(rec []string) (scenario.Sample, error) {
	var s scenario.Sample
	if len(rec) != len(traceHeader) {
		return s, fmt.Errorf("expected %d fields, got %d", len(traceHeader), len(rec))
	}

	var err error
	parseF := func(i int) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = strconv.ParseFloat(rec[i], 64)
		return v
	}
	parseI := func(i int) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(rec[i])
		return v
	}
	parseB := func(i int) bool {
		if err != nil {
			return false
		}
		var v bool
		v, err = strconv.ParseBool(rec[i])
		return v
	}

	s.Tick, err = strconv.ParseUint(rec[0], 10, 64)
	s.Segment = rec[1]
	s.Altitude = parseF(2)
	s.Speed = parseF(3)
	s.Density = parseF(4)
	s.SpeedOfSound = parseF(5)
	s.Mach = parseF(6)
	s.Transonic = parseB(7)
	s.TransonicScale = parseF(8)
	s.Contrails = parseB(9)
	s.Vapor = parseI(10)
	s.LiftIntensity = parseF(11)
	s.LiveEffects = parseI(12)
	s.Pending = parseI(13)
	s.Skip = rec[14]
	s.Err = rec[15]
	return s, err
}

// List returns every stored run, oldest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]scenario.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []scenario.Sample{}, nil
	}

	samples := make([]scenario.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		smp, err := decodeSample(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", traceFile, i+2, err)
		}
		samples = append(samples, smp)
	}
	return samples, nil
}
