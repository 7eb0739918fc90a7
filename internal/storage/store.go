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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/softplot/internal/analysis"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
)

// ErrNotFound indicates an unknown run id.
var ErrNotFound = errors.New("storage: run not found")

var statsHeader = []string{"frame", "count", "centroid_x", "centroid_y", "min_x", "max_x", "min_y", "max_y"}

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one render, playback or simulation run.
type RunMetadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Timestamp  time.Time          `json:"timestamp"`
	Input      string             `json:"input,omitempty"`
	Output     string             `json:"output,omitempty"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Frames     int                `json:"frames"`
	Particles  int                `json:"particles"`
	FPS        int                `json:"fps,omitempty"`
	Integrator string             `json:"integrator,omitempty"`
	Elapsed    float64            `json:"elapsed_seconds"`
	Params     map[string]float64 `json:"params,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// NewID returns "<kind>_<first 8 hex digits of a random UUID>".
func NewID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, strings.SplitN(uuid.New().String(), "-", 2)[0])
}

// Save writes meta and the per-frame stats of a run and returns its id.
// An empty meta.ID is filled in from meta.Kind.
func (s *Store) Save(meta RunMetadata, stats []analysis.FrameStats) (string, error) {
	if meta.Kind == "" {
		return "", errors.New("storage: run kind is empty")
	}
	if meta.ID == "" {
		meta.ID = NewID(meta.Kind)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	if err := writeStats(filepath.Join(runDir, statsFile), stats); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeStats(path string, stats []analysis.FrameStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Write(statsHeader)
	for _, st := range stats {
		w.Write([]string{
			strconv.Itoa(st.Frame),
			strconv.Itoa(st.Count),
			formatFloat(st.CentroidX),
			formatFloat(st.CentroidY),
			formatFloat(st.MinX),
			formatFloat(st.MaxX),
			formatFloat(st.MinY),
			formatFloat(st.MaxY),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every readable run, newest first. Directories without
// valid metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStats reads back the per-frame stats of a run.
func (s *Store) LoadStats(runID string) ([]analysis.FrameStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(statsHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []analysis.FrameStats{}, nil
	}

	stats := make([]analysis.FrameStats, 0, len(records)-1)
	for i, rec := range records[1:] {
		st, err := parseStats(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", runID, i+1, err)
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func parseStats(rec []string) (analysis.FrameStats, error) {
	var st analysis.FrameStats
	var err error
	if st.Frame, err = strconv.Atoi(rec[0]); err != nil {
		return st, err
	}
	if st.Count, err = strconv.Atoi(rec[1]); err != nil {
		return st, err
	}
	fields := []*float64{&st.CentroidX, &st.CentroidY, &st.MinX, &st.MaxX, &st.MinY, &st.MaxY}
	for i, dst := range fields {
		if *dst, err = strconv.ParseFloat(rec[i+2], 64); err != nil {
			return st, err
		}
	}
	return st, nil
}
