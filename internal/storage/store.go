// Package storage persists run reports to disk: one directory per run with
// a metadata json and the instrumentation series as csv. Formatting only;
// every number comes from the analytics facade.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tdslab/tdsim/internal/config"
)

// Store writes runs under a base directory.
type Store struct {
	baseDir string
}

// New builds a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the base directory.
func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one persisted run.
type RunMetadata struct {
	ID        string         `json:"id"`
	Scenario  string         `json:"scenario,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Steps     int64          `json:"steps"`
	Config    *config.Config `json:"config"`

	FinalESym      float64 `json:"final_e_sym"`
	FinalEAsym     float64 `json:"final_e_asym"`
	FinalTension   float64 `json:"final_t_info"`
	AnomalyCount   int     `json:"anomaly_count"`
	CorrectionHits int     `json:"correction_hits"`
}

// Save writes metadata.json and series.csv for a run and returns the run id.
func (s *Store) Save(meta RunMetadata, seriesCSV string) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
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

	if err := os.WriteFile(filepath.Join(runDir, "series.csv"), []byte(seriesCSV), 0644); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the metadata of every stored run.
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
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", runID, err)
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads one run's csv series.
func (s *Store) LoadSeries(runID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
