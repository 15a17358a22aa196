// Package storage keeps trajectory runs on disk, one directory per run
// holding metadata.json and points.csv.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/phaseflow/internal/export"
	"github.com/san-kum/phaseflow/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a saved set of trajectories.
type RunMetadata struct {
	ID           string             `json:"id"`
	Preset       string             `json:"preset,omitempty"`
	DX           string             `json:"dx"`
	DY           string             `json:"dy"`
	Params       map[string]float64 `json:"params,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
	Dt           float64            `json:"dt"`
	Steps        int                `json:"steps"`
	Origins      [][2]float64       `json:"origins"`
	Trajectories int                `json:"trajectories"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// Save writes meta and the points of trajs under a new run directory and
// returns its ID. ID, Timestamp, Origins and Trajectories are filled in.
func (s *Store) Save(meta RunMetadata, trajs []*sim.Trajectory) (string, error) {
	now := s.now()
	name := meta.Preset
	if name == "" {
		name = "custom"
	}
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Trajectories = len(trajs)
	meta.Origins = meta.Origins[:0]
	for _, tr := range trajs {
		meta.Origins = append(meta.Origins, [2]float64{tr.Origin.X, tr.Origin.Y})
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

	csvFile, err := os.Create(filepath.Join(runDir, "points.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := export.WriteTrajectoriesCSV(csvFile, trajs, meta.Dt); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns the metadata of every readable run, oldest first.
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadPoints reads the saved points of a run.
func (s *Store) LoadPoints(runID string) ([]export.TrajectoryPoint, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "points.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return export.ReadTrajectoriesCSV(f)
}
