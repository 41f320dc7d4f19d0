package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/urdfsim/internal/config"
	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/vehicle"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// Store keeps one directory per run under baseDir, each holding
// metadata.json and states.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string                   `json:"id"`
	Document      string                   `json:"document"`
	Timestamp     time.Time                `json:"timestamp"`
	Integrator    string                   `json:"integrator"`
	Start         float64                  `json:"start"`
	End           float64                  `json:"end"`
	Samples       int                      `json:"samples"`
	InitialState  string                   `json:"initial_state"`
	Environment   config.EnvironmentConfig `json:"environment"`
	Mass          float64                  `json:"mass"`
	Inertia       [3][3]float64            `json:"inertia"`
	Links         []string                 `json:"links"`
	Joints        int                      `json:"joints"`
	StepsTaken    int                      `json:"steps_taken"`
	StepsRejected int                      `json:"steps_rejected"`
	Metrics       map[string]float64       `json:"metrics"`
}

// NewRunMetadata collects what is needed to reproduce and compare a run.
func NewRunMetadata(cfg *config.Config, params *vehicle.Parameters, result *dynamo.Result) RunMetadata {
	meta := RunMetadata{
		Document:      cfg.Document,
		Integrator:    cfg.Integrator,
		Start:         cfg.Start,
		End:           cfg.End,
		Samples:       cfg.Samples,
		InitialState:  cfg.InitialState,
		Environment:   cfg.Environment,
		StepsTaken:    result.StepsTaken,
		StepsRejected: result.StepsRejected,
		Metrics:       result.Metrics,
	}
	if params != nil {
		meta.Mass = params.Mass
		meta.Inertia = params.Inertia
		meta.Links = params.Links
		meta.Joints = len(params.Joints)
	}
	return meta
}

// Save writes a run and returns its ID, derived from the document name and
// the current time. ID and Timestamp in meta are filled in. A run that fails
// to write is removed, so List never sees it half-written.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(runName(meta.Document), now)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	if err := writeRun(runDir, meta, result); err != nil {
		if rerr := os.RemoveAll(runDir); rerr != nil {
			return "", fmt.Errorf("run %s: %w (cleanup: %v)", runID, err, rerr)
		}
		return "", fmt.Errorf("run %s: %w", runID, err)
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, result *dynamo.Result) error {
	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(runDir, statesFile), func(w io.Writer) error {
		return WriteCSV(w, result)
	})
}

// writeFile creates path and hands it to write, reporting close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func (s *Store) newRunDir(name string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	for i := 1; ; i++ {
		id := base
		if i > 1 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func runName(document string) string {
	name := strings.TrimSuffix(filepath.Base(document), filepath.Ext(document))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "run"
	}
	return name
}

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.SliceStable(runs, func(i, j int) bool {
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([]dynamo.State, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	states, times, err := ReadCSV(file)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return states, times, nil
}

// LoadResult rebuilds a trajectory from a stored run.
func (s *Store) LoadResult(runID string) (*dynamo.Result, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	return &dynamo.Result{
		Times:         times,
		States:        states,
		Metrics:       meta.Metrics,
		StepsTaken:    meta.StepsTaken,
		StepsRejected: meta.StepsRejected,
	}, meta, nil
}
