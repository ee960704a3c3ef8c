// Package store persists runs as one indented JSON file per run.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iconsports/demandscope/engine/domain"
)

const (
	fileExt   = ".json"
	rawMarker = "_raw_api"
)

// FileStore is a directory of run files. Concurrent saves never collide
// because every id carries a random suffix; writes of the same id are last
// write wins.
type FileStore struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
	suffix func() string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		dir:    dir,
		logger: logger,
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file path for a run id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// NewID builds "{testType}_{unixMillis}_{suffix}".
func NewID(testType string, ts time.Time, suffix string) string {
	return fmt.Sprintf("%s_%d_%s", testType, ts.UnixMilli(), suffix)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// Save assigns the run an id (and a timestamp if unset) and writes it. The
// file is written to a temp name and renamed into place.
func (s *FileStore) Save(ctx context.Context, run *domain.Run) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(run.TestType) == "" {
		return "", domain.NewConfigError("testType", "must not be empty")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = s.now().UTC().Truncate(time.Millisecond)
	}
	run.ID = NewID(run.TestType, run.Timestamp, s.suffix())

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", domain.ErrPersistence, s.dir, err)
	}
	if err := s.writeAtomic(run); err != nil {
		return "", fmt.Errorf("%w: write run %s: %w", domain.ErrPersistence, run.ID, err)
	}
	s.logger.Info("run saved", "id", run.ID, "path", s.Path(run.ID))
	return run.ID, nil
}

func (s *FileStore) writeAtomic(run *domain.Run) error {
	tmp, err := os.CreateTemp(s.dir, ".run-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path(run.ID))
}

// Get reads one run. A missing file is domain.ErrRunNotFound.
func (s *FileStore) Get(ctx context.Context, id string) (*domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%w: %q", domain.ErrRunNotFound, id)
	}
	run, err := readRun(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read run %s: %w", domain.ErrPersistence, id, err)
	}
	return run, nil
}

// List returns every run, newest first. Files that are not run documents
// are skipped. A missing directory yields an empty list.
func (s *FileStore) List(ctx context.Context) ([]domain.Run, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrPersistence, s.dir, err)
	}

	var runs []domain.Run
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || !isRunFile(name) {
			continue
		}
		run, err := readRun(filepath.Join(s.dir, name))
		if err != nil || run.ID == "" {
			s.logger.Debug("skipping non-run file", "file", name, "error", err)
			continue
		}
		runs = append(runs, *run)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the newest run.
func (s *FileStore) Latest(ctx context.Context) (*domain.Run, error) {
	runs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, domain.ErrRunNotFound
	}
	return &runs[0], nil
}

// CountByType counts stored runs per test type.
func (s *FileStore) CountByType(ctx context.Context) (map[string]int, error) {
	runs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, r := range runs {
		out[r.TestType]++
	}
	return out, nil
}

// File kinds reported by Files.
const (
	KindRun     = "Processed Results"
	KindRaw     = "Raw API Data"
	KindCSV     = "CSV Export"
	KindUnknown = "Unknown"
)

// FileInfo describes one file in the storage directory.
type FileInfo struct {
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Files lists every regular file in the directory, sorted by name.
func (s *FileStore) Files(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrPersistence, s.dir, err)
	}
	var out []FileInfo
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{
			Name:     e.Name(),
			Kind:     kindOf(e.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func kindOf(name string) string {
	switch {
	case strings.Contains(name, rawMarker) && strings.HasSuffix(name, fileExt):
		return KindRaw
	case strings.HasSuffix(name, fileExt):
		return KindRun
	case strings.HasSuffix(name, ".csv"):
		return KindCSV
	}
	return KindUnknown
}

func isRunFile(name string) bool {
	return strings.HasSuffix(name, fileExt) && !strings.Contains(name, rawMarker) && !strings.HasPrefix(name, ".")
}

func readRun(path string) (*domain.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run domain.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
