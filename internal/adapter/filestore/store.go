// Package filestore persists snapshots as whole JSON files in one directory.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

// Snapshot file names.
const (
	ObstaclesFile = "obstacles.json"
	AirportsFile  = "airports.json"
	NotamsFile    = "notams.json"
	MetadataFile  = "metadata.json"
)

// Store reads and writes snapshot files under a single directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// ReplaceObstacles overwrites obstacles.json with compact JSON.
func (s *Store) ReplaceObstacles(_ context.Context, obstacles []domain.Obstacle) error {
	if obstacles == nil {
		obstacles = []domain.Obstacle{}
	}
	return s.write(ObstaclesFile, obstacles, false)
}

// ReplaceAirports overwrites airports.json with compact JSON.
func (s *Store) ReplaceAirports(_ context.Context, airports map[string]domain.Airport) error {
	if airports == nil {
		airports = map[string]domain.Airport{}
	}
	return s.write(AirportsFile, airports, false)
}

// ReplaceOutages overwrites notams.json with indented JSON. An empty set
// is written as [].
func (s *Store) ReplaceOutages(_ context.Context, outages []domain.Outage) error {
	if outages == nil {
		outages = []domain.Outage{}
	}
	return s.write(NotamsFile, outages, true)
}

// CountObstacles returns the number of records in obstacles.json, or 0
// when the file does not exist.
func (s *Store) CountObstacles(_ context.Context) (int, error) {
	var records []json.RawMessage
	found, err := s.read(ObstaclesFile, &records)
	if err != nil || !found {
		return 0, err
	}
	return len(records), nil
}

// CountAirports returns the number of entries in airports.json, or 0 when
// the file does not exist.
func (s *Store) CountAirports(_ context.Context) (int, error) {
	var records map[string]json.RawMessage
	found, err := s.read(AirportsFile, &records)
	if err != nil || !found {
		return 0, err
	}
	return len(records), nil
}

// ReadMetadata loads metadata.json. The bool is false when no metadata has
// been written yet.
func (s *Store) ReadMetadata(_ context.Context) (domain.Metadata, bool, error) {
	var md domain.Metadata
	found, err := s.read(MetadataFile, &md)
	return md, found, err
}

// WriteMetadata overwrites metadata.json with indented JSON.
func (s *Store) WriteMetadata(_ context.Context, md domain.Metadata) error {
	return s.write(MetadataFile, md, true)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) read(name string, v any) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// write encodes v to a temp file in the same directory and renames it over
// name, so readers only ever see a complete file.
func (s *Store) write(name string, v any, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
