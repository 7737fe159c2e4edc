package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/project-examer/internal/insight"
)

const (
	// GraphFileName is the graph snapshot inside the output directory.
	GraphFileName = "code-graph.json"
	// ContextFileName is the insight context written next to the graph.
	ContextFileName = "insight-context.json"
	// GraphVersion is the current version of the graph format
	GraphVersion = "1.0"
)

// Storage keeps the JSON artifacts of the latest analysis in one output
// directory. Each artifact is replaced whole; readers never see a partial file.
type Storage interface {
	// SaveGraph writes g and its analysis as code-graph.json.
	SaveGraph(g *Graph, analysis Analysis) error

	// LoadGraph reads code-graph.json. Returns nil if it doesn't exist.
	LoadGraph() (*GraphData, error)

	// SaveContext writes c as insight-context.json.
	SaveContext(c *insight.Context) error

	// LoadContext reads insight-context.json. Returns nil if it doesn't exist.
	LoadContext() (*insight.Context, error)

	// Exists reports whether a graph has been saved.
	Exists() bool

	// Dir returns the output directory.
	Dir() string
}

type storage struct {
	dir string
	now func() time.Time
}

// NewStorage creates the output directory if needed.
func NewStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &storage{dir: dir, now: time.Now}, nil
}

func (s *storage) SaveGraph(g *Graph, analysis Analysis) error {
	if g == nil {
		return fmt.Errorf("graph cannot be nil")
	}
	data := g.Data()
	data.Analysis = &analysis
	data.Metadata = GraphMetadata{
		Version:     GraphVersion,
		GeneratedAt: s.now().UTC(),
		NodeCount:   len(data.Nodes),
		EdgeCount:   len(data.Edges),
	}
	return s.write(GraphFileName, data)
}

func (s *storage) LoadGraph() (*GraphData, error) {
	var data GraphData
	found, err := s.read(GraphFileName, &data)
	if !found || err != nil {
		return nil, err
	}
	if data.Metadata.Version != GraphVersion {
		return nil, fmt.Errorf("unsupported graph version %q in %s", data.Metadata.Version, GraphFileName)
	}
	return &data, nil
}

func (s *storage) SaveContext(c *insight.Context) error {
	if c == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return s.write(ContextFileName, c)
}

func (s *storage) LoadContext() (*insight.Context, error) {
	var c insight.Context
	found, err := s.read(ContextFileName, &c)
	if !found || err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *storage) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, GraphFileName))
	return err == nil
}

func (s *storage) Dir() string {
	return s.dir
}

// write marshals v into a uniquely named temp file in the output directory
// and renames it over name, so concurrent saves never share a temp file.
func (s *storage) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err == nil {
		err = os.Rename(tmpPath, filepath.Join(s.dir, name))
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// read unmarshals name into v. A missing file is (false, nil).
func (s *storage) read(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}
