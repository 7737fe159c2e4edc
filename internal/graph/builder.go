package graph

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
)

// GraphProgressReporter reports progress during graph building.
type GraphProgressReporter interface {
	OnGraphBuildingStart(totalFiles int)
	OnGraphBuildingComplete(nodeCount, edgeCount int, duration time.Duration)
}

// Builder turns parsed files into a Graph. A Builder can be reused; every
// Build call produces a new, independent Graph.
type Builder struct {
	progress GraphProgressReporter
	logger   *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithProgress configures progress reporting.
func WithProgress(progress GraphProgressReporter) BuilderOption {
	return func(b *Builder) {
		b.progress = progress
	}
}

// WithLogger sets the logger used for build summaries.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a new graph builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates the graph for files, processed in the given order. It never
// fails; a file with no facts contributes only its File node.
func (b *Builder) Build(files []*extraction.ParsedFile) *Graph {
	start := time.Now()
	if b.progress != nil {
		b.progress.OnGraphBuildingStart(len(files))
	}

	s := &buildState{g: newGraph(), seen: make(map[string]int)}
	fileHandles := make([]NodeHandle, len(files))
	for i, pf := range files {
		fileHandles[i] = s.addFile(pf)
	}
	s.resolve(files, fileHandles)

	g := s.g
	b.logger.Debug("graph built",
		"files", len(files),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"dangling", len(g.Dangling()),
		"duration", time.Since(start))

	if b.progress != nil {
		b.progress.OnGraphBuildingComplete(g.NodeCount(), g.EdgeCount(), time.Since(start))
	}
	return g
}

// Build is a convenience wrapper for NewBuilder().Build(files).
func Build(files []*extraction.ParsedFile) *Graph {
	return NewBuilder().Build(files)
}

type pendingImport struct {
	handle NodeHandle
	module string
	line   int
}

type buildState struct {
	g       *Graph
	seen    map[string]int // base id -> times used
	pending []pendingImport
}

// uniqueID returns base, or base#n for the n-th reuse of base within the
// build (n starting at 2).
func (s *buildState) uniqueID(base string) string {
	s.seen[base]++
	n := s.seen[base]
	if n == 1 {
		if _, taken := s.g.byID[base]; !taken {
			return base
		}
	}
	for {
		candidate := fmt.Sprintf("%s#%d", base, max(n, 2))
		if _, taken := s.g.byID[candidate]; !taken {
			return candidate
		}
		n++
		s.seen[base] = n
	}
}

func (s *buildState) contains(from, to NodeHandle, line int) {
	s.g.addEdge(Edge{
		From:   from,
		To:     to,
		Type:   EdgeContains,
		Weight: 1.0,
		Metadata: EdgeMetadata{
			CallCount:   1,
			IsDirect:    true,
			LineNumbers: []int{line},
		},
	})
}

func (s *buildState) addFile(pf *extraction.ParsedFile) NodeHandle {
	path := pf.File.Path
	lang := pf.File.Language

	file := s.g.addNode(Node{
		ID:       s.uniqueID("file:" + path),
		Type:     NodeFile,
		FilePath: path,
		Line:     1,
		Metadata: NodeMetadata{
			Name:       filepath.Base(path),
			Language:   lang,
			Size:       pf.File.Size,
			Complexity: FileComplexity(pf),
		},
	})
	if _, ok := s.g.byFile[path]; !ok {
		s.g.byFile[path] = file
	}

	for _, imp := range pf.Imports {
		h := s.g.addNode(Node{
			ID:       s.uniqueID(fmt.Sprintf("import:%s:%s", path, imp.Module)),
			Type:     NodeImport,
			FilePath: path,
			Line:     imp.Line,
			Metadata: NodeMetadata{
				Name:       imp.Module,
				Language:   lang,
				Parameters: append([]string(nil), imp.Items...),
			},
		})
		s.contains(file, h, imp.Line)
		s.g.imports = append(s.g.imports, h)
		s.pending = append(s.pending, pendingImport{handle: h, module: imp.Module, line: imp.Line})
	}

	for _, fn := range pf.Functions {
		h := s.g.addNode(functionNode(
			s.uniqueID(fmt.Sprintf("function:%s:%s", path, fn.Name)),
			fn.Name, path, lang, fn, pf.IsExported(fn.Name)))
		s.contains(file, h, fn.Line)
	}

	for _, cls := range pf.Classes {
		ch := s.g.addNode(Node{
			ID:       s.uniqueID(fmt.Sprintf("class:%s:%s", path, cls.Name)),
			Type:     NodeClass,
			FilePath: path,
			Line:     cls.Line,
			Metadata: NodeMetadata{
				Name:       cls.Name,
				Language:   lang,
				Complexity: ClassComplexity(cls),
				IsExported: pf.IsExported(cls.Name),
			},
		})
		s.contains(file, ch, cls.Line)

		for _, m := range cls.Methods {
			mh := s.g.addNode(functionNode(
				s.uniqueID(fmt.Sprintf("method:%s:%s:%s", path, cls.Name, m.Name)),
				cls.Name+"."+m.Name, path, lang, m, false))
			s.contains(ch, mh, m.Line)
		}
	}

	return file
}

func functionNode(id, name, path, lang string, fn extraction.Function, exported bool) Node {
	return Node{
		ID:       id,
		Type:     NodeFunction,
		FilePath: path,
		Line:     fn.Line,
		Metadata: NodeMetadata{
			Name:       name,
			Language:   lang,
			Complexity: FunctionComplexity(fn),
			Parameters: append([]string(nil), fn.Parameters...),
			ReturnType: fn.ReturnType,
			IsAsync:    fn.IsAsync,
			IsExported: exported,
		},
	}
}

// resolve links each Import node to the first file, in input order, whose
// filename stem equals the import's module string.
func (s *buildState) resolve(files []*extraction.ParsedFile, fileHandles []NodeHandle) {
	stems := make(map[string]NodeHandle, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		stems[files[i].File.Stem()] = fileHandles[i]
	}

	for _, imp := range s.pending {
		target, ok := stems[imp.module]
		if !ok {
			continue
		}
		s.g.addEdge(Edge{
			From:   imp.handle,
			To:     target,
			Type:   EdgeDependsOn,
			Weight: 1.0,
			Metadata: EdgeMetadata{
				CallCount:   1,
				IsDirect:    true,
				LineNumbers: []int{imp.line},
			},
		})
		s.g.resolved[imp.handle] = true
	}
}

// FileComplexity is top-level functions + classes + imports.
func FileComplexity(pf *extraction.ParsedFile) int {
	return len(pf.Functions) + len(pf.Classes) + len(pf.Imports)
}

// FunctionComplexity is parameters + 2 for async functions, + 1 otherwise.
func FunctionComplexity(fn extraction.Function) int {
	if fn.IsAsync {
		return len(fn.Parameters) + 2
	}
	return len(fn.Parameters) + 1
}

// ClassComplexity is methods + implemented interfaces + 1 with a superclass.
func ClassComplexity(cls extraction.Class) int {
	c := len(cls.Methods) + len(cls.Implements)
	if cls.HasSuperclass() {
		c++
	}
	return c
}
