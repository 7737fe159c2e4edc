package graph

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
	"github.com/mvp-joe/project-examer/internal/indexer/parsers"
	"github.com/mvp-joe/project-examer/internal/indexer/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Builder:
// - Python class with method: node ids, Contains edges, complexity, dangling import
// - Rust use statement resolves to a sibling file by filename stem (DependsOn)
// - Import items are carried as the Import node's parameters
// - Duplicate declarations and duplicate paths get #n suffixed ids; all ids unique
// - Containment: top-level functions owned by File, methods owned by Class, exactly once
// - Export flag is a same-file name join; methods are never exported
// - Resolution picks the first file in input order when stems collide
// - Same input builds an identical graph
// - Empty input builds an empty graph

type source struct {
	path string
	lang string
	text string
}

func parseAll(t *testing.T, sources ...source) []*extraction.ParsedFile {
	t.Helper()
	reg, err := patterns.New()
	require.NoError(t, err)
	p := parsers.NewParser(reg)

	out := make([]*extraction.ParsedFile, 0, len(sources))
	for _, s := range sources {
		ext := strings.TrimPrefix(filepath.Ext(s.path), ".")
		rec := extraction.FileRecord{Path: s.path, Size: int64(len(s.text)), Extension: ext, Language: s.lang}
		out = append(out, p.Parse(rec, []byte(s.text)))
	}
	return out
}

func mustNode(t *testing.T, g *Graph, id string) (NodeHandle, Node) {
	t.Helper()
	h, ok := g.NodeByID(id)
	require.True(t, ok, "missing node %s", id)
	n, ok := g.Node(h)
	require.True(t, ok)
	return h, n
}

const examplePython = `import os
def foo(x, y=1):
    return x
class Bar(Base):
    def baz(self):
        pass
`

func TestBuilder_PythonClassWithMethod(t *testing.T) {
	t.Parallel()

	g := Build(parseAll(t, source{"a.py", "python", examplePython}))

	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())

	fileH, file := mustNode(t, g, "file:a.py")
	assert.Equal(t, NodeFile, file.Type)
	assert.Equal(t, "a.py", file.Metadata.Name)
	assert.Equal(t, "python", file.Metadata.Language)
	assert.Equal(t, 1, file.Line)
	assert.Equal(t, 3, file.Metadata.Complexity)

	importH, imp := mustNode(t, g, "import:a.py:os")
	assert.Equal(t, NodeImport, imp.Type)
	assert.Equal(t, "os", imp.Metadata.Name)
	assert.Equal(t, 1, imp.Line)
	assert.Equal(t, []NodeHandle{importH}, g.Dangling())
	assert.Empty(t, g.Outgoing(importH))

	_, foo := mustNode(t, g, "function:a.py:foo")
	assert.Equal(t, []string{"x", "y"}, foo.Metadata.Parameters)
	assert.Equal(t, 3, foo.Metadata.Complexity)
	assert.False(t, foo.Metadata.IsExported)

	barH, bar := mustNode(t, g, "class:a.py:Bar")
	assert.Equal(t, NodeClass, bar.Type)
	assert.Equal(t, 2, bar.Metadata.Complexity)

	bazH, baz := mustNode(t, g, "method:a.py:Bar:baz")
	assert.Equal(t, NodeFunction, baz.Type)
	assert.Equal(t, "Bar.baz", baz.Metadata.Name)
	assert.Equal(t, []string{"self"}, baz.Metadata.Parameters)
	assert.Equal(t, 2, baz.Metadata.Complexity)
	assert.Equal(t, 5, baz.Line)

	in := g.Incoming(bazH)
	require.Len(t, in, 1)
	assert.Equal(t, EdgeContains, in[0].Type)
	assert.Equal(t, barH, in[0].From)
	assert.Equal(t, []int{5}, in[0].Metadata.LineNumbers)

	// The file owns import, function and class, but not the method.
	var owned []NodeHandle
	for _, e := range g.Outgoing(fileH) {
		assert.Equal(t, EdgeContains, e.Type)
		assert.Equal(t, 1.0, e.Weight)
		assert.Equal(t, 1, e.Metadata.CallCount)
		assert.True(t, e.Metadata.IsDirect)
		owned = append(owned, e.To)
	}
	assert.Len(t, owned, 3)
	assert.NotContains(t, owned, bazH)
}

func TestBuilder_ResolvesImportByStem(t *testing.T) {
	t.Parallel()

	g := Build(parseAll(t,
		source{"src/util.rs", "rust", "pub fn helper() {}\n"},
		source{"src/main.rs", "rust", "use util;\nuse std::io;\nfn main() {}\n"},
	))

	importH, _ := mustNode(t, g, "import:src/main.rs:util")
	utilH, _ := mustNode(t, g, "file:src/util.rs")

	out := g.Outgoing(importH)
	require.Len(t, out, 1)
	assert.Equal(t, EdgeDependsOn, out[0].Type)
	assert.Equal(t, utilH, out[0].To)
	assert.Equal(t, []int{1}, out[0].Metadata.LineNumbers)

	stdH, _ := mustNode(t, g, "import:src/main.rs:std::io")
	assert.Equal(t, []NodeHandle{stdH}, g.Dangling())

	fh, ok := g.FileNode("src/util.rs")
	require.True(t, ok)
	assert.Equal(t, utilH, fh)
}

func TestBuilder_ImportItemsBecomeParameters(t *testing.T) {
	t.Parallel()

	pf := &extraction.ParsedFile{
		File: extraction.FileRecord{Path: "src/app.ts", Extension: "ts", Language: "typescript"},
		Imports: []extraction.Import{
			{Module: "react", Items: []string{"useState", "useEffect"}, Line: 1},
			{Module: "./side-effect", Line: 2},
		},
	}
	g := Build([]*extraction.ParsedFile{pf})

	_, named := mustNode(t, g, "import:src/app.ts:react")
	assert.Equal(t, []string{"useState", "useEffect"}, named.Metadata.Parameters)

	_, bare := mustNode(t, g, "import:src/app.ts:./side-effect")
	assert.Nil(t, bare.Metadata.Parameters)

	// The node owns its copy
	pf.Imports[0].Items[0] = "changed"
	_, named = mustNode(t, g, "import:src/app.ts:react")
	assert.Equal(t, "useState", named.Metadata.Parameters[0])
}

func TestBuilder_FirstStemMatchWins(t *testing.T) {
	t.Parallel()

	g := Build(parseAll(t,
		source{"a/util.py", "python", ""},
		source{"b/util.js", "javascript", ""},
		source{"main.py", "python", "import util\n"},
	))

	importH, _ := mustNode(t, g, "import:main.py:util")
	first, _ := mustNode(t, g, "file:a/util.py")

	out := g.Outgoing(importH)
	require.Len(t, out, 1)
	assert.Equal(t, first, out[0].To)
}

func TestBuilder_UniqueIDs(t *testing.T) {
	t.Parallel()

	js := "import a from './x';\nimport b from './x';\nexport function render(p) {\n"
	g := Build(parseAll(t,
		source{"x.js", "javascript", js},
		source{"x.js", "javascript", js},
		source{"a.py", "python", examplePython},
	))

	seen := map[string]bool{}
	for _, n := range g.Nodes() {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}

	// Two function rules match the export line, two imports share a module,
	// and the whole file appears twice.
	for _, id := range []string{
		"file:x.js", "file:x.js#2",
		"import:x.js:./x", "import:x.js:./x#2", "import:x.js:./x#3", "import:x.js:./x#4",
		"function:x.js:render", "function:x.js:render#2", "function:x.js:render#3", "function:x.js:render#4",
	} {
		assert.True(t, seen[id], "missing id %s", id)
	}

	fh, ok := g.FileNode("x.js")
	require.True(t, ok)
	first, _ := g.NodeByID("file:x.js")
	assert.Equal(t, first, fh)
}

func TestBuilder_Containment(t *testing.T) {
	t.Parallel()

	g := Build(parseAll(t,
		source{"a.py", "python", examplePython + "def tail(q):\n    pass\n"},
		source{"w.js", "javascript", "class W extends B {\n  function m(a) {\n}\nfunction top() {\n"},
		source{"lib.rs", "rust", "use a;\npub struct S {}\nfn f() {}\n"},
		source{"blob.txt", "", "def fallback():\n"},
	))

	for h, n := range g.Nodes() {
		var contains []Edge
		for _, e := range g.Incoming(NodeHandle(h)) {
			if e.Type == EdgeContains {
				contains = append(contains, e)
			}
		}
		if n.Type == NodeFile {
			assert.Empty(t, contains, n.ID)
			continue
		}
		require.Len(t, contains, 1, n.ID)

		owner, _ := g.Node(contains[0].From)
		switch {
		case strings.HasPrefix(n.ID, "method:"):
			assert.Equal(t, NodeClass, owner.Type, n.ID)
		default:
			assert.Equal(t, NodeFile, owner.Type, n.ID)
			assert.Equal(t, n.FilePath, owner.FilePath, n.ID)
		}
	}

	_, ok := g.NodeByID("method:w.js:W:m")
	assert.True(t, ok)
	_, ok = g.NodeByID("function:w.js:top")
	assert.True(t, ok)
	_, ok = g.NodeByID("function:a.py:tail")
	assert.True(t, ok)
	_, ok = g.NodeByID("function:blob.txt:fallback")
	assert.True(t, ok)
}

func TestBuilder_ExportedFlag(t *testing.T) {
	t.Parallel()

	g := Build(parseAll(t,
		source{"w.js", "javascript", "export function render(a) {\nclass Widget {\n  function render(b) {\n}\nexport default Widget;\nfunction hidden() {\n"},
	))

	_, render := mustNode(t, g, "function:w.js:render")
	assert.True(t, render.Metadata.IsExported)

	_, widget := mustNode(t, g, "class:w.js:Widget")
	assert.True(t, widget.Metadata.IsExported)

	_, method := mustNode(t, g, "method:w.js:Widget:render")
	assert.False(t, method.Metadata.IsExported)

	_, hidden := mustNode(t, g, "function:w.js:hidden")
	assert.False(t, hidden.Metadata.IsExported)
}

func TestBuilder_Deterministic(t *testing.T) {
	t.Parallel()

	sources := []source{
		{"src/util.rs", "rust", "pub fn helper(a: i32) -> i32 {}\n"},
		{"src/main.rs", "rust", "use util;\nasync fn main() {}\n"},
		{"a.py", "python", examplePython},
	}

	first := Build(parseAll(t, sources...))
	second := Build(parseAll(t, sources...))

	assert.Equal(t, first.Nodes(), second.Nodes())
	assert.Equal(t, first.Data(), second.Data())
}

func TestBuilder_Empty(t *testing.T) {
	t.Parallel()

	g := Build(nil)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.Dangling())
	assert.Empty(t, g.Outgoing(0))

	_, ok := g.Node(0)
	assert.False(t, ok)
	_, ok = g.FileNode("missing")
	assert.False(t, ok)
}

func TestComplexity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, FunctionComplexity(extraction.Function{}))
	assert.Equal(t, 4, FunctionComplexity(extraction.Function{Parameters: []string{"a", "b"}, IsAsync: true}))

	assert.Equal(t, 0, ClassComplexity(extraction.Class{}))
	assert.Equal(t, 4, ClassComplexity(extraction.Class{
		Extends:    "Base",
		Implements: []string{"A", "B"},
		Methods:    []extraction.Function{{Name: "m"}},
	}))

	pf := &extraction.ParsedFile{
		Imports:   []extraction.Import{{Module: "a"}, {Module: "b"}},
		Functions: []extraction.Function{{Name: "f"}},
		Classes:   []extraction.Class{{Name: "C", Methods: []extraction.Function{{Name: "m"}, {Name: "n"}}}},
	}
	assert.Equal(t, 4, FileComplexity(pf))
}

type recordingProgress struct {
	started   int
	completed [2]int
}

func (r *recordingProgress) OnGraphBuildingStart(totalFiles int) { r.started = totalFiles }
func (r *recordingProgress) OnGraphBuildingComplete(nodeCount, edgeCount int, _ time.Duration) {
	r.completed = [2]int{nodeCount, edgeCount}
}

func TestBuilder_ReportsProgress(t *testing.T) {
	t.Parallel()

	progress := &recordingProgress{}
	g := NewBuilder(WithProgress(progress)).Build(parseAll(t, source{"a.py", "python", examplePython}))

	assert.Equal(t, 1, progress.started)
	assert.Equal(t, [2]int{g.NodeCount(), g.EdgeCount()}, progress.completed)
}
