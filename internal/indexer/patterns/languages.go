package patterns

// Definition is the uncompiled rule table for one language.
type Definition struct {
	// AsyncKeyword is searched for anywhere on a function line. Empty means
	// the language has no async functions.
	AsyncKeyword string

	Imports   []Rule
	Exports   []Rule
	Functions []Rule
	Classes   []Rule
}

var javascript = Definition{
	AsyncKeyword: "async",
	Imports: []Rule{
		{Expr: `import\s+(.*?)\s+from\s+['"]([^'"]+)['"]`, Items: 1, Module: 2, DefaultClause: true},
		{Expr: `import\s+['"]([^'"]+)['"]`, Module: 1},
		{Expr: `const\s+(.*?)\s*=\s*require\s*\(\s*['"]([^'"]+)['"]`, Items: 1, Module: 2, DefaultClause: true},
	},
	Exports: []Rule{
		{Expr: `export\s+(function|class|const|let|var)\s+(\w+)`, Name: 2},
		{Expr: `export\s+default\s+(\w+)`, Name: 1},
		{Expr: `export\s*\{\s*([^}]+)\s*\}`, Name: 1, List: true},
	},
	Functions: []Rule{
		{Expr: `function\s+(\w+)\s*\(([^)]*)\)(?:\s*:\s*([^{]+))?`, Name: 1, Params: 2, Return: 3},
		{Expr: `(\w+)\s*:\s*function\s*\(([^)]*)\)`, Name: 1, Params: 2},
		{Expr: `(\w+)\s*=>\s*`, Name: 1},
		{Expr: `(async\s+)?function\s+(\w+)`, Name: 2},
	},
	Classes: []Rule{
		{Expr: `class\s+(\w+)(?:\s+extends\s+(\w+))?(?:\s+implements\s+([\w\s,]+))?`, Name: 1, Extends: 2, Implements: 3},
	},
}

var python = Definition{
	AsyncKeyword: "async",
	Imports: []Rule{
		{Expr: `from\s+([^\s]+)\s+import\s*(.*)`, Module: 1, Items: 2},
		{Expr: `import\s+([^\s,]+)`, Module: 1},
	},
	Exports: []Rule{
		{Expr: `__all__\s*=\s*\[([^\]]+)\]`, Name: 1, List: true},
	},
	Functions: []Rule{
		{Expr: `def\s+(\w+)\s*\(([^)]*)\)(?:\s*->\s*([^:]+))?`, Name: 1, Params: 2, Return: 3},
		{Expr: `async\s+def\s+(\w+)\s*\(([^)]*)\)`, Name: 1, Params: 2},
	},
	Classes: []Rule{
		{Expr: `class\s+(\w+)(?:\(([^)]+)\))?`, Name: 1, Extends: 2},
	},
}

var rust = Definition{
	AsyncKeyword: "async",
	Imports: []Rule{
		{Expr: `use\s+([^;]+);`, Module: 1},
		{Expr: `extern\s+crate\s+(\w+)`, Module: 1},
	},
	Exports: []Rule{
		{Expr: `pub\s+(fn|struct|enum|trait|mod)\s+(\w+)`, Name: 2},
	},
	Functions: []Rule{
		{Expr: `fn\s+(\w+)\s*\(([^)]*)\)(?:\s*->\s*([^{;]+))?`, Name: 1, Params: 2, Return: 3},
		{Expr: `pub\s+fn\s+(\w+)\s*\(([^)]*)\)`, Name: 1, Params: 2},
		{Expr: `async\s+fn\s+(\w+)`, Name: 1},
	},
	Classes: []Rule{
		{Expr: `struct\s+(\w+)`, Name: 1},
		{Expr: `enum\s+(\w+)`, Name: 1},
		{Expr: `trait\s+(\w+)`, Name: 1},
	},
}

var golang = Definition{
	Imports: []Rule{
		{Expr: `^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`, Module: 1},
		{Expr: `^\s+(?:[\w.]+\s+)?"([^"]+)"\s*$`, Module: 1},
	},
	Exports: []Rule{
		{Expr: `^func\s+(?:\([^)]*\)\s*)?([A-Z]\w*)`, Name: 1},
		{Expr: `^type\s+([A-Z]\w*)`, Name: 1},
	},
	Functions: []Rule{
		{Expr: `^func\s+(\w+)\s*\(([^)]*)\)`, Name: 1, Params: 2},
		{Expr: `^func\s+\([^)]*\)\s*(\w+)\s*\(([^)]*)\)`, Name: 1, Params: 2},
	},
	Classes: []Rule{
		{Expr: `^type\s+(\w+)\s+(?:struct|interface)`, Name: 1},
	},
}

var java = Definition{
	Imports: []Rule{
		{Expr: `import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`, Module: 1},
	},
	Exports: []Rule{
		{Expr: `public\s+(?:(?:static|final|abstract)\s+)*(?:class|interface|enum|record)\s+(\w+)`, Name: 1},
	},
	Functions: []Rule{
		{Expr: `(?:public|protected|private|static|final|abstract|synchronized)\s+[\w<>\[\]]+\s+(\w+)\s*\(([^)]*)\)`, Name: 1, Params: 2},
	},
	Classes: []Rule{
		{Expr: `(?:class|interface|enum)\s+(\w+)(?:\s+extends\s+(\w+))?(?:\s+implements\s+([\w\s,]+))?`, Name: 1, Extends: 2, Implements: 3},
	},
}

// fallback applies to files whose language has no entry, or no language at all.
var fallback = Definition{
	AsyncKeyword: "async",
	Imports: []Rule{
		{Expr: `import.*['"]([^'"]+)['"]`, Module: 1},
		{Expr: `#include\s*[<"]([^>"]+)[>"]`, Module: 1},
		{Expr: `require\s*\(['"]([^'"]+)['"]\)`, Module: 1},
	},
	Functions: []Rule{
		{Expr: `(function|def|fn)\s+(\w+)`, Name: 2},
	},
}

// builtin maps a language tag to its rule table. Adding a language is adding
// an entry here.
var builtin = map[string]Definition{
	"javascript": javascript,
	"typescript": javascript,
	"python":     python,
	"rust":       rust,
	"go":         golang,
	"java":       java,
}
