package extraction

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileRecord describes a discovered source file. Owned by the caller and never
// modified by the parser.
type FileRecord struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Extension string `json:"extension,omitempty"` // lowercased, without the leading dot
	Language  string `json:"language,omitempty"`  // empty when not detected
}

// Stem returns the file name without its extension ("src/util.rs" -> "util").
func (r FileRecord) Stem() string {
	base := filepath.Base(r.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParsedFile holds the facts extracted from one file. It is a pure function of
// (content, language) and must be treated as read-only once returned.
type ParsedFile struct {
	File      FileRecord `json:"file_info"`
	Checksum  string     `json:"checksum"`
	Imports   []Import   `json:"imports"`
	Exports   []Export   `json:"exports"`
	Functions []Function `json:"functions"`
	Classes   []Class    `json:"classes"`
}

// Import is a single import/use/include statement.
type Import struct {
	Module    string   `json:"module"`
	Items     []string `json:"items"`
	IsDefault bool     `json:"is_default"`
	Line      int      `json:"line_number"`
}

// Export is a single exported name.
type Export struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	Line      int    `json:"line_number"`
}

// Function is a function or method declaration.
type Function struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters"`
	ReturnType string   `json:"return_type,omitempty"`
	Line       int      `json:"line_number"`
	IsAsync    bool     `json:"is_async"`
}

// Class is a class-like declaration (class, struct, enum, trait, interface).
type Class struct {
	Name       string     `json:"name"`
	Extends    string     `json:"extends,omitempty"`
	Implements []string   `json:"implements"`
	Methods    []Function `json:"methods"`
	Line       int        `json:"line_number"`
}

// HasSuperclass reports whether the class declares a superclass.
func (c Class) HasSuperclass() bool {
	return c.Extends != ""
}

// ImportModules returns the module names of all imports, in source order.
func (p *ParsedFile) ImportModules() []string {
	out := make([]string, 0, len(p.Imports))
	for _, imp := range p.Imports {
		out = append(out, imp.Module)
	}
	return out
}

// Dependencies is an alias of ImportModules kept for callers that think in
// terms of dependency names rather than import statements.
func (p *ParsedFile) Dependencies() []string {
	return p.ImportModules()
}

// FunctionNames returns the names of top-level functions.
func (p *ParsedFile) FunctionNames() []string {
	out := make([]string, 0, len(p.Functions))
	for _, fn := range p.Functions {
		out = append(out, fn.Name)
	}
	return out
}

// ClassNames returns the names of all classes.
func (p *ParsedFile) ClassNames() []string {
	out := make([]string, 0, len(p.Classes))
	for _, c := range p.Classes {
		out = append(out, c.Name)
	}
	return out
}

// IsExported reports whether any export of this file has exactly the given
// name. Scope is ignored.
func (p *ParsedFile) IsExported(name string) bool {
	for _, e := range p.Exports {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Summary renders the declaration counts, e.g. "3 functions, 1 classes, 2 imports".
func (p *ParsedFile) Summary() string {
	return fmt.Sprintf("%d functions, %d classes, %d imports",
		len(p.Functions), len(p.Classes), len(p.Imports))
}
