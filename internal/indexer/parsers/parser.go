package parsers

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
	"github.com/mvp-joe/project-examer/internal/indexer/patterns"
	"github.com/viant/afs"
)

// Parser applies a pattern registry to source files. A Parser holds no
// mutable state; it is nevertheless meant to be owned by one worker.
type Parser struct {
	registry *patterns.Registry
	fs       afs.Service
}

// Option configures a Parser.
type Option func(*Parser)

// WithFileSystem sets the storage service used to read files.
func WithFileSystem(fs afs.Service) Option {
	return func(p *Parser) {
		p.fs = fs
	}
}

// NewParser creates a parser over the given registry.
func NewParser(registry *patterns.Registry, opts ...Option) *Parser {
	p := &Parser{registry: registry}
	for _, opt := range opts {
		opt(p)
	}
	if p.fs == nil {
		p.fs = afs.New()
	}
	return p
}

// ParseFile reads and parses the file described by rec. The only errors are
// read failures, including content that is not valid UTF-8.
func (p *Parser) ParseFile(ctx context.Context, rec extraction.FileRecord) (*extraction.ParsedFile, error) {
	location, err := filepath.Abs(rec.Path)
	if err != nil {
		return nil, &ReadError{Path: rec.Path, Err: err}
	}

	content, err := p.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, &ReadError{Path: rec.Path, Err: err}
	}
	if !utf8.Valid(content) {
		return nil, &ReadError{Path: rec.Path, Err: ErrInvalidEncoding}
	}

	return p.Parse(rec, content), nil
}

// Parse extracts facts from content. It never fails: text that matches no
// rule simply yields no facts.
func (p *Parser) Parse(rec extraction.FileRecord, content []byte) *extraction.ParsedFile {
	pf := &extraction.ParsedFile{
		File:      rec,
		Checksum:  Checksum(content),
		Imports:   []extraction.Import{},
		Exports:   []extraction.Export{},
		Functions: []extraction.Function{},
		Classes:   []extraction.Class{},
	}

	set := p.registry.Resolve(rec.Language)
	s := scanner{set: set, out: pf, class: -1}
	for i, line := range splitLines(string(content)) {
		s.scanLine(i+1, line)
	}

	return pf
}

// scanner carries the per-file state of a single pass: the output record and
// the most recent class declaration, used to attach indented functions as
// methods.
type scanner struct {
	set *patterns.Set
	out *extraction.ParsedFile

	class       int // index into out.Classes, -1 when no class is open
	classIndent int
}

func (s *scanner) scanLine(lineNo int, line string) {
	s.scanImports(lineNo, line)
	s.scanExports(lineNo, line)
	s.scanClasses(lineNo, line)
	s.scanFunctions(lineNo, line)
}

func (s *scanner) scanImports(lineNo int, line string) {
	for _, m := range s.set.Imports {
		match, ok := m.Find(line)
		if !ok {
			continue
		}
		module := strings.TrimSpace(match.Group(m.Module))
		if module == "" {
			continue
		}
		clause := strings.TrimSpace(match.Group(m.Items))
		s.out.Imports = append(s.out.Imports, extraction.Import{
			Module:    module,
			Items:     importItems(clause),
			IsDefault: m.DefaultClause && isDefaultClause(clause),
			Line:      lineNo,
		})
	}
}

func (s *scanner) scanExports(lineNo int, line string) {
	isDefault := strings.Contains(line, "default")
	for _, m := range s.set.Exports {
		match, ok := m.Find(line)
		if !ok {
			continue
		}
		names := []string{strings.TrimSpace(match.Group(m.Name))}
		if m.List {
			names = exportNames(match.Group(m.Name))
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			s.out.Exports = append(s.out.Exports, extraction.Export{
				Name:      name,
				IsDefault: isDefault,
				Line:      lineNo,
			})
		}
	}
}

func (s *scanner) scanClasses(lineNo int, line string) {
	for _, m := range s.set.Classes {
		match, ok := m.Find(line)
		if !ok {
			continue
		}
		name := match.Group(m.Name)
		if name == "" {
			continue
		}
		s.out.Classes = append(s.out.Classes, extraction.Class{
			Name:       name,
			Extends:    strings.TrimSpace(match.Group(m.Extends)),
			Implements: splitList(match.Group(m.Implements)),
			Methods:    []extraction.Function{},
			Line:       lineNo,
		})
		s.class = len(s.out.Classes) - 1
		s.classIndent = indentation(line)
	}
}

func (s *scanner) scanFunctions(lineNo int, line string) {
	isAsync := s.set.AsyncKeyword != "" && strings.Contains(line, s.set.AsyncKeyword)
	indent := indentation(line)

	for _, m := range s.set.Functions {
		match, ok := m.Find(line)
		if !ok {
			continue
		}
		name := match.Group(m.Name)
		if name == "" {
			continue
		}
		fn := extraction.Function{
			Name:       name,
			Parameters: splitParameters(match.Group(m.Params)),
			ReturnType: strings.TrimSpace(match.Group(m.Return)),
			Line:       lineNo,
			IsAsync:    isAsync,
		}

		if s.class >= 0 && indent > s.classIndent {
			c := &s.out.Classes[s.class]
			c.Methods = append(c.Methods, fn)
			continue
		}
		s.class = -1
		s.out.Functions = append(s.out.Functions, fn)
	}
}

// splitLines splits content into lines the way a text reader would: "\n"
// separated, trailing "\r" removed, no phantom line after a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// indentation is the width of the leading run of spaces and tabs.
func indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
