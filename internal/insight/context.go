// Package insight derives the textual analysis context handed to an external
// insight generator. It reads parsed facts only and never re-parses sources.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/viant/afs"

	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
)

// Context is the complete input for an insight collaborator.
type Context struct {
	Files         []FileContext          `json:"files"`
	Dependencies  []DependencyContext    `json:"dependencies"`
	Project       ProjectInfo            `json:"project_info"`
	Documentation []DocumentationContext `json:"documentation"`
}

// FileContext lists the declarations of one parsed file by name.
type FileContext struct {
	Path           string   `json:"path"`
	Language       string   `json:"language"`
	ContentSummary string   `json:"content_summary"`
	Functions      []string `json:"functions"`
	Classes        []string `json:"classes"`
	Imports        []string `json:"imports"`
}

// DependencyContext is one import statement seen as a file dependency. ToFile
// is the raw module string, resolved or not.
type DependencyContext struct {
	FromFile string  `json:"from_file"`
	ToFile   string  `json:"to_file"`
	Type     string  `json:"dependency_type"`
	Strength float64 `json:"strength"`
}

// ProjectInfo aggregates the discovered file set.
type ProjectInfo struct {
	Name       string   `json:"name"`
	TotalFiles int      `json:"total_files"`
	TotalSize  int64    `json:"total_size"`
	TotalLines int64    `json:"total_lines"` // estimated as total bytes / 50
	Languages  []string `json:"languages"`

	// File counts keyed by language tag and by extension. Files without a
	// detected language or extension are not counted.
	LanguageCounts  map[string]int `json:"language_distribution"`
	ExtensionCounts map[string]int `json:"extension_distribution"`
}

// DocumentationContext carries the text of a documentation-like file.
type DocumentationContext struct {
	Path     string `json:"path"`
	FileType string `json:"file_type"`
	Content  string `json:"content"`
	Summary  string `json:"summary"`
}

const (
	bytesPerLine       = 50
	summaryChars       = 500
	maxContentChars    = 8000
	contentHeadChars   = 4000
	contentTailChars   = 2000
	unknown            = "unknown"
	importDependency   = "import"
	defaultDepStrength = 1.0
)

var documentationLanguages = map[string]bool{
	"markdown": true,
	"text":     true,
	"json":     true,
	"yaml":     true,
	"toml":     true,
}

// Builder assembles a Context.
type Builder struct {
	fs     afs.Service
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithFileSystem sets the storage service used to read documentation files.
func WithFileSystem(fs afs.Service) Option {
	return func(b *Builder) {
		b.fs = fs
	}
}

// WithLogger sets the logger for unreadable documentation files.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a context builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if b.fs == nil {
		b.fs = afs.New()
	}
	return b
}

// Build derives the context for a project rooted at rootDir from the
// discovered files and their parsed facts.
func (b *Builder) Build(ctx context.Context, rootDir string, files []extraction.FileRecord, parsed []*extraction.ParsedFile) *Context {
	c := &Context{
		Files:         make([]FileContext, 0, len(parsed)),
		Dependencies:  []DependencyContext{},
		Project:       Project(rootDir, files),
		Documentation: b.documentation(ctx, files),
	}

	for _, pf := range parsed {
		c.Files = append(c.Files, NewFileContext(pf))
		for _, imp := range pf.Imports {
			c.Dependencies = append(c.Dependencies, DependencyContext{
				FromFile: pf.File.Path,
				ToFile:   imp.Module,
				Type:     importDependency,
				Strength: defaultDepStrength,
			})
		}
	}

	return c
}

// NewFileContext projects a parsed file into its name lists.
func NewFileContext(pf *extraction.ParsedFile) FileContext {
	lang := pf.File.Language
	if lang == "" {
		lang = unknown
	}
	return FileContext{
		Path:           pf.File.Path,
		Language:       lang,
		ContentSummary: pf.Summary(),
		Functions:      pf.FunctionNames(),
		Classes:        pf.ClassNames(),
		Imports:        pf.ImportModules(),
	}
}

// Project aggregates the discovered files. Languages are distinct and sorted.
func Project(rootDir string, files []extraction.FileRecord) ProjectInfo {
	info := ProjectInfo{
		Name:            projectName(rootDir),
		TotalFiles:      len(files),
		Languages:       []string{},
		LanguageCounts:  make(map[string]int),
		ExtensionCounts: make(map[string]int),
	}

	for _, f := range files {
		info.TotalSize += f.Size
		if f.Language != "" {
			if info.LanguageCounts[f.Language] == 0 {
				info.Languages = append(info.Languages, f.Language)
			}
			info.LanguageCounts[f.Language]++
		}
		if f.Extension != "" {
			info.ExtensionCounts[f.Extension]++
		}
	}
	sort.Strings(info.Languages)
	info.TotalLines = info.TotalSize / bytesPerLine

	return info
}

func projectName(rootDir string) string {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		abs = rootDir
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return unknown
	}
	return name
}

func (b *Builder) documentation(ctx context.Context, files []extraction.FileRecord) []DocumentationContext {
	docs := []DocumentationContext{}
	for _, f := range files {
		if !documentationLanguages[f.Language] {
			continue
		}
		location, err := filepath.Abs(f.Path)
		if err != nil {
			location = f.Path
		}
		data, err := b.fs.DownloadWithURL(ctx, location)
		if err != nil || !utf8.Valid(data) {
			b.logger.Warn("could not read documentation file", "path", f.Path, "error", err)
			continue
		}
		content := string(data)
		docs = append(docs, DocumentationContext{
			Path:     f.Path,
			FileType: f.Language,
			Content:  truncateContent(content),
			Summary:  summarize(content),
		})
	}
	return docs
}

func summarize(content string) string {
	n := utf8.RuneCountInString(content)
	if n <= summaryChars {
		return content
	}
	return fmt.Sprintf("%s... (%d characters total)", headRunes(content, summaryChars), n)
}

// truncateContent keeps the head and tail of very long documents.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= maxContentChars {
		return content
	}
	head := string(runes[:contentHeadChars])
	tail := string(runes[len(runes)-contentTailChars:])
	return fmt.Sprintf("%s...\n\n[FILE TRUNCATED - %d total characters]\n\n...%s", head, len(runes), tail)
}

func headRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
