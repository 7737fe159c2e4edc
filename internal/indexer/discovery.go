package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/mvp-joe/project-examer/internal/indexer/extraction"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery walks a directory tree and produces file records for the
// parse phase, applying include/ignore globs, the root .gitignore and a
// size limit.
type FileDiscovery struct {
	rootDir          string
	includePatterns  []compiledPattern
	ignorePatterns   []compiledPattern
	maxFileSize      int64
	respectGitignore bool
	gitignore        *ignore.GitIgnore
	logger           *slog.Logger
}

// DiscoveryOption configures a FileDiscovery.
type DiscoveryOption func(*FileDiscovery)

// WithMaxFileSize skips files larger than n bytes. Zero or less disables the limit.
func WithMaxFileSize(n int64) DiscoveryOption {
	return func(fd *FileDiscovery) {
		fd.maxFileSize = n
	}
}

// WithGitignore enables matching against the .gitignore at the root.
func WithGitignore(enabled bool) DiscoveryOption {
	return func(fd *FileDiscovery) {
		fd.respectGitignore = enabled
	}
}

// WithDiscoveryLogger sets the logger for skipped entries.
func WithDiscoveryLogger(logger *slog.Logger) DiscoveryOption {
	return func(fd *FileDiscovery) {
		fd.logger = logger
	}
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string, opts ...DiscoveryOption) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(fd)
	}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	if fd.respectGitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore"))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .gitignore: %w", err)
		}
		fd.gitignore = gi
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Discover walks the root and returns one record per matching file, in
// lexical path order.
func (fd *FileDiscovery) Discover() ([]extraction.FileRecord, error) {
	files := []extraction.FileRecord{}

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && fd.shouldIgnore(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || fd.shouldIgnore(relPath, false) {
			return nil
		}

		if !fd.matchesAnyPattern(relPath, fd.includePatterns) {
			return nil
		}

		if fd.maxFileSize > 0 && info.Size() > fd.maxFileSize {
			fd.logger.Debug("skipping large file", "path", relPath, "size", info.Size())
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		files = append(files, extraction.FileRecord{
			Path:      path,
			Size:      info.Size(),
			Extension: ext,
			Language:  DetectLanguage(ext),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", fd.rootDir, err)
	}

	return files, nil
}

// shouldIgnore checks if a path matches any ignore pattern or the gitignore.
func (fd *FileDiscovery) shouldIgnore(relPath string, isDir bool) bool {
	// Always ignore our own output directory
	if strings.HasPrefix(relPath, ".examer/") || relPath == ".examer" {
		return true
	}

	if fd.gitignore != nil {
		candidate := relPath
		if isDir {
			candidate += "/"
		}
		if fd.gitignore.MatchesPath(candidate) {
			return true
		}
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A root-level file (no slash) also matches patterns with the **/ prefix
	// removed, so "**/*.md" matches both "README.md" and "docs/guide.md".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
