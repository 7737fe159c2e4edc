package config

import (
	"path/filepath"

	"github.com/mvp-joe/project-examer/internal/indexer"
)

// ToIndexerConfig converts a Config to an indexer.Config.
// The rootDir parameter specifies the root directory of the project to analyze.
func (c *Config) ToIndexerConfig(rootDir string) *indexer.Config {
	return &indexer.Config{
		RootDir:          rootDir,
		IncludePatterns:  c.Paths.Include,
		IgnorePatterns:   c.Paths.Ignore,
		MaxFileSize:      c.Discovery.MaxFileSize,
		RespectGitignore: c.Discovery.RespectGitignore,
		Workers:          c.Parsing.Workers,
	}
}

// OutputDir resolves the output directory against rootDir unless it is absolute.
func (c *Config) OutputDir(rootDir string) string {
	if filepath.IsAbs(c.Output.Dir) {
		return c.Output.Dir
	}
	return filepath.Join(rootDir, c.Output.Dir)
}
