package config

// Config represents the complete examer configuration.
// It can be loaded from .examer/config.yml with environment variable overrides.
type Config struct {
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Parsing   ParsingConfig   `yaml:"parsing" mapstructure:"parsing"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for analyzed files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// DiscoveryConfig controls the directory walk.
type DiscoveryConfig struct {
	MaxFileSize      int64 `yaml:"max_file_size" mapstructure:"max_file_size"`         // bytes; larger files are skipped
	RespectGitignore bool  `yaml:"respect_gitignore" mapstructure:"respect_gitignore"` // honor the root .gitignore
}

// ParsingConfig controls the parallel parse phase.
type ParsingConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // 0 means one per CPU
}

// OutputConfig defines where analysis snapshots are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`       // relative to the analyzed root unless absolute
	JSON   bool   `yaml:"json" mapstructure:"json"`     // write code-graph.json
	SQLite bool   `yaml:"sqlite" mapstructure:"sqlite"` // append a run to examer.db
}

// DefaultOutputDir is the per-project directory holding config and snapshots.
const DefaultOutputDir = ".examer"

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.rs",
				"**/*.js",
				"**/*.ts",
				"**/*.tsx",
				"**/*.jsx",
				"**/*.py",
				"**/*.java",
				"**/*.go",
				"**/*.cpp",
				"**/*.c",
				"**/*.h",
				"**/*.md",
				"**/*.txt",
				"**/*.toml",
				"**/*.yaml",
				"**/*.yml",
				"**/*.json",
				"**/*.html",
				"**/*.css",
			},
			Ignore: []string{
				"node_modules/**",
				".git/**",
				"target/**",
				"build/**",
				"dist/**",
				"**/*.log",
				"**/.env",
				"**/.env.*",
				"**/*.min.js",
				"**/*.map",
				"**/test-*",
				"**/test_*",
			},
		},
		Discovery: DiscoveryConfig{
			MaxFileSize:      1024 * 1024,
			RespectGitignore: true,
		},
		Parsing: ParsingConfig{
			Workers: 0,
		},
		Output: OutputConfig{
			Dir:    DefaultOutputDir,
			JSON:   true,
			SQLite: true,
		},
	}
}
