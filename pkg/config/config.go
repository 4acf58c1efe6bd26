package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/depscope/depscope/pkg/parser"
)

// Config holds all configuration options for depscope.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Languages maps file extensions (with leading dot) to language ids.
	Languages map[string]string `koanf:"languages"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig controls the scan pipeline.
type AnalysisConfig struct {
	// Workers bounds concurrent file analyses. 0 means 2x NumCPU.
	Workers int `koanf:"workers"`

	// Deterministic keeps graph node/edge order aligned with file
	// enumeration order regardless of worker completion order. Disabling
	// it trades reproducible output for slightly lower memory use.
	Deterministic bool `koanf:"deterministic"`

	// MaxFileSize skips files larger than this many bytes (0 = no limit).
	MaxFileSize int64 `koanf:"max_file_size"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// CacheConfig controls caching of per-file results between runs.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon, mermaid
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	langs := make(map[string]string)
	for ext, lang := range parser.DefaultExtensions() {
		langs[ext] = string(lang)
	}

	return &Config{
		Analysis: AnalysisConfig{
			Workers:       0,
			Deterministic: true,
			MaxFileSize:   0,
		},
		Languages: langs,
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".depscope",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".depscope/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// ExtensionTable converts the configured language map into a parser table.
func (c *Config) ExtensionTable() parser.ExtensionTable {
	if len(c.Languages) == 0 {
		return parser.DefaultExtensions()
	}
	table := make(parser.ExtensionTable, len(c.Languages))
	for ext, lang := range c.Languages {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		table[strings.ToLower(ext)] = parser.Language(lang)
	}
	return table
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var p koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		p = yaml.Parser()
	case ".json":
		p = json.Parser()
	default:
		p = toml.Parser()
	}

	if err := k.Load(file.Provider(path), p); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"depscope.toml",
		"depscope.yaml",
		"depscope.yml",
		"depscope.json",
		".depscope.toml",
		".depscope.yaml",
	}

	searchDirs := []string{".", ".depscope"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}
