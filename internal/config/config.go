// Package config loads fixdocs settings from a YAML file, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".fixdocs.yaml"

// Config holds all fixdocs configuration.
type Config struct {
	OutputDir  string `yaml:"output_dir"`
	PDFDir     string `yaml:"pdf_dir"`
	Workers    int    `yaml:"workers"`
	GitHubBase string `yaml:"github_base"`

	// SectionAnchors maps a section page name to its README.md anchor.
	SectionAnchors map[string]string `yaml:"section_anchors"`

	Boilerplate  BoilerplateConfig `yaml:"boilerplate"`
	ReflowTables bool              `yaml:"reflow_tables"`

	PDF PDFConfig `yaml:"pdf"`
}

// BoilerplateConfig lists export chrome to strip from documents.
type BoilerplateConfig struct {
	Inline       []string `yaml:"inline"`
	LinePrefixes []string `yaml:"line_prefixes"`
}

// PDFConfig configures pandoc and mermaid-cli.
type PDFConfig struct {
	Engine    string `yaml:"engine"`
	MainFont  string `yaml:"main_font"`
	MonoFont  string `yaml:"mono_font"`
	FontSize  string `yaml:"font_size"`
	Margin    string `yaml:"margin"`
	TOCDepth  int    `yaml:"toc_depth"`
	WrapWidth int    `yaml:"wrap_width"` // code lines longer than this are hard-wrapped
	Pandoc    string `yaml:"pandoc"`
	Mmdc      string `yaml:"mmdc"`
}

// DefaultSectionAnchors returns the section pages that exports link to
// instead of the README anchor.
func DefaultSectionAnchors() map[string]string {
	return map[string]string{
		"Networking Section":          "networking-configuration",
		"Virtual Environment Section": "virtual-environment-setup",
		"Module Import Section":       "module-import-issues",
		"WSL.exe Section":             "wslexe-issues",
		"Path Translation Section":    "path-translation-issues",
		"Performance Section":         "performance-optimization",
		"Line Ending Section":         "line-ending-issues",
		"Distribution Section":        "distribution-selection",
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:      "./output",
		PDFDir:         "./output-pdf",
		Workers:        4,
		GitHubBase:     "https://github.com",
		SectionAnchors: DefaultSectionAnchors(),
		Boilerplate: BoilerplateConfig{
			Inline:       []string{"Link copied!"},
			LinePrefixes: []string{"Ask Devin about"},
		},
		PDF: PDFConfig{
			Engine:    "xelatex",
			MainFont:  "Helvetica",
			MonoFont:  "Menlo",
			FontSize:  "11pt",
			Margin:    "1in",
			TOCDepth:  2,
			WrapWidth: 100,
			Pandoc:    "pandoc",
			Mmdc:      "mmdc",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FIXDOCS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FIXDOCS_WORKERS %q: %w", v, err)
		}
		c.Workers = n
	}
	if v := os.Getenv("FIXDOCS_GITHUB_BASE"); v != "" {
		c.GitHubBase = v
	}
	if v := os.Getenv("FIXDOCS_PDF_WRAP_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FIXDOCS_PDF_WRAP_WIDTH %q: %w", v, err)
		}
		c.PDF.WrapWidth = n
	}
	if v := os.Getenv("FIXDOCS_MMDC"); v != "" {
		c.PDF.Mmdc = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.PDF.WrapWidth < 20 {
		return fmt.Errorf("pdf.wrap_width must be at least 20, got %d", c.PDF.WrapWidth)
	}
	return nil
}
