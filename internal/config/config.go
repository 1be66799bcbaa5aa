// Package config loads and validates the site configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Templates TemplatesConfig `yaml:"templates"`
	Assets    AssetsConfig    `yaml:"assets"`
	Output    OutputConfig    `yaml:"output"`
	Pages     []Page          `yaml:"pages"`
	Deploy    *DeployConfig   `yaml:"deploy,omitempty"`

	// path the config was loaded from; used to resolve relative directories
	// and by the watch loop to re-read on change.
	path string
}

// SiteConfig holds the copy injected into every template.
type SiteConfig struct {
	Title      string            `yaml:"title"`
	Phone      string            `yaml:"phone,omitempty"`
	PhoneLink  string            `yaml:"phone_link,omitempty"`
	Address    string            `yaml:"address,omitempty"`
	Hero       HeroConfig        `yaml:"hero,omitempty"`
	Menu       []MenuItem        `yaml:"menu,omitempty"`
	Services   []Service         `yaml:"services,omitempty"`
	Specialist *Specialist       `yaml:"specialist,omitempty"`
	Strings    map[string]string `yaml:"strings,omitempty"` // free-form extra copy
}

// HeroConfig holds the hero banner copy.
type HeroConfig struct {
	Title    string `yaml:"title,omitempty"`
	Subtitle string `yaml:"subtitle,omitempty"`
}

// MenuItem represents a navigation entry.
type MenuItem struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Service represents one service page entry. Summary may contain markdown.
type Service struct {
	Title   string `yaml:"title"`
	Slug    string `yaml:"slug"`
	Summary string `yaml:"summary,omitempty"`
}

// Specialist holds the practitioner details. Bio may contain markdown.
type Specialist struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title,omitempty"`
	Bio   string `yaml:"bio,omitempty"`
}

// TemplatesConfig points at the template source directory.
type TemplatesConfig struct {
	Directory string `yaml:"directory"`
}

// AssetsConfig points at the static asset directory. Empty means no assets step.
type AssetsConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// Page maps a template to its rendered output path relative to the output directory.
type Page struct {
	Template string `yaml:"template"`
	Output   string `yaml:"output"`
}

// DeployConfig holds deploy defaults. Environment variables take precedence;
// see Target.FromEnv.
type DeployConfig struct {
	Bucket         string `yaml:"bucket,omitempty"`
	Prefix         string `yaml:"prefix,omitempty"`
	DistributionID string `yaml:"cloudfront_distribution,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 - path comes from the CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.path = configPath
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Templates.Directory == "" {
		c.Templates.Directory = "templates"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "dist"
	}
}

// Validate checks the configuration for problems that would make a build fail
// half-way instead of up front.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return fmt.Errorf("site.title is required")
	}
	if len(c.Pages) == 0 {
		return fmt.Errorf("at least one page must be configured")
	}
	seen := make(map[string]string, len(c.Pages))
	for i, p := range c.Pages {
		if p.Template == "" {
			return fmt.Errorf("pages[%d]: template is required", i)
		}
		if p.Output == "" {
			return fmt.Errorf("pages[%d]: output is required", i)
		}
		clean := filepath.Clean(p.Output)
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("pages[%d]: output %q escapes the output directory", i, p.Output)
		}
		if prev, ok := seen[clean]; ok {
			return fmt.Errorf("pages[%d]: output %q already produced by template %q", i, p.Output, prev)
		}
		seen[clean] = p.Template
	}
	return nil
}

// Path returns the file path the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// TemplatesDir returns the template directory resolved against the config file location.
func (c *Config) TemplatesDir() string { return c.resolve(c.Templates.Directory) }

// AssetsDir returns the asset directory resolved against the config file location,
// or the empty string when assets are not configured.
func (c *Config) AssetsDir() string {
	if c.Assets.Directory == "" {
		return ""
	}
	return c.resolve(c.Assets.Directory)
}

// OutputDir returns the output directory resolved against the config file location.
func (c *Config) OutputDir() string { return c.resolve(c.Output.Directory) }

func (c *Config) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) || c.path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(c.path), dir)
}
