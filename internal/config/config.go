// Package config loads luabind project configuration.
//
// A project is configured by a luabind.yaml (or luabind.toml) file found in
// the working directory or one of its parents. The configuration only covers
// the output surface of a generation run; it never changes how individual
// declarations are bound.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level luabind.yaml configuration.
type Config struct {
	// OutputDir is where generated <module>_bindings.cpp files are written.
	// Relative paths are resolved against the config file's directory.
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// EmitIncludes controls the #include block at the top of each artifact.
	// Defaults to true.
	EmitIncludes *bool `yaml:"emit_includes,omitempty" toml:"emit_includes"`

	// WrapFunction wraps the body in register_<module>_bindings(sol::state_view).
	// Defaults to true.
	WrapFunction *bool `yaml:"wrap_function,omitempty" toml:"wrap_function"`

	// IndentWidth is the number of spaces per indentation level.
	IndentWidth int `yaml:"indent_width,omitempty" toml:"indent_width"`

	// EmitInheritance emits sol::base_classes for bases that are exported in
	// the same module. Off by default: a base that is not bound yet would make
	// the generated registration fail at load time.
	EmitInheritance bool `yaml:"emit_inheritance,omitempty" toml:"emit_inheritance"`

	// CacheDir holds the generation index. Relative to the config directory.
	CacheDir string `yaml:"cache_dir,omitempty" toml:"cache_dir"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `yaml:"-" toml:"-"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a luabind.yaml or luabind.toml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}
	cfg.Dir = dir
	return cfg, nil
}

// ParseConfig parses config content from bytes. The path extension selects
// the format (.toml is TOML, anything else YAML) and is used in error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up
// to parent directories. Returns "" and a nil error when none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.IndentWidth < 0 || c.IndentWidth > MaxIndentWidth {
		return fmt.Errorf("%s: indent_width must be between 1 and %d, got %d",
			path, MaxIndentWidth, c.IndentWidth)
	}
	if strings.ContainsRune(c.OutputDir, 0) || strings.ContainsRune(c.CacheDir, 0) {
		return fmt.Errorf("%s: paths must not contain NUL bytes", path)
	}
	if c.OutputDir != "" && c.CacheDir != "" && filepath.Clean(c.OutputDir) == filepath.Clean(c.CacheDir) {
		return fmt.Errorf("%s: output_dir and cache_dir must differ", path)
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.IndentWidth == 0 {
		c.IndentWidth = DefaultIndentWidth
	}
	if c.EmitIncludes == nil {
		c.EmitIncludes = boolPtr(true)
	}
	if c.WrapFunction == nil {
		c.WrapFunction = boolPtr(true)
	}
}

// IncludesEnabled reports whether include lines are emitted.
func (c *Config) IncludesEnabled() bool {
	return c.EmitIncludes == nil || *c.EmitIncludes
}

// WrapEnabled reports whether the registration wrapper is emitted.
func (c *Config) WrapEnabled() bool {
	return c.WrapFunction == nil || *c.WrapFunction
}

// OutputPath returns the absolute-or-relative output directory resolved
// against the config directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.OutputDir)
}

// CachePath returns the cache directory resolved against the config directory.
func (c *Config) CachePath() string {
	return c.resolve(c.CacheDir)
}

// OutputFile returns the artifact path for a module.
func (c *Config) OutputFile(module string) string {
	return filepath.Join(c.OutputPath(), module+OutputFileSuffix)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

func boolPtr(b bool) *bool { return &b }
