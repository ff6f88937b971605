// Package config loads compiler and runner settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gobasic/pkg/compiler"
)

// Config is the root of gobasic.yaml.
type Config struct {
	Optimize OptimizeConfig `yaml:"optimize"`
	Codegen  CodegenConfig  `yaml:"codegen"`
	Run      RunConfig      `yaml:"run"`
}

// OptimizeConfig switches individual passes on or off.
type OptimizeConfig struct {
	ConstantFolding bool `yaml:"constant_folding"`
	DeadCode        bool `yaml:"dead_code"`
	UnusedLabels    bool `yaml:"unused_labels"`
}

// CodegenConfig controls the shape of the emitted JavaScript.
type CodegenConfig struct {
	PrintZone string `yaml:"print_zone"` // text emitted for a "," in PRINT
	Indent    string `yaml:"indent"`
}

// RunConfig controls in-process execution.
type RunConfig struct {
	Timeout string `yaml:"timeout"` // Go duration; "0" or empty means no limit
	Force   bool   `yaml:"force"`   // run even when diagnostics were reported
}

// Defaults returns a Config with every pass enabled and a 10 second run limit.
func Defaults() *Config {
	gen := compiler.DefaultGenOptions()
	return &Config{
		Optimize: OptimizeConfig{
			ConstantFolding: true,
			DeadCode:        true,
			UnusedLabels:    true,
		},
		Codegen: CodegenConfig{
			PrintZone: gen.PrintZone,
			Indent:    gen.Indent,
		},
		Run: RunConfig{
			Timeout: "10s",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values yaml cannot check by itself.
func (c *Config) Validate() error {
	if _, err := c.RunTimeout(); err != nil {
		return err
	}
	if c.Codegen.Indent == "" {
		return fmt.Errorf("codegen.indent must not be empty")
	}
	return nil
}

// RunTimeout parses run.timeout. Zero means no limit.
func (c *Config) RunTimeout() (time.Duration, error) {
	if c.Run.Timeout == "" || c.Run.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Run.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid run.timeout %q: %w", c.Run.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("run.timeout must not be negative, got %s", d)
	}
	return d, nil
}

// CompilerOptions converts the settings into compiler options.
func (c *Config) CompilerOptions() compiler.Options {
	return compiler.Options{
		Pipeline: compiler.Pipeline{
			ConstantFolding: c.Optimize.ConstantFolding,
			DeadCode:        c.Optimize.DeadCode,
			UnusedLabels:    c.Optimize.UnusedLabels,
		},
		Gen: compiler.GenOptions{
			PrintZone: c.Codegen.PrintZone,
			Indent:    c.Codegen.Indent,
		},
	}
}
