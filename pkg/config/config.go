// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// FileNames are the config files Find looks for, in order.
var FileNames = []string{".parafs.yaml", ".parafs.yml", ".parafs.json", ".parafs.hcl"}

// 📚 Config represents the complete configuration
type Config struct {
	Concurrency int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
	Force       bool     `json:"force,omitempty" yaml:"force,omitempty" hcl:"force,optional"`
	Verify      bool     `json:"verify,omitempty" yaml:"verify,omitempty" hcl:"verify,optional"`
	Preserve    *bool    `json:"preserve,omitempty" yaml:"preserve,omitempty" hcl:"preserve,optional"`
	Progress    *bool    `json:"progress,omitempty" yaml:"progress,omitempty" hcl:"progress,optional"`
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	Journal     string   `json:"journal,omitempty" yaml:"journal,omitempty" hcl:"journal,optional"`
	MetricsFile string   `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" hcl:"metrics_file,optional"`

	location string
}

// DefaultConcurrency is the pool size used when none is configured.
func DefaultConcurrency() int {
	return runtime.NumCPU() * 2
}

// 🏭 Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// 🔍 Find returns the first config file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// 🔍 Validate checks the configuration and applies defaults
func (cfg *Config) Validate() error {
	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency()
	}

	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("exclude pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	if cfg.Preserve == nil {
		preserve := true
		cfg.Preserve = &preserve
	}

	// Clean up paths
	if cfg.Journal != "" {
		cfg.Journal = filepath.Clean(cfg.Journal)
	}
	if cfg.MetricsFile != "" {
		cfg.MetricsFile = filepath.Clean(cfg.MetricsFile)
	}

	return nil
}

// Location returns the file the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// ShouldPreserve reports whether metadata is copied.
func (cfg *Config) ShouldPreserve() bool {
	return cfg.Preserve == nil || *cfg.Preserve
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("concurrency=%d force=%t verify=%t preserve=%t exclude=%v",
		cfg.Concurrency, cfg.Force, cfg.Verify, cfg.ShouldPreserve(), cfg.Exclude)
}
