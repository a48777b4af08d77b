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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_config",
			file: ".parafs.yaml",
			config: `
concurrency: 16
force: true
verify: true
preserve: false
exclude:
  - "**/.git"
  - "*.swp"
journal: ./runs/../journal.db
metrics_file: /tmp/parafs.prom
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 16, cfg.Concurrency, "concurrency should match")
				assert.True(t, cfg.Force, "force should be set")
				assert.True(t, cfg.Verify, "verify should be set")
				assert.False(t, cfg.ShouldPreserve(), "preserve should be off")
				assert.Equal(t, []string{"**/.git", "*.swp"}, cfg.Exclude)
				assert.Equal(t, "journal.db", cfg.Journal, "journal path should be cleaned")
				assert.Equal(t, "/tmp/parafs.prom", cfg.MetricsFile)
				assert.Nil(t, cfg.Progress, "progress stays automatic")
			},
		},
		{
			name:   "empty_yaml_uses_defaults",
			file:   ".parafs.yml",
			config: ``,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConcurrency(), cfg.Concurrency)
				assert.True(t, cfg.ShouldPreserve())
				assert.False(t, cfg.Force)
			},
		},
		{
			name: "json_config",
			file: ".parafs.json",
			config: `{
  "concurrency": 4,
  "progress": true,
  "exclude": ["node_modules"]
}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4, cfg.Concurrency)
				require.NotNil(t, cfg.Progress)
				assert.True(t, *cfg.Progress)
				assert.Equal(t, []string{"node_modules"}, cfg.Exclude)
			},
		},
		{
			name:   "blank_json_uses_defaults",
			file:   ".parafs.json",
			config: "\n  \n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConcurrency(), cfg.Concurrency)
				assert.True(t, cfg.ShouldPreserve())
			},
		},
		{
			name:        "json_with_trailing_object",
			file:        ".parafs.json",
			config:      `{"force": true} {"force": false}`,
			wantErr:     true,
			errContains: "unexpected data after the config object",
		},
		{
			name: "hcl_config",
			file: ".parafs.hcl",
			config: `
concurrency = 8
force       = true
exclude     = ["**/*.tmp"]
journal     = "${env.PARAFS_TEST_DIR}/journal.db"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.Concurrency)
				assert.True(t, cfg.Force)
				assert.Equal(t, []string{"**/*.tmp"}, cfg.Exclude)
				assert.Equal(t, "/srv/parafs/journal.db", cfg.Journal, "env variables are available")
			},
		},
		{
			name: "hcl_package_example",
			file: ".parafs.hcl",
			config: `
concurrency = 32
force       = true
exclude     = [".git", "*.swp"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 32, cfg.Concurrency)
				assert.True(t, cfg.Force)
				assert.Equal(t, []string{".git", "*.swp"}, cfg.Exclude)
			},
		},
		{
			name:        "unknown_yaml_field",
			file:        ".parafs.yaml",
			config:      "concurency: 3\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			file:        ".parafs.json",
			config:      `{"threads": 3}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "unknown_hcl_field",
			file:        ".parafs.hcl",
			config:      `threads = 3`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:        "negative_concurrency",
			file:        ".parafs.yaml",
			config:      "concurrency: -1\n",
			wantErr:     true,
			errContains: "concurrency must be positive",
		},
		{
			name:        "bad_exclude_pattern",
			file:        ".parafs.yaml",
			config:      "exclude: ['[']\n",
			wantErr:     true,
			errContains: "exclude pattern",
		},
		{
			name:        "unsupported_extension",
			file:        "parafs.toml",
			config:      "concurrency = 1",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PARAFS_TEST_DIR", "/srv/parafs")
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644))

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err, "Load should fail")
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains, "error message should match")
				}
				return
			}

			require.NoError(t, err, "Load should succeed")
			assert.Equal(t, path, cfg.Location())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	_, err := Load(ctx, filepath.Join(t.TempDir(), ".parafs.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	_, ok := Find(dir)
	assert.False(t, ok, "no config file yet")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".parafs.hcl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".parafs.json"), nil, 0o644))

	path, ok := Find(dir)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, ".parafs.json"), path, "json is preferred over hcl")

	require.NoError(t, os.Mkdir(filepath.Join(dir, ".parafs.yaml"), 0o755))
	path, _ = Find(dir)
	assert.Equal(t, filepath.Join(dir, ".parafs.json"), path, "directories are skipped")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultConcurrency(), cfg.Concurrency)
	assert.GreaterOrEqual(t, cfg.Concurrency, 2)
	assert.True(t, cfg.ShouldPreserve())
	assert.Empty(t, cfg.Location())
	assert.Contains(t, cfg.String(), "preserve=true")
}
