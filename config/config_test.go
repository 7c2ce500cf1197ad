package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultSafetyMargin, cfg.SafetyMargin)
	assert.Equal(t, DefaultTruncationMarker, cfg.TruncationMarker)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "contextfit.toml", `
safety_margin = 0.8
message_overhead_tokens = 6
prioritization = ["lsp-definition", "diff", "lsp-reference", "embedding"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.SafetyMargin)
	assert.Equal(t, 6, cfg.MessageOverheadTokens)
	assert.Equal(t, []string{"lsp-definition", "diff", "lsp-reference", "embedding"}, cfg.Prioritization)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultCharsPerToken, cfg.CharsPerToken)
	assert.Equal(t, DefaultSnippetSeparator, cfg.SnippetSeparator)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "contextfit.yaml", `
safety_margin: 0.75
min_partial_tokens: 80
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.SafetyMargin)
	assert.Equal(t, 80, cfg.MinPartialTokens)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeFile(t, "broken.toml", "safety_margin = [not toml")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults pass",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "safety margin of one rejected",
			mutate:  func(c *Config) { c.SafetyMargin = 1.0 },
			wantErr: true,
		},
		{
			name:    "negative safety margin rejected",
			mutate:  func(c *Config) { c.SafetyMargin = -0.5 },
			wantErr: true,
		},
		{
			name:    "chars per token below one rejected",
			mutate:  func(c *Config) { c.CharsPerToken = 0.5 },
			wantErr: true,
		},
		{
			name:    "negative message overhead rejected",
			mutate:  func(c *Config) { c.MessageOverheadTokens = -1 },
			wantErr: true,
		},
		{
			name:    "zero floors normalize to defaults",
			mutate:  func(c *Config) { c.MinPartialTokens = 0; c.MinTinyTokens = 0 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Prioritization(t *testing.T) {
	tests := []struct {
		name    string
		order   []string
		wantErr bool
	}{
		{
			name:  "full permutation accepted",
			order: []string{"embedding", "diff", "lsp-reference", "lsp-definition"},
		},
		{
			name:    "unknown type rejected",
			order:   []string{"diff", "lsp-definition", "lsp-reference", "comments"},
			wantErr: true,
		},
		{
			name:    "duplicate rejected",
			order:   []string{"diff", "diff", "lsp-reference", "embedding"},
			wantErr: true,
		},
		{
			name:    "incomplete order rejected",
			order:   []string{"diff", "embedding"},
			wantErr: true,
		},
		{
			name:  "empty means default",
			order: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Prioritization = tt.order
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchema(t *testing.T) {
	schema := Schema()
	require.NotNil(t, schema)

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(data), "safety_margin")
	assert.Contains(t, string(data), "prioritization")
}

func TestWatch_DeliversInitialConfig(t *testing.T) {
	path := writeFile(t, "contextfit.toml", "safety_margin = 0.8\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := Watch(ctx, path)
	require.NoError(t, err)

	select {
	case cfg := <-updates:
		require.NotNil(t, cfg)
		assert.Equal(t, 0.8, cfg.SafetyMargin)
	case <-time.After(time.Second):
		t.Fatal("initial config not delivered")
	}
}

func TestWatch_InvalidFile(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
