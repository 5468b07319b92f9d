package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
  "name": "tiny",
  "description": "Test configuration",
  "grid_size": 5,
  "players": [
    {"name": "A", "color": "#112233"},
    {"name": "B", "color": "#445566"}
  ],
  "messages": {
    "welcome": "Hi",
    "turn_skipped": "Player %d skipped",
    "victory": "Player %d wins",
    "stalemate": "Stalemate",
    "rejected": "No"
  }
}`

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateConfig_ShippedConfigs(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		result := validateConfig(file)
		assert.True(t, result.Valid, "%s: %v", result.File, result.Errors)
		assert.Empty(t, result.Warnings, result.File)
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "tiny.json", validJSON)

	result := validateConfig(path)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Info, "✓ Grid 5x5 with 3 lanes per player")
	assert.Contains(t, result.Info, "✓ Players: A vs B")
	assert.Contains(t, result.Info, "✓ 4 of 7 tokens start off board until a lane frees up")
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{name: "invalid json", file: "bad.json", content: `{"name": `, want: "Invalid JSON"},
		{name: "grid too small", file: "small.json", content: `{"name":"small","description":"d","grid_size":3}`, want: "grid_size must be between 5 and 25"},
		{name: "missing players", file: "solo.json", content: `{"name":"solo","description":"d","grid_size":7}`, want: "players must have exactly 2 entries"},
		{name: "bad file name", file: "has space.json", content: validJSON, want: "cannot be used as a configuration ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, t.TempDir(), tt.file, tt.content)
			result := validateConfig(path)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Failed to read file")
}

func TestValidateConfig_Warnings(t *testing.T) {
	content := `{
  "name": "other",
  "description": "Test configuration",
  "grid_size": 7,
  "grid_szie": 9,
  "players": [
    {"name": "A", "color": "#112233"},
    {"name": "B", "color": "#445566"}
  ],
  "messages": {
    "welcome": "Hi",
    "turn_skipped": "Player %d skipped",
    "victory": "Player %d wins",
    "stalemate": "Stalemate"
  }
}`
	path := writeTemp(t, t.TempDir(), "typo.json", content)

	result := validateConfig(path)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "grid_szie")
	assert.Contains(t, result.Warnings[1], "messages.rejected")
	assert.Contains(t, result.Warnings[2], `differs from the file ID "typo"`)
}

func TestValidateDir(t *testing.T) {
	var out bytes.Buffer
	ok, err := validateDir(&out, filepath.Join("..", "configs"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "classic.json")
	assert.Contains(t, out.String(), "✅ All configurations are valid!")

	dir := t.TempDir()
	writeTemp(t, dir, "tiny.json", validJSON)
	writeTemp(t, dir, "broken.json", "{")
	out.Reset()
	ok, err = validateDir(&out, dir)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "❌ INVALID")
	assert.Contains(t, out.String(), "❌ Some configurations have errors")

	_, err = validateDir(&out, t.TempDir())
	assert.Error(t, err)
}
