package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigPath(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name      string
		path      string
		wantError string
	}{
		{
			name:      "empty path",
			path:      "",
			wantError: "empty config path",
		},
		{
			name:      "path too long",
			path:      strings.Repeat("a", maxPathLen) + ".json",
			wantError: "path too long",
		},
		{
			name:      "relative traversal",
			path:      "../../../outside.json",
			wantError: "path traversal not allowed",
		},
		{
			name:      "non-json extension",
			path:      "config.yaml",
			wantError: "only JSON config files allowed",
		},
		{
			name: "absolute json path",
			path: filepath.Join(tmpDir, "config.json"),
		},
		{
			name: "relative json path",
			path: "testdata/base.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestSafeReadFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := safeReadFile(filepath.Join(tmpDir, "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot stat")
	})

	t.Run("directory rejected", func(t *testing.T) {
		dirPath := filepath.Join(tmpDir, "dir.json")
		require.NoError(t, os.Mkdir(dirPath, 0755))

		_, err := safeReadFile(dirPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a regular file")
	})

	t.Run("oversized file rejected", func(t *testing.T) {
		bigPath := filepath.Join(tmpDir, "big.json")
		big := bytes.Repeat([]byte("a"), maxConfigSize+1)
		require.NoError(t, os.WriteFile(bigPath, big, 0644))

		_, err := safeReadFile(bigPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("valid file", func(t *testing.T) {
		goodPath := filepath.Join(tmpDir, "good.json")
		require.NoError(t, os.WriteFile(goodPath, []byte(`{"log": {}}`), 0644))

		data, err := safeReadFile(goodPath)
		require.NoError(t, err)
		assert.Equal(t, `{"log": {}}`, string(data))
	})
}

func TestSafeWriteFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("writes with restricted permissions", func(t *testing.T) {
		path := filepath.Join(tmpDir, "out.json")
		require.NoError(t, safeWriteFile(path, []byte(`{}`)))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("oversized data rejected", func(t *testing.T) {
		path := filepath.Join(tmpDir, "big-out.json")
		big := bytes.Repeat([]byte("a"), maxConfigSize+1)

		err := safeWriteFile(path, big)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("non-json path rejected", func(t *testing.T) {
		err := safeWriteFile(filepath.Join(tmpDir, "out.txt"), []byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only JSON config files allowed")
	})
}

func TestValidateJSONDepth(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantError string
	}{
		{
			name: "flat object",
			data: `{"server": {"addr": ":8080"}}`,
		},
		{
			name: "depth at limit",
			data: strings.Repeat("[", maxJSONDepth) + strings.Repeat("]", maxJSONDepth),
		},
		{
			name:      "depth over limit",
			data:      strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1),
			wantError: "nesting too deep",
		},
		{
			name:      "unbalanced close",
			data:      `}`,
			wantError: "unbalanced brackets",
		},
		{
			name:      "unclosed open",
			data:      `{"a": [1, 2`,
			wantError: "unclosed brackets",
		},
		{
			name: "brackets inside string",
			data: `{"a": "}{[["}`,
		},
		{
			name: "escaped quote inside string",
			data: `{"a": "\"}"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJSONDepth([]byte(tt.data))
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestValidateEnvVar(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError string
	}{
		{
			name:  "empty value allowed",
			value: "",
		},
		{
			name:  "normal value",
			value: ":9443",
		},
		{
			name:      "value too long",
			value:     strings.Repeat("x", maxEnvVarLen+1),
			wantError: "too long",
		},
		{
			name:      "null byte rejected",
			value:     "bad\x00value",
			wantError: "null byte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEnvVar("SCHEMASCOPE_TEST", tt.value)
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}
