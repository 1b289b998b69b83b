package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigValidatesFlags(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("DASHBOARD_API_BASE_URL", "")

	tests := []struct {
		name    string
		apiURL  string
		wantErr string
	}{
		{"no override", "", ""},
		{"valid override", "https://shop.example.com/api", ""},
		{"ftp scheme", "ftp://x", "scheme"},
		{"no host", "http:///api", "missing host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(missing, tt.apiURL, "")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.apiURL != "" {
				assert.Equal(t, tt.apiURL, cfg.API.BaseURL)
			}
		})
	}
}

func TestLoadConfigLogOverride(t *testing.T) {
	t.Setenv("DASHBOARD_API_BASE_URL", "")
	logFile := filepath.Join(t.TempDir(), "app.log")
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "config.yaml"), "", logFile)
	require.NoError(t, err)
	assert.Equal(t, logFile, cfg.Log.File)
}
