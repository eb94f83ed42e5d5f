package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.UploadTimeout.Duration)
	assert.Equal(t, 15*time.Second, cfg.ReportTimeout.Duration)
	assert.Equal(t, 10, cfg.ExportTopN)
	assert.Equal(t, "127.0.0.1:8090", cfg.ListenAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://ats.example.com"
	cfg.ReportTimeout = Duration{30 * time.Second}
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base_url":"http://10.0.0.5:8080","upload_timeout":"90s"}`), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080", cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.UploadTimeout.Duration)
	assert.Equal(t, 15*time.Second, cfg.ReportTimeout.Duration)
}

func TestLoadFromInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"report_timeout":15}`), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://api.atssight.test")
	t.Setenv(EnvTokenPath, "/tmp/token.json")
	t.Setenv(EnvDownloadsDir, "/tmp/dl")
	t.Setenv(EnvListenAddr, ":9999")
	t.Setenv(EnvUploadTimeout, "2m")
	t.Setenv(EnvReportTimeout, "5s")
	t.Setenv(EnvExportTopN, "25")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "https://api.atssight.test", cfg.BaseURL)
	assert.Equal(t, "/tmp/token.json", cfg.TokenPath)
	assert.Equal(t, "/tmp/dl", cfg.DownloadsDir)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 2*time.Minute, cfg.UploadTimeout.Duration)
	assert.Equal(t, 5*time.Second, cfg.ReportTimeout.Duration)
	assert.Equal(t, 25, cfg.ExportTopN)
}

func TestApplyEnvInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"upload timeout", EnvUploadTimeout, "soon"},
		{"report timeout", EnvReportTimeout, "10"},
		{"top n", EnvExportTopN, "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			assert.Error(t, DefaultConfig().ApplyEnv())
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ATSSIGHT_BASE_URL=http://from-dotenv:8080\n"), 0600))

	t.Setenv(EnvBaseURL, "")
	os.Unsetenv(EnvBaseURL)
	require.NoError(t, LoadEnvFile(path))

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "http://from-dotenv:8080", cfg.BaseURL)

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, true},
		{"base url without scheme", func(c *Config) { c.BaseURL = "localhost:8080" }, true},
		{"ftp base url", func(c *Config) { c.BaseURL = "ftp://host" }, true},
		{"zero upload timeout", func(c *Config) { c.UploadTimeout = Duration{} }, true},
		{"negative report timeout", func(c *Config) { c.ReportTimeout = Duration{-time.Second} }, true},
		{"zero top n", func(c *Config) { c.ExportTopN = 0 }, true},
		{"missing gmail credentials", func(c *Config) { c.GmailCredentialsPath = "/does/not/exist.json" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
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
