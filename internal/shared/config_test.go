package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Library.Path != "" {
			t.Errorf("library path must default to empty so run requires an explicit path, got %q", config.Library.Path)
		}

		if config.Database.Path != "tuneidx.db" {
			t.Errorf("expected database path tuneidx.db, got %s", config.Database.Path)
		}

		if config.Elasticsearch.Endpoint != "http://localhost:9200" {
			t.Errorf("expected endpoint http://localhost:9200, got %s", config.Elasticsearch.Endpoint)
		}

		if config.Writer.BatchSize != 500 {
			t.Errorf("expected batch size 500, got %d", config.Writer.BatchSize)
		}

		if config.Writer.MaxAttempts != 4 {
			t.Errorf("expected max attempts 4, got %d", config.Writer.MaxAttempts)
		}

		if config.Writer.FailFast {
			t.Error("fail_fast should default to false")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[library]
path = "/exports/Library.xml"

[elasticsearch]
endpoint = "https://search.example.com:9200"
username = "ingest"
password = "secret"

[writer]
batch_size = 250
max_attempts = 6
backoff_ms = 1000
num_workers = 8
rate_limit = 5.0
fail_fast = true

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Library.Path != "/exports/Library.xml" {
			t.Errorf("expected library path /exports/Library.xml, got %s", config.Library.Path)
		}

		if config.Elasticsearch.Endpoint != "https://search.example.com:9200" {
			t.Errorf("expected custom endpoint, got %s", config.Elasticsearch.Endpoint)
		}

		if config.Elasticsearch.Username != "ingest" || config.Elasticsearch.Password != "secret" {
			t.Error("basic auth credentials not loaded")
		}

		if config.Writer.BatchSize != 250 || !config.Writer.FailFast {
			t.Errorf("writer config not loaded: %+v", config.Writer)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("LoadConfig Malformed TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("[library\npath ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for malformed config")
		}
	})
}
