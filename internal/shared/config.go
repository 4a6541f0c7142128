package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library       LibraryConfig       `toml:"library"`
	Elasticsearch ElasticsearchConfig `toml:"elasticsearch"`
	Writer        WriterConfig        `toml:"writer"`
	Database      DatabaseConfig      `toml:"database"`
}

// LibraryConfig locates the music-library export to ingest.
type LibraryConfig struct {
	Path string `toml:"path"`
}

// ElasticsearchConfig contains document-store connection settings.
type ElasticsearchConfig struct {
	Endpoint string `toml:"endpoint"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// WriterConfig tunes the bulk sink writer.
type WriterConfig struct {
	BatchSize   int     `toml:"batch_size"`
	MaxAttempts int     `toml:"max_attempts"`
	BackoffMS   int     `toml:"backoff_ms"`
	NumWorkers  int     `toml:"num_workers"`
	RateLimit   float64 `toml:"rate_limit"`
	FailFast    bool    `toml:"fail_fast"`
}

// DatabaseConfig contains run-history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidInput)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
