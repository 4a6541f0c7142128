package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/desertthunder/tuneidx/internal/sink"
	"github.com/urfave/cli/v3"
)

// loadConfigOrDefault resolves the --config flag, falling back to defaults
// when the file is absent or unreadable.
func (r *Runner) loadConfigOrDefault(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		return r.config
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		return r.config
	}
	return config
}

// SetupDatabase initializes the run-history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfigOrDefault(cmd)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupIndices creates the four target indices with their mappings.
func (r *Runner) SetupIndices(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfigOrDefault(cmd)
	recreate := cmd.Bool("recreate")
	attempts := cmd.Int("wait")

	client, err := sink.NewClient(config.Elasticsearch, r.logger, r.transport)
	if err != nil {
		return err
	}

	r.logger.Info("waiting for document store", "endpoint", config.Elasticsearch.Endpoint)
	if err := client.WaitUntilAvailable(ctx, attempts, 2*time.Second); err != nil {
		return err
	}

	if err := client.EnsureIndices(ctx, recreate); err != nil {
		return err
	}

	for _, index := range sink.Indices {
		r.writePlain("✓ %s\n", index)
	}
	r.logger.Info("indices ready", "recreated", recreate)
	return nil
}

// SetupConfig writes a config.toml template for editing.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	outputPath := cmd.String("output")

	if err := shared.CreateConfigFile(outputPath); err != nil {
		return err
	}

	r.writePlain("✓ Config template written to %s\n", outputPath)
	r.writePlain("Edit the library path and document store credentials, then run 'tuneidx setup indices'.\n")
	return nil
}
