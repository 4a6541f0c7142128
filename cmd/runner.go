package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tuneidx/internal/pipeline"
	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/desertthunder/tuneidx/internal/sink"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	logger    *log.Logger
	output    io.Writer
	transport http.RoundTripper

	// Injected in tests; built from config otherwise.
	sink pipeline.Sink
	db   *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	Output    io.Writer
	Transport http.RoundTripper
	Sink      pipeline.Sink
	DB        *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:    opts.Config,
		logger:    opts.Logger,
		output:    opts.Output,
		transport: opts.Transport,
		sink:      opts.Sink,
		db:        opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, runCommand, inspectCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openSink returns the injected sink or builds a bulk writer from config.
func (r *Runner) openSink() (pipeline.Sink, error) {
	if r.sink != nil {
		return r.sink, nil
	}

	client, err := sink.NewClient(r.config.Elasticsearch, r.logger, r.transport)
	if err != nil {
		return nil, err
	}
	return sink.NewWriter(client, r.config.Writer, r.logger), nil
}

// openDB returns the injected database or opens the history store from config.
// Callers own the returned closer; an injected database outlives the call.
func (r *Runner) openDB() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return db, func() { db.Close() }, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
