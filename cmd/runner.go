package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pixelpusher829/jammming/internal/auth"
	"github.com/pixelpusher829/jammming/internal/client"
	"github.com/pixelpusher829/jammming/internal/repositories"
	"github.com/pixelpusher829/jammming/internal/services"
	"github.com/pixelpusher829/jammming/internal/shared"
	"github.com/pixelpusher829/jammming/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	store   auth.Store
	manager *auth.Manager
	catalog services.Service
	drafts  *repositories.DraftRepository
	cache   *repositories.TrackCache
	engine  *tasks.SaveEngine

	ready bool
}

// RunnerOpts contains configuration options for creating a Runner.
// Nil fields are built from the loaded config on first use.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Store      auth.Store
	Manager    *auth.Manager
	Catalog    services.Service
	Drafts     *repositories.DraftRepository
	Engine     *tasks.SaveEngine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		manager:    opts.Manager,
		catalog:    opts.Catalog,
		drafts:     opts.Drafts,
		engine:     opts.Engine,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, playlistCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger and propagates it nowhere else;
// components built before the swap keep their original logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// init builds the dependency graph from configuration. Idempotent;
// fields injected through RunnerOpts are left alone.
func (r *Runner) init(configPath string) error {
	if r.ready {
		return nil
	}

	if r.config == nil {
		if _, err := os.Stat(configPath); err == nil {
			config, err := shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warn("failed to load config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
			r.config = config
		} else {
			r.config = shared.DefaultConfig()
		}
	}
	config := r.config

	if r.store == nil {
		switch config.Storage.Backend {
		case "memory":
			r.store = auth.NewMemoryStore()
		case "keyring":
			store, err := auth.NewKeyringStore(config.Storage.Path)
			if err != nil {
				return fmt.Errorf("failed to open keyring: %w", err)
			}
			r.store = store
		default:
			db, err := shared.NewDatabase(config.Storage.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			shared.ConfigureDatabase(db, config.Storage.MaxOpenConns, config.Storage.MaxIdleConns)
			if err := shared.RunMigrations(db); err != nil {
				db.Close()
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			r.db = db
			r.store = auth.NewSQLiteStore(db)
		}
	}

	if r.db != nil {
		if r.drafts == nil {
			r.drafts = repositories.NewDraftRepository(r.db)
		}
		if r.cache == nil {
			r.cache = repositories.NewTrackCache(r.db)
		}
	}

	if r.manager == nil {
		exchange := auth.NewExchangeClient(config.Auth.ExchangeURL, r.httpClient)
		r.manager = auth.NewManager(r.store, exchange, auth.LoginConfig{
			ClientID:    config.Credentials.Spotify.ClientID,
			RedirectURI: config.Credentials.Spotify.RedirectURI,
			Scopes:      config.Credentials.Spotify.Scopes,
		}, r.logger)
	}

	if r.catalog == nil {
		api := client.New(client.Opts{
			BaseURL:           config.API.BaseURL,
			HTTPClient:        r.httpClient,
			Tokens:            r.manager,
			RequestsPerSecond: config.API.RequestsPerSecond,
			Logger:            r.logger,
		})
		r.catalog = services.NewSpotifyService(api)
	}

	if r.engine == nil && r.drafts != nil {
		r.engine = tasks.NewSaveEngine(r.catalog, r.drafts)
	}

	r.ready = true
	return nil
}

// requireDrafts guards commands that need the sqlite-backed draft store.
func (r *Runner) requireDrafts() error {
	if r.drafts == nil {
		return fmt.Errorf("%w: draft storage requires storage.backend = \"sqlite\"", shared.ErrInvalidConfig)
	}
	return nil
}

// Close releases the database handle if the runner opened one.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
