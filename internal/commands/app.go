package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyhq/tally/internal/activity"
	"github.com/tallyhq/tally/internal/categories"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/kv"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/logging"
)

// defaultDataDir is used under $HOME when no data directory is given.
const defaultDataDir = ".tally"

// app carries state shared by every subcommand of one invocation.
type app struct {
	v     *viper.Viper
	now   func() time.Time
	newID id.Generator

	dataDir    string
	configPath string
	cfgFound   bool
	cfg        *config.Config
	logger     *slog.Logger
}

func newApp() *app {
	return &app{
		v:     config.NewViper(),
		now:   time.Now,
		newID: id.New,
	}
}

// setup resolves the data directory, configuration and logger. It runs
// before every subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	dataDir := a.v.GetString(config.KeyDataDir)
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, defaultDataDir)
	}
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	a.dataDir = absDir

	a.configPath = a.v.GetString(config.KeyConfig)
	if a.configPath == "" {
		a.configPath = filepath.Join(a.dataDir, config.FileName)
	}

	cfg, found, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(a.v)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg, a.cfgFound = cfg, found

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logger = logger
	slog.SetDefault(logger)

	logger.Debug("configuration resolved",
		"data_dir", a.dataDir,
		"config", a.configPath,
		"config_found", found,
		"backend", cfg.Storage.Backend)
	return nil
}

// session is an opened expense ledger.
type session struct {
	store *ledger.Store
	cats  *categories.Set
	kv    kv.Store
}

func (s *session) Close() error {
	return s.kv.Close()
}

func (a *app) categories() (*categories.Set, error) {
	cats, err := categories.New(a.cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return cats, nil
}

func (a *app) open(ctx context.Context) (*session, error) {
	cats, err := a.categories()
	if err != nil {
		return nil, err
	}

	opts := a.cfg.KVOptions(a.dataDir)
	backend, err := kv.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", opts.Backend, err)
	}

	store, err := ledger.Open(ctx, backend, cats,
		ledger.WithClock(a.now),
		ledger.WithIDGenerator(a.newID),
		ledger.WithLogger(a.logger),
	)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return &session{store: store, cats: cats, kv: backend}, nil
}

// withSession opens the ledger for the duration of fn.
func (a *app) withSession(ctx context.Context, fn func(*session) error) error {
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			a.logger.Warn("closing storage", "error", err)
		}
	}()
	return fn(s)
}

// settle turns a persistence failure into a warning: the change was applied
// and its result is still printed, but it may be lost. Other errors pass through.
func settle(w io.Writer, err error) error {
	if errors.Is(err, ledger.ErrPersistenceUnavailable) {
		fmt.Fprintf(w, "warning: change not saved and may be lost on exit: %v\n", err)
		return nil
	}
	return err
}

// record appends entries to the activity log. Failures only warn.
func (a *app) record(w io.Writer, entries ...activity.Entry) {
	if err := activity.Append(a.dataDir, entries); err != nil {
		fmt.Fprintf(w, "warning: failed to write activity log: %v\n", err)
	}
}
