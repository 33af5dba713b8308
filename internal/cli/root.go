package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// RootOptions holds global flags and the environment of every command.
type RootOptions struct {
	LogLevel string

	// LoadConfig is config.LoadConfig outside of tests.
	LoadConfig func() (*config.Config, error)
}

// NewRootCommand creates the foodgramctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.LoadConfig})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "foodgramctl",
		Short:         "Foodgram administration",
		Long:          "Administrative tasks for the foodgram backend: schema migrations, catalog seeding and shopping list export.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewShoppingListCommand(opts))

	return cmd
}

// env is what a command needs once configuration is loaded.
type env struct {
	cfg *config.Config
	log *logrus.Logger
	db  *database.DB
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.WithError(err).Warn("failed to close database")
	}
}

// openEnv loads configuration, builds the logger and connects to the
// database. Log output goes to the command's stderr.
func openEnv(cmd *cobra.Command, opts *RootOptions) (*env, error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log := logging.New(level, cfg.LogFormat, cmd.ErrOrStderr())

	db, err := database.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}
