package cmd

import (
	"fmt"
	"os"

	"admin-rbac/cache"
	"admin-rbac/config"
	"admin-rbac/database"
	"admin-rbac/schema"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// NewRootCmd builds the admin command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "admin-rbac",
		Short:         "Role based administration backend",
		Long:          `Serve and maintain the menu, role and permission tables of configured admin applications.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(newSeedAppCmd(&cfgFile))
	rootCmd.AddCommand(newMigrateCmd(&cfgFile))
	rootCmd.AddCommand(newServeCmd(&cfgFile))
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// environment is the shared runtime of every subcommand.
type environment struct {
	cfg      *config.Config
	resolver *config.Resolver
	registry *schema.Registry
	conns    *database.Manager
	stores   *cache.Manager
	logger   *zap.Logger
}

func newEnvironment(cfgFile string) (*environment, error) {
	v := viper.New()
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}

	var zl *zap.Logger
	switch cfg.LogLevel {
	case "debug":
		zl, err = zap.NewDevelopment()
	default:
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	gormLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		gormLevel = logger.Info
	}

	resolver := config.NewResolver(v)
	return &environment{
		cfg:      cfg,
		resolver: resolver,
		registry: schema.NewRegistry(resolver),
		conns:    database.NewManager(cfg.Database, database.NewLogger(gormLevel)),
		stores:   cache.NewManager(cfg.Cache, afero.NewOsFs()),
		logger:   zl,
	}, nil
}

func (e *environment) Close() {
	if err := e.conns.Close(); err != nil {
		e.logger.Warn("Failed to close database connections", zap.Error(err))
	}
	_ = e.logger.Sync()
}
