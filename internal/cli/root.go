package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maestro-drills/backend/internal/config"
	"github.com/maestro-drills/backend/internal/database"
	"github.com/maestro-drills/backend/internal/exercises"
	"github.com/maestro-drills/backend/internal/logger"
	"github.com/maestro-drills/backend/internal/srs"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "maestro",
		Short: "Spaced-repetition tracker for technical practice exercises",
		Long: `Maestro schedules practice exercises with an SM-2 style algorithm
and serves the catalog, ratings and due lists over a JSON API.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (yaml, toml or json)")

	load := func() (*config.Config, error) {
		return config.Load(configPath)
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSeedCmd(load),
		newDueCmd(load),
		newStatsCmd(load),
		newRateCmd(load),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type configLoader func() (*config.Config, error)

// app holds the wiring shared by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *sql.DB
	service *exercises.Service
}

func newApp(load configLoader) (*app, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbCfg := databaseConfig(cfg)
	if err := database.Migrate(dbCfg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	store := exercises.NewStore(db, cfg.Database.Driver)
	service := exercises.NewService(store, srs.SystemClock{Location: loc}, log, exercises.Options{
		RecommendLimit: cfg.Recommend.Limit,
		HorizonDays:    cfg.Due.HorizonDays,
		Location:       loc,
	})

	return &app{cfg: cfg, log: log, db: db, service: service}, nil
}

func (a *app) Close() {
	a.db.Close()
	a.log.Sync()
}

func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}
}
