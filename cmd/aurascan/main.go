package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aurascan/aurascan/internal/ai"
	"github.com/aurascan/aurascan/internal/app"
	"github.com/aurascan/aurascan/internal/config"
	"github.com/aurascan/aurascan/internal/database"
	"github.com/aurascan/aurascan/internal/gateway"
	"github.com/aurascan/aurascan/internal/store"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "aurascan",
		Short: "Scan product labels and analyze them with a generative-AI model",
		Long: "AuraScan analyzes photographs of product labels with a generative-AI\n" +
			"model: health score, ingredient breakdown, allergen warnings and\n" +
			"sustainability notes. Scan history, favorites and your profile are kept\n" +
			"in a local database.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "path to configuration file")

	rootCmd.AddCommand(
		newScanCmd(),
		newSearchCmd(),
		newBatchCmd(),
		newCompareCmd(),
		newHistoryCmd(),
		newFavoriteCmd(),
		newOnboardCmd(),
		newProfileCmd(),
		newAnalyticsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildApp wires storage, the model client, the gateway and the store.
// The returned cleanup closes the database.
func buildApp() (*app.App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}

	kv, err := database.NewSQLiteKV(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	st, err := store.Load(cmdContext(), kv, logger.Named("store"))
	if err != nil {
		kv.Close()
		return nil, nil, err
	}

	client, err := ai.NewClient(cfg.AI)
	if err != nil {
		kv.Close()
		return nil, nil, err
	}

	gw := gateway.New(client, cfg.GatewayOptions(), logger.Named("gateway"))
	a := app.New(gw, st, logger.Named("app"))

	cleanup := func() {
		_ = logger.Sync()
		_ = kv.Close()
	}
	return a, cleanup, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
