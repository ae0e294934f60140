package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/cmd/cli/commands"
	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/utils/logging"
)

var (
	env string
	app = &commands.AppContext{}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.Ctx = ctx

	rootCmd := &cobra.Command{
		Use:          "geo-placer",
		Short:        "Geo Placer - assign admissions to medicine teams",
		Long:         `A CLI tool for placing new admissions onto medicine teams by floor geography and census balance, and for auditing existing rosters.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment, selects <env>_geo_placer_config.yaml and the log file prefix")

	rootCmd.AddCommand(commands.PlaceCmd(app))
	rootCmd.AddCommand(commands.ShuffleCmd(app))
	rootCmd.AddCommand(commands.NormalizeCmd(app))
	rootCmd.AddCommand(commands.TeamsCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// initApp loads configuration and sets up the logger
func initApp() error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Cfg = cfg

	app.Logger, err = logging.InitLogger(env, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Configuration loaded",
		zap.String("environment", env),
		zap.Int("team_closures", len(cfg.TeamClosures)))

	return nil
}
