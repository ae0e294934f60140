package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/internal/server"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the placement JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.ServerAddr()
			}

			app.Logger.Debug("serve command", zap.String("addr", addr))

			e := server.New(app.Cfg, app.Logger)
			return server.Run(app.Ctx, e, addr, app.Logger)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, then :8080)")

	return cmd
}
