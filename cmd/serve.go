package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the team builder JSON API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default is server.listen from config)")
	viperBindFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) {
	ctx := cmd.Context()

	config, logger := setup()
	defer logger.Sync()

	logger.Info("starting the team-builder api", zap.String("version", version))

	b, err := newBuilder(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the api", zap.Error(err))
	}

	if err := server.New(*config.Server, b, logger).Run(ctx); err != nil {
		logger.Fatal("serving the api", zap.Error(err))
	}
}
