package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/logger"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve match tools over MCP streamable HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "listen host (default 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "listen port (default 8080)")

	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	withAI := config.AI != nil && config.AI.Enabled
	svc, err := buildServices(ctx, config, withAI, logger)
	if err != nil {
		logger.Fatal("building services", zap.Error(err))
	}
	defer svc.close(context.Background(), logger)

	// Vacancy edits bump versions; candidate edits are only visible after a reset.
	svc.store.Watch(func(changed []string) {
		svc.service.Reset()
		logger.Info("match cache reset after dataset change", zap.Strings("changed_vacancies", changed))
	})

	srv := server.New(config.Server, svc.service, resolveVersion(), logger)
	logger.Info("mcp server initialized and starting", zap.String("addr", srv.Addr()))

	if err := srv.Run(ctx); err != nil {
		logger.Error("mcp server exited with error", zap.Error(err))
		return
	}
	logger.Info("mcp server stopped")
}
