package cmd

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/logger"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Extract requirements from a free-text job description and rank candidates",
	Run: func(cmd *cobra.Command, _ []string) {
		query(cmd)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().String("text", "", "free-text job description")
	queryCmd.Flags().String("text-file", "", "read the job description from a file")
	queryCmd.Flags().Int("top", defaultTop, "how many candidates to show")
	queryCmd.Flags().String("export", "", "write the ranking to this xlsx file")
}

func query(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	text, _ := cmd.Flags().GetString("text")
	if file, _ := cmd.Flags().GetString("text-file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Fatal("reading job description", zap.String("file", file), zap.Error(err))
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		logger.Fatal("job description is required", zap.String("hint", "pass --text or --text-file"))
	}

	top, _ := cmd.Flags().GetInt("top")
	exportPath, _ := cmd.Flags().GetString("export")

	svc, err := buildServices(ctx, config, true, logger)
	if err != nil {
		logger.Fatal("building services", zap.Error(err))
	}
	defer svc.close(ctx, logger)

	ranking, warnings, err := svc.service.MatchQuery(ctx, text)
	if err != nil {
		logger.Fatal("matching free-text query", zap.Error(err))
	}
	for _, w := range warnings {
		logger.Warn("skill not in taxonomy, matched as keyword", zap.String("skill", w.Name))
	}

	if len(ranking.Matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}
	reportRanking(logger, ranking, top)

	if exportPath != "" {
		if err := exportRanking(logger, ranking, exportPath); err != nil {
			logger.Fatal("exporting ranking", zap.Error(err))
		}
	}
}
