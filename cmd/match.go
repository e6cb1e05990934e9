package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/engine"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/export"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/logger"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
)

const (
	PromptDetails             = "Show candidate details"
	PromptExport              = "Export ranking to Excel"
	PromptAppendToExcludeFile = "Append shown candidates to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"
	defaultTop                = 10
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank candidates for a vacancy and explain the matches",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("vacancy", "", "vacancy (requirement set) id from the data file")
	matchCmd.Flags().Int64("version", 0, "requirement set version; the current one by default")
	matchCmd.Flags().Int("top", defaultTop, "how many candidates to show")
	matchCmd.Flags().String("export", "", "write the ranking to this xlsx file")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for actions after the ranking is shown")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")

	if err := matchCmd.MarkFlagRequired("vacancy"); err != nil {
		log.Fatalf("marking vacancy flag as required: %v", err)
	}
	viper.BindPFlag("exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the pathfinder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	vacancy, _ := cmd.Flags().GetString("vacancy")
	requested, _ := cmd.Flags().GetInt64("version")
	top, _ := cmd.Flags().GetInt("top")
	exportPath, _ := cmd.Flags().GetString("export")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	svc, err := buildServices(ctx, config, false, logger)
	if err != nil {
		logger.Fatal("building services", zap.Error(err))
	}
	defer svc.close(ctx, logger)

	ranking, err := svc.service.Match(ctx, vacancy, requested)
	if errors.Is(err, requirements.ErrNotFound) {
		logger.Fatal("unknown vacancy", zap.String("vacancy", vacancy), zap.Strings("known", svc.store.VacancyIDs()))
	}
	if err != nil {
		logger.Fatal("matching candidates", zap.String("vacancy", vacancy), zap.Error(err))
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

	if autoApprove {
		return
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptDetails, PromptExport, PromptAppendToExcludeFile, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		ranking, err = handleAction(ctx, action, svc.service, logger, config, ranking, top)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, svc *engine.Service, logger *zap.Logger, config *Config, ranking *matching.Ranking, top int) (*matching.Ranking, error) {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return ranking, errExit
	case PromptDetails:
		return ranking, showDetails(ctx, svc, logger, ranking, top)
	case PromptExport:
		input := promptui.Prompt{
			Label:   "Output file",
			Default: ranking.RequirementSetID + ".xlsx",
		}
		path, err := input.Run()
		if err != nil {
			return ranking, err
		}
		return ranking, exportRanking(logger, ranking, path)
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(ctx, svc, logger, config, ranking, top)
	default:
		return ranking, fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(ctx context.Context, svc *engine.Service, logger *zap.Logger, ranking *matching.Ranking, top int) error {
	for {
		items := make([]string, 0, top+1)
		for i, m := range ranking.Top(top) {
			items = append(items, fmt.Sprintf("%s #%d %s score=%d %s", m.CandidateID, i+1, m.CandidateName, m.OverallScore, m.ReadinessLevel))
		}

		candidatePrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		candidateID := strings.Split(selected, " ")[0]
		m, err := svc.Explain(ctx, ranking.RequirementSetID, candidateID)
		if err != nil {
			return err
		}

		pretty, _ := json.MarshalIndent(m, "", "  ")
		logger.Info(string(pretty), zap.String("candidate_id", candidateID))
	}
}

func appendToExcludeFile(ctx context.Context, svc *engine.Service, logger *zap.Logger, config *Config, ranking *matching.Ranking, top int) (*matching.Ranking, error) {
	excludeFile := config.ExcludeFile
	if excludeFile == "" {
		logger.Warn("exclude file is not configured", zap.String("hint", "set exclude-file in the config or pass --exclude-file"))
		return ranking, nil
	}

	excluded, err := profile.GetExcludedCandidatesFromFile(excludeFile)
	if err != nil {
		return ranking, err
	}

	ids := make([]string, 0, top)
	for _, m := range ranking.Top(top) {
		ids = append(ids, m.CandidateID)
	}
	excluded.Append(ids, "reviewed for "+ranking.RequirementSetID, time.Now())

	if err := excluded.ToFile(excludeFile); err != nil {
		return ranking, err
	}
	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(ids)))

	next, err := svc.Refresh(ctx, ranking.RequirementSetID)
	if err != nil {
		return ranking, err
	}
	if len(next.Matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return next, errExit
	}

	reportRanking(logger, next, top)
	return next, nil
}

func reportRanking(logger *zap.Logger, ranking *matching.Ranking, top int) {
	logger.Info("ranking",
		zap.String("vacancy", ranking.RequirementSetID),
		zap.Int64("version", ranking.Version),
		zap.Int("considered", ranking.Considered),
		zap.Int("ranked", len(ranking.Matches)),
	)
	for _, w := range ranking.Warnings {
		logger.Warn("ranking warning", zap.String("warning", w))
	}

	for i, m := range ranking.Top(top) {
		logger.Info("candidate",
			zap.Int("rank", i+1),
			zap.String("candidate_id", m.CandidateID),
			zap.String("name", m.CandidateName),
			zap.Int("score", m.OverallScore),
			zap.String("readiness", string(m.ReadinessLevel)),
			zap.Int("ready_in_months", m.Explanation.EstimatedReadinessMonths),
		)
	}
}

func exportRanking(logger *zap.Logger, ranking *matching.Ranking, path string) error {
	written, err := export.ExportToExcel(ranking, path)
	if err != nil {
		return err
	}
	logger.Info("ranking exported", zap.String("filename", written))
	return nil
}
