package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/ai"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/ai/gemini"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/engine"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/filtering"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/logger"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/secrets"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/storage/neo4j"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/store"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

// services bundles what the commands need; close releases external connections.
type services struct {
	store   *store.FileStore
	service *engine.Service
	closers []func(context.Context) error
}

func (r *services) close(ctx context.Context, logger *zap.Logger) {
	r.service.Close()
	for _, c := range r.closers {
		if err := c(ctx); err != nil {
			logger.Warn("closing services", zap.Error(err))
		}
	}
}

func buildServices(ctx context.Context, config *Config, withAI bool, logger *zap.Logger) (*services, error) {
	if strings.TrimSpace(config.DataFile) == "" {
		return nil, errors.New("data-file is required (set it in the config or PATHFINDER_DATA_FILE)")
	}

	st, err := store.Load(config.DataFile, logger)
	if err != nil {
		return nil, err
	}
	rt := &services{store: st}

	// Skills defined in the data file follow its reloads; a separate catalogue is static.
	tax, taxonomySource := st.Taxonomy(), st.Taxonomy
	if config.TaxonomyFile != "" {
		taxonomySource = nil
		if tax, err = store.LoadTaxonomy(config.TaxonomyFile); err != nil {
			return nil, err
		}
		logger.Info("taxonomy loaded", zap.String("path", config.TaxonomyFile), zap.Int("skills", tax.Len()))
	}

	var profiles profile.Source = st
	if config.Neo4j != nil && config.Neo4j.Enabled {
		repo, closeFn, err := newCandidateRepository(ctx, config.Neo4j, logger)
		if err != nil {
			return nil, fmt.Errorf("neo4j: %w", err)
		}
		profiles = repo
		rt.closers = append(rt.closers, closeFn)
	}

	var extractor ai.Extractor
	if withAI {
		if extractor, err = newExtractor(ctx, config.AI, tax, logger); err != nil {
			return nil, fmt.Errorf("building ai extractor: %w", err)
		}
	}

	svc, err := engine.New(st, profiles, tax, engine.Options{
		Scoring: config.Scoring,
		Filters: filtering.Config{
			ExcludeCandidates: config.ExcludeCandidates,
			ExcludeFile:       config.ExcludeFile,
		},
		DisabledFilters: config.DisabledFilters,
		Extractor:       extractor,
		Taxonomy:        taxonomySource,
	}, logger)
	if err != nil {
		return nil, err
	}
	rt.service = svc

	for _, f := range svc.Filters() {
		logger.Debug("filter configured",
			zap.String("name", f.Name),
			zap.Bool("enabled", f.Enabled),
			zap.String("reason", f.Reason),
		)
	}
	return rt, nil
}

func newCandidateRepository(ctx context.Context, cfg *Neo4jConfig, logger *zap.Logger) (*neo4j.CandidateRepository, func(context.Context) error, error) {
	password, err := secrets.Load(secrets.Source{
		Name:  "neo4j password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
		Env:   "NEO4J_PASSWORD",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set neo4j.password-file or NEO4J_PASSWORD_FILE)", err)
	}

	client, err := neo4j.NewClient(ctx, neo4j.Config{
		URI:      cfg.URI,
		Username: cfg.Username,
		Password: password,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("connected to neo4j", zap.String("uri", cfg.URI))
	return neo4j.NewCandidateRepository(client, logger), client.Close, nil
}

func newExtractor(ctx context.Context, cfg *AIConfig, tax *taxonomy.Taxonomy, log *zap.Logger) (ai.Extractor, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("ai is disabled (set ai.enabled to true)")
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithFields(log, logger.AIFields("gemini", cfg.Gemini.Model)...)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	genLogger.Info("ai extractor ready", zap.String("resolved_model", generator.Model()))

	names := make([]string, 0, tax.Len())
	for _, s := range tax.Skills() {
		names = append(names, s.Name)
	}

	return gemini.NewExtractor(generator, names, cfg.Gemini.MaxLogLength, genLogger), nil
}
