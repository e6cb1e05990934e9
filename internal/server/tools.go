package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/cache"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/logger"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
)

const defaultLimit = 10

type MatchCandidatesParams struct {
	RequirementSetID string `json:"requirement_set_id" jsonschema:"Identifier of the vacancy or requirement set"`
	Version          int64  `json:"version,omitempty" jsonschema:"Requirement set version; the current one when omitted"`
	Limit            int    `json:"limit,omitempty" jsonschema:"Maximum number of candidates to return (default 10)"`
}

type ExplainCandidateParams struct {
	RequirementSetID string `json:"requirement_set_id" jsonschema:"Identifier of the vacancy or requirement set"`
	CandidateID      string `json:"candidate_id" jsonschema:"Candidate to explain"`
}

type InvalidateMatchesParams struct {
	RequirementSetID string `json:"requirement_set_id" jsonschema:"Identifier of the vacancy or requirement set"`
}

type rankedCandidate struct {
	Rank           int                     `json:"rank"`
	CandidateID    string                  `json:"candidate_id"`
	Name           string                  `json:"name,omitempty"`
	OverallScore   int                     `json:"overall_score"`
	ReadinessLevel matching.ReadinessLevel `json:"readiness_level"`
	SubScores      matching.SubScores      `json:"sub_scores"`
}

type matchResponse struct {
	RequirementSetID string            `json:"requirement_set_id"`
	Version          int64             `json:"version"`
	ComputationID    string            `json:"computation_id"`
	Considered       int               `json:"considered"`
	Ranked           int               `json:"ranked"`
	Candidates       []rankedCandidate `json:"candidates"`
	Warnings         []string          `json:"warnings,omitempty"`
}

type tools struct {
	service MatchService
	logger  *zap.Logger
}

func registerTools(s *sdkmcp.Server, t *tools) {
	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "match_candidates",
		Description: "Rank internal candidates against a requirement set",
	}, t.matchCandidates)

	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "explain_candidate",
		Description: "Explain how one candidate matches a requirement set",
	}, t.explainCandidate)

	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "invalidate_matches",
		Description: "Drop cached rankings of a requirement set",
	}, t.invalidateMatches)
}

func (t *tools) matchCandidates(ctx context.Context, _ *sdkmcp.CallToolRequest, params *MatchCandidatesParams) (*sdkmcp.CallToolResult, any, error) {
	id := strings.TrimSpace(params.RequirementSetID)
	if id == "" {
		return errorResult("requirement_set_id is required"), nil, nil
	}
	if params.Version < 0 {
		return errorResult("version must not be negative"), nil, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	ranking, err := t.service.Match(ctx, id, params.Version)
	if err != nil {
		t.logger.Warn("match_candidates failed", append(logger.MatchFields(id, params.Version), zap.Error(err))...)
		return errorResult(describe(err)), nil, nil
	}

	resp := matchResponse{
		RequirementSetID: ranking.RequirementSetID,
		Version:          ranking.Version,
		ComputationID:    ranking.ComputationID,
		Considered:       ranking.Considered,
		Ranked:           len(ranking.Matches),
		Candidates:       []rankedCandidate{},
		Warnings:         ranking.Warnings,
	}
	for i, m := range ranking.Top(limit) {
		resp.Candidates = append(resp.Candidates, rankedCandidate{
			Rank:           i + 1,
			CandidateID:    m.CandidateID,
			Name:           m.CandidateName,
			OverallScore:   m.OverallScore,
			ReadinessLevel: m.ReadinessLevel,
			SubScores:      m.SubScores,
		})
	}
	return jsonResult(resp)
}

func (t *tools) explainCandidate(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ExplainCandidateParams) (*sdkmcp.CallToolResult, any, error) {
	id := strings.TrimSpace(params.RequirementSetID)
	candidate := strings.TrimSpace(params.CandidateID)
	if id == "" || candidate == "" {
		return errorResult("requirement_set_id and candidate_id are required"), nil, nil
	}

	m, err := t.service.Explain(ctx, id, candidate)
	if err != nil {
		t.logger.Warn("explain_candidate failed",
			zap.String(logger.FieldRequirementSet, id),
			zap.String(logger.FieldCandidate, candidate),
			zap.Error(err),
		)
		return errorResult(describe(err)), nil, nil
	}
	return jsonResult(m)
}

func (t *tools) invalidateMatches(_ context.Context, _ *sdkmcp.CallToolRequest, params *InvalidateMatchesParams) (*sdkmcp.CallToolResult, any, error) {
	id := strings.TrimSpace(params.RequirementSetID)
	if id == "" {
		return errorResult("requirement_set_id is required"), nil, nil
	}

	t.service.Invalidate(id)
	t.logger.Info("matches invalidated", zap.String(logger.FieldRequirementSet, id))
	return textResult(fmt.Sprintf("cached matches for %q invalidated", id)), nil, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, requirements.ErrNotFound):
		return "requirement set not found"
	case errors.Is(err, cache.ErrCandidateNotFound):
		return "candidate is not part of the ranking"
	}

	var verr *requirements.ValidationError
	if errors.As(err, &verr) {
		return "invalid requirement set: " + verr.Error()
	}
	return err.Error()
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode tool result: %w", err)
	}
	return textResult(string(data)), nil, nil
}

func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

func errorResult(msg string) *sdkmcp.CallToolResult {
	res := textResult(msg)
	res.IsError = true
	return res
}
