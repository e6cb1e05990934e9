package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/cache"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
)

type fakeService struct {
	mu          sync.Mutex
	ranking     *matching.Ranking
	err         error
	lastVersion int64
	invalidated []string
}

func (f *fakeService) Match(_ context.Context, key string, version int64) (*matching.Ranking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastVersion = version
	if f.err != nil {
		return nil, f.err
	}
	if key != f.ranking.RequirementSetID {
		return nil, fmt.Errorf("loading %q: %w", key, requirements.ErrNotFound)
	}
	return f.ranking, nil
}

func (f *fakeService) Explain(_ context.Context, key, candidateID string) (matching.CandidateMatch, error) {
	if key != f.ranking.RequirementSetID {
		return matching.CandidateMatch{}, requirements.ErrNotFound
	}
	m, ok := f.ranking.Find(candidateID)
	if !ok {
		return matching.CandidateMatch{}, fmt.Errorf("%w: %s", cache.ErrCandidateNotFound, candidateID)
	}
	return *m, nil
}

func (f *fakeService) Invalidate(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, key)
}

func testRanking() *matching.Ranking {
	r := &matching.Ranking{
		ComputationID:    "c-1",
		RequirementSetID: "frontend",
		Version:          2,
		Considered:       12,
	}
	for i := 0; i < 12; i++ {
		r.Matches = append(r.Matches, matching.CandidateMatch{
			CandidateID:    fmt.Sprintf("cand-%02d", i),
			OverallScore:   95 - i*5,
			ReadinessLevel: matching.ReadinessDeveloping,
			Explanation: matching.MatchExplanation{
				Strengths: []string{"Strong frontend skills: React"},
			},
		})
	}
	return r
}

func resultText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected a single content item, got %+v", res)
	}
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestMatchCandidatesTool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		params    MatchCandidatesParams
		wantError string
		wantCount int
	}{
		{name: "default limit", params: MatchCandidatesParams{RequirementSetID: "frontend"}, wantCount: 10},
		{name: "explicit limit", params: MatchCandidatesParams{RequirementSetID: "frontend", Version: 2, Limit: 3}, wantCount: 3},
		{name: "limit above size", params: MatchCandidatesParams{RequirementSetID: "frontend", Limit: 50}, wantCount: 12},
		{name: "missing id", params: MatchCandidatesParams{RequirementSetID: "  "}, wantError: "requirement_set_id is required"},
		{name: "negative version", params: MatchCandidatesParams{RequirementSetID: "frontend", Version: -1}, wantError: "version must not be negative"},
		{name: "unknown set", params: MatchCandidatesParams{RequirementSetID: "backend"}, wantError: "requirement set not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tl := &tools{service: &fakeService{ranking: testRanking()}, logger: zap.NewNop()}
			res, _, err := tl.matchCandidates(context.Background(), nil, &tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			text := resultText(t, res)

			if tt.wantError != "" {
				if !res.IsError || text != tt.wantError {
					t.Fatalf("expected error result %q, got %q (is_error=%v)", tt.wantError, text, res.IsError)
				}
				return
			}

			var resp matchResponse
			if err := json.Unmarshal([]byte(text), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp.Candidates) != tt.wantCount || resp.Ranked != 12 || resp.Version != 2 {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if resp.Candidates[0].Rank != 1 || resp.Candidates[0].CandidateID != "cand-00" || resp.Candidates[0].OverallScore != 95 {
				t.Fatalf("unexpected leader: %+v", resp.Candidates[0])
			}
		})
	}
}

func TestExplainCandidateTool(t *testing.T) {
	t.Parallel()

	tl := &tools{service: &fakeService{ranking: testRanking()}, logger: zap.NewNop()}

	res, _, err := tl.explainCandidate(context.Background(), nil, &ExplainCandidateParams{RequirementSetID: "frontend", CandidateID: "cand-03"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m matching.CandidateMatch
	if err := json.Unmarshal([]byte(resultText(t, res)), &m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if m.CandidateID != "cand-03" || m.OverallScore != 80 || len(m.Explanation.Strengths) != 1 {
		t.Fatalf("unexpected explanation: %+v", m)
	}

	res, _, _ = tl.explainCandidate(context.Background(), nil, &ExplainCandidateParams{RequirementSetID: "frontend", CandidateID: "ghost"})
	if !res.IsError || resultText(t, res) != "candidate is not part of the ranking" {
		t.Fatalf("expected candidate error, got %q", resultText(t, res))
	}

	res, _, _ = tl.explainCandidate(context.Background(), nil, &ExplainCandidateParams{RequirementSetID: "frontend"})
	if !res.IsError {
		t.Fatalf("expected validation error")
	}
}

func TestInvalidateMatchesTool(t *testing.T) {
	t.Parallel()

	svc := &fakeService{ranking: testRanking()}
	tl := &tools{service: svc, logger: zap.NewNop()}

	res, _, err := tl.invalidateMatches(context.Background(), nil, &InvalidateMatchesParams{RequirementSetID: "frontend"})
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v %+v", err, res)
	}
	if len(svc.invalidated) != 1 || svc.invalidated[0] != "frontend" {
		t.Fatalf("expected frontend to be invalidated, got %v", svc.invalidated)
	}

	res, _, _ = tl.invalidateMatches(context.Background(), nil, &InvalidateMatchesParams{})
	if !res.IsError {
		t.Fatalf("expected error for empty id")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s := New(Config{}, &fakeService{ranking: testRanking()}, "test", nil)
	if s.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected default address %s", s.Addr())
	}

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health response: %d %q", resp.StatusCode, body)
	}
}

func TestStreamableTransportRoundTrip(t *testing.T) {
	t.Parallel()

	svc := &fakeService{ranking: testRanking()}
	s := New(Config{}, svc, "test", zap.NewNop())

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx := context.Background()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "pathfinder-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.URL + streamPath}, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "match_candidates",
		Arguments: map[string]any{"requirement_set_id": "frontend", "version": 2, "limit": 1},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if text := resultText(t, res); !strings.Contains(text, `"candidate_id": "cand-00"`) {
		t.Fatalf("unexpected payload: %s", text)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.lastVersion != 2 {
		t.Fatalf("expected version 2 to reach the service, got %d", svc.lastVersion)
	}
}
