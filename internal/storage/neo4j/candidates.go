package neo4j

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
)

var _ profile.Source = (*CandidateRepository)(nil)

const candidatesQuery = `
	MATCH (c:Candidate)
	OPTIONAL MATCH (c)-[hs:HAS_SKILL]->(s:Skill)
	WITH c, collect(CASE WHEN s IS NULL THEN NULL ELSE {
		skill_id: s.id,
		name: s.name,
		level: hs.level,
		endorsements: hs.endorsements,
		years_of_experience: hs.years,
		last_used_at: hs.last_used_at,
		updated_at: hs.updated_at
	} END) AS skills
	OPTIONAL MATCH (c)-[:HAS_EXPERIENCE]->(e:Experience)
	RETURN c {
		.id, .name, .department, .profile_completeness,
		.readiness_for_rotation, .career_goals, .last_active_at
	} AS candidate,
	skills,
	collect(e {.title, .department, .company, .years, .internal}) AS experience
	ORDER BY candidate.id
`

// CandidateRepository reads candidate profiles from the graph. It implements profile.Source.
type CandidateRepository struct {
	client *Client
	logger *zap.Logger
}

func NewCandidateRepository(client *Client, logger *zap.Logger) *CandidateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateRepository{client: client, logger: logger}
}

// Candidates returns a snapshot of every candidate with skills and experience.
// A malformed profile is skipped with a warning.
func (r *CandidateRepository) Candidates(ctx context.Context) ([]*profile.Candidate, error) {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, candidatesQuery, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	candidates := make([]*profile.Candidate, 0, len(records))

	for _, record := range records {
		raw, _ := record.Get("candidate")
		skills, _ := record.Get("skills")
		experience, _ := record.Get("experience")

		props, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		c, err := decodeCandidate(props, skills, experience)
		if err != nil {
			r.logger.Warn("skipping malformed candidate",
				zap.Any("candidate_id", props["id"]),
				zap.Error(err),
			)
			continue
		}
		candidates = append(candidates, c)
	}

	r.logger.Debug("candidates loaded from neo4j", zap.Int("count", len(candidates)))
	return candidates, nil
}

func decodeCandidate(props map[string]any, skills, experience any) (*profile.Candidate, error) {
	data := make(map[string]any, len(props)+2)
	for k, v := range props {
		if v != nil {
			data[k] = v
		}
	}
	if skills != nil {
		data["skills"] = skills
	}
	if experience != nil {
		data["experience"] = experience
	}

	var c profile.Candidate
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			temporalHook,
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var timeType = reflect.TypeOf(time.Time{})

// temporalHook converts driver temporal values into time.Time.
func temporalHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case neo4j.LocalDateTime:
		return v.Time(), nil
	case neo4j.Date:
		return v.Time(), nil
	}
	return data, nil
}
