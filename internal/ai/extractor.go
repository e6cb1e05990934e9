package ai

import (
	"context"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
)

// Extractor turns a free-text job description into structured requirements.
// Its output is advisory and always goes through requirements.Normalizer.
type Extractor interface {
	Extract(ctx context.Context, text string) (*requirements.Extraction, error)
}
