package matching

import (
	"fmt"
	"math"
)

// MaxBonusMultiplier caps the combined endorsement and recency multiplier.
const MaxBonusMultiplier = 1.5

type Weights struct {
	Skills     float64 `mapstructure:"skills" json:"skills"`
	Experience float64 `mapstructure:"experience" json:"experience"`
	Readiness  float64 `mapstructure:"readiness" json:"readiness"`
	Cultural   float64 `mapstructure:"cultural" json:"cultural"`
	Growth     float64 `mapstructure:"growth" json:"growth"`
}

func (w Weights) sum() float64 {
	return w.Skills + w.Experience + w.Readiness + w.Cultural + w.Growth
}

// Config holds the scoring policy.
type Config struct {
	Weights             Weights `mapstructure:"weights"`
	BaseUnit            float64 `mapstructure:"base-unit"`
	EndorsementBonus    float64 `mapstructure:"endorsement-bonus"`
	RecencyBonus        float64 `mapstructure:"recency-bonus"`
	CriticalPenalty     float64 `mapstructure:"critical-penalty"`
	MinorPenalty        float64 `mapstructure:"minor-penalty"`
	MinScoreThreshold   int     `mapstructure:"min-score-threshold"`
	KeywordWeightFactor float64 `mapstructure:"keyword-weight-factor"`
	Confidence          int     `mapstructure:"confidence"`
	ReadyThreshold      int     `mapstructure:"ready-threshold"`
	DevelopingThreshold int     `mapstructure:"developing-threshold"`
	Workers             int     `mapstructure:"workers"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Skills:     0.40,
			Experience: 0.25,
			Readiness:  0.15,
			Cultural:   0.10,
			Growth:     0.10,
		},
		BaseUnit:            20,
		EndorsementBonus:    1.10,
		RecencyBonus:        1.05,
		CriticalPenalty:     20,
		MinorPenalty:        5,
		KeywordWeightFactor: 0.5,
		Confidence:          85,
		ReadyThreshold:      80,
		DevelopingThreshold: 60,
		Workers:             8,
	}
}

// Validate checks that the policy produces scores inside [0,100].
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"skills": w.Skills, "experience": w.Experience, "readiness": w.Readiness,
		"cultural": w.Cultural, "growth": w.Growth,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s=%.3f is outside [0,1]", name, v)
		}
	}
	if math.Abs(w.sum()-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.4f", w.sum())
	}
	if c.BaseUnit <= 0 {
		return fmt.Errorf("base unit must be positive")
	}
	if c.EndorsementBonus < 1 || c.RecencyBonus < 1 {
		return fmt.Errorf("bonuses must be at least 1")
	}
	if c.CriticalPenalty < 0 || c.MinorPenalty < 0 {
		return fmt.Errorf("penalties must not be negative")
	}
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 100 {
		return fmt.Errorf("min score threshold %d is outside [0,100]", c.MinScoreThreshold)
	}
	if c.Confidence < 0 || c.Confidence > 100 {
		return fmt.Errorf("confidence %d is outside [0,100]", c.Confidence)
	}
	if c.DevelopingThreshold < 0 || c.ReadyThreshold > 100 || c.DevelopingThreshold > c.ReadyThreshold {
		return fmt.Errorf("readiness thresholds must satisfy 0 <= developing (%d) <= ready (%d) <= 100", c.DevelopingThreshold, c.ReadyThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// Overall combines sub-scores into the 0..100 integer score. Terms are summed in a
// fixed order and the sum is snapped to 6 decimals before rounding half up.
func (c Config) Overall(sub SubScores) int {
	sum := 0.0
	sum += sub.Skills * c.Weights.Skills
	sum += sub.Experience * c.Weights.Experience
	sum += sub.Readiness * c.Weights.Readiness
	sum += sub.Cultural * c.Weights.Cultural
	sum += sub.Growth * c.Weights.Growth

	snapped := math.Round(sum*1e6) / 1e6
	return int(clamp(math.Floor(snapped+0.5)))
}

func (c Config) ReadinessLevel(overall int) ReadinessLevel {
	switch {
	case overall >= c.ReadyThreshold:
		return ReadinessReady
	case overall >= c.DevelopingThreshold:
		return ReadinessDeveloping
	default:
		return ReadinessNotReady
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
