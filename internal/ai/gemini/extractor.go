package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/utils"
)

const (
	systemInstruction   = "You are a precise requirements analyst. You only output JSON."
	defaultMaxLogLength = 200
	maxSkillsInPrompt   = 200
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Extractor asks Gemini to structure a free-text job description.
type Extractor struct {
	generator contentGenerator
	skills    []string
	logger    *zap.Logger
	maxLogLen int
}

// NewExtractor creates an extractor. skills are the known skill names offered to the
// model as preferred vocabulary.
func NewExtractor(generator contentGenerator, skills []string, maxLogLength int, logger *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(skills) > maxSkillsInPrompt {
		skills = skills[:maxSkillsInPrompt]
	}

	return &Extractor{
		generator: generator,
		skills:    skills,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (e *Extractor) Extract(ctx context.Context, text string) (*requirements.Extraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("job description must not be empty")
	}

	prompt := buildPrompt(e.skills, text)

	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	ex, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	e.logger.Info("requirements extracted",
		zap.Int("skills", len(ex.Skills)),
		zap.Int("keywords", len(ex.Keywords)),
	)
	return ex, nil
}

func buildPrompt(skills []string, text string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Known skills:\n{{SKILLS}}\n\nJob description:\n{{TEXT}}\n\nJSON Response:"
	}

	list := "none"
	if len(skills) > 0 {
		list = "- " + strings.Join(skills, "\n- ")
	}

	prompt := strings.ReplaceAll(template, "{{SKILLS}}", list)
	prompt = strings.ReplaceAll(prompt, "{{TEXT}}", text)
	return prompt
}

func parseResponse(raw string) (*requirements.Extraction, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var ex requirements.Extraction
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       coerceHook,
		WeaklyTypedInput: true,
		Result:           &ex,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	for i := range ex.Skills {
		ex.Skills[i].Weight = clampWeight(ex.Skills[i].Weight)
	}
	if ex.Experience.Min < 0 {
		ex.Experience.Min = 0
	}
	if ex.Experience.Max < 0 {
		ex.Experience.Max = 0
	}

	return &ex, nil
}

// coerceHook accepts the loose values models tend to produce: "yes"/"no" booleans and
// empty strings for numbers.
func coerceHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	s := strings.ToLower(strings.TrimSpace(data.(string)))

	switch t.Kind() {
	case reflect.Bool:
		return s == "true" || s == "yes" || s == "1", nil
	case reflect.Float64:
		if s == "" || s == "null" || s == "n/a" {
			return 0.0, nil
		}
	}
	return data, nil
}

func clampWeight(w float64) float64 {
	switch {
	case w < 0:
		return 0
	case w > 1:
		return 1
	default:
		return w
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
