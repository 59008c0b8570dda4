package quiz

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/abhisek/pdfquiz/internal/llm"
)

const purpose = "quiz-gen"

// Config controls request parameters passed to the provider.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

// New creates an LLMGenerator. log may be nil.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *LLMGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMGenerator{provider: provider, config: cfg, log: log}
}

func (g *LLMGenerator) Generate(ctx context.Context, text string) ([]Question, error) {
	ctx = llm.WithPurpose(ctx, purpose)

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: BuildPrompt(text)},
		},
		Schema:      QuestionListSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		var noContent *llm.ErrNoContent
		if errors.As(err, &noContent) {
			g.log.Error("quiz: unexpected response structure", zap.String("response", noContent.Raw))
			return []Question{}, nil
		}
		gerr := classify(err)
		g.log.Error("quiz: generation failed", zap.Stringer("kind", gerr.Kind), zap.Error(gerr))
		return nil, gerr
	}

	if resp.SchemaErr != nil {
		g.log.Warn("quiz: response does not match question schema", zap.Error(resp.SchemaErr))
	}

	questions := []Question{}
	if err := json.Unmarshal(resp.Content, &questions); err != nil {
		gerr := &GenerationError{Kind: KindParse, Err: err}
		g.log.Error("quiz: generation failed", zap.Stringer("kind", gerr.Kind), zap.Error(gerr))
		return nil, gerr
	}
	if questions == nil {
		questions = []Question{}
	}

	return questions, nil
}

func classify(err error) *GenerationError {
	var (
		rateLimit   *llm.ErrRateLimit
		unavailable *llm.ErrProviderUnavailable
		invalid     *llm.ErrInvalidResponse
	)
	switch {
	case errors.As(err, &rateLimit), errors.As(err, &unavailable):
		return &GenerationError{Kind: KindAPI, Err: err}
	case errors.As(err, &invalid):
		return &GenerationError{Kind: KindParse, Err: invalid.Err}
	default:
		return &GenerationError{Kind: KindUnexpected, Err: err}
	}
}
