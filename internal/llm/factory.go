package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/pdfquiz/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with logging
// middleware. eventRepo may be nil when auditing is disabled.
func NewProvider(cfg Config, eventRepo store.EventRepo, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var base Provider
	switch cfg.Provider {
	case "gemini":
		base = NewGeminiProvider(cfg.Gemini)
	case "openai":
		base = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}

	log.Info("llm: provider configured",
		zap.String("provider", cfg.Provider),
		zap.String("model", base.ModelID()),
		zap.Int("api_key_len", len(cfg.APIKey())),
	)

	return WithLogging(base, cfg.Provider, eventRepo, log), nil
}
