package pipeline

import (
	"fmt"
	"strings"

	"github.com/forPelevin/ytnotes/internal/ports"
	"github.com/forPelevin/ytnotes/internal/ports/adapters/gemini"
	"github.com/forPelevin/ytnotes/internal/ports/adapters/openrouter"
	"github.com/forPelevin/ytnotes/internal/ports/adapters/watchpage"
	"github.com/forPelevin/ytnotes/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/ytnotes/internal/usecase"
	"github.com/sirupsen/logrus"
)

const (
	TranscriptYouTube = "youtube"
	TranscriptYTDLP   = "ytdlp"

	SummaryGemini     = "gemini"
	SummaryOpenRouter = "openrouter"
)

type Config struct {
	TranscriptProvider string
	SummaryProvider    string
	Langs              []string

	// YouTubeBaseURL points the watch-page adapter somewhere else (tests).
	YouTubeBaseURL string
	YTDLPPath      string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	// Prompt replaces usecase.DefaultPrompt when set.
	Prompt string
}

// Validate checks provider choices and endpoints. API keys are not required
// here; the summarizer reports a missing key when it is first used.
func (c Config) Validate() error {
	switch c.TranscriptProvider {
	case "", TranscriptYouTube, TranscriptYTDLP:
	default:
		return fmt.Errorf("unknown transcript provider %q (want %s or %s)", c.TranscriptProvider, TranscriptYouTube, TranscriptYTDLP)
	}
	for _, l := range c.Langs {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("empty transcript language")
		}
	}
	switch c.SummaryProvider {
	case "", SummaryGemini:
		return nil
	case SummaryOpenRouter:
		return openrouter.ValidateBaseURL(
			c.OpenRouterBaseURL,
			c.OpenRouterAllowedHosts,
		)
	default:
		return fmt.Errorf("unknown summary provider %q (want %s or %s)", c.SummaryProvider, SummaryGemini, SummaryOpenRouter)
	}
}

// Build wires the configured adapters into a use case. cfg must be valid.
func Build(cfg Config, log logrus.FieldLogger) usecase.Usecase {
	var src ports.TranscriptSource
	switch cfg.TranscriptProvider {
	case TranscriptYTDLP:
		src = ytdlp.New(cfg.YTDLPPath, cfg.Langs)
	default:
		src = watchpage.New(cfg.YouTubeBaseURL, cfg.Langs)
	}

	var sum ports.Summarizer
	switch cfg.SummaryProvider {
	case SummaryOpenRouter:
		sum = openrouter.New(openrouter.Config{
			APIKey:  cfg.OpenRouterAPIKey,
			Model:   cfg.OpenRouterModel,
			BaseURL: cfg.OpenRouterBaseURL,
		})
	default:
		sum = gemini.New(gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"transcript_provider": name(cfg.TranscriptProvider, TranscriptYouTube),
			"summary_provider":    name(cfg.SummaryProvider, SummaryGemini),
		}).Debug("pipeline ready")
	}

	return usecase.New(usecase.Deps{
		Transcripts: src,
		Summarizer:  sum,
		Log:         log,
	}).WithPrompt(cfg.Prompt)
}

func name(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// ensure adapters implement ports
var _ ports.TranscriptSource = (*watchpage.Adapter)(nil)
var _ ports.TranscriptSource = (*ytdlp.Adapter)(nil)
var _ ports.Summarizer = (*gemini.Adapter)(nil)
var _ ports.Summarizer = (*openrouter.Adapter)(nil)
