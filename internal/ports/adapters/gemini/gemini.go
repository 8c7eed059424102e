package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; empty uses the library default.
	BaseURL string
}

type Adapter struct {
	cfg Config
}

// New never fails: a missing key is reported by Summarize.
func New(cfg Config) *Adapter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Adapter{cfg: cfg}
}

func (a *Adapter) Summarize(ctx context.Context, prompt, transcript string) (string, error) {
	if a.cfg.APIKey == "" {
		return "", errors.New("GOOGLE_API_KEY is required (set it in .env)")
	}

	opts := []option.ClientOption{option.WithAPIKey(a.cfg.APIKey)}
	if a.cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(a.cfg.BaseURL, "/")+"/"))
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt + transcript}},
		}},
	}
	resp, err := svc.Models.GenerateContent(modelName(a.cfg.Model), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gemini generate content (model=%s): %w", a.cfg.Model, err)
	}
	return responseText(resp)
}

func modelName(m string) string {
	if strings.HasPrefix(m, "models/") || strings.HasPrefix(m, "tunedModels/") {
		return m
	}
	return "models/" + m
}

func responseText(resp *generativelanguage.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini: empty response")
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini: no candidates returned")
	}
	c := resp.Candidates[0]
	var b strings.Builder
	if c.Content != nil {
		for _, p := range c.Content.Parts {
			if p != nil {
				b.WriteString(p.Text)
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini: empty content (finish reason %s)", c.FinishReason)
	}
	return text, nil
}
