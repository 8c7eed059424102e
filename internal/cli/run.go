package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/forPelevin/ytnotes/internal/logging"
	"github.com/forPelevin/ytnotes/internal/pipeline"
	"github.com/forPelevin/ytnotes/internal/ports/adapters/gemini"
	"github.com/forPelevin/ytnotes/internal/ports/adapters/openrouter"
	"github.com/forPelevin/ytnotes/internal/usecase"
	"github.com/forPelevin/ytnotes/internal/web"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const commandTimeout = 10 * time.Minute

func runServe(cmd *cobra.Command, _ []string) error {
	uc, log, err := setup(cmd, "json")
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = getenvDefault("YTNOTES_ADDR", ":8501")
	}
	return web.Serve(cmd.Context(), web.New(uc, log), addr, log)
}

func runNotes(cmd *cobra.Command, rawURL string) error {
	uc, _, err := setup(cmd, "text")
	if err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetBool("raw")

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	n, err := uc.Notes(ctx, rawURL)
	if err != nil {
		return err
	}

	md := "## Detailed Notes:\n\n" + n.Summary + "\n"
	if n.Title != "" {
		md = "# " + n.Title + "\n\n" + md
	}
	if raw {
		_, err = fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	out, err := renderTerminal(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func runTranscript(cmd *cobra.Command, rawURL string) error {
	uc, _, err := setup(cmd, "text")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	n, err := uc.Transcript(ctx, rawURL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), n.Transcript)
	return err
}

func setup(cmd *cobra.Command, logFormat string) (usecase.Usecase, logrus.FieldLogger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	log, err := logging.New(cmd.ErrOrStderr(), level, logFormat)
	if err != nil {
		return usecase.Usecase{}, nil, fmt.Errorf("config: %w", err)
	}

	cfg, err := configFromEnv(cmd)
	if err != nil {
		return usecase.Usecase{}, nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return usecase.Usecase{}, nil, fmt.Errorf("config: %w", err)
	}
	return pipeline.Build(cfg, log), log, nil
}

func configFromEnv(cmd *cobra.Command) (pipeline.Config, error) {
	tp, _ := cmd.Flags().GetString("transcript-provider")
	sp, _ := cmd.Flags().GetString("summary-provider")
	langs, err := cmd.Flags().GetStringSlice("lang")
	if err != nil {
		return pipeline.Config{}, err
	}
	if len(langs) == 0 {
		langs = splitList(getenvDefault("YTNOTES_LANGS", "en"))
	}

	return pipeline.Config{
		TranscriptProvider: firstNonEmpty(tp, os.Getenv("YTNOTES_TRANSCRIPT_PROVIDER"), pipeline.TranscriptYouTube),
		SummaryProvider:    firstNonEmpty(sp, os.Getenv("YTNOTES_SUMMARY_PROVIDER"), pipeline.SummaryGemini),
		Langs:              langs,

		YouTubeBaseURL: os.Getenv("YTNOTES_YOUTUBE_BASE_URL"),
		YTDLPPath:      getenvDefault("YTDLP_PATH", "yt-dlp"),

		GeminiAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:   getenvDefault("GEMINI_MODEL", gemini.DefaultModel),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),

		OpenRouterAPIKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:        getenvDefault("OPENROUTER_MODEL", openrouter.DefaultModel),
		OpenRouterBaseURL:      getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
		OpenRouterAllowedHosts: openrouter.SplitHosts(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),
	}, nil
}

func renderTerminal(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitList(csv string) []string {
	var out []string
	for _, v := range strings.Split(csv, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
