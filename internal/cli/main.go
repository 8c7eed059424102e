package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "ytnotes",
		Short:        "Turn a YouTube video's transcript into detailed notes",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SilenceErrors = true

	pf := root.PersistentFlags()
	pf.String("transcript-provider", "", "Transcript source: youtube or ytdlp (env YTNOTES_TRANSCRIPT_PROVIDER)")
	pf.String("summary-provider", "", "Summarizer: gemini or openrouter (env YTNOTES_SUMMARY_PROVIDER)")
	pf.StringSlice("lang", nil, "Preferred transcript languages in order (env YTNOTES_LANGS)")
	pf.String("log-level", "", "Log level (env LOG_LEVEL)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serve.Flags().String("addr", "", "Listen address (env YTNOTES_ADDR, default :8501)")

	notes := &cobra.Command{
		Use:   "notes <url>",
		Short: "Print detailed notes for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotes(cmd, args[0])
		},
	}
	notes.Flags().Bool("raw", false, "Print Markdown without terminal rendering")

	tr := &cobra.Command{
		Use:   "transcript <url>",
		Short: "Print the plain transcript of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscript(cmd, args[0])
		},
	}

	root.AddCommand(serve, notes, tr)
	return root
}
