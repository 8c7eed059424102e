//go:build integration

package itest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const fakePlayer = `{"playabilityStatus":{"status":"OK"},` +
	`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"/api/timedtext?v=dQw4w9WgXcQ&lang=en&kind=asr","languageCode":"en","kind":"asr"}]}},` +
	`"videoDetails":{"title":"Fake Talk"}}`

// fakeBackends serves a watch page, its timedtext track and the Gemini and
// OpenRouter endpoints from one server.
func fakeBackends(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>Fake Talk - YouTube</title></head><body>`+
			`<script>var ytInitialPlayerResponse = %s;</script></body></html>`, fakePlayer)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0" dur="2">step one measure</text>`+
			`<text start="2" dur="2">step two &amp;amp; repeat</text></transcript>`)
	})
	mux.HandleFunc("/v1beta/models/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"- measure first\n- then repeat"}]}}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestE2E_Transcript(t *testing.T) {
	repoRoot := mustRepoRoot(t)
	srv := fakeBackends(t)

	res := runCLI(t, repoRoot, []string{"transcript", "https://youtu.be/dQw4w9WgXcQ"}, map[string]string{
		"YTNOTES_YOUTUBE_BASE_URL":    srv.URL,
		"YTNOTES_TRANSCRIPT_PROVIDER": "youtube",
	})
	if res.exitCode != 0 {
		t.Fatalf("exit code %d\noutput:\n%s", res.exitCode, res.output)
	}
	if !strings.Contains(res.output, "step one measure step two & repeat") {
		t.Fatalf("unexpected output:\n%s", res.output)
	}
}

func TestE2E_NotesRaw(t *testing.T) {
	repoRoot := mustRepoRoot(t)
	srv := fakeBackends(t)

	res := runCLI(t, repoRoot, []string{"notes", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "--raw"}, map[string]string{
		"YTNOTES_YOUTUBE_BASE_URL": srv.URL,
		"YTNOTES_SUMMARY_PROVIDER": "gemini",
		"GOOGLE_API_KEY":           "dummy",
		"GEMINI_BASE_URL":          srv.URL,
	})
	if res.exitCode != 0 {
		t.Fatalf("exit code %d\noutput:\n%s", res.exitCode, res.output)
	}
	for _, want := range []string{"# Fake Talk", "## Detailed Notes:", "- measure first", "- then repeat"} {
		if !strings.Contains(res.output, want) {
			t.Fatalf("expected output to contain %q\noutput:\n%s", want, res.output)
		}
	}
}

func TestE2E_MissingKeyFailsAfterTranscript(t *testing.T) {
	repoRoot := mustRepoRoot(t)
	srv := fakeBackends(t)

	runRobustCases(t, repoRoot, []robustCase{
		{
			name: "gemini key missing",
			args: staticArgs("notes", "https://youtu.be/dQw4w9WgXcQ"),
			env: map[string]string{
				"YTNOTES_YOUTUBE_BASE_URL": srv.URL,
				"GOOGLE_API_KEY":           "",
			},
			wantContains: []string{"GOOGLE_API_KEY is required"},
		},
		{
			name: "openrouter key missing",
			args: staticArgs("notes", "https://youtu.be/dQw4w9WgXcQ", "--summary-provider", "openrouter"),
			env: map[string]string{
				"YTNOTES_YOUTUBE_BASE_URL": srv.URL,
				"OPENROUTER_API_KEY":       "",
			},
			wantContains: []string{"OPENROUTER_API_KEY is required"},
		},
	})
}
