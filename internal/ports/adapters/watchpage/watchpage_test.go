package watchpage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/forPelevin/ytnotes/internal/domain/transcript"
)

const captionsXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0" dur="1.2">Hello</text>` +
	`<text start="1.2" dur="0.8">world &amp;#39;s</text>` +
	`<text start="2" dur="1"></text>` +
	`<text start="3.5" dur="2">line
break</text></transcript>`

func watchHTML(playerJSON string) string {
	return `<html><head><title>Great Talk - YouTube</title>` +
		`<meta name="title" content="Great Talk"></head><body>` +
		`<script>var other = {"a":1};</script>` +
		`<script>var ytInitialPlayerResponse = ` + playerJSON + `;var meta = {};</script>` +
		`</body></html>`
}

func newServer(t *testing.T, playerJSON string, captionStatus int) (*httptest.Server, *int) {
	t.Helper()
	captionHits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "abc123" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, watchHTML(playerJSON))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		captionHits++
		if captionStatus != http.StatusOK {
			w.WriteHeader(captionStatus)
			return
		}
		if r.URL.Query().Get("lang") != "en" {
			t.Errorf("unexpected caption lang %q", r.URL.Query().Get("lang"))
		}
		fmt.Fprint(w, captionsXML)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &captionHits
}

const okPlayer = `{"playabilityStatus":{"status":"OK"},` +
	`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"/api/timedtext?v=abc123&lang=de","languageCode":"de"},` +
	`{"baseUrl":"/api/timedtext?v=abc123&lang=en&kind=asr","languageCode":"en","kind":"asr"},` +
	`{"baseUrl":"/api/timedtext?v=abc123&lang=en","languageCode":"en"}]}},` +
	`"videoDetails":{"title":"Great Talk {with braces}"}}`

func TestFetch_ParsesCaptions(t *testing.T) {
	srv, hits := newServer(t, okPlayer, http.StatusOK)
	a := New(srv.URL, []string{"en"})

	tr, err := a.Fetch(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if *hits != 1 {
		t.Fatalf("expected 1 caption request, got %d", *hits)
	}
	if tr.Title != "Great Talk {with braces}" || tr.Language != "en" || tr.VideoID != "abc123" {
		t.Fatalf("unexpected transcript header: %+v", tr)
	}
	want := []string{"Hello", "world 's", "line break"}
	if len(tr.Fragments) != len(want) {
		t.Fatalf("expected %d fragments, got %+v", len(want), tr.Fragments)
	}
	for i, w := range want {
		if tr.Fragments[i].Text != w {
			t.Fatalf("fragment %d = %q, want %q", i, tr.Fragments[i].Text, w)
		}
	}
	if tr.Fragments[1].Start != 1.2 || tr.Fragments[2].Duration != 2 {
		t.Fatalf("unexpected timing: %+v", tr.Fragments)
	}
	if got := transcript.Normalize(tr.Fragments); got != "Hello world 's line break" {
		t.Fatalf("unexpected normalized transcript: %q", got)
	}
}

func TestFetch_NoCaptions(t *testing.T) {
	srv, hits := newServer(t, `{"playabilityStatus":{"status":"OK"},"videoDetails":{"title":"x"}}`, http.StatusOK)
	_, err := New(srv.URL, nil).Fetch(context.Background(), "abc123")
	if !errors.Is(err, transcript.ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}
	if *hits != 0 {
		t.Fatalf("caption endpoint must not be called")
	}
}

func TestFetch_LanguageMissing(t *testing.T) {
	srv, _ := newServer(t, okPlayer, http.StatusOK)
	_, err := New(srv.URL, []string{"fr"}).Fetch(context.Background(), "abc123")
	if !errors.Is(err, transcript.ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}
}

func TestFetch_Unplayable(t *testing.T) {
	srv, _ := newServer(t, `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`, http.StatusOK)
	_, err := New(srv.URL, nil).Fetch(context.Background(), "abc123")
	if err == nil || errors.Is(err, transcript.ErrNoTranscript) {
		t.Fatalf("expected generic error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Fatalf("expected reason in error, got %v", err)
	}
}

func TestFetch_HTTPErrors(t *testing.T) {
	srv, _ := newServer(t, okPlayer, http.StatusTooManyRequests)
	_, err := New(srv.URL, nil).Fetch(context.Background(), "abc123")
	if err == nil || !strings.Contains(err.Error(), "timedtext: HTTP 429") {
		t.Fatalf("expected timedtext status error, got %v", err)
	}

	_, err = New(srv.URL, nil).Fetch(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "watch page: HTTP 404") {
		t.Fatalf("expected watch page status error, got %v", err)
	}
}

func TestFetch_NoPlayerResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>consent required</body></html>")
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Fetch(context.Background(), "abc123")
	if err == nil || !strings.Contains(err.Error(), "ytInitialPlayerResponse not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u1", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "u2&exp=xpe", LanguageCode: "en"},
		{BaseURL: "u3", LanguageCode: "es"},
	}
	got, err := pickTrack(tracks, []string{"en", "es"})
	if err != nil {
		t.Fatal(err)
	}
	if got.BaseURL != "u3" {
		t.Fatalf("expected manual es track before asr en, got %+v", got)
	}

	got, err = pickTrack(tracks[:2], []string{"en"})
	if err != nil || got.BaseURL != "u1" {
		t.Fatalf("expected asr fallback, got %+v err=%v", got, err)
	}

	if _, err := pickTrack(tracks[1:2], []string{"en"}); !errors.Is(err, errPoTokenOnly) {
		t.Fatalf("expected errPoTokenOnly, got %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":{"b":"}"}};var x`, `{"a":{"b":"}"}}`},
		{`{"a":"quote \" {"} tail`, `{"a":"quote \" {"}`},
		{`{"a":"slash\\"} tail`, `{"a":"slash\\"}`},
		{`nope`, ``},
		{`{"open":`, ``},
	}
	for _, tt := range tests {
		if got := string(extractJSON([]byte(tt.in))); got != tt.want {
			t.Fatalf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"meta title", `<html><head><meta name="title" content=" Meta "><title>Tag - YouTube</title></head></html>`, "Meta"},
		{"og title", `<html><head><meta property="og:title" content="OG"></head></html>`, "OG"},
		{"title tag", `<html><head><title>Fallback - YouTube</title></head></html>`, "Fallback"},
		{"none", `<html></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatal(err)
			}
			if got := pageTitle(doc); got != tt.want {
				t.Fatalf("pageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTimedText_Invalid(t *testing.T) {
	if _, err := parseTimedText([]byte("<transcript><text>")); err == nil {
		t.Fatalf("expected XML error")
	}
}
