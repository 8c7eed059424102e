package watchpage

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/forPelevin/ytnotes/internal/domain/transcript"
	"github.com/forPelevin/ytnotes/internal/types"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	playerResponseMarker = "ytInitialPlayerResponse = "

	maxPageBytes    = 6 << 20
	maxCaptionBytes = 2 << 20
)

// Adapter reads captions the way a browser does: the watch page embeds the
// player response, which lists caption tracks with timedtext URLs.
type Adapter struct {
	baseURL string
	langs   []string
	client  *http.Client
}

func New(baseURL string, langs []string) *Adapter {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Adapter{baseURL: baseURL, langs: langs, client: &http.Client{Timeout: 30 * time.Second}}
}

type playerResponse struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	VideoDetails struct {
		Title string `json:"title"`
	} `json:"videoDetails"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

func (a *Adapter) Fetch(ctx context.Context, id types.VideoID) (types.Transcript, error) {
	watchURL := a.baseURL + "/watch?v=" + url.QueryEscape(string(id))
	page, err := a.get(ctx, watchURL, maxPageBytes)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("watch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return types.Transcript{}, fmt.Errorf("parse watch page: %w", err)
	}
	pr, err := findPlayerResponse(doc)
	if err != nil {
		return types.Transcript{}, err
	}

	if st := pr.PlayabilityStatus; st != nil && st.Status != "" && st.Status != "OK" {
		reason := st.Reason
		if reason == "" {
			reason = st.Status
		}
		return types.Transcript{}, fmt.Errorf("video %s is unavailable: %s", id, reason)
	}
	if pr.Captions == nil || len(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return types.Transcript{}, fmt.Errorf("video %s has no captions: %w", id, transcript.ErrNoTranscript)
	}

	track, err := pickTrack(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, a.langs)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("video %s: %w", id, err)
	}
	captionURL, err := a.resolve(track.BaseURL)
	if err != nil {
		return types.Transcript{}, err
	}
	body, err := a.get(ctx, captionURL, maxCaptionBytes)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("timedtext: %w", err)
	}
	frags, err := parseTimedText(body)
	if err != nil {
		return types.Transcript{}, err
	}
	if len(frags) == 0 {
		return types.Transcript{}, fmt.Errorf("video %s has an empty caption track: %w", id, transcript.ErrNoTranscript)
	}

	title := pr.VideoDetails.Title
	if title == "" {
		title = pageTitle(doc)
	}
	return types.Transcript{
		VideoID:   id,
		Title:     title,
		Language:  track.LanguageCode,
		Fragments: frags,
	}, nil
}

func (a *Adapter) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

func (a *Adapter) resolve(ref string) (string, error) {
	base, err := url.Parse(a.baseURL + "/")
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("caption url %q: %w", ref, err)
	}
	return base.ResolveReference(u).String(), nil
}

func findPlayerResponse(doc *goquery.Document) (playerResponse, error) {
	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		i := strings.Index(text, playerResponseMarker)
		if i < 0 {
			return true
		}
		raw = extractJSON([]byte(text[i+len(playerResponseMarker):]))
		return raw == nil
	})
	if raw == nil {
		return playerResponse{}, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	var pr playerResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return playerResponse{}, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return pr, nil
}

// extractJSON returns the balanced JSON object at the start of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

var errPoTokenOnly = errors.New("all caption tracks require a PoToken")

// pickTrack prefers a manual track in the first matching language, then an
// auto-generated one. Tracks that need a PoToken cannot be fetched server-side.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, error) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !strings.Contains(t.BaseURL, "&exp=xpe") {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errPoTokenOnly
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, nil
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, nil
			}
		}
	}
	return captionTrack{}, fmt.Errorf("no caption track in %s: %w", strings.Join(langs, ", "), transcript.ErrNoTranscript)
}

var tagRE = regexp.MustCompile(`<[^>]+>`)

func parseTimedText(body []byte) ([]types.Fragment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	out := make([]types.Fragment, 0, len(tt.Lines))
	for _, ln := range tt.Lines {
		// Caption text arrives HTML-escaped inside the XML escaping.
		text := html.UnescapeString(ln.Text)
		text = tagRE.ReplaceAllString(text, "")
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(ln.Start, 64)
		dur, _ := strconv.ParseFloat(ln.Dur, 64)
		out = append(out, types.Fragment{Text: text, Start: start, Duration: dur})
	}
	return out, nil
}

func pageTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[name="title"]`).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	t := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.TrimSpace(strings.TrimSuffix(t, "- YouTube"))
}
