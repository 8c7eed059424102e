package subtitles

import (
	"bufio"
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/ytnotes/internal/types"
)

var (
	cueTimingRE = regexp.MustCompile(`^(\S+)\s+-->\s+(\S+)`)
	tagRE       = regexp.MustCompile(`<[^>]+>`)
)

// ParseVTT turns a WebVTT document into transcript fragments, one per cue.
// Inline tags are stripped. A line equal to the previously kept line is
// dropped, since auto-generated captions roll lines forward across cues.
func ParseVTT(src string) ([]types.Fragment, error) {
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		out      []types.Fragment
		cur      *types.Fragment
		lines    []string
		lastLine string
		inHeader = true
	)
	flush := func() {
		if cur == nil {
			return
		}
		if len(lines) > 0 {
			cur.Text = strings.Join(lines, " ")
			out = append(out, *cur)
		}
		cur = nil
		lines = lines[:0]
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			flush()
			inHeader = false
			continue
		}
		if m := cueTimingRE.FindStringSubmatch(line); m != nil {
			flush()
			inHeader = false
			start, err := parseTimestamp(m[1])
			if err != nil {
				return nil, err
			}
			end, err := parseTimestamp(m[2])
			if err != nil {
				return nil, err
			}
			cur = &types.Fragment{Start: start.Seconds(), Duration: (end - start).Seconds()}
			continue
		}
		if inHeader || cur == nil {
			// WEBVTT header, NOTE/STYLE blocks and cue identifiers.
			continue
		}
		text := strings.TrimSpace(html.UnescapeString(tagRE.ReplaceAllString(line, "")))
		if text == "" {
			continue
		}
		if text == lastLine {
			continue
		}
		lines = append(lines, text)
		lastLine = text
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vtt: %w", err)
	}
	flush()
	return out, nil
}

// parseTimestamp accepts "hh:mm:ss.ttt" and "mm:ss.ttt". SRT-style commas
// are tolerated.
func parseTimestamp(s string) (time.Duration, error) {
	s = strings.Replace(s, ",", ".", 1)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid vtt timestamp %q", s)
	}
	var h, m int
	var err error
	if len(parts) == 3 {
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("invalid vtt timestamp %q: %w", s, err)
		}
		parts = parts[1:]
	}
	if m, err = strconv.Atoi(parts[0]); err != nil {
		return 0, fmt.Errorf("invalid vtt timestamp %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid vtt timestamp %q: %w", s, err)
	}
	ms := time.Duration(math.Round(sec*1000)) * time.Millisecond
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + ms
	return d, nil
}
