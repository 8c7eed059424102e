package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forPelevin/ytnotes/internal/domain/subtitles"
	"github.com/forPelevin/ytnotes/internal/domain/transcript"
	"github.com/forPelevin/ytnotes/internal/domain/youtube"
	"github.com/forPelevin/ytnotes/internal/types"
)

type Adapter struct {
	bin   string
	langs []string
}

func New(binPath string, langs []string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Adapter{bin: binPath, langs: langs}
}

func (a *Adapter) Fetch(ctx context.Context, id types.VideoID) (types.Transcript, error) {
	dir, err := os.MkdirTemp("", "ytnotes-subs-")
	if err != nil {
		return types.Transcript{}, err
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-sub",
		"--write-auto-sub",
		"--sub-format", "vtt",
		"--sub-langs", strings.Join(a.langs, ","),
		"--no-simulate",
		"--print", "title",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		youtube.WatchURL(id),
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	out, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = ee.Stderr
		}
		return types.Transcript{}, fmt.Errorf("yt-dlp failed: %w\n%s", err, strings.TrimSpace(string(stderr)))
	}

	path, lang, ok := pickSubtitle(dir, id, a.langs)
	if !ok {
		return types.Transcript{}, fmt.Errorf("yt-dlp wrote no subtitles for %s: %w", id, transcript.ErrNoTranscript)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, err
	}
	frags, err := subtitles.ParseVTT(string(b))
	if err != nil {
		return types.Transcript{}, err
	}
	if len(frags) == 0 {
		return types.Transcript{}, fmt.Errorf("subtitles for %s are empty: %w", id, transcript.ErrNoTranscript)
	}
	return types.Transcript{
		VideoID:   id,
		Title:     firstLine(string(out)),
		Language:  lang,
		Fragments: frags,
	}, nil
}

// pickSubtitle finds "<id>.<lang>.vtt" for the first preferred language that
// yt-dlp wrote, falling back to any VTT file in dir.
func pickSubtitle(dir string, id types.VideoID, langs []string) (string, string, bool) {
	for _, lang := range langs {
		p := filepath.Join(dir, fmt.Sprintf("%s.%s.vtt", id, lang))
		if _, err := os.Stat(p); err == nil {
			return p, lang, true
		}
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if len(matches) == 0 {
		return "", "", false
	}
	sort.Strings(matches)
	base := strings.TrimSuffix(filepath.Base(matches[0]), ".vtt")
	lang := strings.TrimPrefix(filepath.Ext(base), ".")
	return matches[0], lang, true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
