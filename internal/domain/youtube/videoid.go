package youtube

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/forPelevin/ytnotes/internal/types"
)

// idPart stops at the first '&', newline, '?' or '#'.
const idPart = `([^&\n?#]+)`

type matcher func(string) (string, bool)

// matchers run in priority order; the first hit wins.
var matchers = []matcher{
	regexMatcher(`(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)` + idPart),
	regexMatcher(`youtube\.com/embed/` + idPart),
	regexMatcher(`youtube\.com/(?:shorts|live)/` + idPart),
}

func regexMatcher(pattern string) matcher {
	re := regexp.MustCompile(pattern)
	return func(s string) (string, bool) {
		m := re.FindStringSubmatch(s)
		if len(m) < 2 || m[1] == "" {
			return "", false
		}
		return m[1], true
	}
}

// ParseVideoID extracts the video identifier from a watch, short-link, embed,
// shorts or live URL. The second result is false when nothing matched.
func ParseVideoID(raw string) (types.VideoID, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, m := range matchers {
		if id, ok := m(s); ok {
			return types.VideoID(id), true
		}
	}
	return "", false
}

func ThumbnailURL(id types.VideoID) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/0.jpg", id)
}

func WatchURL(id types.VideoID) string {
	return "https://www.youtube.com/watch?v=" + string(id)
}
