package transcript

import (
	"errors"
	"strings"

	"github.com/forPelevin/ytnotes/internal/types"
)

// ErrNoTranscript is returned by transcript sources when the video has no
// usable caption track. Its message is shown to users as-is.
var ErrNoTranscript = errors.New("No transcript available for this video.") //nolint:staticcheck // user-facing sentence

// Normalize joins fragment texts with single spaces, in order. Timing is dropped.
func Normalize(frags []types.Fragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, " ")
}
