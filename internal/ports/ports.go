package ports

import (
	"context"

	"github.com/forPelevin/ytnotes/internal/types"
)

// TranscriptSource returns the ordered caption fragments of a video, or an
// error wrapping transcript.ErrNoTranscript when the video has none.
type TranscriptSource interface {
	Fetch(ctx context.Context, id types.VideoID) (types.Transcript, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, prompt, transcript string) (string, error)
}
