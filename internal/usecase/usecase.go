package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/forPelevin/ytnotes/internal/domain/transcript"
	"github.com/forPelevin/ytnotes/internal/domain/youtube"
	"github.com/forPelevin/ytnotes/internal/ports"
	"github.com/forPelevin/ytnotes/internal/types"
	"github.com/sirupsen/logrus"
)

const DefaultPrompt = `You are a YouTube video summarizer. You will take the transcript text
and summarize the entire video, providing the important points in 250 words. Please provide the summary of the text given here: `

var ErrInvalidURL = errors.New("Invalid YouTube URL") //nolint:staticcheck // user-facing sentence

type Deps struct {
	Transcripts ports.TranscriptSource
	Summarizer  ports.Summarizer
	Log         logrus.FieldLogger
}

type Usecase struct {
	d      Deps
	prompt string
}

func New(d Deps) Usecase {
	if d.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Log = l
	}
	return Usecase{d: d, prompt: DefaultPrompt}
}

// WithPrompt returns a copy of u that sends prompt ahead of the transcript.
func (u Usecase) WithPrompt(prompt string) Usecase {
	if prompt != "" {
		u.prompt = prompt
	}
	return u
}

// Preview parses raw and derives the thumbnail. No network calls.
func (u Usecase) Preview(raw string) (types.Notes, error) {
	id, ok := youtube.ParseVideoID(raw)
	if !ok {
		return types.Notes{}, ErrInvalidURL
	}
	return types.Notes{VideoID: id, ThumbnailURL: youtube.ThumbnailURL(id)}, nil
}

// Transcript fetches and flattens the transcript of the video raw points to.
// Provider errors are returned unwrapped so their message reaches the user
// unchanged.
func (u Usecase) Transcript(ctx context.Context, raw string) (types.Notes, error) {
	n, err := u.Preview(raw)
	if err != nil {
		return types.Notes{}, err
	}
	log := u.d.Log.WithField("video_id", n.VideoID)

	log.Info("fetching transcript")
	tr, err := u.d.Transcripts.Fetch(ctx, n.VideoID)
	if err != nil {
		if errors.Is(err, transcript.ErrNoTranscript) {
			log.WithError(err).Warn("no transcript")
			return n, transcript.ErrNoTranscript
		}
		log.WithError(err).Error("transcript fetch failed")
		return n, err
	}
	n.Title = tr.Title
	n.Transcript = transcript.Normalize(tr.Fragments)
	log.WithFields(logrus.Fields{
		"fragments": len(tr.Fragments),
		"chars":     len(n.Transcript),
	}).Info("transcript ready")
	return n, nil
}

// Notes runs parse, transcript and summarization in sequence. Each step
// stops the request on failure; nothing is retried.
func (u Usecase) Notes(ctx context.Context, raw string) (types.Notes, error) {
	n, err := u.Transcript(ctx, raw)
	if err != nil {
		return n, err
	}
	log := u.d.Log.WithField("video_id", n.VideoID)

	log.Info("summarizing transcript")
	summary, err := u.d.Summarizer.Summarize(ctx, u.prompt, n.Transcript)
	if err != nil {
		log.WithError(err).Error("summarization failed")
		return n, err
	}
	n.Summary = summary
	log.WithField("chars", len(summary)).Info("notes ready")
	return n, nil
}
