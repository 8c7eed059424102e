package types

type VideoID string

type Transcript struct {
	VideoID   VideoID    `json:"video_id"`
	Title     string     `json:"title,omitempty"`
	Language  string     `json:"language,omitempty"`
	Fragments []Fragment `json:"fragments"`
}

// Fragment is one caption entry. Start and Duration are seconds.
type Fragment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration,omitempty"`
}

type Notes struct {
	VideoID      VideoID `json:"video_id"`
	Title        string  `json:"title,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Transcript   string  `json:"transcript,omitempty"`
	Summary      string  `json:"summary,omitempty"`
}
