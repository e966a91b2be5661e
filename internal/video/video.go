package video

import (
	"fmt"
	"time"

	"fknsrs.biz/p/ytreport/internal/locale"
	"fknsrs.biz/p/ytreport/internal/optional"
)

// Captions lists caption languages in the order the provider reported them.
type Captions struct {
	Declared  []string
	Automatic []string
}

type Record struct {
	URL     string
	VideoID string

	Title        string
	Channel      string
	ChannelURL   string
	Description  string
	ThumbnailURL string
	Tags         []string
	Categories   []string

	DurationSeconds *int64
	ViewCount       *int64
	LikeCount       *int64
	CommentCount    *int64

	// UploadDate is kept in the provider's YYYYMMDD form.
	UploadDate  string
	ExtractedAt time.Time

	Captions             Captions
	SubtitleAvailability string
	Transcript           optional.Value[string]
}

// Display carries the human-readable strings derived from a Record.
type Display struct {
	Duration     string
	UploadDate   string
	ViewCount    string
	LikeCount    string
	CommentCount string
	ExtractedAt  string
}

type ResolveOptions struct {
	Quiet             bool
	CaptionLanguages  []string
	ListCaptionTracks bool
}

// ApplyDefaults fills in the placeholders used when a provider omits the
// basic descriptive fields.
func (r *Record) ApplyDefaults(c *locale.Catalog) {
	if r.Title == "" {
		r.Title = c.NoTitle
	}
	if r.Channel == "" {
		r.Channel = c.Unknown
	}
	if r.Description == "" {
		r.Description = c.NoDescription
	}
}

type ExtractionError struct {
	URL string
	Err error
}

func NewExtractionError(url string, err error) *ExtractionError {
	return &ExtractionError{URL: url, Err: err}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract video information from %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
