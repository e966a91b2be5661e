package transcript

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/ytreport/internal/captions"
	"fknsrs.biz/p/ytreport/internal/catchpanic"
	"fknsrs.biz/p/ytreport/internal/ctxhttpclient"
	"fknsrs.biz/p/ytreport/internal/ctxlogger"
	"fknsrs.biz/p/ytreport/internal/optional"
	"fknsrs.biz/p/ytreport/internal/stackutil"
	"fknsrs.biz/p/ytreport/internal/ytdirect"
	"fknsrs.biz/p/ytreport/internal/ytutil"
)

const maxTimedTextSize = 4 << 20

var (
	ErrNoTracks = errors.New("no caption tracks")
	ErrEmpty    = errors.New("caption track has no text")
)

type Snippet struct {
	Start    float64
	Duration float64
	Text     string
}

type Provider interface {
	Fetch(ctx context.Context, videoID string, languages []string) ([]Snippet, error)
}

type VideoSource interface {
	GetVideo(ctx context.Context, id string) (*ytdirect.Video, error)
}

// Client reads caption tracks listed on the watch page and downloads the
// chosen one in timedtext form.
type Client struct {
	videos VideoSource
}

func New(videos VideoSource) *Client {
	if videos == nil {
		videos = ytdirect.New()
	}

	return &Client{videos: videos}
}

func (c *Client) Fetch(ctx context.Context, videoID string, languages []string) ([]Snippet, error) {
	v, err := c.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("transcript.Client.Fetch: %w", err)
	}

	track, ok := PickTrack(v.CaptionTracks, captions.Priorities(languages))
	if !ok {
		return nil, fmt.Errorf("transcript.Client.Fetch: %w", ErrNoTracks)
	}

	ctxlogger.GetLogger(ctx).WithFields(logrus.Fields{
		"transcript.language": track.LanguageCode,
		"transcript.kind":     track.Kind,
	}).Debug("fetching caption track")

	snippets, err := fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("transcript.Client.Fetch: %w", err)
	}

	return snippets, nil
}

// PickTrack prefers a declared track in one of the languages, then an
// automatic one, then whatever is listed first.
func PickTrack(tracks []ytdirect.CaptionTrack, languages []string) (ytdirect.CaptionTrack, bool) {
	if len(tracks) == 0 {
		return ytdirect.CaptionTrack{}, false
	}

	for _, lang := range languages {
		for _, t := range tracks {
			if t.LanguageCode == lang && !t.Automatic() {
				return t, true
			}
		}
	}

	for _, lang := range languages {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}

	return tracks[0], true
}

func fetchTimedText(ctx context.Context, u string) ([]Snippet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("transcript.fetchTimedText: %w", err)
	}

	req.Header.Set("User-Agent", ytdirect.UserAgent)

	res, err := ctxhttpclient.GetHTTPClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript.fetchTimedText: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript.fetchTimedText: status code: %d", res.StatusCode)
	}

	snippets, err := ParseTimedText(io.LimitReader(res.Body, maxTimedTextSize))
	if err != nil {
		return nil, fmt.Errorf("transcript.fetchTimedText: %w", err)
	}

	return snippets, nil
}

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Text     string  `xml:",chardata"`
}

var formattingTags = regexp.MustCompile(`</?[^>]+>`)

// ParseTimedText decodes a timedtext document. Line text is entity-escaped a
// second time inside the XML, and may carry inline formatting tags; both
// are removed. Blank lines are dropped.
func ParseTimedText(rd io.Reader) ([]Snippet, error) {
	var tt timedText
	if err := xml.NewDecoder(rd).Decode(&tt); err != nil {
		return nil, fmt.Errorf("transcript.ParseTimedText: %w", err)
	}

	var a []Snippet

	for _, line := range tt.Lines {
		text := strings.TrimSpace(formattingTags.ReplaceAllString(html.UnescapeString(line.Text), ""))
		if text == "" {
			continue
		}

		a = append(a, Snippet{Start: line.Start, Duration: line.Duration, Text: text})
	}

	return a, nil
}

// Join renders snippets as plain text, one per line.
func Join(snippets []Snippet) string {
	lines := make([]string, len(snippets))
	for i, s := range snippets {
		lines[i] = s.Text
	}

	return strings.Join(lines, "\n")
}

// Fetcher turns transcript retrieval into an optional result. Nothing it
// runs into is fatal to the caller.
type Fetcher struct {
	Provider  Provider
	Languages []string
}

func (f *Fetcher) Lookup(ctx context.Context, u string) optional.Value[string] {
	l := ctxlogger.GetLogger(ctx).WithField("transcript.url", u)

	id, err := ytutil.ExtractVideoID(u)
	if err != nil {
		l.WithError(err).Warn("could not find video id for transcript")
		return optional.None[string]()
	}

	l = l.WithField("transcript.video_id", id)

	snippets, err := catchpanic.CatchErr1(func() ([]Snippet, error) {
		return f.Provider.Fetch(ctx, id, f.Languages)
	})
	if err != nil {
		var panicErr *catchpanic.PanicError
		if errors.As(err, &panicErr) {
			l = l.WithField("transcript.panic_site", firstFrame(panicErr))
		}

		l.WithError(err).Warn("could not fetch transcript")
		return optional.None[string]()
	}

	text := Join(snippets)
	if strings.TrimSpace(text) == "" {
		l.WithError(ErrEmpty).Warn("could not fetch transcript")
		return optional.None[string]()
	}

	l.WithField("transcript.snippets", len(snippets)).Debug("fetched transcript")

	return optional.Some(text)
}

func firstFrame(err *catchpanic.PanicError) string {
	if len(err.Stack) == 0 {
		return ""
	}

	// the first frame is the recover handler itself
	if len(err.Stack) > 1 {
		return stackutil.FormatStackFrame(err.Stack[1])
	}

	return stackutil.FormatStackFrame(err.Stack[0])
}
