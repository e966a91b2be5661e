package ytdl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/ytreport/internal/ctxlogger"
	"fknsrs.biz/p/ytreport/internal/ptr"
	"fknsrs.biz/p/ytreport/internal/video"
)

const (
	ProgramName = "yt-dlp"
)

// TrackSet is the key list of a yt-dlp caption map ("subtitles" or
// "automatic_captions"), kept in document order.
type TrackSet []string

func (t *TrackSet) UnmarshalJSON(d []byte) error {
	if bytes.Equal(bytes.TrimSpace(d), []byte("null")) {
		*t = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(d))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("ytdl.TrackSet.UnmarshalJSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ytdl.TrackSet.UnmarshalJSON: expected object; got %v", tok)
	}

	var a TrackSet

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("ytdl.TrackSet.UnmarshalJSON: %w", err)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ytdl.TrackSet.UnmarshalJSON: expected string key; got %v", tok)
		}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return fmt.Errorf("ytdl.TrackSet.UnmarshalJSON: could not read tracks for %q: %w", key, err)
		}

		a = append(a, key)
	}

	*t = a

	return nil
}

// Info mirrors the parts of `yt-dlp --dump-single-json` output that end up
// in a report.
type Info struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Uploader          string   `json:"uploader"`
	UploaderURL       string   `json:"uploader_url"`
	Channel           string   `json:"channel"`
	ChannelURL        string   `json:"channel_url"`
	Description       string   `json:"description"`
	Thumbnail         string   `json:"thumbnail"`
	Tags              []string `json:"tags"`
	Categories        []string `json:"categories"`
	Duration          *float64 `json:"duration"`
	ViewCount         *float64 `json:"view_count"`
	LikeCount         *float64 `json:"like_count"`
	CommentCount      *float64 `json:"comment_count"`
	UploadDate        string   `json:"upload_date"`
	Subtitles         TrackSet `json:"subtitles"`
	AutomaticCaptions TrackSet `json:"automatic_captions"`
}

// Record converts the yt-dlp document into a video record for url.
func (i *Info) Record(url string) *video.Record {
	channel, channelURL := i.Uploader, i.UploaderURL
	if channel == "" {
		channel = i.Channel
	}
	if channelURL == "" {
		channelURL = i.ChannelURL
	}

	return &video.Record{
		URL:             url,
		VideoID:         i.ID,
		Title:           i.Title,
		Channel:         channel,
		ChannelURL:      channelURL,
		Description:     i.Description,
		ThumbnailURL:    i.Thumbnail,
		Tags:            i.Tags,
		Categories:      i.Categories,
		DurationSeconds: ptr.Int64FromFloat(i.Duration),
		ViewCount:       ptr.Int64FromFloat(i.ViewCount),
		LikeCount:       ptr.Int64FromFloat(i.LikeCount),
		CommentCount:    ptr.Int64FromFloat(i.CommentCount),
		UploadDate:      i.UploadDate,
		Captions: video.Captions{
			Declared:  i.Subtitles,
			Automatic: i.AutomaticCaptions,
		},
	}
}

// Client resolves video metadata by running yt-dlp.
type Client struct {
	Program string
}

func New(program string) *Client {
	if program == "" {
		program = ProgramName
	}

	return &Client{Program: program}
}

func (c *Client) makeProcess(ctx context.Context, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, c.Program, args...)
}

func (c *Client) runCommandAndGetJSON(ctx context.Context, args []string, output interface{}) error {
	stdout, err := c.makeProcess(ctx, args).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := lastLine(exitErr.Stderr); msg != "" {
				return fmt.Errorf("%w: %s", err, msg)
			}
		}

		return err
	}

	if err := json.Unmarshal(stdout, output); err != nil {
		return fmt.Errorf("failed to unmarshal json: %w", err)
	}

	return nil
}

func lastLine(d []byte) string {
	lines := strings.Split(strings.TrimSpace(string(d)), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}

func BuildArgs(url string, opts video.ResolveOptions) []string {
	args := []string{"--dump-single-json", "--skip-download", "--no-playlist"}

	if opts.Quiet {
		args = append(args, "--quiet", "--no-warnings")
	}

	if opts.ListCaptionTracks {
		args = append(args, "--write-subs", "--write-auto-subs")
		if len(opts.CaptionLanguages) > 0 {
			args = append(args, "--sub-langs", strings.Join(opts.CaptionLanguages, ","))
		}
	}

	return append(args, "--", url)
}

func (c *Client) GetInfo(ctx context.Context, url string, opts video.ResolveOptions) (*Info, error) {
	args := BuildArgs(url, opts)

	ctxlogger.GetLogger(ctx).WithFields(logrus.Fields{
		"ytdl.program": c.Program,
		"ytdl.args":    strings.Join(args, " "),
	}).Debug("running yt-dlp")

	var info Info
	if err := c.runCommandAndGetJSON(ctx, args, &info); err != nil {
		return nil, fmt.Errorf("ytdl.GetInfo: %w", err)
	}

	return &info, nil
}

func (c *Client) Resolve(ctx context.Context, url string, opts video.ResolveOptions) (*video.Record, error) {
	info, err := c.GetInfo(ctx, url, opts)
	if err != nil {
		return nil, video.NewExtractionError(url, err)
	}

	return info.Record(url), nil
}
