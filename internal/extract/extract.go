package extract

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/ytreport/internal/captions"
	"fknsrs.biz/p/ytreport/internal/ctxclock"
	"fknsrs.biz/p/ytreport/internal/ctxlogger"
	"fknsrs.biz/p/ytreport/internal/formatutil"
	"fknsrs.biz/p/ytreport/internal/locale"
	"fknsrs.biz/p/ytreport/internal/optional"
	"fknsrs.biz/p/ytreport/internal/report"
	"fknsrs.biz/p/ytreport/internal/summary"
	"fknsrs.biz/p/ytreport/internal/video"
)

type MetadataProvider interface {
	Resolve(ctx context.Context, url string, opts video.ResolveOptions) (*video.Record, error)
}

type TranscriptSource interface {
	Lookup(ctx context.Context, url string) optional.Value[string]
}

type Deps struct {
	Metadata    MetadataProvider
	Transcripts TranscriptSource
	Renderer    *report.Renderer
	Text        *locale.Catalog
	Languages   []string
}

type Result struct {
	Record  *video.Record
	Display *video.Display
	Path    string
	Summary summary.Summary
}

// FormatDisplay derives the report strings for rec.
func FormatDisplay(rec *video.Record, c *locale.Catalog) *video.Display {
	return &video.Display{
		Duration:     formatutil.Duration(rec.DurationSeconds, c),
		UploadDate:   formatutil.Date(rec.UploadDate, c),
		ViewCount:    formatutil.Count(rec.ViewCount, c),
		LikeCount:    formatutil.Count(rec.LikeCount, c),
		CommentCount: formatutil.Count(rec.CommentCount, c),
		ExtractedAt:  formatutil.Timestamp(rec.ExtractedAt),
	}
}

// Run extracts url and writes its report into outputDir. Only a metadata
// failure is returned as an error; a missing transcript just leaves the
// report without one.
func Run(ctx context.Context, url, outputDir string, deps Deps) (*Result, error) {
	text := deps.Text
	if text == nil {
		text = locale.English
	}

	ctx = ctxlogger.WithFields(ctx, logrus.Fields{"video.url": url})
	l := ctxlogger.GetLogger(ctx)

	now, err := ctxclock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract.Run: %w", err)
	}

	priorities := captions.Priorities(deps.Languages)

	rec, err := deps.Metadata.Resolve(ctx, url, video.ResolveOptions{
		Quiet:             true,
		CaptionLanguages:  priorities,
		ListCaptionTracks: true,
	})
	if err != nil {
		return nil, fmt.Errorf("extract.Run: %w", err)
	}

	l.WithFields(logrus.Fields{
		"video.id":                 rec.VideoID,
		"video.captions.declared":  len(rec.Captions.Declared),
		"video.captions.automatic": len(rec.Captions.Automatic),
	}).Info("resolved video")

	rec.ExtractedAt = now

	if deps.Transcripts != nil {
		rec.Transcript = deps.Transcripts.Lookup(ctx, url)
	}

	rec.SubtitleAvailability = captions.Summarize(rec.Captions.Declared, rec.Captions.Automatic, priorities, text)
	rec.ApplyDefaults(text)

	display := FormatDisplay(rec, text)

	p, err := deps.Renderer.Save(outputDir, rec, display)
	if err != nil {
		return nil, fmt.Errorf("extract.Run: %w", err)
	}

	l.WithFields(logrus.Fields{
		"report.path":       p,
		"report.transcript": rec.Transcript.IsSome(),
	}).Info("saved report")

	return &Result{
		Record:  rec,
		Display: display,
		Path:    p,
		Summary: summary.New(summary.Input{
			Title:       rec.Title,
			Channel:     rec.Channel,
			Duration:    display.Duration,
			ViewCount:   display.ViewCount,
			Description: rec.Description,
			Transcript:  rec.Transcript,
			SavedFile:   p,
		}),
	}, nil
}
