package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/ytreport/internal/locale"
	"fknsrs.biz/p/ytreport/internal/optional"
	"fknsrs.biz/p/ytreport/internal/ptr"
	"fknsrs.biz/p/ytreport/internal/video"
)

var extractedAt = time.Date(2024, time.January, 15, 14, 30, 22, 123456000, time.UTC)

func testRecord() *video.Record {
	return &video.Record{
		URL:                  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:              "dQw4w9WgXcQ",
		Title:                "Never Gonna Give You Up",
		Channel:              "Rick Astley",
		ChannelURL:           "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw",
		Description:          "The official video.",
		ThumbnailURL:         "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		Tags:                 []string{"rick astley", "never gonna give you up"},
		DurationSeconds:      ptr.Int64(212),
		ViewCount:            ptr.Int64(1_500_000_000),
		UploadDate:           "20091025",
		ExtractedAt:          extractedAt,
		SubtitleAvailability: "[en captions available]",
	}
}

func testDisplay() *video.Display {
	return &video.Display{
		Duration:     "3:32",
		UploadDate:   "October 25, 2009",
		ViewCount:    "1.5B",
		LikeCount:    "unknown",
		CommentCount: "unknown",
		ExtractedAt:  "2024-01-15T14:30:22.123456",
	}
}

const expectedMarkdown = `# Never Gonna Give You Up

## Overview

| Field | Value |
|------|------|
| **Channel** | [Rick Astley](https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw) |
| **Uploaded** | October 25, 2009 |
| **Duration** | 3:32 |
| **Views** | 1.5B |
| **Likes** | unknown |
| **Comments** | unknown |
| **Source URL** | https://www.youtube.com/watch?v=dQw4w9WgXcQ |

## Thumbnail

![thumbnail](https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg)

## Tags

rick astley, never gonna give you up

## Description

The official video.

## Captions / Transcript

[en captions available]

## AI Summary Request

> Please summarize the content of this video.

---
*Extracted at: 2024-01-15T14:30:22.123456*
`

func newRenderer(t *testing.T, dir string, c *locale.Catalog) *Renderer {
	t.Helper()

	r, err := NewRenderer(dir, c)
	if err != nil {
		t.Fatal(err)
	}

	return r
}

func TestMarkdown(t *testing.T) {
	a := assert.New(t)

	md, err := newRenderer(t, "", locale.English).Markdown(testRecord(), testDisplay())
	if a.NoError(err) {
		a.Equal(expectedMarkdown, md)
	}
}

func TestMarkdownOptionalSections(t *testing.T) {
	a := assert.New(t)

	rec := testRecord()
	rec.ThumbnailURL = ""
	rec.Tags = nil

	md, err := newRenderer(t, "", locale.English).Markdown(rec, testDisplay())
	if !a.NoError(err) {
		return
	}

	a.NotContains(md, "## Thumbnail")
	a.NotContains(md, "## Tags")
	a.Contains(md, "| **Source URL** | https://www.youtube.com/watch?v=dQw4w9WgXcQ |\n\n## Description\n\nThe official video.\n\n")
}

func TestMarkdownTags(t *testing.T) {
	a := assert.New(t)

	rec := testRecord()
	rec.Tags = nil
	for i := 1; i <= 20; i++ {
		rec.Tags = append(rec.Tags, "t"+string(rune('a'+i-1)))
	}

	md, err := newRenderer(t, "", locale.English).Markdown(rec, testDisplay())
	if a.NoError(err) {
		a.Contains(md, "\nta, tb, tc, td, te, tf, tg, th, ti, tj, tk, tl, tm, tn, to\n")
		a.NotContains(md, ", tp")
	}
}

func TestMarkdownTranscript(t *testing.T) {
	for _, tc := range []struct {
		name       string
		transcript optional.Value[string]
		contains   string
		excludes   string
	}{
		{
			name:       "none",
			transcript: optional.None[string](),
			contains:   "## Captions / Transcript\n\n[en captions available]\n\n## AI Summary Request",
		},
		{
			name:       "short",
			transcript: optional.Some("line one\nline two"),
			contains:   "## Captions / Transcript\n\nline one\nline two\n\n## AI Summary Request",
			excludes:   "[en captions available]",
		},
		{
			name:       "exactly the limit",
			transcript: optional.Some(strings.Repeat("가", MaxTranscriptLength)),
			contains:   strings.Repeat("가", MaxTranscriptLength) + "\n\n## AI Summary Request",
			excludes:   "truncated",
		},
		{
			name:       "too long",
			transcript: optional.Some(strings.Repeat("a", MaxTranscriptLength+1)),
			contains:   strings.Repeat("a", MaxTranscriptLength) + "\n\n... (transcript truncated because it is too long)\n\n## AI Summary Request",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			rec := testRecord()
			rec.Transcript = tc.transcript

			md, err := newRenderer(t, "", locale.English).Markdown(rec, testDisplay())
			if !a.NoError(err) {
				return
			}

			a.Contains(md, tc.contains)
			if tc.excludes != "" {
				a.NotContains(md, tc.excludes)
			}
		})
	}
}

func TestMarkdownDeterministic(t *testing.T) {
	a := assert.New(t)

	r := newRenderer(t, "", locale.English)

	first, err := r.Markdown(testRecord(), testDisplay())
	a.NoError(err)

	d := testDisplay()
	d.ExtractedAt = "2030-12-31T23:59:59.000000"

	second, err := r.Markdown(testRecord(), d)
	a.NoError(err)

	footer := func(s string) string { return s[:strings.LastIndex(s, "---\n")] }

	a.Equal(footer(first), footer(second))
	a.NotEqual(first, second)
}

func TestMarkdownKorean(t *testing.T) {
	a := assert.New(t)

	md, err := newRenderer(t, "", locale.Korean).Markdown(testRecord(), testDisplay())
	if !a.NoError(err) {
		return
	}

	a.Contains(md, "## 기본 정보\n\n| 항목 | 내용 |\n|------|------|\n| **채널** |")
	a.Contains(md, "## AI 요약 요청\n\n> 이 영상의 내용을 요약해주세요.\n\n---\n*추출 시간: 2024-01-15T14:30:22.123456*\n")
}

func TestTemplateOverride(t *testing.T) {
	a := assert.New(t)

	dir := t.TempDir()

	a.NoError(os.WriteFile(filepath.Join(dir, "shared_summary.tmpl"), []byte(`{{ define "summary_request" }}custom request{{ end }}`), 0644))

	md, err := newRenderer(t, dir, locale.English).Markdown(testRecord(), testDisplay())
	if a.NoError(err) {
		a.Equal(expectedMarkdown, md, "shared templates alone do not replace the built in page")
	}

	a.NoError(os.WriteFile(filepath.Join(dir, "page_report.tmpl"), []byte(`{{ .Record.Title }} {{ template "summary_request" . }}`), 0644))

	md, err = newRenderer(t, dir, locale.English).Markdown(testRecord(), testDisplay())
	if a.NoError(err) {
		a.Equal("Never Gonna Give You Up custom request", md)
	}
}

func TestNewRendererErrors(t *testing.T) {
	a := assert.New(t)

	_, err := NewRenderer(filepath.Join(t.TempDir(), "missing"), locale.English)
	a.Error(err)

	f := filepath.Join(t.TempDir(), "file")
	a.NoError(os.WriteFile(f, nil, 0644))

	_, err = NewRenderer(f, locale.English)
	a.ErrorContains(err, "is not a directory")
}

func TestSave(t *testing.T) {
	a := assert.New(t)

	dir := t.TempDir()
	r := newRenderer(t, "", locale.English)

	rec := testRecord()
	rec.Title = `What? Is "this" a/b <test>`

	p, err := r.Save(dir, rec, testDisplay())
	if !a.NoError(err) {
		return
	}

	a.Equal(filepath.Join(dir, "youtube_What Is this ab test_20240115_143022.md"), p)

	d, err := os.ReadFile(p)
	if a.NoError(err) {
		a.True(strings.HasPrefix(string(d), "# What? Is \"this\" a/b <test>\n"))
	}

	p2, err := r.Save(dir, rec, testDisplay())
	if a.NoError(err) {
		a.Equal(filepath.Join(dir, "youtube_What Is this ab test_20240115_143022_2.md"), p2)
	}
}

func TestSaveTemplateError(t *testing.T) {
	a := assert.New(t)

	dir := t.TempDir()
	tplDir := t.TempDir()

	a.NoError(os.WriteFile(filepath.Join(tplDir, "page_report.tmpl"), []byte(`{{ .Record.Nope }}`), 0644))

	_, err := newRenderer(t, tplDir, locale.English).Save(dir, testRecord(), testDisplay())
	a.Error(err)

	entries, err := os.ReadDir(dir)
	a.NoError(err)
	a.Empty(entries)
}
