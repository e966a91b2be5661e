package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/ytreport/internal/ctxclock"
	"fknsrs.biz/p/ytreport/internal/summary"
)

const infoJSON = `{
  "id": "dQw4w9WgXcQ",
  "title": "Test: Video?",
  "uploader": "Tester",
  "uploader_url": "https://www.youtube.com/@tester",
  "description": "A <b>description</b> & more",
  "duration": 3725,
  "view_count": 1234567,
  "like_count": 999,
  "comment_count": 42,
  "upload_date": "20240115",
  "tags": ["one", "two"],
  "subtitles": {"de": []},
  "automatic_captions": {"ko": []}
}`

func fakeYTDLP(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()

	info := filepath.Join(dir, "info.json")
	if err := os.WriteFile(info, []byte(infoJSON), 0644); err != nil {
		t.Fatal(err)
	}

	p := filepath.Join(dir, "yt-dlp")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+strings.ReplaceAll(body, "INFO", info)+"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	return p
}

func notFoundServer(t *testing.T) string {
	t.Helper()

	s := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(s.Close)

	return s.URL
}

func runCommand(args ...string) (int, string, string) {
	return runCommandContext(context.Background(), args...)
}

func runCommandContext(ctx context.Context, args ...string) (int, string, string) {
	stdout := bytes.NewBuffer(nil)
	stderr := bytes.NewBuffer(nil)

	code := run(ctx, "ytreport", args, nil, stdout, stderr)

	return code, stdout.String(), stderr.String()
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func summaryFields(t *testing.T, stdout string) map[string]interface{} {
	t.Helper()

	start := strings.Index(stdout, summary.StartMarker+"\n")
	end := strings.Index(stdout, summary.EndMarker+"\n")
	if start < 0 || end < start {
		t.Fatalf("no summary block in %q", stdout)
	}

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(stdout[start+len(summary.StartMarker):end]), &got); err != nil {
		t.Fatal(err)
	}

	return got
}

func TestRunUsage(t *testing.T) {
	a := assert.New(t)

	code, stdout, stderr := runCommand()
	a.Equal(1, code)
	a.Empty(stdout)
	a.Contains(stderr, "Usage: ytreport [flags] <video-url> [output-directory]")
	a.Contains(stderr, "-ytdlp_program")

	code, _, stderr = runCommand("-locale", "ko")
	a.Equal(1, code)
	a.Contains(stderr, "[출력_디렉토리]")
}

func TestRunHelp(t *testing.T) {
	a := assert.New(t)

	code, stdout, stderr := runCommand("-help")
	a.Equal(0, code)
	a.Empty(stdout)
	a.Contains(stderr, "Usage:")
	a.Contains(stderr, "[output-directory]")

	code, stdout, stderr = runCommand("-locale", "ko", "-help")
	a.Equal(0, code)
	a.Empty(stdout)
	a.Contains(stderr, "[출력_디렉토리]")
}

func TestRunBadConfig(t *testing.T) {
	a := assert.New(t)

	code, _, stderr := runCommand("-log_format", "xml", "https://youtu.be/dQw4w9WgXcQ")
	a.Equal(1, code)
	a.True(strings.HasPrefix(stderr, "error: "))

	code, _, stderr = runCommand("-no_such_flag")
	a.Equal(1, code)
	a.True(strings.HasPrefix(stderr, "error: "))
}

func TestRunSuccess(t *testing.T) {
	a := assert.New(t)

	outputDir := filepath.Join(t.TempDir(), "reports", "nested")

	code, stdout, stderr := runCommand(
		"-ytdlp_program", fakeYTDLP(t, "cat INFO"),
		"-youtube_base_url", notFoundServer(t),
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		outputDir,
	)
	if !a.Equal(0, code, stderr) {
		return
	}

	a.Contains(stdout, "Extracting video information: https://www.youtube.com/watch?v=dQw4w9WgXcQ\n")
	a.Contains(stdout, "Title: Test: Video?\nChannel: Tester\nDuration: 1:02:05\nViews: 1.2M\n")
	a.Contains(stderr, "could not fetch transcript")

	start := strings.Index(stdout, summary.StartMarker+"\n")
	end := strings.Index(stdout, summary.EndMarker+"\n")
	if !a.True(start >= 0 && end > start) {
		return
	}
	a.True(strings.HasSuffix(stdout, summary.EndMarker+"\n"))

	var got map[string]interface{}
	if !a.NoError(json.Unmarshal([]byte(stdout[start+len(summary.StartMarker):end]), &got)) {
		return
	}

	a.Equal("Test: Video?", got["title"])
	a.Equal("Tester", got["channel"])
	a.Equal("1:02:05", got["duration"])
	a.Equal("1.2M", got["view_count"])
	a.Equal("A <b>description</b> & more", got["description"])
	a.Contains(got, "transcript_preview")
	a.Nil(got["transcript_preview"])

	savedFile, _ := got["saved_file"].(string)
	a.Equal(outputDir, filepath.Dir(savedFile))
	a.True(strings.HasPrefix(filepath.Base(savedFile), "youtube_Test Video_"))
	a.Contains(stdout, "\nSaved: "+savedFile+"\n\n")

	d, err := os.ReadFile(savedFile)
	if a.NoError(err) {
		a.True(strings.HasPrefix(string(d), "# Test: Video?\n"))
		a.Contains(string(d), "[ko auto-generated captions available]")
	}

	a.NotContains(stdout, "\\u003c", "html is not escaped")
}

func TestRunNoOutputDirectory(t *testing.T) {
	a := assert.New(t)

	dir := t.TempDir()
	chdir(t, dir)

	ctx := ctxclock.WithClock(context.Background(), ctxclock.NewStaticClock(time.Date(2024, time.January, 15, 14, 30, 22, 0, time.UTC)))

	code, stdout, stderr := runCommandContext(ctx,
		"-ytdlp_program", fakeYTDLP(t, "cat INFO"),
		"-youtube_base_url", notFoundServer(t),
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	)
	if !a.Equal(0, code, stderr) {
		return
	}

	entries, err := os.ReadDir(dir)
	if !a.NoError(err) || !a.Len(entries, 1) {
		return
	}

	name := entries[0].Name()
	a.Equal("youtube_Test Video_20240115_143022.md", name)
	a.Regexp(`^youtube_Test Video_\d{8}_\d{6}\.md$`, name)
	a.Equal(name, summaryFields(t, stdout)["saved_file"])

	d, err := os.ReadFile(filepath.Join(dir, name))
	if !a.NoError(err) {
		return
	}

	rows := map[string]string{
		"Channel":  "[Tester](https://www.youtube.com/@tester)",
		"Uploaded": "January 15, 2024",
		"Duration": "1:02:05",
		"Views":    "1.2M",
		"Likes":    "999",
		"Comments": "42",
	}
	for label, value := range rows {
		a.Contains(string(d), "| **"+label+"** | "+value+" |\n", label)
	}
	a.NotContains(string(d), "| unknown |")
	a.Contains(string(d), "*Extracted at: 2024-01-15T14:30:22.000000*")
}

func TestRunExtractionFailure(t *testing.T) {
	a := assert.New(t)

	outputDir := t.TempDir()

	code, stdout, stderr := runCommand(
		"-ytdlp_program", fakeYTDLP(t, "echo 'ERROR: [youtube] dQw4w9WgXcQ: Video unavailable' >&2\nexit 1"),
		"-youtube_base_url", notFoundServer(t),
		"https://youtu.be/dQw4w9WgXcQ",
		outputDir,
	)
	a.Equal(1, code)
	a.NotContains(stdout, summary.StartMarker)
	a.Contains(stderr, "error: could not fetch video information")
	a.Contains(stderr, "Video unavailable")

	entries, err := os.ReadDir(outputDir)
	a.NoError(err)
	a.Empty(entries)
}
