package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"fknsrs.biz/p/ytreport/internal/optional"
	"fknsrs.biz/p/ytreport/internal/stringutil"
)

const (
	StartMarker = "--- JSON_DATA_START ---"
	EndMarker   = "--- JSON_DATA_END ---"

	MaxDescriptionLength = 500
	MaxTranscriptLength  = 1000
	ellipsis             = "..."
)

type Summary struct {
	Title             string  `json:"title"`
	Channel           string  `json:"channel"`
	Duration          string  `json:"duration"`
	ViewCount         string  `json:"view_count"`
	Description       string  `json:"description"`
	TranscriptPreview *string `json:"transcript_preview"`
	SavedFile         string  `json:"saved_file"`
}

type Input struct {
	Title       string
	Channel     string
	Duration    string
	ViewCount   string
	Description string
	Transcript  optional.Value[string]
	SavedFile   string
}

func New(in Input) Summary {
	s := Summary{
		Title:       in.Title,
		Channel:     in.Channel,
		Duration:    in.Duration,
		ViewCount:   in.ViewCount,
		Description: stringutil.Truncate(in.Description, MaxDescriptionLength, ellipsis),
		SavedFile:   in.SavedFile,
	}

	preview := optional.None[string]()
	if text, ok := in.Transcript.Get(); ok {
		preview = optional.Some(stringutil.Truncate(text, MaxTranscriptLength, ellipsis))
	}
	s.TranscriptPreview = preview.Ptr()

	return s
}

// Encode renders s as indented JSON, leaving non-ASCII text and HTML
// characters unescaped.
func Encode(s Summary) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("summary.Encode: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write prints the summary between the start and end marker lines.
func Write(wr io.Writer, s Summary) error {
	d, err := Encode(s)
	if err != nil {
		return fmt.Errorf("summary.Write: %w", err)
	}

	if _, err := fmt.Fprintf(wr, "%s\n%s\n%s\n", StartMarker, d, EndMarker); err != nil {
		return fmt.Errorf("summary.Write: %w", err)
	}

	return nil
}
