package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"fknsrs.biz/p/ytreport/internal/locale"
	"fknsrs.biz/p/ytreport/internal/naming"
	"fknsrs.biz/p/ytreport/internal/stringutil"
	"fknsrs.biz/p/ytreport/internal/templatecollection"
	"fknsrs.biz/p/ytreport/internal/video"
)

const (
	TemplateName = "page_report"

	MaxTags             = 15
	MaxTranscriptLength = 10000
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"join": strings.Join,
}

type Renderer struct {
	templates templatecollection.Collection
	text      *locale.Catalog
}

// NewRenderer uses the built in templates, with any page_*.tmpl or
// shared_*.tmpl found in templateDir taking precedence.
func NewRenderer(templateDir string, text *locale.Catalog) (*Renderer, error) {
	if text == nil {
		text = locale.English
	}

	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("report.NewRenderer: %w", err)
	}

	builtin, err := templatecollection.NewCached(sub, funcs)
	if err != nil {
		return nil, fmt.Errorf("report.NewRenderer: %w", err)
	}

	var templates templatecollection.Collection = builtin

	if templateDir != "" {
		st, err := os.Stat(templateDir)
		if err != nil {
			return nil, fmt.Errorf("report.NewRenderer: %w", err)
		}
		if !st.IsDir() {
			return nil, fmt.Errorf("report.NewRenderer: %s is not a directory", templateDir)
		}

		templates = templatecollection.Fallback{
			templatecollection.NewLive(os.DirFS(templateDir), funcs),
			builtin,
		}
	}

	return &Renderer{templates: templates, text: text}, nil
}

type view struct {
	Record   *video.Record
	Display  *video.Display
	Text     *locale.Catalog
	Tags     []string
	Captions string
}

func (r *Renderer) makeView(rec *video.Record, d *video.Display) *view {
	v := view{
		Record:   rec,
		Display:  d,
		Text:     r.text,
		Tags:     rec.Tags,
		Captions: rec.SubtitleAvailability,
	}

	if len(v.Tags) > MaxTags {
		v.Tags = v.Tags[:MaxTags]
	}

	if text, ok := rec.Transcript.Get(); ok {
		v.Captions = stringutil.Truncate(text, MaxTranscriptLength, "\n\n"+r.text.TruncationNotice)
	}

	return &v
}

func (r *Renderer) Render(wr io.Writer, rec *video.Record, d *video.Display) error {
	if err := r.templates.ExecuteTemplate(wr, TemplateName, r.makeView(rec, d)); err != nil {
		return fmt.Errorf("report.Renderer.Render: %w", err)
	}

	return nil
}

func (r *Renderer) Markdown(rec *video.Record, d *video.Display) (string, error) {
	buf := bytes.NewBuffer(nil)

	if err := r.Render(buf, rec, d); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Save writes the report into dir under a name derived from the title and
// extraction time, and returns the path it chose. Nothing is left behind
// if rendering fails.
func (r *Renderer) Save(dir string, rec *video.Record, d *video.Display) (string, error) {
	md, err := r.Markdown(rec, d)
	if err != nil {
		return "", fmt.Errorf("report.Renderer.Save: %w", err)
	}

	f, p, err := naming.Create(dir, naming.FileName(rec.Title, rec.ExtractedAt))
	if err != nil {
		return "", fmt.Errorf("report.Renderer.Save: %w", err)
	}

	if _, err := io.WriteString(f, md); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("report.Renderer.Save: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", fmt.Errorf("report.Renderer.Save: %w", err)
	}

	return p, nil
}
