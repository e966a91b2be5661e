package templatecollection

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"
)

const (
	pagePattern   = "page_*.tmpl"
	sharedPattern = "shared_*.tmpl"
	extension     = ".tmpl"
)

type Collection interface {
	ExecuteTemplate(wr io.Writer, name string, data interface{}) error
}

var ErrTemplateNotFound = fmt.Errorf("template not found")

// Cached parses every page template up front. Each page is parsed together
// with the shared templates so pages can call them by name.
type Cached struct {
	l sync.RWMutex
	m map[string]*template.Template
}

func NewCached(fileSystem fs.FS, funcs template.FuncMap) (*Cached, error) {
	pageFiles, err := globAll(fileSystem, []string{pagePattern})
	if err != nil {
		return nil, fmt.Errorf("templatecollection.NewCached: could not get page template names: %w", err)
	}

	c := Cached{m: make(map[string]*template.Template)}

	for _, pageFile := range pageFiles {
		name := strings.TrimSuffix(path.Base(pageFile), extension)

		tpl, err := parse(fileSystem, name, pageFile, funcs)
		if err != nil {
			return nil, fmt.Errorf("templatecollection.NewCached: could not construct template %q: %w", name, err)
		}

		c.m[name] = tpl
	}

	return &c, nil
}

func (c *Cached) Names() []string {
	c.l.RLock()
	defer c.l.RUnlock()

	var a []string
	for name := range c.m {
		a = append(a, name)
	}

	return a
}

func (c *Cached) ExecuteTemplate(wr io.Writer, name string, data interface{}) error {
	c.l.RLock()
	tpl, ok := c.m[name]
	c.l.RUnlock()

	if !ok {
		return fmt.Errorf("templatecollection.Cached.ExecuteTemplate: %q: %w", name, ErrTemplateNotFound)
	}

	if err := tpl.ExecuteTemplate(wr, name, data); err != nil {
		return fmt.Errorf("templatecollection.Cached.ExecuteTemplate: %w", err)
	}

	return nil
}

// Live reads templates from disk on every call, so edits show up without a
// restart.
type Live struct {
	fs fs.FS
	m  template.FuncMap
}

func NewLive(fileSystem fs.FS, funcs template.FuncMap) *Live {
	return &Live{fs: fileSystem, m: funcs}
}

func (l *Live) ExecuteTemplate(wr io.Writer, name string, data interface{}) error {
	pageFiles, err := globAll(l.fs, []string{name + extension})
	if err != nil {
		return fmt.Errorf("templatecollection.Live.ExecuteTemplate: %w", err)
	}

	if len(pageFiles) == 0 {
		return fmt.Errorf("templatecollection.Live.ExecuteTemplate: %q: %w", name, ErrTemplateNotFound)
	}

	tpl, err := parse(l.fs, name, pageFiles[0], l.m)
	if err != nil {
		return fmt.Errorf("templatecollection.Live.ExecuteTemplate: could not construct template: %w", err)
	}

	if err := tpl.ExecuteTemplate(wr, name, data); err != nil {
		return fmt.Errorf("templatecollection.Live.ExecuteTemplate: %w", err)
	}

	return nil
}

// Fallback tries each collection in turn, moving on only when a template
// is missing.
type Fallback []Collection

func (f Fallback) ExecuteTemplate(wr io.Writer, name string, data interface{}) error {
	for _, c := range f {
		err := c.ExecuteTemplate(wr, name, data)
		if err == nil {
			return nil
		}

		if !errors.Is(err, ErrTemplateNotFound) {
			return err
		}
	}

	return fmt.Errorf("templatecollection.Fallback.ExecuteTemplate: %q: %w", name, ErrTemplateNotFound)
}

func parse(fileSystem fs.FS, name, pageFile string, funcs template.FuncMap) (*template.Template, error) {
	sharedFiles, err := globAll(fileSystem, []string{sharedPattern})
	if err != nil {
		return nil, err
	}

	tpl := template.New(name)
	if funcs != nil {
		tpl = tpl.Funcs(funcs)
	}

	d, err := fs.ReadFile(fileSystem, pageFile)
	if err != nil {
		return nil, err
	}

	// the page body becomes the template called name, whatever its file
	// name was
	if _, err := tpl.Parse(string(d)); err != nil {
		return nil, err
	}

	if len(sharedFiles) > 0 {
		if _, err := tpl.ParseFS(fileSystem, sharedFiles...); err != nil {
			return nil, err
		}
	}

	return tpl, nil
}

func globAll(fileSystem fs.FS, patterns []string) ([]string, error) {
	var a []string

	for _, pattern := range expandGlobs(patterns) {
		names, err := fs.Glob(fileSystem, pattern)
		if err != nil {
			return nil, fmt.Errorf("could not get names for pattern %q: %w", pattern, err)
		}

		a = append(a, names...)
	}

	return a, nil
}

func expandGlobs(a []string) []string {
	var r []string

	for _, e := range a {
		r = append(r, e, "*/"+e)
	}

	return r
}
