package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Names of the built-in prompt templates.
const (
	ExtractTickers = "extract_tickers.tmpl"
	StockSystem    = "stock_system.tmpl"
	StockReply     = "stock_reply.tmpl"
	GeneralFinance = "general_finance.tmpl"
)

// Template wraps a text/template read from a file system.
type Template struct {
	name   string
	source fs.FS
	funcs  template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
	hash string
}

// NewTemplate parses name from source using the provided template functions.
func NewTemplate(source fs.FS, name string, funcs template.FuncMap) (*Template, error) {
	if name == "" {
		return nil, fmt.Errorf("prompt template name is empty")
	}
	t := &Template{name: name, source: source, funcs: funcs}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the template with data and returns the trimmed result.
func (t *Template) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Reload reparses the template, picking up edits in override directories.
func (t *Template) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload()
}

func (t *Template) reload() error {
	data, err := fs.ReadFile(t.source, t.name)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.name, err)
	}

	tmpl := template.New(path.Base(t.name)).Option("missingkey=error")
	if len(t.funcs) > 0 {
		tmpl = tmpl.Funcs(t.funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.name, err)
	}
	t.tmpl = tmpl
	t.hash = computeDigest(data)
	return nil
}

// Digest returns the sha256 hash of the template content.
func (t *Template) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hash
}

// Set holds the prompts used by the chat pipeline.
type Set struct {
	ExtractTickers *Template
	StockSystem    *Template
	StockReply     *Template
	GeneralFinance *Template
}

// Load builds the prompt set. Files in overrideDir replace the built-in
// template of the same name; missing files fall back to the built-ins.
func Load(overrideDir string) (*Set, error) {
	source := Source(overrideDir)
	load := func(name string) (*Template, error) { return NewTemplate(source, name, nil) }

	var (
		set Set
		err error
	)
	if set.ExtractTickers, err = load(ExtractTickers); err != nil {
		return nil, err
	}
	if set.StockSystem, err = load(StockSystem); err != nil {
		return nil, err
	}
	if set.StockReply, err = load(StockReply); err != nil {
		return nil, err
	}
	if set.GeneralFinance, err = load(GeneralFinance); err != nil {
		return nil, err
	}
	return &set, nil
}

// MustLoadDefault returns the built-in prompt set and panics if it is broken.
func MustLoadDefault() *Set {
	set, err := Load("")
	if err != nil {
		panic(err)
	}
	return set
}

// Source returns the file system templates are read from.
func Source(overrideDir string) fs.FS {
	builtin, _ := fs.Sub(embedded, "templates")
	if strings.TrimSpace(overrideDir) == "" {
		return builtin
	}
	return layered{top: os.DirFS(overrideDir), bottom: builtin}
}

// layered reads from top and falls back to bottom for missing files.
type layered struct {
	top, bottom fs.FS
}

func (l layered) Open(name string) (fs.File, error) {
	f, err := l.top.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return l.bottom.Open(name)
	}
	return nil, err
}
