package renderer

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/rafbgarcia/counterpage/internal/bundler"
)

//go:embed templates
var embedded embed.FS

const (
	layoutFile   = "layout.html.tmpl"
	pageFile     = "page.html.tmpl"
	fallbackFile = "fallback.html.tmpl"
	styleFile    = "page.css"
)

// Props is the data rendered into the page for a single request.
type Props struct {
	Hostname string
	Counter  json.Number
}

type view struct {
	Props
	CSS template.CSS
}

type templateSet struct {
	page     *template.Template
	fallback *template.Template
	css      template.CSS
}

// Renderer renders the counter page. Templates are parsed once and can be
// swapped atomically by Reload, so Render is safe for concurrent use.
type Renderer struct {
	fsys fs.FS
	set  atomic.Pointer[templateSet]
}

// New creates a Renderer that uses the embedded templates.
func New() (*Renderer, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("renderer: embedded templates: %w", err)
	}
	return NewFS(sub)
}

// NewFromDir creates a Renderer that reads templates from dir. Use Reload to
// pick up changes.
func NewFromDir(dir string) (*Renderer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("renderer: templates dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("renderer: templates dir: %s is not a directory", dir)
	}
	return NewFS(os.DirFS(dir))
}

// NewFS creates a Renderer over fsys, which must contain the layout, page and
// fallback templates and the stylesheet.
func NewFS(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{fsys: fsys}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads and re-parses every template. On error the previously
// loaded templates stay in use.
func (r *Renderer) Reload() error {
	set, err := load(r.fsys)
	if err != nil {
		return err
	}
	r.set.Store(set)
	return nil
}

func load(fsys fs.FS) (*templateSet, error) {
	page, err := template.New(pageFile).ParseFS(fsys, layoutFile, pageFile)
	if err != nil {
		return nil, fmt.Errorf("renderer: parse page template: %w", err)
	}
	fallback, err := template.New(fallbackFile).ParseFS(fsys, layoutFile, fallbackFile)
	if err != nil {
		return nil, fmt.Errorf("renderer: parse fallback template: %w", err)
	}

	src, err := fs.ReadFile(fsys, styleFile)
	if err != nil {
		return nil, fmt.Errorf("renderer: read stylesheet: %w", err)
	}
	css, err := bundler.MinifyCSS(styleFile, string(src))
	if err != nil {
		return nil, fmt.Errorf("renderer: minify stylesheet: %w", err)
	}

	return &templateSet{
		page:     page,
		fallback: fallback,
		css:      template.CSS(css),
	}, nil
}

// Render returns the HTML document showing hostname and counter.
func (r *Renderer) Render(p Props) ([]byte, error) {
	set := r.set.Load()
	return execute(set.page, view{Props: p, CSS: set.css})
}

// RenderFallback returns the HTML document served when the counter could not
// be loaded. It shows the hostname without a counter value.
func (r *Renderer) RenderFallback(hostname string) ([]byte, error) {
	set := r.set.Load()
	return execute(set.fallback, view{Props: Props{Hostname: hostname}, CSS: set.css})
}

func execute(t *template.Template, v view) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return nil, fmt.Errorf("renderer: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderText returns the plain-text form of the page, for terminal clients.
func RenderText(p Props) []byte {
	return []byte(fmt.Sprintf("👋 %s %s\n", p.Hostname, p.Counter))
}

// RenderFallbackText is the plain-text form of the fallback page.
func RenderFallbackText(hostname string) []byte {
	return []byte(fmt.Sprintf("👋 %s counter unavailable\n", hostname))
}
