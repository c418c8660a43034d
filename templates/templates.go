// Package templates holds the embedded HTML pages and the gin renderer that
// executes them.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed *.html
var files embed.FS

const (
	layoutFile     = "base.layout.html"
	partialPattern = "*.partial.html"
)

var functions = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006, 15:04")
	},
	"paragraphs":    Paragraphs,
	"truncatewords": TruncateWords,
	"media": func(p string) string {
		return "/media/" + strings.TrimPrefix(p, "/")
	},
	"idstr": func(id uint) string {
		return strconv.FormatUint(uint64(id), 10)
	},
}

// Renderer is a gin render.HTMLRender over one template set per page, each
// made of the layout, the partials and the page itself.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	names, err := fs.Glob(files, "*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layoutFile || strings.HasSuffix(name, ".partial.html") {
			continue
		}
		ts, err := template.New(path.Base(name)).Funcs(functions).ParseFS(files, layoutFile, partialPattern, name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = ts
	}
	return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func (r *Renderer) Instance(name string, data any) render.Render {
	return &page{tmpl: r.pages[name], name: name, data: data}
}

type page struct {
	tmpl *template.Template
	name string
	data any
}

var htmlContentType = []string{"text/html; charset=utf-8"}

// Render executes into a buffer first so a failing template never sends a
// half-written page.
func (p *page) Render(w http.ResponseWriter) error {
	p.WriteContentType(w)
	if p.tmpl == nil {
		return fmt.Errorf("template %q not found", p.name)
	}

	buf := new(bytes.Buffer)
	if err := p.tmpl.ExecuteTemplate(buf, "base", p.data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (p *page) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = htmlContentType
	}
}

// Paragraphs splits text on blank lines.
func Paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(s, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}

// TruncateWords keeps the first n words, adding an ellipsis when cut.
func TruncateWords(n int, s string) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}
