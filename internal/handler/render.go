package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/attaboy/strokecheck/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageHome     = "home"
	PageLogin    = "login"
	PageRegister = "register"
	PageIndex    = "index"
)

// Option is a select option on the prediction form.
type Option struct {
	Value string
	Label string
}

// PageData is passed to every page template.
type PageData struct {
	Title           string
	Username        string
	Error           string
	Form            url.Values
	Prediction      *domain.Prediction
	WorkTypes       []Option
	SmokingStatuses []Option
}

var (
	workOptions    = enumOptions(int(domain.WorkChildren), func(i int) string { return domain.WorkType(i).String() })
	smokingOptions = enumOptions(int(domain.SmokingSmokes), func(i int) string { return domain.SmokingStatus(i).String() })
)

func enumOptions(last int, label func(int) string) []Option {
	opts := make([]Option, 0, last+1)
	for i := 0; i <= last; i++ {
		opts = append(opts, Option{Value: strconv.Itoa(i), Label: label(i)})
	}
	return opts
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses every page against the shared layout.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{PageHome, PageLogin, PageRegister, PageIndex} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes page with status. The page is rendered to a buffer first
// so a template error never produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	t, ok := r.pages[page]
	if !ok {
		r.logger.Error("unknown page", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if page == PageIndex {
		data.WorkTypes = workOptions
		data.SmokingStatuses = smokingOptions
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("render page", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
