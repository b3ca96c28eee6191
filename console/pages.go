package console

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/api/requestid"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"dashboard", "chat", "policy", "notfound"}

var funcs = template.FuncMap{
	"percent":  func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	"score":    func(f float64) string { return fmt.Sprintf("%.4f", f) },
	"riskName": client.RiskName,
}

type pages struct {
	sets map[string]*template.Template
}

func parsePages() (*pages, error) {
	p := &pages{sets: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.sets[name] = t
	}
	return p, nil
}

func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data frame) {
	var buf bytes.Buffer
	if err := p.sets[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Str("page", name).Msg("render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}

// frame is what every page template receives.
type frame struct {
	Title     string
	Nav       []navLink
	Error     string
	Notice    string
	RequestID string
	Data      any
}

type navLink struct {
	Name   string
	Href   string
	Active bool
}

func (c *Console) frame(r *http.Request, errMsg string, data any) frame {
	f := frame{
		Title:     "404",
		Error:     errMsg,
		RequestID: requestid.FromContext(r.Context()),
		Data:      data,
	}
	current, err := c.table.Resolve(r.URL.Path)
	if err == nil {
		f.Title = current.Name
	}
	for _, rt := range c.table.Routes() {
		f.Nav = append(f.Nav, navLink{
			Name:   rt.Name,
			Href:   c.table.Location(rt.Path),
			Active: err == nil && rt.Path == current.Path,
		})
	}
	return f
}
