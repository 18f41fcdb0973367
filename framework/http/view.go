package http

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
)

// ViewEngine renders html/template files into Responses.
type ViewEngine struct {
	dir string
	ext string
}

// NewViewEngine creates a ViewEngine.
// dir is the templates directory (e.g. "./views"), ext is the file extension (e.g. ".html").
func NewViewEngine(dir, ext string) *ViewEngine {
	return &ViewEngine{dir: dir, ext: ext}
}

// View renders a template file with data.
//
//	return views.View(http.StatusOK, "home", map[string]any{"title": "Home"})
func (ve *ViewEngine) View(status int, name string, data any) (*Response, error) {
	tmpl, err := template.ParseFiles(ve.path(name))
	if err != nil {
		return nil, fmt.Errorf("view %q: %w", name, err)
	}
	return ve.render(status, tmpl, filepath.Base(ve.path(name)), data)
}

// ViewWithLayout renders name inside layout; layout is the executed template.
func (ve *ViewEngine) ViewWithLayout(status int, layout, name string, data any) (*Response, error) {
	tmpl, err := template.ParseFiles(ve.path(layout), ve.path(name))
	if err != nil {
		return nil, fmt.Errorf("view %q in %q: %w", name, layout, err)
	}
	return ve.render(status, tmpl, filepath.Base(ve.path(layout)), data)
}

func (ve *ViewEngine) render(status int, tmpl *template.Template, entry string, data any) (*Response, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, entry, data); err != nil {
		return nil, err
	}
	res := NewResponse(status)
	res.Header.Set("Content-Type", "text/html; charset=utf-8")
	res.Body = buf.Bytes()
	return res, nil
}

func (ve *ViewEngine) path(name string) string {
	return filepath.Join(ve.dir, name+ve.ext)
}
