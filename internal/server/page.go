package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/jonathan/headline-scorer/internal/scoring"
	"github.com/jonathan/headline-scorer/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is the view model of the single page
type pageData struct {
	Endpoint  string
	Input     string
	Headlines []listEntry
	Flash     []session.Message
	Result    *resultView
}

type listEntry struct {
	Index int
	Text  string
}

type resultView struct {
	Rows    []scoring.Row
	Summary []scoring.SummaryRow
}

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"rowStyle": rowStyle,
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}
	return &pageRenderer{tmpl: tmpl}, nil
}

// rowStyle returns the inline background for a scored row, empty when unstyled
func rowStyle(s scoring.Sentiment) template.CSS {
	color := s.Color()
	if color == "" {
		return ""
	}
	return template.CSS("background-color: " + color)
}

// render executes the page into a buffer first so a template error never
// produces a half-written response
func (p *pageRenderer) render(w http.ResponseWriter, data *pageData) error {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

// buildPageData snapshots the session for rendering and consumes its flash messages.
// The caller must hold the state's lock.
func buildPageData(st *session.State, endpoint string) *pageData {
	data := &pageData{
		Endpoint: endpoint,
		Input:    st.Input,
		Flash:    st.TakeFlash(),
	}

	for i, text := range st.Store.Snapshot() {
		data.Headlines = append(data.Headlines, listEntry{Index: i, Text: text})
	}

	if st.Result != nil {
		data.Result = &resultView{
			Rows:    st.Result.Rows,
			Summary: st.Result.Summary(),
		}
	}
	return data
}
