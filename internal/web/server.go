// Package web serves the single-page form that drives the pipeline.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/hyperifyio/dealscout/internal/app"
	"github.com/hyperifyio/dealscout/internal/report"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// maxFormBytes bounds the POST body; the form carries a single URL.
const maxFormBytes = 64 << 10

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, rawURL string) (*app.Result, error)
}

// Server renders the form and runs the pipeline inside the POST request.
// It keeps no state between requests.
type Server struct {
	Pipeline   Runner
	DefaultURL string
	Logger     zerolog.Logger
}

type download struct {
	Label    string
	FileName string
	Href     template.URL
}

type pageData struct {
	URL       string
	Error     string
	Warning   string
	Columns   []string
	Rows      [][]string
	Tiles     []report.Tile
	Downloads []download
	Version   string
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /{$}", s.trigger)
	mux.HandleFunc("GET /healthz", s.healthz)

	var h http.Handler = mux
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("path", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.RemoteAddrHandler("ip")(h)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RequestIDHandler("req_id", "Request-Id")(h)
	h = hlog.NewHandler(s.Logger)(h)
	return h
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.page(s.DefaultURL))
}

func (s *Server) trigger(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	target := r.PostFormValue("url")
	data := s.page(target)

	res, err := s.Pipeline.Run(r.Context(), target)
	if err != nil {
		data.Error = err.Error()
		s.render(w, r, http.StatusOK, data)
		return
	}
	if res.Warning != nil {
		data.Warning = report.EmptyWarning
		s.render(w, r, http.StatusOK, data)
		return
	}

	data.Rows = res.Table.Records()
	data.Tiles = res.Stats.Tiles()
	exports, err := res.Exports()
	if err != nil {
		// The table is still worth showing without downloads.
		hlog.FromRequest(r).Error().Err(err).Str("run_id", res.RunID).Msg("build exports")
	}
	for _, e := range exports {
		data.Downloads = append(data.Downloads, download{
			Label:    e.Label,
			FileName: e.FileName,
			Href:     dataURI(e.MIME, e.Data),
		})
	}
	s.render(w, r, http.StatusOK, data)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) page(url string) pageData {
	return pageData{URL: url, Columns: report.Columns, Version: app.BuildVersion}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// dataURI inlines a download so the page carries its own files.
func dataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}
