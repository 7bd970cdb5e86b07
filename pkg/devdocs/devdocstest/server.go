// Package devdocstest provides an in-memory DevDocs API for tests.
package devdocstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/extkit/extkit/pkg/devdocs"
	"github.com/go-chi/chi/v5"
)

// Server serves /docs/docs.json and /docs/{slug}/index.json from the
// docsets added to it, and entry pages under /documents.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	docsets   []devdocs.Docset
	entries   map[string][]devdocs.Entry
	documents map[string]string
	requests  []string
	status    int
}

func NewServer() *Server {
	s := &Server{
		entries:   make(map[string][]devdocs.Entry),
		documents: make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/docs/docs.json", s.handleDocsets)
	r.Get("/docs/{slug}/index.json", s.handleIndex)
	r.Get("/documents/{slug}/*", s.handleDocument)

	s.Server = httptest.NewServer(r)
	return s
}

// AddDocset registers a docset and its entries.
func (s *Server) AddDocset(d devdocs.Docset, entries ...devdocs.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docsets = append(s.docsets, d)
	if entries == nil {
		entries = []devdocs.Entry{}
	}
	s.entries[d.Slug] = entries
}

// AddDocument registers the HTML page served for an entry path of a docset.
func (s *Server) AddDocument(slug, path, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[slug+"/"+path] = html
}

// Config points a DevDocs client at the server.
func (s *Server) Config() devdocs.Config {
	return devdocs.Config{
		Origin:          s.URL,
		DocumentsOrigin: s.URL + "/documents",
	}
}

// FailWith makes every following request answer with status.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

// Requests returns the paths requested so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		status := s.status
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDocsets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	docsets := append([]devdocs.Docset{}, s.docsets...)
	s.mu.Unlock()

	writeJSON(w, docsets)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	s.mu.Lock()
	entries, ok := s.entries[slug]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, devdocs.EntryManifest{Entries: entries})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	page, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || !strings.HasSuffix(page, ".html") {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	html, ok := s.documents[chi.URLParam(r, "slug")+"/"+strings.TrimSuffix(page, ".html")]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
