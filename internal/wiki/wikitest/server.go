// Package wikitest provides an in-process fake of the MediaWiki API
// endpoints the wiki client uses.
package wikitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// Page is an article served by the fake.
type Page struct {
	PageID         int
	Title          string
	HTML           string
	Links          []string
	Categories     []string
	Disambiguation bool
	Touched        string
}

// Server is a fake MediaWiki API keyed by language code.
type Server struct {
	*httptest.Server

	pages    map[string][]Page // lang code -> pages
	requests atomic.Int64

	// FailNext makes the next N requests return FailStatus.
	FailNext   atomic.Int64
	FailStatus int
}

// NewServer starts a fake serving pages under /<code>/w/api.php. It is
// closed when the test ends.
func NewServer(t testing.TB, pages map[string][]Page) *Server {
	t.Helper()
	s := &Server{pages: pages, FailStatus: http.StatusServiceUnavailable}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// URLTemplate returns a base URL template for wiki.Config.
func (s *Server) URLTemplate() string {
	return s.URL + "/%s/w/api.php"
}

// Requests returns the number of requests served so far.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	if s.FailNext.Load() > 0 {
		s.FailNext.Add(-1)
		http.Error(w, "unavailable", s.FailStatus)
		return
	}

	code, rest, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if !ok || rest != "w/api.php" {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("User-Agent") == "" {
		http.Error(w, "missing user agent", http.StatusForbidden)
		return
	}

	q := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")
	switch q.Get("action") {
	case "opensearch":
		s.opensearch(w, code, q.Get("search"))
	case "query":
		s.query(w, code, q.Get("titles"))
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (s *Server) opensearch(w http.ResponseWriter, code, search string) {
	titles := []string{}
	for _, p := range s.pages[code] {
		if strings.HasPrefix(strings.ToLower(p.Title), strings.ToLower(search)) {
			titles = append(titles, p.Title)
			break
		}
	}
	json.NewEncoder(w).Encode([]any{search, titles, []string{}, []string{}})
}

func (s *Server) query(w http.ResponseWriter, code, title string) {
	pages := map[string]any{}
	for _, p := range s.pages[code] {
		if p.Title != title {
			continue
		}
		page := map[string]any{
			"pageid":  p.PageID,
			"ns":      0,
			"title":   p.Title,
			"extract": p.HTML,
			"fullurl": fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", code, strings.ReplaceAll(p.Title, " ", "_")),
			"touched": p.Touched,
		}
		var links, cats []map[string]any
		for _, l := range p.Links {
			links = append(links, map[string]any{"ns": 0, "title": l})
		}
		for _, c := range p.Categories {
			cats = append(cats, map[string]any{"ns": 14, "title": "Category:" + c})
		}
		if links != nil {
			page["links"] = links
		}
		if cats != nil {
			page["categories"] = cats
		}
		if p.Disambiguation {
			page["pageprops"] = map[string]string{"disambiguation": ""}
		}
		pages[fmt.Sprint(p.PageID)] = page
	}
	if len(pages) == 0 {
		pages["-1"] = map[string]any{"ns": 0, "title": title, "missing": ""}
	}
	json.NewEncoder(w).Encode(map[string]any{
		"batchcomplete": "",
		"query":         map[string]any{"pages": pages},
	})
}
