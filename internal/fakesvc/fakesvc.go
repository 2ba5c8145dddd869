package fakesvc

// Package fakesvc is an in-memory stand-in for the Inference & Corpus Service,
// served over httptest. It speaks the same routes and JSON shapes, and lets
// tests inject failures per route.

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
)

// Service is a fake backend.
type Service struct {
	*httptest.Server

	mu      sync.Mutex
	videos  map[string][]byte
	fail    map[string]int // route key -> status to answer with
	answer  *string
	asked   []string
	deletes []string
}

// New starts a fake service holding the given video names.
func New(videos ...string) *Service {
	s := &Service{
		videos: make(map[string][]byte),
		fail:   make(map[string]int),
	}
	for _, v := range videos {
		s.videos[v] = nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/videos", s.list)
	mux.HandleFunc("POST /api/upload_video", s.upload)
	mux.HandleFunc("DELETE /api/videos/{name}", s.remove)
	mux.HandleFunc("POST /api/ask", s.ask)
	s.Server = httptest.NewServer(mux)
	return s
}

// Route keys for Fail.
const (
	RouteList   = "list"
	RouteUpload = "upload"
	RouteDelete = "delete"
	RouteAsk    = "ask"
)

// Fail makes route answer with status until cleared with status 0.
func (s *Service) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, route)
		return
	}
	s.fail[route] = status
}

// SetAnswer fixes the answer text; nil omits the field entirely.
func (s *Service) SetAnswer(answer *string) {
	s.mu.Lock()
	s.answer = answer
	s.mu.Unlock()
}

// Videos returns the stored names, sorted.
func (s *Service) Videos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.videos))
	for n := range s.videos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Content returns the bytes uploaded under name.
func (s *Service) Content(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videos[name]
}

// Asked returns every question received.
func (s *Service) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

// Deletes returns every delete received, including failed ones.
func (s *Service) Deletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

func (s *Service) failing(w http.ResponseWriter, route string) bool {
	s.mu.Lock()
	status := s.fail[route]
	s.mu.Unlock()
	if status == 0 {
		return false
	}
	writeJSON(w, status, map[string]string{"error": "injected failure"})
	return true
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, RouteList) {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"videos": s.Videos()})
}

func (s *Service) upload(w http.ResponseWriter, r *http.Request) {
	if s.failing(w, RouteUpload) {
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file part in the request."})
		return
	}
	defer file.Close()

	name := header.Filename
	if !strings.Contains(name, ".") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "File type not allowed."})
		return
	}
	data, _ := io.ReadAll(file)

	s.mu.Lock()
	s.videos[name] = data
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Video uploaded and processing initiated successfully.",
		"videoId": name,
	})
}

func (s *Service) remove(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.mu.Lock()
	s.deletes = append(s.deletes, name)
	s.mu.Unlock()

	if s.failing(w, RouteDelete) {
		return
	}

	s.mu.Lock()
	_, ok := s.videos[name]
	delete(s.videos, name)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Video file not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Video '" + name + "' deleted successfully."})
}

func (s *Service) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.asked = append(s.asked, req.Question)
	answer := s.answer
	s.mu.Unlock()

	if s.failing(w, RouteAsk) {
		return
	}
	if answer == nil {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": *answer})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
