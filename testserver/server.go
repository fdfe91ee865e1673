// Package testserver provides a local webhook receiver for exercising the dispatcher.
package testserver

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigFastest

// Delivery is one webhook POST as the receiver saw it.
type Delivery struct {
	Host        string `json:"host"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	Valid       bool   `json:"valid"`
	Content     string `json:"content,omitempty"`
	Username    string `json:"username,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Server records every webhook it receives.
type Server struct {
	mux        *http.ServeMux
	mu         sync.Mutex
	deliveries []Delivery
}

// NewServer creates a new test server with all endpoints configured.
func NewServer() *Server {
	s := &Server{
		mux: http.NewServeMux(),
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/webhook", s.handleWebhook)
	s.mux.HandleFunc("/deliveries", s.handleDeliveries)
	s.mux.HandleFunc("/status/", s.handleStatus)
	s.mux.HandleFunc("/delay/", s.handleDelay)
	s.mux.HandleFunc("/fail-rate", s.handleFailRate)
}

// Count returns how many webhooks have been received.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deliveries)
}

// Deliveries returns a copy of the received webhooks in arrival order.
func (s *Server) Deliveries() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

// Reset forgets every recorded delivery.
func (s *Server) Reset() {
	s.mu.Lock()
	s.deliveries = nil
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handleWebhook accepts a webhook POST the way a chat service would: 204 for
// a well-formed JSON body, 400 otherwise. Both are recorded.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	d := Delivery{
		Host:        r.Host,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
		Valid:       gjson.ValidBytes(body),
	}
	if d.Valid {
		fields := gjson.GetManyBytes(body, "content", "username", "avatar_url")
		d.Content = fields[0].String()
		d.Username = fields[1].String()
		d.AvatarURL = fields[2].String()
	}

	s.mu.Lock()
	s.deliveries = append(s.deliveries, d)
	s.mu.Unlock()

	if !d.Valid {
		http.Error(w, `{"message": "Cannot send an empty message", "code": 50006}`, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeliveries returns everything received so far as JSON.
func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	deliveries := s.Deliveries()
	response := map[string]interface{}{
		"count":      len(deliveries),
		"deliveries": deliveries,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleStatus returns the specified HTTP status code.
// Example: POST /status/429 returns 429 Too Many Requests
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/status/")
	code, err := strconv.Atoi(path)
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
	fmt.Fprintf(w, "%d %s", code, http.StatusText(code))
}

// handleDelay waits for the specified duration before responding.
// Example: POST /delay/100 waits 100ms
func (s *Server) handleDelay(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/delay/")
	ms, err := strconv.Atoi(path)
	if err != nil || ms < 0 {
		http.Error(w, "invalid delay", http.StatusBadRequest)
		return
	}

	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
	case <-r.Context().Done():
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "delayed %dms", ms)
}

// handleFailRate fails a percentage of requests with 500 status.
// Example: POST /fail-rate?rate=10 fails 10% of requests
func (s *Server) handleFailRate(w http.ResponseWriter, r *http.Request) {
	rateStr := r.URL.Query().Get("rate")
	rate, err := strconv.Atoi(rateStr)
	if err != nil || rate < 0 || rate > 100 {
		rate = 0
	}

	if rand.Intn(100) < rate {
		http.Error(w, "simulated failure", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
