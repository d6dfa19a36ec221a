package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portfola/storywriter/internal/core/apperr"
	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/core/logging"
	"github.com/portfola/storywriter/internal/infra/generation"
	"github.com/portfola/storywriter/internal/infra/storage"
	"github.com/portfola/storywriter/internal/metrics"
	"github.com/portfola/storywriter/internal/story"
)

// Server exposes the story and interview API over HTTP.
type Server struct {
	service     *story.Service
	interviewer *story.Interviewer
	monitor     *generation.Monitor
	log         *logging.Logger
	server      *http.Server
}

// NewServer creates the HTTP server. monitor may be nil when no remote
// provider is configured.
func NewServer(
	port int,
	service *story.Service,
	interviewer *story.Interviewer,
	monitor *generation.Monitor,
	log *logging.Logger,
) *Server {
	mux := http.NewServeMux()
	s := &Server{
		service:     service,
		interviewer: interviewer,
		monitor:     monitor,
		log:         log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	mux.HandleFunc("POST /api/stories", s.timed("/api/stories", s.handleGenerateStory))
	mux.HandleFunc("GET /api/stories", s.timed("/api/stories", s.handleListStories))
	mux.HandleFunc("GET /api/stories/{id}", s.timed("/api/stories/{id}", s.handleGetStory))
	mux.HandleFunc("POST /api/interview", s.timed("/api/interview", s.handleStartInterview))
	mux.HandleFunc("POST /api/interview/{id}/answer", s.timed("/api/interview/{id}/answer", s.handleAnswer))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server and blocks until it is shut down.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) timed(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		metrics.HTTPRequestDuration.
			WithLabelValues(pattern, r.Method).
			Observe(time.Since(start).Seconds())
	}
}

type storyResponse struct {
	ID        string    `json:"id"`
	ChildName string    `json:"child_name"`
	Age       int       `json:"age"`
	Topic     string    `json:"topic,omitempty"`
	Text      string    `json:"text"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toStoryResponse(st *domain.Story) storyResponse {
	return storyResponse{
		ID:        st.ID,
		ChildName: st.ChildName,
		Age:       st.Age,
		Topic:     st.Topic,
		Text:      st.Text,
		Status:    string(st.Status),
		CreatedAt: st.CreatedAt,
	}
}

func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req domain.StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := s.service.GenerateStory(r.Context(), req)
	if !res.OK {
		writeRecord(w, res.Err)
		return
	}
	writeJSON(w, http.StatusCreated, toStoryResponse(res.Value))
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	res := s.service.GetStory(r.Context(), r.PathValue("id"))
	if !res.OK {
		writeRecord(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, toStoryResponse(res.Value))
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	child := r.URL.Query().Get("child")
	if child == "" {
		writeMessage(w, http.StatusBadRequest, "child query parameter is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	res := s.service.ListStories(r.Context(), child, limit)
	if !res.OK {
		writeRecord(w, res.Err)
		return
	}
	out := make([]storyResponse, 0, len(res.Value))
	for _, st := range res.Value {
		out = append(out, toStoryResponse(st))
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": out})
}

type startInterviewRequest struct {
	ChildName string `json:"child_name"`
	Age       int    `json:"age"`
}

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req startInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, question, err := s.interviewer.Start(r.Context(), req.ChildName, req.Age)
	if err != nil {
		writeInterviewError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": session.ID,
		"question":   question,
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// handleAnswer records one answer. When the scripted questions are exhausted
// it completes the interview and returns the generated story in the same
// response.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next, done, err := s.interviewer.Answer(r.Context(), sessionID, req.Answer)
	if err != nil {
		writeInterviewError(w, err)
		return
	}

	if !done {
		writeJSON(w, http.StatusOK, map[string]any{
			"question": next,
			"done":     false,
		})
		return
	}

	res := s.service.CompleteInterview(r.Context(), sessionID)
	if !res.OK {
		writeRecord(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"done":  true,
		"story": toStoryResponse(res.Value),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "healthy"}
	code := http.StatusOK

	if s.monitor != nil {
		stats := s.monitor.Stats()
		body["status"] = stats.Status.String()
		body["provider"] = map[string]any{
			"average_latency_ms": stats.AverageLatency.Milliseconds(),
			"successes":          stats.SuccessCount,
			"failures":           stats.FailureCount,
			"cold_starts":        stats.ColdStarts,
		}
		if stats.Status == generation.StatusDegraded {
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, body)
}

// writeRecord maps a classified failure to an HTTP status. The response body
// carries only the child-safe message, never the technical detail.
func writeRecord(w http.ResponseWriter, rec *apperr.Record) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(rec, storage.ErrStoryNotFound),
		errors.Is(rec, story.ErrSessionNotFound):
		code = http.StatusNotFound
	case rec.Kind == apperr.KindValidation:
		code = http.StatusBadRequest
	case rec.Kind == apperr.KindNetwork:
		code = http.StatusBadGateway
	}
	writeJSON(w, code, map[string]string{
		"error": rec.UserMessage,
		"kind":  string(rec.Kind),
	})
}

func writeInterviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, story.ErrSessionNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, story.ErrInterviewDone):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, story.ErrEmptyAnswer), errors.Is(err, story.ErrInvalidChildName):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Response already committed, encode errors have nowhere to go.
	_ = json.NewEncoder(w).Encode(body)
}
