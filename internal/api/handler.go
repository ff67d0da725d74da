// Package api provides HTTP handlers for the quiz API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abhisek/mathquiz/internal/concepts"
	"github.com/abhisek/mathquiz/internal/quiz"
	"github.com/abhisek/mathquiz/internal/report"
)

// QuizService drives quizzes. Implemented by *quiz.Engine.
type QuizService interface {
	Start(ctx context.Context, username, topic string) (quiz.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (quiz.AnswerResult, error)
}

// ConceptLister supplies concept lists for a topic.
type ConceptLister interface {
	List(ctx context.Context, topic string) []concepts.Concept
}

// ReportBuilder assembles PDF reports.
type ReportBuilder interface {
	Build(ctx context.Context, s *quiz.Session) (string, report.Insights, error)
}

// SessionAccess is the slice of the session store the handlers need.
// Implemented by *quiz.SessionStore.
type SessionAccess interface {
	Get(id string) (*quiz.Session, error)
	Recover(id string) (*quiz.Session, error)
	Heartbeat(id string) error
}

// Handler holds the API's dependencies.
type Handler struct {
	engine   QuizService
	sessions SessionAccess
	concepts ConceptLister
	reports  ReportBuilder
}

// NewHandler creates a Handler with common dependencies.
func NewHandler(engine QuizService, sessions SessionAccess, cl ConceptLister, rb ReportBuilder) *Handler {
	return &Handler{
		engine:   engine,
		sessions: sessions,
		concepts: cl,
		reports:  rb,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

type startRequest struct {
	Topic    string `json:"topic"`
	Username string `json:"username"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" || req.Username == "" {
		Error(w, http.StatusBadRequest, "Topic and username are required")
		return
	}

	res, err := h.engine.Start(r.Context(), req.Username, req.Topic)
	if err != nil {
		slog.Error("failed to start quiz", "topic", req.Topic, "error", err)
		Error(w, http.StatusInternalServerError, "Could not start the quiz. Please try again later.")
		return
	}
	JSON(w, http.StatusOK, res)
}

type answerRequest struct {
	SessionID  string `json:"session_id"`
	UserAnswer string `json:"user_answer"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil || req.SessionID == "" || req.UserAnswer == "" {
		Error(w, http.StatusBadRequest, "session_id and user_answer are required")
		return
	}

	res, err := h.engine.SubmitAnswer(r.Context(), req.SessionID, req.UserAnswer)
	if errors.Is(err, quiz.ErrSessionNotFound) {
		// The session may have been swept; its backup can still be live.
		if _, rerr := h.sessions.Recover(req.SessionID); rerr == nil {
			res, err = h.engine.SubmitAnswer(r.Context(), req.SessionID, req.UserAnswer)
		}
	}
	if errors.Is(err, quiz.ErrSessionNotFound) {
		Error(w, http.StatusBadRequest, "Session expired or invalid. Please start a new quiz.")
		return
	}
	if err != nil {
		slog.Error("failed to process answer", "session", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Could not process the answer. Please try again.")
		return
	}

	if res.Done {
		JSON(w, http.StatusOK, map[string]bool{"quiz_complete": true})
		return
	}
	JSON(w, http.StatusOK, res)
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil || req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	s, err := h.sessions.Get(req.SessionID)
	if err != nil {
		// A report may be requested after the live entry is lost.
		s, err = h.sessions.Recover(req.SessionID)
	}
	if err != nil {
		Error(w, http.StatusBadRequest, "Session expired or invalid. Please start a new quiz.")
		return
	}

	filename, insights, err := h.reports.Build(r.Context(), s)
	if err != nil {
		slog.Error("failed to build report", "session", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Could not generate the report. Please try again later.")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"report_path":        "/static/reports/" + filename,
		"ai_summary":         insights.Summary,
		"ai_recommendations": insights.Recommendations,
	})
}

type subtopicsRequest struct {
	Topic string `json:"topic"`
}

func (h *Handler) handleSubtopics(w http.ResponseWriter, r *http.Request) {
	var req subtopicsRequest
	if err := decode(r, &req); err != nil || req.Topic == "" {
		Error(w, http.StatusBadRequest, "topic is required")
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"concepts": h.concepts.List(r.Context(), req.Topic),
	})
}

func (h *Handler) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil || req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	s, err := h.sessions.Recover(req.SessionID)
	if err != nil {
		Error(w, http.StatusNotFound, "Session not recoverable")
		return
	}

	score := s.CorrectCount()
	// The final percentage only exists once the quiz is complete.
	percent := 0.0
	if s.Done() {
		percent = float64(score) / float64(len(s.History)) * 100
	}
	JSON(w, http.StatusOK, map[string]any{
		"status":                 "recovered",
		"progress":               len(s.History),
		"score":                  score,
		"final_percentage_score": percent,
		"level":                  s.Level,
		"username":               s.Username,
		"topic":                  s.Topic,
	})
}

func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil || req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := h.sessions.Heartbeat(req.SessionID); err != nil {
		JSON(w, http.StatusNotFound, map[string]string{"status": "inactive"})
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "active"})
}
