package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhisek/mathquiz/internal/concepts"
	"github.com/abhisek/mathquiz/internal/quiz"
	"github.com/abhisek/mathquiz/internal/report"
)

type stubEngine struct {
	startRes  quiz.StartResult
	startErr  error
	answerRes quiz.AnswerResult
	answerErr map[string]error
	calls     int
}

func (s *stubEngine) Start(_ context.Context, _, _ string) (quiz.StartResult, error) {
	return s.startRes, s.startErr
}

// SubmitAnswer fails once per sessionID entry in answerErr, mimicking a
// session that comes back after recovery.
func (s *stubEngine) SubmitAnswer(_ context.Context, sessionID, _ string) (quiz.AnswerResult, error) {
	s.calls++
	if err, ok := s.answerErr[sessionID]; ok && err != nil {
		delete(s.answerErr, sessionID)
		return quiz.AnswerResult{}, err
	}
	return s.answerRes, nil
}

type stubConcepts struct{}

func (stubConcepts) List(_ context.Context, topic string) []concepts.Concept {
	return []concepts.Concept{{Name: topic + " Basics", Description: "fundamentals", BaseDifficulty: 1}}
}

type stubReports struct {
	filename string
	err      error
}

func (s stubReports) Build(_ context.Context, _ *quiz.Session) (string, report.Insights, error) {
	if s.err != nil {
		return "", report.Insights{}, s.err
	}
	return s.filename, report.Insights{Summary: "did well", Recommendations: "keep going"}, nil
}

func newTestHandler(eng *stubEngine, rb ReportBuilder) (*Handler, *quiz.SessionStore) {
	st := quiz.NewSessionStore(quiz.DefaultStoreConfig())
	return NewHandler(eng, st, stubConcepts{}, rb), st
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return got
}

func TestStartMissingFields(t *testing.T) {
	h, _ := newTestHandler(&stubEngine{}, stubReports{})

	w := postJSON(t, h.handleStart, map[string]string{"topic": "Algebra"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	w = postJSON(t, h.handleStart, map[string]string{"username": "alice"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStartSuccess(t *testing.T) {
	eng := &stubEngine{startRes: quiz.StartResult{
		SessionID:     "sess-1",
		Question:      "What is 2+2?",
		CorrectAnswer: "4",
		Skill:         "Addition",
		Difficulty:    1,
	}}
	h, _ := newTestHandler(eng, stubReports{})

	w := postJSON(t, h.handleStart, map[string]string{"topic": "Arithmetic", "username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)
	if got["session_id"] != "sess-1" || got["question"] != "What is 2+2?" {
		t.Errorf("unexpected body: %v", got)
	}
}

func TestStartEngineFailure(t *testing.T) {
	eng := &stubEngine{startErr: fmt.Errorf("no usable first question")}
	h, _ := newTestHandler(eng, stubReports{})

	w := postJSON(t, h.handleStart, map[string]string{"topic": "Algebra", "username": "bob"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if _, ok := decodeBody(t, w)["error"]; !ok {
		t.Error("expected error field in body")
	}
}

func TestAnswerSuccess(t *testing.T) {
	eng := &stubEngine{answerRes: quiz.AnswerResult{
		IsCorrect:   true,
		Judgment:    "Correct",
		Explanation: "nice work",
		Level:       2,
		Progress:    "2/10",
		Score:       1,
		Question:    "next one",
	}}
	h, _ := newTestHandler(eng, stubReports{})

	w := postJSON(t, h.handleAnswer, map[string]string{"session_id": "sess-1", "user_answer": "4"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["is_correct"] != true || got["progress"] != "2/10" {
		t.Errorf("unexpected body: %v", got)
	}
	if got["quiz_complete"] != false {
		t.Errorf("quiz_complete should be false: %v", got)
	}
}

func TestAnswerMissingFields(t *testing.T) {
	h, _ := newTestHandler(&stubEngine{}, stubReports{})

	w := postJSON(t, h.handleAnswer, map[string]string{"user_answer": "4"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing session_id, got %d", w.Code)
	}

	w = postJSON(t, h.handleAnswer, map[string]string{"session_id": "sess-1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty user_answer, got %d", w.Code)
	}
}

func TestAnswerCompleteReturnsOnlyFlag(t *testing.T) {
	eng := &stubEngine{answerRes: quiz.AnswerResult{Done: true, IsCorrect: true, Score: 8}}
	h, _ := newTestHandler(eng, stubReports{})

	w := postJSON(t, h.handleAnswer, map[string]string{"session_id": "sess-1", "user_answer": "x"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["quiz_complete"] != true {
		t.Errorf("expected quiz_complete true, got %v", got)
	}
	if len(got) != 1 {
		t.Errorf("completion response should carry only the flag, got %v", got)
	}
}

func TestAnswerExpiredSessionRecovered(t *testing.T) {
	// The store has a backup but the engine reports not-found on the
	// first call only, mimicking a swept session.
	eng := &stubEngine{
		answerRes: quiz.AnswerResult{IsCorrect: false, Progress: "3/10"},
	}
	h, st := newTestHandler(eng, stubReports{})
	s := st.Create("carol", "Algebra")
	if err := st.Backup(s.ID); err != nil {
		t.Fatal(err)
	}
	eng.answerErr = map[string]error{s.ID: quiz.ErrSessionNotFound}

	w := postJSON(t, h.handleAnswer, map[string]string{"session_id": s.ID, "user_answer": "7"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if eng.calls != 2 {
		t.Errorf("expected retry after recovery, got %d calls", eng.calls)
	}
}

func TestAnswerUnrecoverableSession(t *testing.T) {
	eng := &stubEngine{answerErr: map[string]error{"gone": quiz.ErrSessionNotFound}}
	h, _ := newTestHandler(eng, stubReports{})

	w := postJSON(t, h.handleAnswer, map[string]string{"session_id": "gone", "user_answer": "7"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["error"] != "Session expired or invalid. Please start a new quiz." {
		t.Errorf("unexpected error message: %v", got["error"])
	}
}

func TestReport(t *testing.T) {
	h, st := newTestHandler(&stubEngine{}, stubReports{filename: "carol_quiz_report_20260815_120000.pdf"})
	s := st.Create("carol", "Geometry")

	w := postJSON(t, h.handleReport, map[string]string{"session_id": s.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)
	if got["report_path"] != "/static/reports/carol_quiz_report_20260815_120000.pdf" {
		t.Errorf("report_path = %v", got["report_path"])
	}
	if got["ai_summary"] != "did well" || got["ai_recommendations"] != "keep going" {
		t.Errorf("unexpected insights: %v", got)
	}
}

// backupOnlySessions mimics a store whose live entry is gone but whose
// backup still resolves.
type backupOnlySessions struct{ s *quiz.Session }

func (b backupOnlySessions) Get(string) (*quiz.Session, error) {
	return nil, quiz.ErrSessionNotFound
}

func (b backupOnlySessions) Recover(string) (*quiz.Session, error) {
	if b.s == nil {
		return nil, quiz.ErrNoBackup
	}
	return b.s, nil
}

func (b backupOnlySessions) Heartbeat(string) error { return quiz.ErrSessionNotFound }

func TestReportFallsBackToRecovery(t *testing.T) {
	sessions := backupOnlySessions{s: &quiz.Session{ID: "sess-1", Username: "heidi", Topic: "Algebra"}}
	h := NewHandler(&stubEngine{}, sessions, stubConcepts{}, stubReports{filename: "heidi_quiz_report_20260815_120000.pdf"})

	w := postJSON(t, h.handleReport, map[string]string{"session_id": "sess-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via recovery, got %d: %s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)
	if got["report_path"] != "/static/reports/heidi_quiz_report_20260815_120000.pdf" {
		t.Errorf("report_path = %v", got["report_path"])
	}
}

func TestReportBuildFailure(t *testing.T) {
	h, st := newTestHandler(&stubEngine{}, stubReports{err: fmt.Errorf("disk full")})
	s := st.Create("dave", "Algebra")

	w := postJSON(t, h.handleReport, map[string]string{"session_id": s.ID})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestReportUnknownSession(t *testing.T) {
	h, _ := newTestHandler(&stubEngine{}, stubReports{})

	w := postJSON(t, h.handleReport, map[string]string{"session_id": "nope"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGenerateSubtopics(t *testing.T) {
	h, _ := newTestHandler(&stubEngine{}, stubReports{})

	w := postJSON(t, h.handleSubtopics, map[string]string{"topic": "Calculus"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	list, ok := got["concepts"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("unexpected concepts: %v", got)
	}

	w = postJSON(t, h.handleSubtopics, map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing topic, got %d", w.Code)
	}
}

func TestSessionRecover(t *testing.T) {
	h, st := newTestHandler(&stubEngine{}, stubReports{})
	s := st.Create("erin", "Statistics")
	s.Level = 3
	s.QuestionNumber = 4
	s.History = []quiz.Record{
		{Correct: true}, {Correct: true}, {Correct: false},
	}
	if err := st.Update(s); err != nil {
		t.Fatal(err)
	}
	if err := st.Backup(s.ID); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, h.handleRecover, map[string]string{"session_id": s.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["status"] != "recovered" || got["progress"] != float64(3) {
		t.Errorf("unexpected body: %v", got)
	}
	if got["score"] != float64(2) || got["level"] != float64(3) {
		t.Errorf("unexpected score/level: %v", got)
	}
	if got["final_percentage_score"] != float64(0) {
		t.Errorf("in-progress quiz must report 0 percentage, got %v", got["final_percentage_score"])
	}
	if got["username"] != "erin" || got["topic"] != "Statistics" {
		t.Errorf("unexpected identity fields: %v", got)
	}
}

func TestSessionRecoverCompletedQuizReportsPercentage(t *testing.T) {
	h, st := newTestHandler(&stubEngine{}, stubReports{})
	s := st.Create("gail", "Algebra")
	for i := 0; i < quiz.QuizLength; i++ {
		s.History = append(s.History, quiz.Record{Correct: i < 7})
	}
	if err := st.Update(s); err != nil {
		t.Fatal(err)
	}
	if err := st.Backup(s.ID); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, h.handleRecover, map[string]string{"session_id": s.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["final_percentage_score"] != float64(70) {
		t.Errorf("expected 70, got %v", got["final_percentage_score"])
	}
	if got["progress"] != float64(10) {
		t.Errorf("expected progress 10, got %v", got["progress"])
	}
}

func TestSessionRecoverNotRecoverable(t *testing.T) {
	h, _ := newTestHandler(&stubEngine{}, stubReports{})

	w := postJSON(t, h.handleRecover, map[string]string{"session_id": "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if got := decodeBody(t, w); got["error"] != "Session not recoverable" {
		t.Errorf("unexpected body: %v", got)
	}
}

func TestSessionHeartbeat(t *testing.T) {
	h, st := newTestHandler(&stubEngine{}, stubReports{})
	s := st.Create("frank", "Algebra")

	w := postJSON(t, h.handleHeartbeat, map[string]string{"session_id": s.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decodeBody(t, w); got["status"] != "active" {
		t.Errorf("unexpected body: %v", got)
	}

	w = postJSON(t, h.handleHeartbeat, map[string]string{"session_id": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := decodeBody(t, w); got["status"] != "inactive" {
		t.Errorf("unexpected body: %v", got)
	}
}

func TestRouterHealthAndRateLimit(t *testing.T) {
	h, _ := newTestHandler(&stubEngine{startRes: quiz.StartResult{SessionID: "s"}}, stubReports{})
	r := NewRouter(h, t.TempDir())
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health = %d", resp.StatusCode)
	}

	// The start budget is 3/min per IP; the 4th request is rejected.
	var last int
	for i := 0; i < 4; i++ {
		body := bytes.NewReader([]byte(`{"topic":"Algebra","username":"alice"}`))
		resp, err := http.Post(srv.URL+"/start", "application/json", body)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 after exceeding budget, got %d", last)
	}
}
