package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/mathquiz/internal/concepts"
	"github.com/abhisek/mathquiz/internal/eval"
	"github.com/abhisek/mathquiz/internal/questiongen"
	"github.com/abhisek/mathquiz/internal/store"
)

// maxAttempts is how many times question generation or evaluation is
// retried before falling back.
const maxAttempts = 3

// retryDelay is the pause between retry attempts.
const retryDelay = time.Second

// ConceptLister supplies the concept list for a topic.
type ConceptLister interface {
	List(ctx context.Context, topic string) []concepts.Concept
}

// QuestionGenerator produces quiz questions.
type QuestionGenerator interface {
	Generate(ctx context.Context, in questiongen.Input) (questiongen.Result, error)
}

// AnswerEvaluator judges user answers.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, question, correct, userAnswer string) (eval.Verdict, error)
}

// Engine drives quizzes end to end over the session store.
type Engine struct {
	store     *SessionStore
	concepts  ConceptLister
	generator QuestionGenerator
	evaluator AnswerEvaluator
	events    store.EventRepo
	sleep     func(time.Duration)
}

// NewEngine wires a quiz engine. events may be nil when no store is
// configured.
func NewEngine(st *SessionStore, cl ConceptLister, gen QuestionGenerator, ev AnswerEvaluator, events store.EventRepo) *Engine {
	return &Engine{
		store:     st,
		concepts:  cl,
		generator: gen,
		evaluator: ev,
		events:    events,
		sleep:     time.Sleep,
	}
}

// StartResult is the client-facing state after starting a quiz.
type StartResult struct {
	SessionID     string `json:"session_id"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Skill         string `json:"skill"`
	Difficulty    int    `json:"difficulty"`
}

// AnswerResult is the client-facing outcome of one submitted answer.
// Judgment and Explanation describe the answered question; Question,
// CorrectAnswer and Skill describe the next one and stay empty once the
// quiz is complete.
type AnswerResult struct {
	Done        bool   `json:"quiz_complete"`
	IsCorrect   bool   `json:"is_correct"`
	Judgment    string `json:"judgment_text"`
	Explanation string `json:"explanation_text"`
	Level       int    `json:"level"`
	Progress    string `json:"progress"`
	Score       int    `json:"score"`

	Question      string `json:"question,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Skill         string `json:"skill,omitempty"`
}

// Start creates a session for the user and topic and serves the first
// question. When no usable first question can be produced the session
// is torn down and an error returned.
func (e *Engine) Start(ctx context.Context, username, topic string) (StartResult, error) {
	s := e.store.Create(username, topic)
	s.Concepts = e.concepts.List(ctx, topic)

	q, err := e.nextQuestion(ctx, s)
	if err != nil {
		e.store.Delete(s.ID)
		return StartResult{}, fmt.Errorf("starting quiz: %w", err)
	}
	if q.Failed() {
		e.store.Delete(s.ID)
		return StartResult{}, fmt.Errorf("starting quiz: %s", q.Err)
	}
	e.serveQuestion(s, q)

	if err := e.store.Update(s); err != nil {
		return StartResult{}, err
	}
	if err := e.store.Backup(s.ID); err != nil {
		return StartResult{}, err
	}

	return StartResult{
		SessionID:     s.ID,
		Question:      q.Question,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Skill:         q.Skill,
		Difficulty:    q.Difficulty,
	}, nil
}

// SubmitAnswer evaluates the user's answer against the current question,
// adjusts the difficulty, and serves the next question or finishes the
// quiz.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, answer string) (AnswerResult, error) {
	unlock, err := e.store.LockSession(sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	defer unlock()

	s, err := e.store.Get(sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if s.Current == nil {
		return AnswerResult{}, errors.New("no question pending for session")
	}

	cur := *s.Current
	verdict := e.evaluate(ctx, cur, answer)

	if verdict.IsCorrect {
		s.Level = clampLevel(s.Level + 1)
	} else {
		s.Level = clampLevel(s.Level - 1)
	}

	s.History = append(s.History, Record{
		Question:      cur.Question,
		UserAnswer:    answer,
		CorrectAnswer: cur.CorrectAnswer,
		Correct:       verdict.IsCorrect,
		Reason:        verdict.Reason,
		Explanation:   verdict.Explanation,
		Skill:         cur.Skill,
		Level:         s.Level,
	})
	s.Current = nil

	res := AnswerResult{
		IsCorrect:   verdict.IsCorrect,
		Judgment:    verdict.Reason,
		Explanation: verdict.Explanation,
		Level:       s.Level,
		Score:       s.CorrectCount(),
		Progress:    fmt.Sprintf("%d/%d", len(s.History), QuizLength),
	}

	if s.Done() {
		res.Done = true
		e.recordResult(ctx, s)
		if err := e.store.Update(s); err != nil {
			return AnswerResult{}, err
		}
		if err := e.store.Backup(s.ID); err != nil {
			return AnswerResult{}, err
		}
		// Completion is the opportunistic sweep point. The finished
		// session was just touched by Update, so it survives.
		e.store.CleanupExpired()
		return res, nil
	}

	q, err := e.nextQuestion(ctx, s)
	if err != nil || q.Failed() {
		slog.Warn("falling back to placeholder question", "session", s.ID, "error", err)
		q = questiongen.FallbackResult(s.Level)
	}
	e.serveQuestion(s, q)

	res.Question = q.Question
	res.CorrectAnswer = q.CorrectAnswer
	res.Skill = q.Skill
	res.Progress = fmt.Sprintf("%d/%d", s.QuestionNumber, QuizLength)

	if err := e.store.Update(s); err != nil {
		return AnswerResult{}, err
	}
	if err := e.store.Backup(s.ID); err != nil {
		return AnswerResult{}, err
	}
	return res, nil
}

// nextQuestion generates a question for the session's current level and
// concept, retrying duplicates and error records up to maxAttempts.
func (e *Engine) nextQuestion(ctx context.Context, s *Session) (questiongen.Result, error) {
	if len(s.Concepts) == 0 {
		return questiongen.Result{}, errors.New("session has no concepts")
	}

	// The concept cursor advances once per question, not per attempt:
	// every retry targets the same concept.
	concept := s.NextConcept()

	var last questiongen.Result
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		q, err := e.generator.Generate(ctx, questiongen.Input{
			Topic:   s.Topic,
			Level:   s.Level,
			Concept: concept.Name,
			Asked:   s.Asked,
		})
		if err != nil {
			if errors.Is(err, questiongen.ErrDuplicateQuestion) {
				slog.Warn("duplicate question, retrying", "session", s.ID, "attempt", attempt)
				e.pause(ctx, attempt)
				continue
			}
			return questiongen.Result{}, err
		}
		if q.Failed() {
			slog.Warn("question generation error record, retrying",
				"session", s.ID, "attempt", attempt, "error", q.Err)
			last = q
			e.pause(ctx, attempt)
			continue
		}
		return q, nil
	}
	if last.Failed() {
		return last, nil
	}
	return questiongen.FallbackResult(s.Level), nil
}

// evaluate judges the answer, retrying transient provider failures.
// When every attempt fails the answer is marked incorrect with the
// correct answer cited so the quiz can continue.
func (e *Engine) evaluate(ctx context.Context, q questiongen.Result, answer string) eval.Verdict {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := e.evaluator.Evaluate(ctx, q.Question, q.CorrectAnswer, answer)
		if err == nil {
			return v
		}
		slog.Warn("answer evaluation attempt failed", "attempt", attempt, "error", err)
		e.pause(ctx, attempt)
	}
	return eval.Verdict{
		IsCorrect:   false,
		Reason:      "Incorrect: evaluation unavailable",
		Explanation: fmt.Sprintf("The correct answer is %s. Your answer could not be evaluated right now.", q.CorrectAnswer),
	}
}

// serveQuestion installs q as the session's pending question and marks
// it asked so it is never generated again.
func (e *Engine) serveQuestion(s *Session, q questiongen.Result) {
	s.Current = &q
	s.Asked = append(s.Asked, q.Question)
	s.QuestionNumber++
}

// recordResult persists the completed quiz to the event store.
func (e *Engine) recordResult(ctx context.Context, s *Session) {
	if e.events == nil {
		return
	}
	correct := s.CorrectCount()
	ev := store.QuizResultEvent{
		Timestamp:      time.Now(),
		SessionID:      s.ID,
		Username:       s.Username,
		Topic:          s.Topic,
		TotalQuestions: len(s.History),
		Correct:        correct,
		FinalPercent:   float64(correct) / float64(len(s.History)) * 100,
		FinalLevel:     s.Level,
	}
	if err := e.events.AppendQuizResult(ctx, ev); err != nil {
		slog.Warn("failed to record quiz result", "session", s.ID, "error", err)
	}
}

// pause sleeps between attempts unless this was the last one or the
// context is already gone.
func (e *Engine) pause(ctx context.Context, attempt int) {
	if attempt >= maxAttempts || ctx.Err() != nil {
		return
	}
	e.sleep(retryDelay)
}
