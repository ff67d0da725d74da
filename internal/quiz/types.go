package quiz

import (
	"slices"
	"time"

	"github.com/abhisek/mathquiz/internal/concepts"
	"github.com/abhisek/mathquiz/internal/questiongen"
)

const (
	// MinLevel and MaxLevel bound the adaptive difficulty scale.
	MinLevel = 1
	MaxLevel = 5

	// QuizLength is the number of questions in a full quiz.
	QuizLength = 10

	// SessionTTL is how long an idle session survives before it is
	// eligible for cleanup.
	SessionTTL = 30 * time.Minute
)

// Record is one answered question in a session's history.
type Record struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	Reason        string `json:"reason"`
	Explanation   string `json:"explanation"`
	Skill         string `json:"skill"`
	// Level is the difficulty AFTER applying this answer's adjustment,
	// so the report can show the level trajectory.
	Level int `json:"level"`
}

// Session holds the full state of one quiz in progress.
type Session struct {
	ID       string
	Username string
	Topic    string

	Concepts   []concepts.Concept
	ConceptIdx int

	Level          int
	QuestionNumber int
	Current        *questiongen.Result
	Asked          []string
	History        []Record

	CreatedAt  time.Time
	LastActive time.Time
}

// Clone returns a deep copy of the session. Backup and recovery depend
// on the copy sharing no mutable state with the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Concepts = slices.Clone(s.Concepts)
	c.Asked = slices.Clone(s.Asked)
	c.History = slices.Clone(s.History)
	if s.Current != nil {
		cur := *s.Current
		c.Current = &cur
	}
	return &c
}

// CorrectCount returns how many history records were answered correctly.
func (s *Session) CorrectCount() int {
	n := 0
	for _, r := range s.History {
		if r.Correct {
			n++
		}
	}
	return n
}

// Done reports whether the quiz has run its full length.
func (s *Session) Done() bool {
	return len(s.History) >= QuizLength
}

// NextConcept returns the current concept and advances the cursor
// cyclically through the concept list.
func (s *Session) NextConcept() concepts.Concept {
	c := s.Concepts[s.ConceptIdx]
	s.ConceptIdx = (s.ConceptIdx + 1) % len(s.Concepts)
	return c
}

// clampLevel bounds a difficulty level to the adaptive scale.
func clampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
