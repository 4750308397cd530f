package service

import (
	"exam_proctor_backend/internal/model"
	"strings"
)

// ScoreOutcome is the scoring verdict for one question of one attempt.
type ScoreOutcome struct {
	Correct  bool
	Marks    int
	Answered bool
}

// ScoreAnswer grades a single question against the submitted answer text.
// Pure and deterministic; the caller sums outcomes and clamps the total.
//
// Negative marking applies only to a wrong *attempted* answer: a skipped
// question (no submission, or whitespace-only text) contributes zero marks
// and no deduction. A malformed answer counts as a wrong attempt, not an
// error.
func ScoreAnswer(q *model.Question, answerText string) ScoreOutcome {
	trimmed := strings.TrimSpace(answerText)
	if trimmed == "" {
		return ScoreOutcome{Correct: false, Marks: 0, Answered: false}
	}

	correct := false
	switch q.QuestionType {
	case model.MCQ:
		correct = strings.ToUpper(trimmed) == strings.ToUpper(q.CorrectOption)
	case model.MAQ:
		correct = setsEqual(model.ParseOptionSet(trimmed), q.CorrectSet())
	case model.FillBlank:
		// Exact, case-sensitive, surrounding whitespace ignored.
		correct = trimmed == strings.TrimSpace(q.CorrectAnswer)
	}

	if correct {
		return ScoreOutcome{Correct: true, Marks: q.Marks, Answered: true}
	}
	return ScoreOutcome{Correct: false, Marks: -q.NegativeMarks, Answered: true}
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
