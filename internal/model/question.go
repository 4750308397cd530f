package model

import (
	"strings"
)

type QuestionType string

const (
	MCQ       QuestionType = "MCQ"
	MAQ       QuestionType = "MAQ"
	FillBlank QuestionType = "FILL_BLANK"
)

var optionLetters = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// Question is a variant record keyed by QuestionType. Only the fields of the
// declared variant are meaningful; Validate enforces that on every write so
// the loosely-typed columns never carry stale payload from another variant.
//
// swagger:model Question
type Question struct {
	BaseModel

	TestID        uint         `gorm:"index;type:bigint unsigned" json:"testId"`
	QuestionType  QuestionType `gorm:"size:20;not null" json:"questionType"`
	QuestionText  string       `gorm:"type:text;not null" json:"questionText"`
	Marks         int          `gorm:"default:1" json:"marks"`
	NegativeMarks int          `gorm:"default:0" json:"negativeMarks"`

	// MCQ / MAQ variants
	OptionA string `gorm:"size:500" json:"optionA,omitempty"`
	OptionB string `gorm:"size:500" json:"optionB,omitempty"`
	OptionC string `gorm:"size:500" json:"optionC,omitempty"`
	OptionD string `gorm:"size:500" json:"optionD,omitempty"`

	// MCQ variant: single correct letter
	CorrectOption string `gorm:"size:1" json:"correctOption,omitempty"`
	// MAQ variant: comma-separated set of correct letters
	CorrectOptionsCsv string `gorm:"size:10" json:"correctOptionsCsv,omitempty"`
	// FILL_BLANK variant: exact expected answer
	CorrectAnswer string `gorm:"size:500" json:"correctAnswer,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// Validate checks marks and the variant payload: exactly the fields required
// by the declared type must be populated, the others must be empty.
func (q *Question) Validate() error {
	if q.Marks <= 0 {
		return Invalid("marks must be positive")
	}
	if q.NegativeMarks < 0 {
		return Invalid("negativeMarks must be non-negative")
	}
	if strings.TrimSpace(q.QuestionText) == "" {
		return Invalid("questionText required")
	}

	switch q.QuestionType {
	case MCQ:
		if err := q.validateOptions(); err != nil {
			return err
		}
		if !optionLetters[q.CorrectOption] {
			return Invalid("correctOption must be one of A-D")
		}
		if q.CorrectOptionsCsv != "" || q.CorrectAnswer != "" {
			return Invalid("MCQ must not carry MAQ or FILL_BLANK fields")
		}
	case MAQ:
		if err := q.validateOptions(); err != nil {
			return err
		}
		set := ParseOptionSet(q.CorrectOptionsCsv)
		if len(set) == 0 {
			return Invalid("correctOptionsCsv must name at least one of A-D")
		}
		for letter := range set {
			if !optionLetters[letter] {
				return Invalid("correctOptionsCsv letters must be within A-D")
			}
		}
		if q.CorrectOption != "" || q.CorrectAnswer != "" {
			return Invalid("MAQ must not carry MCQ or FILL_BLANK fields")
		}
	case FillBlank:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return Invalid("correctAnswer required")
		}
		if q.OptionA != "" || q.OptionB != "" || q.OptionC != "" || q.OptionD != "" ||
			q.CorrectOption != "" || q.CorrectOptionsCsv != "" {
			return Invalid("FILL_BLANK must not carry option fields")
		}
	default:
		return Invalid("unknown questionType")
	}
	return nil
}

func (q *Question) validateOptions() error {
	if q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
		return Invalid("options A-D are all required")
	}
	return nil
}

// CorrectSet returns the MAQ answer key as a letter set.
func (q *Question) CorrectSet() map[string]bool {
	return ParseOptionSet(q.CorrectOptionsCsv)
}

// ParseOptionSet splits a comma-joined letter list into a set. Letters are
// upper-cased, empty entries and duplicates dropped. Anything outside A-D is
// kept so the caller can decide whether the input was malformed.
func ParseOptionSet(csv string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(csv, ",") {
		letter := strings.ToUpper(strings.TrimSpace(part))
		if letter == "" {
			continue
		}
		set[letter] = true
	}
	return set
}

// StudentQuestion is the sanitized projection served to test takers. It
// deliberately has no answer-key fields, so the key cannot leak through the
// taking flow.
//
// swagger:model StudentQuestion
type StudentQuestion struct {
	ID            uint         `json:"id"`
	TestID        uint         `json:"testId"`
	QuestionType  QuestionType `json:"questionType"`
	QuestionText  string       `json:"questionText"`
	Marks         int          `json:"marks"`
	NegativeMarks int          `json:"negativeMarks"`
	OptionA       string       `json:"optionA,omitempty"`
	OptionB       string       `json:"optionB,omitempty"`
	OptionC       string       `json:"optionC,omitempty"`
	OptionD       string       `json:"optionD,omitempty"`
}

// StudentView strips the answer key from a question.
func (q *Question) StudentView() StudentQuestion {
	return StudentQuestion{
		ID:            q.ID,
		TestID:        q.TestID,
		QuestionType:  q.QuestionType,
		QuestionText:  q.QuestionText,
		Marks:         q.Marks,
		NegativeMarks: q.NegativeMarks,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
	}
}
